package model

// Range is a half-open tick interval [TickLower, TickUpper).
type Range struct {
	TickLower int32 `json:"tick_lower"`
	TickUpper int32 `json:"tick_upper"`
}

// Width returns the tick span of the range.
func (r Range) Width() int32 { return r.TickUpper - r.TickLower }
