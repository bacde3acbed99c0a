package rebalance

import (
	"fmt"

	"github.com/BilalMir135/raydium-test-bot/internal/clmm"
	"github.com/BilalMir135/raydium-test-bot/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Plan is a sized deposit proposal for a narrow replacement range.
type Plan struct {
	Range        model.Range
	PerTickDepth decimal.Decimal
	DepositA     decimal.Decimal
}

// snapToGrid rounds a tick down to the nearest multiple of spacing. Floor
// division, so negative ticks snap away from zero.
func snapToGrid(tick int32, spacing int32) int32 {
	q := tick / spacing
	if tick < 0 && tick%spacing != 0 {
		q--
	}
	return q * spacing
}

// NarrowRange proposes the tightest grid-aligned range around the current
// tick: one spacing step down and one up, each snapped down to the grid.
// A current tick so close to the tick bounds that the range would leave
// them is an error.
func NarrowRange(currentTick int32, spacing uint16) (model.Range, error) {
	if spacing == 0 {
		return model.Range{}, fmt.Errorf("tick spacing must be greater than zero")
	}
	s := int32(spacing)
	rng := model.Range{
		TickLower: snapToGrid(currentTick-s, s),
		TickUpper: snapToGrid(currentTick+s, s),
	}
	if rng.TickLower < clmm.MinTick || rng.TickUpper > clmm.MaxTick {
		return model.Range{}, fmt.Errorf("range [%d, %d) outside tick bounds", rng.TickLower, rng.TickUpper)
	}
	return rng, nil
}

// tickSpan counts the ticks a position's upper bound is away from the
// current tick, in spacing units, with a floor of one.
func tickSpan(tickUpper, currentTick int32, spacing uint16) int64 {
	dist := int64(tickUpper) - int64(currentTick)
	if dist < 0 {
		dist = -dist
	}
	s := int64(spacing)
	span := (dist + s - 1) / s
	if span < 1 {
		span = 1
	}
	return span
}

// PerTickDepth estimates how much token A the active liquidity supplies per
// spacing step: each InRange position's token A amount spread evenly over
// the steps between the current tick and its upper bound.
func PerTickDepth(book *model.Book, currentTick int32, spacing uint16) decimal.Decimal {
	depth := decimal.Zero
	for _, pos := range book.Positions {
		if pos.Status != model.InRange {
			continue
		}
		span := tickSpan(pos.TickUpper, currentTick, spacing)
		depth = depth.Add(pos.AmountA.Div(decimal.NewFromInt(span)))
	}
	return depth
}

// DepositSize converts a per-tick depth into a deposit sized to take the
// given share of the post-deposit depth: perTick * share / (1 - share).
// A zero depth sizes a zero deposit; a share outside (0, 1) is an error
// rather than a clamp.
func DepositSize(perTick decimal.Decimal, share decimal.Decimal) (decimal.Decimal, error) {
	one := decimal.NewFromInt(1)
	if share.Cmp(decimal.Zero) <= 0 || share.Cmp(one) >= 0 {
		return decimal.Zero, fmt.Errorf("liquidity share %s outside (0, 1)", share)
	}
	return perTick.Mul(share).Div(one.Sub(share)), nil
}

// Planner derives a rebalance plan from a position book.
type Planner struct {
	share decimal.Decimal
	log   *zap.Logger
}

// NewPlanner creates a planner targeting the given share of post-deposit
// per-tick depth.
func NewPlanner(share decimal.Decimal, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{share: share, log: logger}
}

// Plan proposes the narrow replacement range and the token A deposit sized
// against the pool's current InRange depth.
func (p *Planner) Plan(pool *clmm.PoolState, book *model.Book) (*Plan, error) {
	rng, err := NarrowRange(pool.TickCurrent, pool.TickSpacing)
	if err != nil {
		return nil, fmt.Errorf("narrow range: %w", err)
	}

	depth := PerTickDepth(book, pool.TickCurrent, pool.TickSpacing)
	deposit, err := DepositSize(depth, p.share)
	if err != nil {
		return nil, fmt.Errorf("deposit size: %w", err)
	}

	p.log.Info("rebalance planned",
		zap.Int32("tick_lower", rng.TickLower),
		zap.Int32("tick_upper", rng.TickUpper),
		zap.String("per_tick_depth", depth.String()),
		zap.String("deposit_a", deposit.String()),
		zap.String("share", p.share.String()),
	)

	return &Plan{Range: rng, PerTickDepth: depth, DepositA: deposit}, nil
}
