package stock

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InsufficientStockError reports that the active pools of a product cannot
// cover a requested quantity and negative stock is disallowed. Shortfall is
// the uncovered remainder; callers use it to offer substitution or
// backorder. No deduction happens when this error is returned.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested decimal.Decimal
	Shortfall decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %s, short by %s",
		e.ProductID, e.Requested.String(), e.Shortfall.String())
}

// PlannedDeduction is one step of an allocation plan before it is applied
type PlannedDeduction struct {
	AssignmentID uuid.UUID
	StationID    uuid.UUID
	Quantity     decimal.Decimal
}

// SortAssignments orders pools by priority ascending, ties broken by
// creation time so the walk is deterministic and reproducible
func SortAssignments(assignments []*StockAssignment) {
	sort.SliceStable(assignments, func(i, j int) bool {
		if assignments[i].Priority != assignments[j].Priority {
			return assignments[i].Priority < assignments[j].Priority
		}
		return assignments[i].CreatedAt.Before(assignments[j].CreatedAt)
	})
}

// Plan walks the product's active pools in priority order and computes the
// per-station deductions covering quantity. It is pure: nothing is mutated,
// so a failed plan leaves no trace and a successful one can be applied
// atomically by the caller under row locks.
//
// Each pool contributes min(remaining, its positive stock). A pool already
// at or below zero contributes nothing in the walk. If the walk ends with a
// remainder, the remainder goes to the last pool in the chain when the
// product allows negative stock, otherwise the whole plan is discarded with
// an InsufficientStockError.
func Plan(productID uuid.UUID, assignments []*StockAssignment, quantity decimal.Decimal, allowNegative bool) ([]PlannedDeduction, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Allocation quantity must be positive")
	}

	active := make([]*StockAssignment, 0, len(assignments))
	for _, a := range assignments {
		if a.IsActive && a.ProductID == productID {
			active = append(active, a)
		}
	}
	SortAssignments(active)

	remaining := quantity.Round(2)
	plan := make([]PlannedDeduction, 0, len(active))

	for _, a := range active {
		if !remaining.IsPositive() {
			break
		}
		available := a.Stock
		if !available.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, available)
		plan = append(plan, PlannedDeduction{
			AssignmentID: a.ID,
			StationID:    a.StationID,
			Quantity:     take,
		})
		remaining = remaining.Sub(take)
	}

	if remaining.IsPositive() {
		if !allowNegative || len(active) == 0 {
			return nil, &InsufficientStockError{
				ProductID: productID,
				Requested: quantity,
				Shortfall: remaining,
			}
		}

		// the remainder drives the lowest-priority pool negative
		last := active[len(active)-1]
		merged := false
		for idx := range plan {
			if plan[idx].AssignmentID == last.ID {
				plan[idx].Quantity = plan[idx].Quantity.Add(remaining)
				merged = true
				break
			}
		}
		if !merged {
			plan = append(plan, PlannedDeduction{
				AssignmentID: last.ID,
				StationID:    last.StationID,
				Quantity:     remaining,
			})
		}
	}

	return plan, nil
}

// PlannedTotal sums a plan's quantities
func PlannedTotal(plan []PlannedDeduction) decimal.Decimal {
	total := decimal.Zero
	for _, d := range plan {
		total = total.Add(d.Quantity)
	}
	return total
}
