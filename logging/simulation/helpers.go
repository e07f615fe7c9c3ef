package simulation

import (
	"context"

	"snake-arena/server/logging"
)

const (
	// EventTickBudgetOverrun is emitted when the simulation loop exceeds the allotted tick budget.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventFoodConsumed is emitted when a snake eats a food item.
	EventFoodConsumed logging.EventType = "simulation.food_consumed"
)

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

// TickBudgetOverrun publishes a warning when the simulation exceeds the configured tick budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}

// FoodConsumedPayload identifies the eaten item and its replacement.
type FoodConsumedPayload struct {
	Food        uint64 `json:"food"`
	Replacement uint64 `json:"replacement"`
	Score       int    `json:"score"`
}

// FoodConsumed publishes a debug event for each food item eaten. The eaten
// item and its replacement are listed as targets.
func FoodConsumed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload FoodConsumedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventFoodConsumed,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{logging.FoodRef(payload.Food), logging.FoodRef(payload.Replacement)},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}
