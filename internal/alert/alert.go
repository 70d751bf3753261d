package alert

import (
	"fmt"

	"github.com/mfreitas/lucre/internal/metrics"
	"github.com/mfreitas/lucre/internal/record"
)

// Severity ranks how urgently an alert needs attention.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Type identifies which rule fired.
type Type string

const (
	TypeLowProfitMargin   Type = "LOW_PROFIT_MARGIN"
	TypeLowRoi            Type = "LOW_ROI"
	TypeExcessInventory   Type = "EXCESS_INVENTORY"
	TypeStagnantInventory Type = "STAGNANT_INVENTORY"
	TypeProfitGoalBehind  Type = "PROFIT_GOAL_BEHIND"
	TypeLowStock          Type = "LOW_STOCK"
)

// Event is one fired alert. Value and Target are the observed and
// configured figures the rule compared; Message is presentation only.
type Event struct {
	Type     Type     `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Value    float64  `json:"value"`
	Target   float64  `json:"target"`
}

// Stagnant-rate and profit-pace cutoffs are fixed rules, not
// deployment configuration.
const (
	stagnantRateCutoffPct = 15
	profitPaceCutoffPct   = 80
)

// Evaluate applies the snapshot rule set and returns every rule that
// fired, worst severity first. Rules are independent: one firing never
// suppresses another. No state is kept between evaluations; dedup and
// snoozing belong to the notification dispatcher.
func Evaluate(snap metrics.Snapshot, targets metrics.Targets) []Event {
	var events []Event

	if snap.StagnantInventoryRate > stagnantRateCutoffPct {
		events = append(events, Event{
			Type:     TypeStagnantInventory,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("stagnant inventory rate %.1f%% exceeds %d%%", snap.StagnantInventoryRate, stagnantRateCutoffPct),
			Value:    snap.StagnantInventoryRate,
			Target:   stagnantRateCutoffPct,
		})
	}

	if snap.ProfitGoalAchievementPct < profitPaceCutoffPct {
		events = append(events, Event{
			Type:     TypeProfitGoalBehind,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("profit goal achievement %.1f%% is behind the %d%% pace", snap.ProfitGoalAchievementPct, profitPaceCutoffPct),
			Value:    snap.ProfitGoalAchievementPct,
			Target:   profitPaceCutoffPct,
		})
	}

	if snap.ProfitMarginPct < targets.TargetProfitMarginPct {
		events = append(events, Event{
			Type:     TypeLowProfitMargin,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("profit margin %.1f%% is below the %.1f%% target", snap.ProfitMarginPct, targets.TargetProfitMarginPct),
			Value:    snap.ProfitMarginPct,
			Target:   targets.TargetProfitMarginPct,
		})
	}

	if snap.RoiPct < targets.TargetRoiPct {
		events = append(events, Event{
			Type:     TypeLowRoi,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("roi %.1f%% is below the %.1f%% target", snap.RoiPct, targets.TargetRoiPct),
			Value:    snap.RoiPct,
			Target:   targets.TargetRoiPct,
		})
	}

	if snap.InventoryValue.GreaterThan(targets.MaxInventoryValue) {
		events = append(events, Event{
			Type:     TypeExcessInventory,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("inventory value %s exceeds the %s ceiling", snap.InventoryValue, targets.MaxInventoryValue),
			Value:    snap.InventoryValue.InexactFloat64(),
			Target:   targets.MaxInventoryValue.InexactFloat64(),
		})
	}

	return events
}

// EvaluateInventory flags SKUs whose stock has fallen to the reorder
// point, or to the configured low-stock floor when the SKU has no
// reorder point of its own. Kept separate from Evaluate so the
// snapshot rule set stays closed.
func EvaluateInventory(inventory []record.InventorySnapshot, targets metrics.Targets) []Event {
	var events []Event

	for _, inv := range inventory {
		threshold := inv.ReorderPoint
		if threshold <= 0 {
			threshold = targets.LowStockThreshold
		}

		if inv.QuantityOnHand > threshold {
			continue
		}

		events = append(events, Event{
			Type:     TypeLowStock,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("sku %s has %d units on hand, at or below %d", inv.UnifiedSKU, inv.QuantityOnHand, threshold),
			Value:    float64(inv.QuantityOnHand),
			Target:   float64(threshold),
		})
	}

	return events
}
