// Stochastic disruption generation and per-vendor effect aggregation.
package supply

import (
	"fmt"
	"log/slog"

	"github.com/jmfarrow/laundrosim/internal/entropy"
)

// Base probabilities for per-order (regular) disruptions. Each is scaled by
// the vendor's risk modifier before rolling.
const (
	probDelayMinor   = 0.10
	probDelayMajor   = 0.05
	probPartial      = 0.08
	probQualityMinor = 0.05
	probLost         = 0.01
)

// Weekly (major) disruption probabilities.
const (
	probShortage         = 0.05
	probPriceSpike       = 0.08
	probBankruptcy       = 0.0008 // per vendor per week
	probTransportDisrupt = 0.0075
)

// OrderContext carries the vendor parameters a regular-event roll needs.
type OrderContext struct {
	VendorID    string
	Reliability float64 // [0, 1]
	Week        int
}

// Manager generates, ages, and aggregates supply-chain events. Not safe for
// concurrent use; the tick loop serializes all access.
type Manager struct {
	rng    entropy.Source
	active []Event
}

// NewManager creates a manager drawing from the given entropy source.
func NewManager(rng entropy.Source) *Manager {
	return &Manager{rng: rng}
}

// ActiveEvents returns a copy of the currently active event set.
func (m *Manager) ActiveEvents() []Event {
	out := make([]Event, len(m.active))
	copy(out, m.active)
	return out
}

// Register adds an event to the active set. Major-event rolls register
// themselves; regular per-order events normally stay unregistered.
func (m *Manager) Register(ev Event) {
	m.active = append(m.active, ev)
}

// riskModifier scales disruption odds by vendor reliability: a perfectly
// reliable vendor halves risk, reliability 0.5 leaves it unchanged.
func riskModifier(reliability float64) float64 {
	return 2.0 - reliability
}

// CheckRegularEvents rolls the five per-order disruption kinds for one order.
// Returned events are NOT added to the active set; the caller folds them into
// the order outcome. Minor and major delays are mutually exclusive (an order
// has one delay severity); the remaining kinds roll independently and
// compound.
func (m *Manager) CheckRegularEvents(ctx OrderContext) []Event {
	risk := riskModifier(ctx.Reliability)
	var events []Event

	if m.rng.Float() < probDelayMinor*risk {
		days := entropy.IntBetween(m.rng, 3, 5)
		events = append(events, Event{
			Type:        EventDeliveryDelay,
			VendorID:    ctx.VendorID,
			Description: fmt.Sprintf("Minor delivery delay: +%d days", days),
			EffectData:  map[string]float64{EffectDeliveryDelayAdd: float64(days)},
			StartWeek:   ctx.Week,
			Severity:    SeverityLow,
		})
	} else if m.rng.Float() < probDelayMajor*risk {
		days := entropy.IntBetween(m.rng, 7, 14)
		events = append(events, Event{
			Type:        EventDeliveryDelay,
			VendorID:    ctx.VendorID,
			Description: fmt.Sprintf("Major delivery delay: +%d days", days),
			EffectData:  map[string]float64{EffectDeliveryDelayAdd: float64(days)},
			StartWeek:   ctx.Week,
			Severity:    SeverityMedium,
		})
	}

	if m.rng.Float() < probPartial*risk {
		frac := entropy.Between(m.rng, 0.50, 0.75)
		events = append(events, Event{
			Type:        EventPartialShipment,
			VendorID:    ctx.VendorID,
			Description: fmt.Sprintf("Partial shipment: %.0f%% of order delivered", frac*100),
			EffectData:  map[string]float64{EffectQuantityMultiplier: frac},
			StartWeek:   ctx.Week,
			Severity:    SeverityMedium,
		})
	}

	if m.rng.Float() < probQualityMinor*risk {
		events = append(events, Event{
			Type:        EventQualityIssue,
			VendorID:    ctx.VendorID,
			Description: "Quality issue: some units arrived defective",
			EffectData:  map[string]float64{EffectDefectiveRate: 0.20},
			StartWeek:   ctx.Week,
			Severity:    SeverityLow,
		})
	}

	if m.rng.Float() < probLost*risk {
		events = append(events, Event{
			Type:        EventLostShipment,
			VendorID:    ctx.VendorID,
			Description: "Shipment lost in transit",
			EffectData:  map[string]float64{EffectQuantityMultiplier: 0},
			StartWeek:   ctx.Week,
			Severity:    SeverityHigh,
		})
	}

	return events
}

// CheckMajorEvents rolls the weekly strategic disruptions and registers any
// that fire in the active set. Returns the newly created events.
func (m *Manager) CheckMajorEvents(week int, vendorIDs []string) []Event {
	var events []Event
	if len(vendorIDs) == 0 {
		return events
	}

	if m.rng.Float() < probShortage {
		target := vendorIDs[m.rng.IntN(len(vendorIDs))]
		duration := entropy.IntBetween(m.rng, 2, 4)
		increase := entropy.Between(m.rng, 0.20, 0.30)
		events = append(events, Event{
			Type:          EventVendorShortage,
			VendorID:      target,
			Description:   fmt.Sprintf("Supply shortage at %s: limited stock, prices up", target),
			DurationWeeks: duration,
			EffectData: map[string]float64{
				EffectFulfillmentCap: 0.5,
				EffectPriceIncrease:  increase,
			},
			StartWeek: week,
			Severity:  SeverityHigh,
		})
	}

	if m.rng.Float() < probPriceSpike {
		target := vendorIDs[m.rng.IntN(len(vendorIDs))]
		events = append(events, m.rollPriceSpike(week, target))
	}

	for _, id := range vendorIDs {
		if m.rng.Float() < probBankruptcy {
			ev := Event{
				Type:          EventVendorBankruptcy,
				VendorID:      id,
				Description:   fmt.Sprintf("%s has gone out of business", id),
				DurationWeeks: PermanentDuration,
				EffectData:    map[string]float64{EffectAvailable: 0},
				StartWeek:     week,
				Severity:      SeverityCritical,
			}
			events = append(events, ev)
			slog.Warn("vendor bankruptcy", "vendor", id, "week", week)
		}
	}

	if m.rng.Float() < probTransportDisrupt {
		duration := entropy.IntBetween(m.rng, 1, 4)
		delayDays := entropy.IntBetween(m.rng, 5, 10)
		costIncrease := entropy.Between(m.rng, 0.25, 0.50)
		events = append(events, Event{
			Type:          EventTransportDisruption,
			Description:   "Regional transportation disruption: all deliveries delayed",
			DurationWeeks: duration,
			EffectData: map[string]float64{
				EffectDeliveryDelayAdd:     float64(delayDays),
				EffectDeliveryCostIncrease: costIncrease,
			},
			StartWeek: week,
			Severity:  SeverityHigh,
		})
	}

	for _, ev := range events {
		m.Register(ev)
		slog.Info("major supply-chain event",
			"type", ev.Type.String(),
			"vendor", ev.VendorID,
			"severity", ev.Severity.String(),
			"duration_weeks", ev.DurationWeeks,
		)
	}
	return events
}

// rollPriceSpike draws one of three spike magnitudes for a vendor.
func (m *Manager) rollPriceSpike(week int, vendorID string) Event {
	var (
		label    string
		lo, hi   float64
		severity Severity
	)
	switch m.rng.IntN(3) {
	case 0:
		label, lo, hi, severity = "minor", 0.10, 0.20, SeverityMedium
	case 1:
		label, lo, hi, severity = "moderate", 0.20, 0.40, SeverityHigh
	default:
		label, lo, hi, severity = "severe", 0.40, 0.75, SeverityCritical
	}
	increase := entropy.Between(m.rng, lo, hi)
	duration := entropy.IntBetween(m.rng, 2, 6)
	return Event{
		Type:          EventPriceSpike,
		VendorID:      vendorID,
		Description:   fmt.Sprintf("%s price spike at %s: +%.0f%%", label, vendorID, increase*100),
		DurationWeeks: duration,
		EffectData:    map[string]float64{EffectPriceIncrease: increase},
		StartWeek:     week,
		Severity:      severity,
	}
}

// UpdateEvents drops events that have run their course as of week.
// Permanent events are always retained.
func (m *Manager) UpdateEvents(week int) {
	kept := m.active[:0]
	for _, ev := range m.active {
		if !ev.Expired(week) {
			kept = append(kept, ev)
		}
	}
	m.active = kept
}

// Effects is the aggregated impact of all live events on one vendor.
type Effects struct {
	PriceMultiplier  float64 `json:"price_multiplier"`   // product of (1 + price_increase)
	DeliveryDelayAdd float64 `json:"delivery_delay_add"` // summed days
	FulfillmentCap   float64 `json:"fulfillment_cap"`    // min across events
	Available        float64 `json:"available"`          // min across events; 0 = gone
}

// NeutralEffects is the no-disruption baseline.
func NeutralEffects() Effects {
	return Effects{PriceMultiplier: 1, FulfillmentCap: 1, Available: 1}
}

// ActiveEffects folds every event applicable to the vendor (global plus
// vendor-specific) into one snapshot. The fold uses only commutative
// operations so the result is independent of event insertion order.
func (m *Manager) ActiveEffects(vendorID string) Effects {
	eff := NeutralEffects()
	for _, ev := range m.active {
		if !ev.AppliesTo(vendorID) {
			continue
		}
		eff.PriceMultiplier *= 1 + ev.Effect(EffectPriceIncrease, 0)
		eff.DeliveryDelayAdd += ev.Effect(EffectDeliveryDelayAdd, 0)
		if fc := ev.Effect(EffectFulfillmentCap, 1); fc < eff.FulfillmentCap {
			eff.FulfillmentCap = fc
		}
		if avail := ev.Effect(EffectAvailable, 1); avail < eff.Available {
			eff.Available = avail
		}
	}
	return eff
}
