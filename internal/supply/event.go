// Package supply provides the supply-chain disruption model: stochastic
// event generation, aging, and per-vendor effect aggregation.
package supply

// EventType identifies a kind of supply-chain disruption.
type EventType uint8

const (
	EventDeliveryDelay EventType = iota
	EventPartialShipment
	EventQualityIssue
	EventLostShipment
	EventVendorShortage
	EventPriceSpike
	EventVendorBankruptcy
	EventTransportDisruption
)

// String returns the wire/storage name for an event type.
func (t EventType) String() string {
	switch t {
	case EventDeliveryDelay:
		return "delivery_delay"
	case EventPartialShipment:
		return "partial_shipment"
	case EventQualityIssue:
		return "quality_issue"
	case EventLostShipment:
		return "lost_shipment"
	case EventVendorShortage:
		return "vendor_shortage"
	case EventPriceSpike:
		return "price_spike"
	case EventVendorBankruptcy:
		return "vendor_bankruptcy"
	case EventTransportDisruption:
		return "transportation_disruption"
	default:
		return "unknown"
	}
}

// EventTypeFromString parses a stored event-type name.
func EventTypeFromString(s string) (EventType, bool) {
	for t := EventDeliveryDelay; t <= EventTransportDisruption; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Severity grades how disruptive an event is.
type Severity uint8

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// SeverityFromString parses a stored severity name.
func SeverityFromString(s string) (Severity, bool) {
	for v := SeverityLow; v <= SeverityCritical; v++ {
		if v.String() == s {
			return v, true
		}
	}
	return 0, false
}

// Effect-data keys. Values are plain numbers so events serialize as a flat map.
const (
	EffectPriceIncrease        = "price_increase"         // fractional, 0.25 = +25%
	EffectDeliveryDelayAdd     = "delivery_delay_add"     // days
	EffectFulfillmentCap       = "fulfillment_cap"        // max fraction of qty shipped
	EffectAvailable            = "available"              // 0 = vendor gone
	EffectQuantityMultiplier   = "quantity_multiplier"    // fraction of qty actually shipped
	EffectDefectiveRate        = "defective_rate"         // fraction of units defective
	EffectDeliveryCostIncrease = "delivery_cost_increase" // fractional surcharge
)

// PermanentDuration marks an event that never expires (vendor bankruptcy).
const PermanentDuration = 999

// Event is an immutable supply-chain disruption record. A zero VendorID
// means the event is global and applies to every vendor.
type Event struct {
	Type          EventType          `json:"type"`
	VendorID      string             `json:"vendor_id,omitempty"`
	Description   string             `json:"description"`
	DurationWeeks int                `json:"duration_weeks"` // 0 = instantaneous, 999 = permanent
	EffectData    map[string]float64 `json:"effect_data"`
	StartWeek     int                `json:"start_week"`
	Severity      Severity           `json:"severity"`
}

// AppliesTo reports whether the event affects the given vendor.
func (e Event) AppliesTo(vendorID string) bool {
	return e.VendorID == "" || e.VendorID == vendorID
}

// Permanent reports whether the event never expires.
func (e Event) Permanent() bool {
	return e.DurationWeeks == PermanentDuration
}

// Expired reports whether the event has run its course as of week.
func (e Event) Expired(week int) bool {
	if e.Permanent() {
		return false
	}
	return week-e.StartWeek >= e.DurationWeeks
}

// Effect returns an effect value with a fallback default.
func (e Event) Effect(key string, def float64) float64 {
	if v, ok := e.EffectData[key]; ok {
		return v
	}
	return def
}
