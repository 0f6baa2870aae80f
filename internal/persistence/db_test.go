package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmfarrow/laundrosim/internal/engine"
	"github.com/jmfarrow/laundrosim/internal/supply"
	"github.com/jmfarrow/laundrosim/internal/vendor"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newFleet(t *testing.T) *vendor.Manager {
	t.Helper()
	mgr, err := vendor.NewManager(engine.NewContext(1), vendor.DefaultProfiles())
	require.NoError(t, err)
	return mgr
}

func TestVendorStateRoundTrip(t *testing.T) {
	db := openTestDB(t)
	assert.False(t, db.HasState())

	mgr := newFleet(t)
	v := mgr.Vendor("cleanco")
	v.Tier = vendor.TierPreferred
	v.WeeksConsistent = 9
	v.TotalSpend = 1234.5
	v.ExclusiveContract = true
	v.LastDeliveryStatus = "On Time"
	v.RelationshipScores["suds-1"] = 4
	v.NegotiatedDiscount["suds-1"] = map[string]float64{"detergent": 0.85}
	v.CurrentMultipliers["detergent"] = 1.3
	v.SpecialOffer = &vendor.SpecialOffer{Item: "bleach", Price: 0.64, Description: "promo"}

	require.NoError(t, db.SaveVendors(mgr.AllVendors()))
	assert.True(t, db.HasState())

	restored := newFleet(t)
	require.NoError(t, db.LoadVendorState(restored))

	r := restored.Vendor("cleanco")
	assert.Equal(t, vendor.TierPreferred, r.Tier)
	assert.Equal(t, 9, r.WeeksConsistent)
	assert.Equal(t, 1234.5, r.TotalSpend)
	assert.True(t, r.ExclusiveContract)
	assert.Equal(t, "On Time", r.LastDeliveryStatus)
	assert.Equal(t, 4, r.RelationshipScores["suds-1"])
	assert.Equal(t, 0.85, r.NegotiatedDiscount["suds-1"]["detergent"])
	assert.Equal(t, 1.3, r.CurrentMultipliers["detergent"])
	require.NotNil(t, r.SpecialOffer)
	assert.Equal(t, "bleach", r.SpecialOffer.Item)

	// Untouched vendors restore with no special offer.
	assert.Nil(t, restored.Vendor("ecowash").SpecialOffer)
}

func TestEventRoundTrip(t *testing.T) {
	db := openTestDB(t)

	events := []supply.Event{
		{
			Type:          supply.EventVendorShortage,
			VendorID:      "cleanco",
			Description:   "Supply shortage at cleanco",
			DurationWeeks: 3,
			StartWeek:     12,
			Severity:      supply.SeverityHigh,
			EffectData: map[string]float64{
				supply.EffectFulfillmentCap: 0.5,
				supply.EffectPriceIncrease:  0.22,
			},
		},
		{
			Type:          supply.EventTransportDisruption,
			Description:   "Regional transportation disruption",
			DurationWeeks: 2,
			StartWeek:     12,
			Severity:      supply.SeverityHigh,
			EffectData:    map[string]float64{supply.EffectDeliveryDelayAdd: 6},
		},
		{
			Type:          supply.EventVendorBankruptcy,
			VendorID:      "bubble-barons",
			Description:   "bubble-barons has gone out of business",
			DurationWeeks: supply.PermanentDuration,
			StartWeek:     5,
			Severity:      supply.SeverityCritical,
			EffectData:    map[string]float64{supply.EffectAvailable: 0},
		},
	}
	require.NoError(t, db.SaveEvents(events))

	loaded, err := db.LoadEvents()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.ElementsMatch(t, events, loaded)
}

func TestOrderLedger(t *testing.T) {
	db := openTestDB(t)

	first := vendor.OrderResult{
		OrderID: "ord-1", VendorID: "cleanco", AgentID: "suds-1",
		Week: 1, Success: true, Cost: 15, DeliveryDays: 3,
		QuantityMultiplier: 1, Status: "On Time",
	}
	second := vendor.OrderResult{
		OrderID: "ord-2", VendorID: "ecowash", AgentID: "suds-2",
		Week: 2, Success: false, QuantityMultiplier: 0,
		Status: "Order Failed: Vendor Unavailable",
	}
	require.NoError(t, db.AppendOrder(first))
	require.NoError(t, db.AppendOrder(second))

	orders, err := db.RecentOrders(10)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ord-2", orders[0].OrderID, "newest first")
	assert.Equal(t, "ord-1", orders[1].OrderID)
	assert.True(t, orders[1].Success)
	assert.False(t, orders[0].Success)

	orders, err = db.RecentOrders(1)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetMeta("last_week")
	assert.Error(t, err)

	require.NoError(t, db.SetMeta("last_week", "17"))
	v, err := db.GetMeta("last_week")
	require.NoError(t, err)
	assert.Equal(t, "17", v)

	require.NoError(t, db.SetMeta("last_week", "18"))
	v, err = db.GetMeta("last_week")
	require.NoError(t, err)
	assert.Equal(t, "18", v, "meta keys upsert")
}
