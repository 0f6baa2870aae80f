// Package persistence provides SQLite-based simulation state storage:
// vendor state, the active supply-chain event set, the order ledger, and
// simulation metadata.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jmfarrow/laundrosim/internal/supply"
	"github.com/jmfarrow/laundrosim/internal/vendor"
)

// DB wraps a SQLite connection for simulation state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vendors (
		id TEXT PRIMARY KEY,
		tier INTEGER NOT NULL,
		weeks_consistent INTEGER NOT NULL,
		total_spend REAL NOT NULL,
		exclusive_contract INTEGER NOT NULL,
		last_delivery_status TEXT NOT NULL,
		relationships_json TEXT NOT NULL,
		discounts_json TEXT NOT NULL,
		multipliers_json TEXT NOT NULL,
		special_offer_json TEXT
	);

	CREATE TABLE IF NOT EXISTS supply_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		vendor_id TEXT,
		description TEXT NOT NULL,
		duration_weeks INTEGER NOT NULL,
		start_week INTEGER NOT NULL,
		severity TEXT NOT NULL,
		effects_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL,
		agent_id TEXT,
		week INTEGER NOT NULL,
		success INTEGER NOT NULL,
		cost REAL NOT NULL,
		delivery_days INTEGER NOT NULL,
		quantity_multiplier REAL NOT NULL,
		defective_rate REAL NOT NULL,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sim_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_week ON orders(week);
	CREATE INDEX IF NOT EXISTS idx_orders_vendor ON orders(vendor_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveVendors writes the fleet's mutable state (full replace).
func (db *DB) SaveVendors(vendors []*vendor.Vendor) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM vendors"); err != nil {
		return err
	}

	for _, v := range vendors {
		rels, err := json.Marshal(v.RelationshipScores)
		if err != nil {
			return fmt.Errorf("marshal relationships for %s: %w", v.Profile.ID, err)
		}
		discounts, err := json.Marshal(v.NegotiatedDiscount)
		if err != nil {
			return fmt.Errorf("marshal discounts for %s: %w", v.Profile.ID, err)
		}
		mults, err := json.Marshal(v.CurrentMultipliers)
		if err != nil {
			return fmt.Errorf("marshal multipliers for %s: %w", v.Profile.ID, err)
		}
		var offer any
		if v.SpecialOffer != nil {
			b, err := json.Marshal(v.SpecialOffer)
			if err != nil {
				return fmt.Errorf("marshal special offer for %s: %w", v.Profile.ID, err)
			}
			offer = string(b)
		}

		_, err = tx.Exec(`INSERT INTO vendors
			(id, tier, weeks_consistent, total_spend, exclusive_contract,
			 last_delivery_status, relationships_json, discounts_json,
			 multipliers_json, special_offer_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.Profile.ID, int(v.Tier), v.WeeksConsistent, v.TotalSpend,
			boolToInt(v.ExclusiveContract), v.LastDeliveryStatus,
			string(rels), string(discounts), string(mults), offer)
		if err != nil {
			return fmt.Errorf("insert vendor %s: %w", v.Profile.ID, err)
		}
	}

	return tx.Commit()
}

// LoadVendorState restores saved mutable state onto an already-constructed
// fleet. Vendors present in the DB but not the fleet are ignored.
func (db *DB) LoadVendorState(mgr *vendor.Manager) error {
	rows, err := db.conn.Queryx(`SELECT id, tier, weeks_consistent, total_spend,
		exclusive_contract, last_delivery_status, relationships_json,
		discounts_json, multipliers_json, special_offer_json FROM vendors`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, status, rels, discounts, mults string
			tier, weeks, exclusive             int
			spend                              float64
			offer                              sql.NullString
		)
		if err := rows.Scan(&id, &tier, &weeks, &spend, &exclusive, &status,
			&rels, &discounts, &mults, &offer); err != nil {
			return err
		}

		v := mgr.Vendor(id)
		if v == nil {
			continue
		}

		v.Tier = vendor.Tier(tier)
		v.WeeksConsistent = weeks
		v.TotalSpend = spend
		v.ExclusiveContract = exclusive != 0
		v.LastDeliveryStatus = status
		if err := json.Unmarshal([]byte(rels), &v.RelationshipScores); err != nil {
			return fmt.Errorf("vendor %s relationships: %w", id, err)
		}
		if err := json.Unmarshal([]byte(discounts), &v.NegotiatedDiscount); err != nil {
			return fmt.Errorf("vendor %s discounts: %w", id, err)
		}
		if err := json.Unmarshal([]byte(mults), &v.CurrentMultipliers); err != nil {
			return fmt.Errorf("vendor %s multipliers: %w", id, err)
		}
		if offer.Valid {
			var so vendor.SpecialOffer
			if err := json.Unmarshal([]byte(offer.String), &so); err != nil {
				return fmt.Errorf("vendor %s special offer: %w", id, err)
			}
			v.SpecialOffer = &so
		}
	}
	return rows.Err()
}

// SaveEvents writes the active supply-chain event set (full replace).
func (db *DB) SaveEvents(events []supply.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM supply_events"); err != nil {
		return err
	}

	for _, ev := range events {
		effects, err := json.Marshal(ev.EffectData)
		if err != nil {
			return fmt.Errorf("marshal event effects: %w", err)
		}
		_, err = tx.Exec(`INSERT INTO supply_events
			(type, vendor_id, description, duration_weeks, start_week, severity, effects_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ev.Type.String(), ev.VendorID, ev.Description,
			ev.DurationWeeks, ev.StartWeek, ev.Severity.String(), string(effects))
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit()
}

// LoadEvents reads the saved active event set back out. Unparseable rows
// are skipped rather than failing the whole restore.
func (db *DB) LoadEvents() ([]supply.Event, error) {
	rows, err := db.conn.Queryx(`SELECT type, vendor_id, description,
		duration_weeks, start_week, severity, effects_json FROM supply_events`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []supply.Event
	for rows.Next() {
		var (
			typeName, sevName, desc, effects string
			vendorID                         sql.NullString
			duration, start                  int
		)
		if err := rows.Scan(&typeName, &vendorID, &desc, &duration, &start, &sevName, &effects); err != nil {
			return nil, err
		}

		t, ok := supply.EventTypeFromString(typeName)
		if !ok {
			continue
		}
		sev, ok := supply.SeverityFromString(sevName)
		if !ok {
			continue
		}

		ev := supply.Event{
			Type:          t,
			VendorID:      vendorID.String,
			Description:   desc,
			DurationWeeks: duration,
			StartWeek:     start,
			Severity:      sev,
		}
		if err := json.Unmarshal([]byte(effects), &ev.EffectData); err != nil {
			return nil, fmt.Errorf("event effects: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// AppendOrder records one order outcome in the ledger.
func (db *DB) AppendOrder(res vendor.OrderResult) error {
	_, err := db.conn.Exec(`INSERT INTO orders
		(id, vendor_id, agent_id, week, success, cost, delivery_days,
		 quantity_multiplier, defective_rate, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.OrderID, res.VendorID, res.AgentID, res.Week,
		boolToInt(res.Success), res.Cost, res.DeliveryDays,
		res.QuantityMultiplier, res.DefectiveRate, res.Status)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", res.OrderID, err)
	}
	return nil
}

// RecentOrders returns the most recent n orders, newest first.
func (db *DB) RecentOrders(n int) ([]vendor.OrderResult, error) {
	rows, err := db.conn.Queryx(`SELECT id, vendor_id, agent_id, week, success,
		cost, delivery_days, quantity_multiplier, defective_rate, status
		FROM orders ORDER BY week DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vendor.OrderResult
	for rows.Next() {
		var (
			res     vendor.OrderResult
			agent   sql.NullString
			success int
		)
		if err := rows.Scan(&res.OrderID, &res.VendorID, &agent, &res.Week,
			&success, &res.Cost, &res.DeliveryDays,
			&res.QuantityMultiplier, &res.DefectiveRate, &res.Status); err != nil {
			return nil, err
		}
		res.AgentID = agent.String
		res.Success = success != 0
		out = append(out, res)
	}
	return out, rows.Err()
}

// SetMeta stores a metadata key (current week, seed).
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO sim_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// GetMeta retrieves a metadata key. Returns sql.ErrNoRows if absent.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM sim_meta WHERE key = ?", key)
	return value, err
}

// HasState reports whether a previous run left saved vendor state.
func (db *DB) HasState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM vendors"); err != nil {
		return false
	}
	return count > 0
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
