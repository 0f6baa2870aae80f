// Package api provides the HTTP API for observing the vendor market.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jmfarrow/laundrosim/internal/engine"
	"github.com/jmfarrow/laundrosim/internal/persistence"
	"github.com/jmfarrow/laundrosim/internal/trend"
	"github.com/jmfarrow/laundrosim/internal/vendor"
)

// Server serves the market state over HTTP.
type Server struct {
	Vendors  *vendor.Manager
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	ordersLimiter := NewRateLimiter(120, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/vendors", s.handleVendors)
	mux.HandleFunc("/api/v1/vendor/", s.handleVendorDetail)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/orders", RateLimitMiddleware(ordersLimiter, s.handleOrders))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	week := s.Eng.Week
	sentiment := s.Vendors.Sentiment(week)
	writeJSON(w, map[string]any{
		"week":          week,
		"speed":         s.Eng.Speed,
		"running":       s.Eng.Running,
		"vendors":       len(s.Vendors.AllVendors()),
		"active_events": len(s.Vendors.ActiveSupplyChainEvents()),
		"sentiment":     sentiment,
		"market_mood":   trend.Describe(sentiment),
	})
}

func (s *Server) handleVendors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vendors := s.Vendors.AllVendors()
	statuses := make([]vendor.MarketStatus, 0, len(vendors))
	for _, v := range vendors {
		statuses = append(statuses, v.MarketStatus())
	}
	writeJSON(w, statuses)
}

func (s *Server) handleVendorDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/vendor/")
	v := s.Vendors.Vendor(id)
	if v == nil {
		http.Error(w, "vendor not found", http.StatusNotFound)
		return
	}
	writeJSON(w, v.MarketStatus())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type eventEntry struct {
		Type          string             `json:"type"`
		VendorID      string             `json:"vendor_id,omitempty"`
		Description   string             `json:"description"`
		DurationWeeks int                `json:"duration_weeks"`
		StartWeek     int                `json:"start_week"`
		Severity      string             `json:"severity"`
		Effects       map[string]float64 `json:"effects"`
	}

	active := s.Vendors.ActiveSupplyChainEvents()
	entries := make([]eventEntry, 0, len(active))
	for _, ev := range active {
		entries = append(entries, eventEntry{
			Type:          ev.Type.String(),
			VendorID:      ev.VendorID,
			Description:   ev.Description,
			DurationWeeks: ev.DurationWeeks,
			StartWeek:     ev.StartWeek,
			Severity:      ev.Severity.String(),
			Effects:       ev.EffectData,
		})
	}
	writeJSON(w, entries)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		writeJSON(w, []vendor.OrderResult{})
		return
	}

	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	orders, err := s.DB.RecentOrders(limit)
	if err != nil {
		slog.Error("load recent orders", "error", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []vendor.OrderResult{}
	}
	writeJSON(w, orders)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if body.Speed < 0 || body.Speed > 100 {
		http.Error(w, "speed out of range", http.StatusBadRequest)
		return
	}
	s.Eng.Speed = body.Speed
	slog.Info("simulation speed changed", "speed", body.Speed)
	writeJSON(w, map[string]any{"speed": body.Speed})
}

// adminOnly wraps a handler with bearer-token auth. No key = POST disabled.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list; localhost dev servers are
// always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
