// Command laundrosim runs the laundromat-tycoon vendor market simulation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jmfarrow/laundrosim/internal/api"
	"github.com/jmfarrow/laundrosim/internal/engine"
	"github.com/jmfarrow/laundrosim/internal/entropy"
	"github.com/jmfarrow/laundrosim/internal/llm"
	"github.com/jmfarrow/laundrosim/internal/persistence"
	"github.com/jmfarrow/laundrosim/internal/vendor"
)

const metaWeekKey = "last_week"

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	seed := envInt64("LAUNDROSIM_SEED", 42)
	dbPath := envStr("LAUNDROSIM_DB", "data/laundrosim.db")
	apiPort := int(envInt64("LAUNDROSIM_PORT", 8080))
	vendorConfig := envStr("LAUNDROSIM_VENDORS", "")
	adminKey := envStr("LAUNDROSIM_ADMIN_KEY", "")
	agentIDs := splitList(envStr("LAUNDROSIM_AGENTS", "player-1"))

	slog.Info("laundrosim — vendor market simulation", "seed", seed)

	// ── Simulation context ───────────────────────────────────────────
	var ctx *engine.SimulationContext
	if envStr("LAUNDROSIM_LIVE_ENTROPY", "") == "1" {
		ctx = engine.NewLiveContext(seed, entropy.NewClient(envStr("RANDOM_ORG_KEY", "")))
		slog.Info("live entropy enabled (run is not reproducible)")
	} else {
		ctx = engine.NewContext(seed)
	}
	ctx.LLM = llm.NewClient(envStr("ANTHROPIC_API_KEY", ""))
	slog.Info("narrative generation", "enabled", ctx.LLM.Enabled())

	// ── Vendor fleet ─────────────────────────────────────────────────
	profiles := vendor.DefaultProfiles()
	if vendorConfig != "" {
		var err error
		profiles, err = vendor.LoadProfiles(vendorConfig)
		if err != nil {
			slog.Error("vendor config invalid", "error", err)
			os.Exit(1)
		}
	}

	mgr, err := vendor.NewManager(ctx, profiles)
	if err != nil {
		slog.Error("vendor fleet init failed", "error", err)
		os.Exit(1)
	}
	slog.Info("vendor fleet ready", "vendors", len(mgr.AllVendors()))

	// ── Database ─────────────────────────────────────────────────────
	if dir := filepath.Dir(dbPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	var startWeek int
	if db.HasState() {
		slog.Info("found saved state, restoring...")
		if err := db.LoadVendorState(mgr); err != nil {
			slog.Error("failed to restore vendor state", "error", err)
			os.Exit(1)
		}
		events, err := db.LoadEvents()
		if err != nil {
			slog.Error("failed to restore events", "error", err)
			os.Exit(1)
		}
		for _, ev := range events {
			mgr.SupplyChain().Register(ev)
		}
		if weekStr, err := db.GetMeta(metaWeekKey); err == nil {
			if wk, err := strconv.Atoi(weekStr); err == nil {
				startWeek = wk
			}
		}
		slog.Info("state restored", "week", startWeek, "active_events", len(events))
	}

	// ── Engine ───────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Week = startWeek
	eng.OnWeek = func(week int) {
		mgr.UpdateAllMarkets(week)

		for _, msg := range mgr.WeeklyMessages(week, agentIDs) {
			slog.Info("vendor outreach", "vendor", msg.VendorID, "agent", msg.AgentID, "text", msg.Text)
		}

		if err := db.SaveVendors(mgr.AllVendors()); err != nil {
			slog.Error("weekly vendor save failed", "error", err)
		}
		if err := db.SaveEvents(mgr.ActiveSupplyChainEvents()); err != nil {
			slog.Error("weekly event save failed", "error", err)
		}
		if err := db.SetMeta(metaWeekKey, strconv.Itoa(week)); err != nil {
			slog.Error("weekly meta save failed", "error", err)
		}
	}

	// ── HTTP API ─────────────────────────────────────────────────────
	server := &api.Server{
		Vendors:  mgr,
		Eng:      eng,
		DB:       db,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	server.Start()

	// ── Run until signalled ──────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", fmt.Sprint(sig))
		eng.Stop()
	}()

	eng.Run()
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("invalid numeric env var, using default", "key", key, "value", v, "default", def)
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
