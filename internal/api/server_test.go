package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmfarrow/laundrosim/internal/engine"
	"github.com/jmfarrow/laundrosim/internal/vendor"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	mgr, err := vendor.NewManager(engine.NewContext(1), vendor.DefaultProfiles())
	require.NoError(t, err)
	eng := engine.NewEngine()
	eng.Week = 5
	return &Server{Vendors: mgr, Eng: eng, AdminKey: "secret"}
}

func TestHandleStatus(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(5), body["week"])
	assert.Equal(t, float64(4), body["vendors"])
	assert.NotEmpty(t, body["market_mood"])
}

func TestHandleVendors(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.handleVendors(rec, httptest.NewRequest(http.MethodGet, "/api/v1/vendors", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var statuses []vendor.MarketStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statuses))
	require.Len(t, statuses, 4)
	assert.Equal(t, "bubble-barons", statuses[0].VendorID)
}

func TestHandleVendorDetail(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	s.handleVendorDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/vendor/cleanco", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st vendor.MarketStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "CleanCo Wholesale", st.VendorName)

	rec = httptest.NewRecorder()
	s.handleVendorDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/vendor/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminAuth(t *testing.T) {
	s := testServer(t)
	handler := s.adminOnly(s.handleSpeed)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 2}`))
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 2}`))
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, s.Eng.Speed)

	// No key configured → POST disabled entirely.
	s.AdminKey = ""
	req = httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 1}`))
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "limits are per IP")
}
