package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"medspa_crm_backend/internal/reports/timerange"
)

type fakeRunner struct {
	revenueCents int64
	conversions  ConversionCounts
	byCampaign   []CampaignRevenue
	daily        []DailyRevenue

	bounds timerange.Bounds
}

func (f *fakeRunner) RevenueCents(ctx context.Context, b timerange.Bounds) (int64, error) {
	f.bounds = b
	return f.revenueCents, nil
}

func (f *fakeRunner) Conversions(ctx context.Context, b timerange.Bounds) (ConversionCounts, error) {
	f.bounds = b
	return f.conversions, nil
}

func (f *fakeRunner) RevenueByCampaign(ctx context.Context, b timerange.Bounds) ([]CampaignRevenue, error) {
	f.bounds = b
	return f.byCampaign, nil
}

func (f *fakeRunner) RevenueDaily(ctx context.Context, b timerange.Bounds) ([]DailyRevenue, error) {
	f.bounds = b
	return f.daily, nil
}

func newTestRouter(runner *fakeRunner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(runner)
	r.GET("/revenue", h.Revenue)
	r.GET("/conversions", h.Conversions)
	r.GET("/by-campaign", h.ByCampaign)
	r.GET("/revenue/daily", h.RevenueDaily)
	return r
}

func TestRevenueReturnsCentsAndDecimal(t *testing.T) {
	router := newTestRouter(&fakeRunner{revenueCents: 123456})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/revenue", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp RevenueResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.TotalCents != 123456 || resp.Total != 1234.56 {
		t.Errorf("unexpected totals: %+v", resp)
	}
}

func TestRevenueDateBoundsAreEndExclusive(t *testing.T) {
	runner := &fakeRunner{}
	router := newTestRouter(runner)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/revenue?from=2025-09-01&to=2025-09-05", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if runner.bounds.From == nil || !runner.bounds.From.Equal(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected from bound: %v", runner.bounds.From)
	}
	// to=2025-09-05 covers the whole day: upper bound is the next UTC
	// midnight, used exclusively.
	if runner.bounds.To == nil || !runner.bounds.To.Equal(time.Date(2025, 9, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected to bound: %v", runner.bounds.To)
	}
}

func TestRevenueRejectsMalformedDate(t *testing.T) {
	router := newTestRouter(&fakeRunner{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/revenue?from=garbage", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestByCampaignRoasNullWithoutSpend(t *testing.T) {
	runner := &fakeRunner{byCampaign: []CampaignRevenue{
		{CampaignID: "c1", CampaignName: "Summer Botox", SpendCents: 50_000, RevenueCents: 200_000},
		{CampaignID: "unknown", CampaignName: "Unknown", SpendCents: 0, RevenueCents: 80_000},
	}}
	router := newTestRouter(runner)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/by-campaign", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var rows []CampaignRow
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Roas == nil || *rows[0].Roas != 4 {
		t.Errorf("expected roas 4 for funded campaign, got %v", rows[0].Roas)
	}
	if rows[1].Roas != nil {
		t.Errorf("expected null roas without spend, got %v", *rows[1].Roas)
	}
}

func TestRevenueDailyFormatsDays(t *testing.T) {
	runner := &fakeRunner{daily: []DailyRevenue{
		{Day: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), RevenueCents: 10_000},
		{Day: time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC), RevenueCents: 25_050},
	}}
	router := newTestRouter(runner)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/revenue/daily", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var rows []DailyRow
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Date != "2025-09-01" || rows[1].Revenue != 250.50 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}
