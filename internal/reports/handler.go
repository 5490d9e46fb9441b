package reports

import (
	"context"

	"github.com/gin-gonic/gin"

	"medspa_crm_backend/internal/reports/timerange"
	"medspa_crm_backend/platform/httpkit"
)

// RevenueResponse is the total revenue over the window.
type RevenueResponse struct {
	TotalCents int64   `json:"totalCents"`
	Total      float64 `json:"total"`
}

// ConversionsResponse counts the funnel events over the window.
type ConversionsResponse struct {
	ConsultBooked int `json:"consultBooked"`
	ConsultShow   int `json:"consultShow"`
	InvoicePaid   int `json:"invoicePaid"`
}

// CampaignRow is one per-campaign revenue row. Roas is null when the
// campaign has no recorded spend.
type CampaignRow struct {
	CampaignID   string   `json:"campaignId"`
	CampaignName string   `json:"campaignName"`
	SpendCents   int64    `json:"spendCents"`
	Spend        float64  `json:"spend"`
	RevenueCents int64    `json:"revenueCents"`
	Revenue      float64  `json:"revenue"`
	Roas         *float64 `json:"roas"`
}

// DailyRow is one per-UTC-day revenue bucket.
type DailyRow struct {
	Date         string  `json:"date"`
	RevenueCents int64   `json:"revenueCents"`
	Revenue      float64 `json:"revenue"`
}

func toCampaignRow(row CampaignRevenue) CampaignRow {
	out := CampaignRow{
		CampaignID:   row.CampaignID,
		CampaignName: row.CampaignName,
		SpendCents:   row.SpendCents,
		Spend:        float64(row.SpendCents) / 100,
		RevenueCents: row.RevenueCents,
		Revenue:      float64(row.RevenueCents) / 100,
	}
	if row.SpendCents > 0 {
		roas := float64(row.RevenueCents) / float64(row.SpendCents)
		out.Roas = &roas
	}
	return out
}

type queryRunner interface {
	RevenueCents(ctx context.Context, b timerange.Bounds) (int64, error)
	Conversions(ctx context.Context, b timerange.Bounds) (ConversionCounts, error)
	RevenueByCampaign(ctx context.Context, b timerange.Bounds) ([]CampaignRevenue, error)
	RevenueDaily(ctx context.Context, b timerange.Bounds) ([]DailyRevenue, error)
}

// Handler exposes the revenue reporting endpoints.
type Handler struct {
	repo queryRunner
}

// NewHandler creates a new reports handler.
func NewHandler(repo queryRunner) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) parseBounds(c *gin.Context) (timerange.Bounds, bool) {
	bounds, err := timerange.ParseOpen(c.Query("from"), c.Query("to"))
	if err != nil {
		httpkit.HandleError(c, err)
		return timerange.Bounds{}, false
	}
	return bounds, true
}

func (h *Handler) Revenue(c *gin.Context) {
	bounds, ok := h.parseBounds(c)
	if !ok {
		return
	}

	cents, err := h.repo.RevenueCents(c.Request.Context(), bounds)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, RevenueResponse{TotalCents: cents, Total: float64(cents) / 100})
}

func (h *Handler) Conversions(c *gin.Context) {
	bounds, ok := h.parseBounds(c)
	if !ok {
		return
	}

	counts, err := h.repo.Conversions(c.Request.Context(), bounds)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, ConversionsResponse{
		ConsultBooked: counts.ConsultBooked,
		ConsultShow:   counts.ConsultShow,
		InvoicePaid:   counts.InvoicePaid,
	})
}

func (h *Handler) ByCampaign(c *gin.Context) {
	bounds, ok := h.parseBounds(c)
	if !ok {
		return
	}

	rows, err := h.repo.RevenueByCampaign(c.Request.Context(), bounds)
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]CampaignRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, toCampaignRow(row))
	}

	httpkit.OK(c, result)
}

func (h *Handler) RevenueDaily(c *gin.Context) {
	bounds, ok := h.parseBounds(c)
	if !ok {
		return
	}

	rows, err := h.repo.RevenueDaily(c.Request.Context(), bounds)
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]DailyRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, DailyRow{
			Date:         row.Day.UTC().Format("2006-01-02"),
			RevenueCents: row.RevenueCents,
			Revenue:      float64(row.RevenueCents) / 100,
		})
	}

	httpkit.OK(c, result)
}
