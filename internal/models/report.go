package models

import "time"

// Cost provenance markers. Measured values come from an uploaded cost
// table; estimated values are derived from calibration constants and must
// stay distinguishable downstream.
const (
	CostBasisMeasured  = "measured"
	CostBasisEstimated = "estimated"
)

// PerformanceRow aggregates campaign-kind rows for one dimension value
// (company, channel, campaign type or audience). Rate fields are percents.
type PerformanceRow struct {
	Campaign string `json:"campaign,omitempty"`
	Channel  string `json:"channel,omitempty"`
	Type     string `json:"type,omitempty"`
	Audience string `json:"audience,omitempty"`

	Impressions     int64   `json:"impressions"`
	Clicks          int64   `json:"clicks"`
	ConversionRate  float64 `json:"conversion_rate"`
	ROI             float64 `json:"roi"`
	AcquisitionCost float64 `json:"acquisition_cost"`
	Records         int64   `json:"records"`
}

// EventPerformanceRow aggregates events-kind rows for one campaign or
// channel. Rate fields are percents.
type EventPerformanceRow struct {
	Campaign string `json:"campaign,omitempty"`
	Channel  string `json:"channel,omitempty"`

	Views     int64 `json:"views"`
	Signups   int64 `json:"signups"`
	Purchases int64 `json:"purchases"`

	SignupRate   float64 `json:"signup_rate"`
	PurchaseRate float64 `json:"purchase_rate"`
	ROI          float64 `json:"roi"`

	// Economics, populated by the enhancement pass. Cost is the total
	// spend for the row; AcquisitionCost is per purchase.
	Cost            float64 `json:"cost,omitempty"`
	AcquisitionCost float64 `json:"acquisition_cost,omitempty"`
	Revenue         float64 `json:"revenue,omitempty"`
	Profit          float64 `json:"profit,omitempty"`
	ROAS            float64 `json:"roas,omitempty"`
	CostBasis       string  `json:"cost_basis,omitempty"`
}

// CACEntry is the customer-acquisition-cost line for one campaign/channel
// pair. CAC is nil when there are no acquisitions: "no data" must never
// read as "free".
type CACEntry struct {
	Campaign     string `json:"campaign"`
	Channel      string `json:"channel"`
	CampaignType string `json:"campaign_type,omitempty"`

	Acquisitions int64    `json:"acquisitions"`
	Clicks       int64    `json:"clicks"`
	Impressions  int64    `json:"impressions"`
	TotalCost    float64  `json:"total_cost"`
	CAC          *float64 `json:"cac"`

	CTR       float64 `json:"ctr,omitempty"`
	ROI       float64 `json:"roi,omitempty"`
	CostBasis string  `json:"cost_basis,omitempty"`
}

// Report is the processed dashboard document. It is built fresh on every
// upload, cached whole and never mutated afterwards; a new upload replaces
// it entirely. Exactly one family of performance sections is populated
// depending on Kind.
type Report struct {
	Kind        InputKind `json:"kind"`
	Key         string    `json:"key,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        int64     `json:"rows"`

	Funnel          map[string]int64   `json:"funnel,omitempty"`
	ConversionRates map[string]float64 `json:"conversion_rates,omitempty"`

	CampaignPerformance     []PerformanceRow `json:"campaign_performance,omitempty"`
	ChannelPerformance      []PerformanceRow `json:"channel_performance,omitempty"`
	CampaignTypePerformance []PerformanceRow `json:"campaign_type_performance,omitempty"`
	AudiencePerformance     []PerformanceRow `json:"audience_performance,omitempty"`

	EventCampaigns []EventPerformanceRow `json:"event_campaign_performance,omitempty"`
	EventChannels  []EventPerformanceRow `json:"event_channel_performance,omitempty"`

	CAC         []CACEntry `json:"cac,omitempty"`
	EnhancedCAC []CACEntry `json:"enhanced_cac,omitempty"`

	// Error carries file-level processing failures in the same shape as a
	// successful report so callers can uniformly check one key.
	Error string `json:"error,omitempty"`
}

// Insight is a human-readable observation derived from a report.
type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Recommendation is an advisory action derived from a report.
type Recommendation struct {
	Priority string `json:"priority"`
	Message  string `json:"message"`
}
