package models

import "time"

// InputKind identifies which CSV schema an upload carries.
type InputKind string

const (
	KindCampaign InputKind = "campaign"
	KindEvents   InputKind = "events"
	KindCosts    InputKind = "costs"
)

// Valid event types for the events input kind.
const (
	EventPageView = "page_view"
	EventSignup   = "signup"
	EventPurchase = "purchase"
)

// CampaignRecord is one cleaned row of a campaign upload. Clicks and
// impressions are clamped at zero; ConversionRate is a fraction in 0..1.
// Source data may violate clicks <= impressions and that is tolerated.
type CampaignRecord struct {
	CampaignID      string
	Company         string
	CampaignType    string
	Channel         string
	ConversionRate  float64
	AcquisitionCost float64
	ROI             float64
	// ROIMissing is set when the source file carries no roi column; the
	// aggregator then derives a proxy ROI per dimension.
	ROIMissing  bool
	Clicks      int64
	Impressions int64
	// Date is the zero value when the source cell was unparsable.
	Date           time.Time
	TargetAudience string
}

// EventRecord is one cleaned row of an events upload.
type EventRecord struct {
	UserID    string
	EventType string
	Campaign  string
	Channel   string
	// Timestamp is the zero value when the source cell was unparsable.
	Timestamp time.Time
}

// CostRate holds operator-supplied cost rates for one campaign/channel pair.
// CPM is the cost per thousand impressions.
type CostRate struct {
	Campaign string  `json:"campaign"`
	Channel  string  `json:"channel"`
	CPC      float64 `json:"cpc"`
	CPM      float64 `json:"cpm"`
}
