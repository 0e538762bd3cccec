package analytics

import (
	"testing"

	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

func eventsFor(campaign, channel string, views, signups, purchases int) []models.EventRecord {
	var out []models.EventRecord
	add := func(eventType string, n int) {
		for i := 0; i < n; i++ {
			out = append(out, models.EventRecord{
				UserID:    "u1",
				EventType: eventType,
				Campaign:  campaign,
				Channel:   channel,
			})
		}
	}
	add(models.EventPageView, views)
	add(models.EventSignup, signups)
	add(models.EventPurchase, purchases)
	return out
}

func TestAggregateEventsFunnelAndRates(t *testing.T) {
	events := eventsFor("summer", "email", 1000, 100, 25)
	rep := AggregateEvents(events, nil, DefaultConfig())

	if rep.Funnel[models.EventPageView] != 1000 || rep.Funnel[models.EventSignup] != 100 || rep.Funnel[models.EventPurchase] != 25 {
		t.Errorf("funnel = %v", rep.Funnel)
	}
	if got := rep.ConversionRates["signup_rate"]; got != 10.0 {
		t.Errorf("signup_rate = %v, want 10.0", got)
	}
	if got := rep.ConversionRates["purchase_rate"]; got != 25.0 {
		t.Errorf("purchase_rate = %v, want 25.0", got)
	}
	if got := rep.ConversionRates["overall_conversion"]; got != 2.5 {
		t.Errorf("overall_conversion = %v, want 2.5", got)
	}
}

func TestAggregateEventsUnknownTypesNotCounted(t *testing.T) {
	events := append(eventsFor("summer", "email", 10, 2, 1),
		models.EventRecord{UserID: "u9", EventType: "refund", Campaign: "summer", Channel: "email"})
	rep := AggregateEvents(events, nil, DefaultConfig())

	if rep.Rows != 14 {
		t.Errorf("Rows = %d, want 14 (unknown rows still counted as input)", rep.Rows)
	}
	var total int64
	for _, n := range rep.Funnel {
		total += n
	}
	if total != 13 {
		t.Errorf("funnel total = %d, want 13 (refund not a stage)", total)
	}
}

func TestAggregateEventsCampaignRanking(t *testing.T) {
	events := append(eventsFor("strong", "email", 100, 50, 25),
		eventsFor("weak", "email", 100, 10, 1)...)
	rep := AggregateEvents(events, nil, DefaultConfig())

	if rep.EventCampaigns[0].Campaign != "strong" {
		t.Errorf("top campaign = %q, want strong", rep.EventCampaigns[0].Campaign)
	}
}

func TestBuildCACTotalCostFormula(t *testing.T) {
	events := eventsFor("summer", "email", 2000, 40, 5)
	costs := []models.CostRate{{Campaign: "summer", Channel: "email", CPC: 0.50, CPM: 2.00}}

	entries := BuildCAC(events, costs)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	e := entries[0]
	// 40 signups * 0.50 + 2000/1000 * 2.00 = 24.00
	if e.TotalCost != 24.0 {
		t.Errorf("TotalCost = %v, want 24.0", e.TotalCost)
	}
	if e.CAC == nil || *e.CAC != 4.8 {
		t.Errorf("CAC = %v, want 4.8", e.CAC)
	}
	if e.CostBasis != models.CostBasisMeasured {
		t.Errorf("CostBasis = %q, want measured", e.CostBasis)
	}
}

func TestBuildCACNilOnZeroAcquisitions(t *testing.T) {
	events := eventsFor("summer", "email", 100, 10, 0)
	costs := []models.CostRate{{Campaign: "summer", Channel: "email", CPC: 1.00, CPM: 5.00}}

	entries := BuildCAC(events, costs)
	if entries[0].CAC != nil {
		t.Errorf("CAC with zero acquisitions = %v, want nil", *entries[0].CAC)
	}
	if entries[0].TotalCost == 0 {
		t.Error("TotalCost should still reflect spend with zero acquisitions")
	}
}

func TestBuildCACOuterJoin(t *testing.T) {
	events := eventsFor("onlyevents", "email", 10, 2, 1)
	costs := []models.CostRate{{Campaign: "onlycosts", Channel: "social", CPC: 1, CPM: 1}}

	entries := BuildCAC(events, costs)
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (outer join)", len(entries))
	}
	if entries[0].Campaign != "onlyevents" || entries[1].Campaign != "onlycosts" {
		t.Errorf("join order = %q, %q", entries[0].Campaign, entries[1].Campaign)
	}
	if entries[0].CostBasis == models.CostBasisMeasured {
		t.Error("pair without a cost row must not be labeled measured")
	}
	if entries[1].Impressions != 0 || entries[1].TotalCost != 0 {
		t.Errorf("cost-only pair = %+v, want zero counts", entries[1])
	}
}

func TestEnhanceBackfillsEstimates(t *testing.T) {
	events := eventsFor("summer", "email", 1000, 100, 0)
	rep := AggregateEvents(events, []models.CostRate{}, DefaultConfig())
	rep.CAC = BuildCAC(events, nil)
	Enhance(rep)

	if len(rep.EnhancedCAC) != 1 {
		t.Fatalf("len(EnhancedCAC) = %d, want 1", len(rep.EnhancedCAC))
	}
	e := rep.EnhancedCAC[0]
	// 100 signups * 0.15 = 15 estimated acquisitions.
	if e.Acquisitions != 15 {
		t.Errorf("estimated acquisitions = %d, want 15", e.Acquisitions)
	}
	// 1000 impressions * 0.05 = 50.00 estimated cost.
	if e.TotalCost != 50.0 {
		t.Errorf("estimated TotalCost = %v, want 50.0", e.TotalCost)
	}
	if e.CostBasis != models.CostBasisEstimated {
		t.Errorf("CostBasis = %q, want estimated", e.CostBasis)
	}
	if e.CAC == nil {
		t.Fatal("estimated CAC should be set once acquisitions are estimated")
	}

	if rep.EventChannels[0].CostBasis != models.CostBasisEstimated {
		t.Errorf("channel CostBasis = %q, want estimated", rep.EventChannels[0].CostBasis)
	}
}

func TestEnhanceKeepsMeasuredLabel(t *testing.T) {
	events := eventsFor("summer", "email", 1000, 100, 20)
	costs := []models.CostRate{{Campaign: "summer", Channel: "email", CPC: 0.25, CPM: 1.00}}
	rep := AggregateEvents(events, costs, DefaultConfig())
	Enhance(rep)

	row := rep.EventChannels[0]
	if row.CostBasis != models.CostBasisMeasured {
		t.Errorf("channel CostBasis = %q, want measured", row.CostBasis)
	}
	// 100 signups * 0.25 + 1000/1000 * 1.00 = 26.00 measured spend.
	if row.Cost != 26.0 {
		t.Errorf("Cost = %v, want 26.0", row.Cost)
	}
	if row.AcquisitionCost != 1.3 {
		t.Errorf("AcquisitionCost = %v, want 1.3 (26 over 20 purchases)", row.AcquisitionCost)
	}
	// 20 purchases * 75 revenue per purchase.
	if row.Revenue != 1500.0 {
		t.Errorf("Revenue = %v, want 1500.0", row.Revenue)
	}
	if row.Profit != 1474.0 {
		t.Errorf("Profit = %v, want 1474.0", row.Profit)
	}
	if row.ROAS != 57.69 {
		t.Errorf("ROAS = %v, want 57.69", row.ROAS)
	}
}
