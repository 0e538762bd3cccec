package analytics

import (
	"strings"
	"testing"

	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

func TestDropOffPercent(t *testing.T) {
	if got := DropOffPercent(1000, 100); got != 90.0 {
		t.Errorf("DropOffPercent(1000, 100) = %v, want 90.0", got)
	}
	if got := DropOffPercent(0, 100); got != 0 {
		t.Errorf("DropOffPercent(0, 100) = %v, want 0", got)
	}
	if got := DropOffPercent(100, 100); got != 0 {
		t.Errorf("DropOffPercent(100, 100) = %v, want 0", got)
	}
}

func TestGenerateReportNoData(t *testing.T) {
	for _, rep := range []*models.Report{nil, {Error: "file exploded"}} {
		out := GenerateReport(rep, DefaultConfig())
		if out.Error == "" {
			t.Error("expected error marker for unprocessable report")
		}
		if len(out.Insights) != 0 || len(out.Recommendations) != 0 {
			t.Error("no insights or recommendations expected without data")
		}
	}
}

func TestGenerateReportFunnelDropOffRule(t *testing.T) {
	rep := &models.Report{
		Kind: models.KindCampaign,
		Funnel: map[string]int64{
			"impressions": 1000,
			"clicks":      100,
			"conversions": 50,
		},
		ConversionRates: map[string]float64{},
	}
	out := GenerateReport(rep, DefaultConfig())

	if out.Summary.Funnel == nil {
		t.Fatal("funnel summary missing")
	}
	if got := out.Summary.Funnel.DropOffs[0].Percent; got != 90.0 {
		t.Errorf("first drop-off = %v, want 90.0", got)
	}

	found := false
	for _, in := range out.Insights {
		if in.Type == InsightWarning && strings.Contains(in.Message, "drop-off") {
			found = true
		}
	}
	if !found {
		t.Errorf("90%% drop-off should raise a warning insight")
	}
	foundRec := false
	for _, r := range out.Recommendations {
		if r.Priority == PriorityHigh && strings.Contains(r.Message, "Optimize the transition") {
			foundRec = true
		}
	}
	if !foundRec {
		t.Errorf("90%% drop-off should raise a high-priority recommendation")
	}
}

func insightsReport() *models.Report {
	return &models.Report{
		Kind: models.KindCampaign,
		Funnel: map[string]int64{
			"impressions": 1000, "clicks": 100, "conversions": 50,
		},
		ConversionRates: map[string]float64{
			"click_through_rate": 10, "conversion_rate": 5, "roi": 120,
		},
		CampaignPerformance: []models.PerformanceRow{
			{Campaign: "Star", ROI: 210, ConversionRate: 6, AcquisitionCost: 20},
			{Campaign: "Solid", ROI: 160, ConversionRate: 5, AcquisitionCost: 25},
			{Campaign: "Mid", ROI: 120, ConversionRate: 4, AcquisitionCost: 30},
			{Campaign: "Weak", ROI: 60, ConversionRate: 2, AcquisitionCost: 45},
		},
		ChannelPerformance: []models.PerformanceRow{
			{Channel: "email", ROI: 150, ConversionRate: 8, AcquisitionCost: 10},
			{Channel: "social", ROI: 110, ConversionRate: 4, AcquisitionCost: 30},
			{Channel: "display", ROI: 70, ConversionRate: 1, AcquisitionCost: 90},
		},
	}
}

func TestGenerateReportCampaignRules(t *testing.T) {
	out := GenerateReport(insightsReport(), DefaultConfig())

	var successes, warnings []string
	for _, in := range out.Insights {
		if strings.Contains(in.Message, "Campaign") {
			switch in.Type {
			case InsightSuccess:
				successes = append(successes, in.Message)
			case InsightWarning:
				warnings = append(warnings, in.Message)
			}
		}
	}
	// Star and Solid exceed 150; Mid at 120 does not.
	if len(successes) != 2 {
		t.Errorf("campaign success insights = %d, want 2: %v", len(successes), successes)
	}
	// Only Weak is under 100.
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Weak") {
		t.Errorf("campaign warning insights = %v, want one naming Weak", warnings)
	}

	if got := out.Summary.Campaigns.Top[0]; got != "Star" {
		t.Errorf("top campaign = %q, want Star", got)
	}
	if got := out.Summary.Campaigns.Bottom[len(out.Summary.Campaigns.Bottom)-1]; got != "Weak" {
		t.Errorf("bottom campaign = %q, want Weak", got)
	}
}

func TestGenerateReportChannelRules(t *testing.T) {
	out := GenerateReport(insightsReport(), DefaultConfig())
	cs := out.Summary.Channels
	if cs == nil {
		t.Fatal("channel summary missing")
	}

	// email: 8/10 = 0.8 is the best efficiency score.
	if cs.MostEfficient[0] != "email" {
		t.Errorf("most efficient = %q, want email", cs.MostEfficient[0])
	}
	// display at 90 exceeds 1.5x the 43.33 average.
	foundCAC := false
	for _, in := range out.Insights {
		if in.Type == InsightWarning && strings.Contains(in.Message, "display") {
			foundCAC = true
		}
	}
	if !foundCAC {
		t.Error("expensive channel should raise an acquisition-cost warning")
	}
}

func TestGenerateReportRuleOrdering(t *testing.T) {
	out := GenerateReport(insightsReport(), DefaultConfig())

	// Campaign insights, then channel, then funnel drop-offs, then cross.
	positions := map[string]int{}
	for i, in := range out.Insights {
		switch {
		case strings.Contains(in.Message, "Campaign") && positions["campaign"] == 0:
			positions["campaign"] = i + 1
		case strings.Contains(in.Message, "Channel") && positions["channel"] == 0:
			positions["channel"] = i + 1
		case strings.Contains(in.Message, "drop-off") && positions["dropoff"] == 0:
			positions["dropoff"] = i + 1
		case strings.Contains(in.Message, "Cross-analysis") && positions["cross"] == 0:
			positions["cross"] = i + 1
		}
	}
	for _, key := range []string{"campaign", "channel", "dropoff", "cross"} {
		if positions[key] == 0 {
			t.Fatalf("missing %s insight: %v", key, positions)
		}
	}
	if !(positions["campaign"] < positions["channel"] &&
		positions["channel"] < positions["dropoff"] &&
		positions["dropoff"] < positions["cross"]) {
		t.Errorf("insight ordering broken: %v", positions)
	}

	// Recommendations follow the same rule order: the drop-off fix lands
	// between the channel advice and the cross-analysis alignment.
	recPositions := map[string]int{}
	for i, rec := range out.Recommendations {
		switch {
		case strings.Contains(rec.Message, "Optimize the transition") && recPositions["dropoff"] == 0:
			recPositions["dropoff"] = i + 1
		case strings.Contains(rec.Message, "Align campaign budgets") && recPositions["align"] == 0:
			recPositions["align"] = i + 1
		}
	}
	if recPositions["dropoff"] == 0 || recPositions["align"] == 0 ||
		recPositions["dropoff"] >= recPositions["align"] {
		t.Errorf("recommendation ordering broken: %v", recPositions)
	}

	last := out.Recommendations[len(out.Recommendations)-1]
	if !strings.Contains(last.Message, "A/B tests") {
		t.Errorf("final recommendation = %q, want the A/B testing one", last.Message)
	}
}

func TestGenerateReportEventKindBenchmarks(t *testing.T) {
	rep := &models.Report{
		Kind:   models.KindEvents,
		Funnel: map[string]int64{models.EventPageView: 100, models.EventSignup: 50, models.EventPurchase: 20},
		ConversionRates: map[string]float64{
			"signup_rate": 50, "purchase_rate": 40, "overall_conversion": 20,
		},
	}
	out := GenerateReport(rep, DefaultConfig())

	for _, m := range out.Summary.Funnel.Metrics {
		if m.Status != "above_benchmark" {
			t.Errorf("metric %s status = %q, want above_benchmark", m.Name, m.Status)
		}
	}
	if out.Summary.Funnel.Stages[0].Name != "Page Views" {
		t.Errorf("first stage = %q, want Page Views", out.Summary.Funnel.Stages[0].Name)
	}
}
