package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

// Insight and recommendation classifications.
const (
	InsightSuccess = "success"
	InsightWarning = "warning"
	InsightInfo    = "info"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// Performance benchmarks the summary metrics are judged against.
const (
	benchmarkCTR            = 2.0
	benchmarkConversionRate = 3.0
	benchmarkROI            = 100.0
	benchmarkSignupRate     = 10.0
	benchmarkPurchaseRate   = 25.0
	benchmarkOverallRate    = 2.5

	roiSuccessThreshold = 150.0
	roiWarningThreshold = 100.0
	cacWarningFactor    = 1.5
	dropOffThreshold    = 70.0
)

// FunnelStage is one named stage with its raw count.
type FunnelStage struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// DropOff describes the loss between two adjacent funnel stages.
type DropOff struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Percent float64 `json:"percent"`
}

// BenchmarkMetric is a summary rate judged against its benchmark.
type BenchmarkMetric struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Benchmark float64 `json:"benchmark"`
	Status    string  `json:"status"`
}

// FunnelSummary is the funnel section of the insight report.
type FunnelSummary struct {
	Stages   []FunnelStage     `json:"stages"`
	DropOffs []DropOff         `json:"drop_offs"`
	Metrics  []BenchmarkMetric `json:"metrics"`
}

// GroupSummary summarizes campaign-level performance.
type GroupSummary struct {
	Count                 int      `json:"count"`
	AverageROI            float64  `json:"average_roi"`
	AverageConversionRate float64  `json:"average_conversion_rate"`
	Top                   []string `json:"top"`
	Bottom                []string `json:"bottom"`
}

// ChannelSummary summarizes channel-level performance and efficiency.
type ChannelSummary struct {
	Count                  int      `json:"count"`
	AverageROI             float64  `json:"average_roi"`
	AverageConversionRate  float64  `json:"average_conversion_rate"`
	AverageAcquisitionCost float64  `json:"average_acquisition_cost"`
	TopROI                 []string `json:"top_roi"`
	BottomROI              []string `json:"bottom_roi"`
	LowestCAC              []string `json:"lowest_cac"`
	HighestCAC             []string `json:"highest_cac"`
	MostEfficient          []string `json:"most_efficient"`
}

// Summary is the analytical digest of a processed report.
type Summary struct {
	Funnel    *FunnelSummary  `json:"funnel,omitempty"`
	Campaigns *GroupSummary   `json:"campaigns,omitempty"`
	Channels  *ChannelSummary `json:"channels,omitempty"`
}

// InsightReport is the full generated analysis document.
type InsightReport struct {
	GeneratedAt     time.Time               `json:"generated_at"`
	Summary         Summary                 `json:"summary"`
	Insights        []models.Insight        `json:"insights"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Error           string                  `json:"error,omitempty"`
}

// DropOffPercent is the percentage lost between two adjacent funnel
// stages; an empty upstream stage reads as no drop-off.
func DropOffPercent(from, to int64) float64 {
	if from <= 0 {
		return 0
	}
	return round2((1 - float64(to)/float64(from)) * 100)
}

// GenerateReport analyzes a processed report into insights and
// recommendations. The rule evaluation order is fixed: it is the ordering
// contract for both output lists.
func GenerateReport(rep *models.Report, cfg Config) *InsightReport {
	out := &InsightReport{GeneratedAt: time.Now().UTC()}
	if rep == nil || rep.Error != "" {
		out.Error = "No processed data available"
		return out
	}

	// The summaries are computed up front; findings are appended in rule
	// order: campaigns, channels, funnel drop-offs, then the overall rules.
	out.Summary.Funnel = funnelSummary(rep)
	out.Summary.Campaigns = analyzeCampaigns(rep, cfg, out)
	out.Summary.Channels = analyzeChannels(rep, cfg, out)
	emitDropOffFindings(out.Summary.Funnel, out)

	if out.Summary.Campaigns != nil && out.Summary.Channels != nil {
		out.Insights = append(out.Insights, models.Insight{
			Type:    InsightInfo,
			Message: "Cross-analysis available: compare campaign ROI against channel efficiency to find mismatched spend",
		})
		out.Recommendations = append(out.Recommendations, models.Recommendation{
			Priority: PriorityMedium,
			Message:  "Align campaign budgets with the channels that convert them most efficiently",
		})
		out.Recommendations = append(out.Recommendations, models.Recommendation{
			Priority: PriorityHigh,
			Message:  "Reallocate budget from bottom performers to proven campaign/channel combinations",
		})
	}
	out.Recommendations = append(out.Recommendations, models.Recommendation{
		Priority: PriorityMedium,
		Message:  "Run A/B tests on creatives and landing pages to lift conversion rates",
	})
	return out
}

// funnelStageNames returns the ordered stage keys and display names for a
// report kind.
func funnelStageNames(kind models.InputKind) ([]string, []string) {
	if kind == models.KindEvents {
		return []string{models.EventPageView, models.EventSignup, models.EventPurchase},
			[]string{"Page Views", "Signups", "Purchases"}
	}
	return []string{"impressions", "clicks", "conversions"},
		[]string{"Impressions", "Clicks", "Conversions"}
}

func funnelSummary(rep *models.Report) *FunnelSummary {
	if len(rep.Funnel) == 0 {
		return nil
	}
	keys, names := funnelStageNames(rep.Kind)

	fs := &FunnelSummary{}
	for i, key := range keys {
		fs.Stages = append(fs.Stages, FunnelStage{Name: names[i], Count: rep.Funnel[key]})
	}
	for i := 1; i < len(keys); i++ {
		pct := DropOffPercent(rep.Funnel[keys[i-1]], rep.Funnel[keys[i]])
		fs.DropOffs = append(fs.DropOffs, DropOff{From: names[i-1], To: names[i], Percent: pct})
	}
	fs.Metrics = benchmarkMetrics(rep)
	return fs
}

func emitDropOffFindings(fs *FunnelSummary, out *InsightReport) {
	if fs == nil {
		return
	}
	for _, d := range fs.DropOffs {
		if d.Percent > dropOffThreshold {
			out.Insights = append(out.Insights, models.Insight{
				Type:    InsightWarning,
				Message: fmt.Sprintf("High drop-off of %.1f%% between %s and %s", d.Percent, d.From, d.To),
			})
			out.Recommendations = append(out.Recommendations, models.Recommendation{
				Priority: PriorityHigh,
				Message:  fmt.Sprintf("Optimize the transition from %s to %s to reduce the %.1f%% drop-off", d.From, d.To, d.Percent),
			})
		}
	}
}

func benchmarkMetrics(rep *models.Report) []BenchmarkMetric {
	type spec struct {
		key, name string
		benchmark float64
	}
	var specs []spec
	if rep.Kind == models.KindEvents {
		specs = []spec{
			{"signup_rate", "Signup Rate", benchmarkSignupRate},
			{"purchase_rate", "Purchase Rate", benchmarkPurchaseRate},
			{"overall_conversion", "Overall Conversion", benchmarkOverallRate},
		}
	} else {
		specs = []spec{
			{"click_through_rate", "Click-Through Rate", benchmarkCTR},
			{"conversion_rate", "Conversion Rate", benchmarkConversionRate},
			{"roi", "ROI", benchmarkROI},
		}
	}

	metrics := make([]BenchmarkMetric, 0, len(specs))
	for _, s := range specs {
		value := rep.ConversionRates[s.key]
		status := "below_benchmark"
		if value >= s.benchmark {
			status = "above_benchmark"
		}
		metrics = append(metrics, BenchmarkMetric{Name: s.name, Value: value, Benchmark: s.benchmark, Status: status})
	}
	return metrics
}

// perfItem flattens either report shape into the fields the rules need.
type perfItem struct {
	name            string
	roi             float64
	conversionRate  float64
	acquisitionCost float64
}

func campaignItems(rep *models.Report) []perfItem {
	if rep.Kind == models.KindEvents {
		items := make([]perfItem, 0, len(rep.EventCampaigns))
		for _, r := range rep.EventCampaigns {
			items = append(items, perfItem{name: r.Campaign, roi: r.ROI, conversionRate: r.PurchaseRate, acquisitionCost: r.AcquisitionCost})
		}
		return items
	}
	items := make([]perfItem, 0, len(rep.CampaignPerformance))
	for _, r := range rep.CampaignPerformance {
		items = append(items, perfItem{name: r.Campaign, roi: r.ROI, conversionRate: r.ConversionRate, acquisitionCost: r.AcquisitionCost})
	}
	return items
}

func channelItems(rep *models.Report) []perfItem {
	if rep.Kind == models.KindEvents {
		items := make([]perfItem, 0, len(rep.EventChannels))
		for _, r := range rep.EventChannels {
			items = append(items, perfItem{name: r.Channel, roi: r.ROI, conversionRate: r.PurchaseRate, acquisitionCost: r.AcquisitionCost})
		}
		return items
	}
	items := make([]perfItem, 0, len(rep.ChannelPerformance))
	for _, r := range rep.ChannelPerformance {
		items = append(items, perfItem{name: r.Channel, roi: r.ROI, conversionRate: r.ConversionRate, acquisitionCost: r.AcquisitionCost})
	}
	return items
}

func analyzeCampaigns(rep *models.Report, cfg Config, out *InsightReport) *GroupSummary {
	items := campaignItems(rep)
	if len(items) == 0 {
		return nil
	}

	byROI := sortedBy(items, func(a, b perfItem) bool { return a.roi > b.roi })
	top := firstN(byROI, cfg.TopCampaigns)
	bottom := lastN(byROI, cfg.TopCampaigns)

	gs := &GroupSummary{
		Count:                 len(items),
		AverageROI:            averageOf(items, func(it perfItem) float64 { return it.roi }),
		AverageConversionRate: averageOf(items, func(it perfItem) float64 { return it.conversionRate }),
		Top:                   names(top),
		Bottom:                names(bottom),
	}

	for _, it := range top {
		if it.roi > roiSuccessThreshold {
			out.Insights = append(out.Insights, models.Insight{
				Type:    InsightSuccess,
				Message: fmt.Sprintf("Campaign %q is performing exceptionally with %.1f%% ROI", it.name, it.roi),
			})
			out.Recommendations = append(out.Recommendations, models.Recommendation{
				Priority: PriorityHigh,
				Message:  fmt.Sprintf("Increase budget for campaign %q to capitalize on its %.1f%% ROI", it.name, it.roi),
			})
		}
	}
	for _, it := range bottom {
		if it.roi < roiWarningThreshold {
			out.Insights = append(out.Insights, models.Insight{
				Type:    InsightWarning,
				Message: fmt.Sprintf("Campaign %q is underperforming with %.1f%% ROI", it.name, it.roi),
			})
			out.Recommendations = append(out.Recommendations, models.Recommendation{
				Priority: PriorityHigh,
				Message:  fmt.Sprintf("Review campaign %q: targeting, creatives or channel mix may need changes", it.name),
			})
		}
	}
	return gs
}

func analyzeChannels(rep *models.Report, cfg Config, out *InsightReport) *ChannelSummary {
	items := channelItems(rep)
	if len(items) == 0 {
		return nil
	}

	byROI := sortedBy(items, func(a, b perfItem) bool { return a.roi > b.roi })
	byCAC := sortedBy(items, func(a, b perfItem) bool { return a.acquisitionCost < b.acquisitionCost })
	byEfficiency := sortedBy(items, func(a, b perfItem) bool { return efficiency(a) > efficiency(b) })

	avgCAC := averageOf(items, func(it perfItem) float64 { return it.acquisitionCost })
	cs := &ChannelSummary{
		Count:                  len(items),
		AverageROI:             averageOf(items, func(it perfItem) float64 { return it.roi }),
		AverageConversionRate:  averageOf(items, func(it perfItem) float64 { return it.conversionRate }),
		AverageAcquisitionCost: avgCAC,
		TopROI:                 names(firstN(byROI, cfg.TopChannels)),
		BottomROI:              names(lastN(byROI, cfg.TopChannels)),
		LowestCAC:              names(firstN(byCAC, cfg.TopChannels)),
		HighestCAC:             names(lastN(byCAC, cfg.TopChannels)),
		MostEfficient:          names(firstN(byEfficiency, cfg.TopChannels)),
	}

	for _, it := range firstN(byEfficiency, cfg.TopChannels) {
		out.Insights = append(out.Insights, models.Insight{
			Type:    InsightSuccess,
			Message: fmt.Sprintf("Channel %q converts most efficiently relative to its acquisition cost", it.name),
		})
		out.Recommendations = append(out.Recommendations, models.Recommendation{
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("Increase investment in channel %q, the most cost-efficient converter", it.name),
		})
	}
	for _, it := range lastN(byCAC, cfg.TopChannels) {
		if avgCAC > 0 && it.acquisitionCost > cacWarningFactor*avgCAC {
			out.Insights = append(out.Insights, models.Insight{
				Type:    InsightWarning,
				Message: fmt.Sprintf("Channel %q has an acquisition cost of %.2f, well above the %.2f average", it.name, it.acquisitionCost, round2(avgCAC)),
			})
			out.Recommendations = append(out.Recommendations, models.Recommendation{
				Priority: PriorityMedium,
				Message:  fmt.Sprintf("Review spending on channel %q: its acquisition cost exceeds 1.5x the average", it.name),
			})
		}
	}
	return cs
}

// efficiency scores a channel by conversion per unit of acquisition cost.
// Channels with no recorded cost score zero rather than infinity.
func efficiency(it perfItem) float64 {
	if it.acquisitionCost <= 0 {
		return 0
	}
	return it.conversionRate / it.acquisitionCost
}

func sortedBy(items []perfItem, less func(a, b perfItem) bool) []perfItem {
	out := make([]perfItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func firstN(items []perfItem, n int) []perfItem {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func lastN(items []perfItem, n int) []perfItem {
	if n > 0 && len(items) > n {
		return items[len(items)-n:]
	}
	return items
}

func names(items []perfItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.name)
	}
	return out
}

func averageOf(items []perfItem, f func(perfItem) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range items {
		sum += f(it)
	}
	return round2(sum / float64(len(items)))
}
