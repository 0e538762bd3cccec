package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

// Config holds the aggregation constants. The ROI multipliers are proxy
// calibrations carried as configuration; see config.AnalyticsConfig.
type Config struct {
	TopCampaigns          int
	TopChannels           int
	TopCompanies          int
	CACSampleSize         int
	CampaignROIMultiplier float64
	ChannelROIMultiplier  float64
}

// DefaultConfig mirrors the config package defaults.
func DefaultConfig() Config {
	return Config{
		TopCampaigns:          3,
		TopChannels:           2,
		TopCompanies:          10,
		CACSampleSize:         100,
		CampaignROIMultiplier: 3.0,
		ChannelROIMultiplier:  2.5,
	}
}

// dimAccum carries the running sums for one dimension value.
type dimAccum struct {
	key         string
	impressions int64
	clicks      int64
	convSum     float64
	roiSum      float64
	costSum     float64
	count       int64
}

// dimTable is a group-by accumulator that preserves first-seen key order,
// which is what breaks ties in every top-N selection.
type dimTable struct {
	order []*dimAccum
	index map[string]*dimAccum
}

func newDimTable() *dimTable {
	return &dimTable{index: make(map[string]*dimAccum)}
}

func (t *dimTable) add(key string, rec models.CampaignRecord, roi float64) {
	acc, ok := t.index[key]
	if !ok {
		acc = &dimAccum{key: key}
		t.index[key] = acc
		t.order = append(t.order, acc)
	}
	acc.impressions += rec.Impressions
	acc.clicks += rec.Clicks
	acc.convSum += rec.ConversionRate
	acc.roiSum += roi
	acc.costSum += rec.AcquisitionCost
	acc.count++
}

// Accumulator consumes campaign record batches and produces a Report.
// The whole-file path feeds it a single batch, the large-file path feeds
// it many; both run the exact same sums so the results are equivalent by
// construction.
type Accumulator struct {
	cfg Config

	rows        int64
	impressions int64
	clicks      int64
	convSum     float64
	roiSum      float64
	costSum     float64

	companies *dimTable
	channels  *dimTable
	types     *dimTable
	audiences *dimTable

	cacSample []models.CACEntry
}

func NewAccumulator(cfg Config) *Accumulator {
	return &Accumulator{
		cfg:       cfg,
		companies: newDimTable(),
		channels:  newDimTable(),
		types:     newDimTable(),
		audiences: newDimTable(),
	}
}

// Add folds one batch of cleaned records into the running aggregates.
func (a *Accumulator) Add(batch []models.CampaignRecord) {
	for _, rec := range batch {
		campaignROI := rec.ROI
		channelROI := rec.ROI
		if rec.ROIMissing {
			campaignROI = rec.ConversionRate * 100 * a.cfg.CampaignROIMultiplier
			channelROI = rec.ConversionRate * 100 * a.cfg.ChannelROIMultiplier
		}

		a.rows++
		a.impressions += rec.Impressions
		a.clicks += rec.Clicks
		a.convSum += rec.ConversionRate
		a.roiSum += campaignROI
		a.costSum += rec.AcquisitionCost

		a.companies.add(rec.Company, rec, campaignROI)
		a.channels.add(rec.Channel, rec, channelROI)
		a.types.add(rec.CampaignType, rec, campaignROI)
		if rec.TargetAudience != "" {
			a.audiences.add(rec.TargetAudience, rec, campaignROI)
		}

		if len(a.cacSample) < a.cfg.CACSampleSize {
			cost := round2(rec.AcquisitionCost)
			cac := cost
			a.cacSample = append(a.cacSample, models.CACEntry{
				Campaign:     rec.Company,
				Channel:      rec.Channel,
				CampaignType: rec.CampaignType,
				Impressions:  rec.Impressions,
				Clicks:       rec.Clicks,
				TotalCost:    cost,
				CAC:          &cac,
				ROI:          round2(campaignROI),
				CostBasis:    models.CostBasisMeasured,
			})
		}
	}
}

// Report renders the accumulated state into the processed report. The
// accumulator itself is not reset; callers build a fresh one per upload.
func (a *Accumulator) Report() *models.Report {
	meanConv := safeDiv(a.convSum, float64(a.rows))
	meanROI := safeDiv(a.roiSum, float64(a.rows))

	rep := &models.Report{
		Kind:        models.KindCampaign,
		GeneratedAt: time.Now().UTC(),
		Rows:        a.rows,
		Funnel: map[string]int64{
			"impressions": a.impressions,
			"clicks":      a.clicks,
			"conversions": int64(float64(a.clicks) * meanConv),
		},
		ConversionRates: map[string]float64{
			"click_through_rate": round2(safeDiv(float64(a.clicks), float64(a.impressions)) * 100),
			"conversion_rate":    round2(meanConv * 100),
			"roi":                round2(meanROI),
		},
		CAC: a.cacSample,
	}

	companies := performanceRows(a.companies, func(row *models.PerformanceRow, key string) { row.Campaign = key })
	sort.SliceStable(companies, func(i, j int) bool { return companies[i].ROI > companies[j].ROI })
	rep.CampaignPerformance = limitRows(companies, a.cfg.TopCompanies)

	channels := performanceRows(a.channels, func(row *models.PerformanceRow, key string) { row.Channel = key })
	sort.SliceStable(channels, func(i, j int) bool { return channels[i].ConversionRate > channels[j].ConversionRate })
	rep.ChannelPerformance = channels

	rep.CampaignTypePerformance = performanceRows(a.types, func(row *models.PerformanceRow, key string) { row.Type = key })
	rep.AudiencePerformance = performanceRows(a.audiences, func(row *models.PerformanceRow, key string) { row.Audience = key })

	return rep
}

func performanceRows(t *dimTable, setKey func(*models.PerformanceRow, string)) []models.PerformanceRow {
	rows := make([]models.PerformanceRow, 0, len(t.order))
	for _, acc := range t.order {
		row := models.PerformanceRow{
			Impressions:     acc.impressions,
			Clicks:          acc.clicks,
			ConversionRate:  round2(safeDiv(acc.convSum, float64(acc.count)) * 100),
			ROI:             round2(safeDiv(acc.roiSum, float64(acc.count))),
			AcquisitionCost: round2(safeDiv(acc.costSum, float64(acc.count))),
			Records:         acc.count,
		}
		setKey(&row, acc.key)
		rows = append(rows, row)
	}
	return rows
}

func limitRows(rows []models.PerformanceRow, n int) []models.PerformanceRow {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// AggregateCampaigns is the whole-file path over the shared accumulator.
func AggregateCampaigns(records []models.CampaignRecord, cfg Config) *models.Report {
	acc := NewAccumulator(cfg)
	acc.Add(records)
	return acc.Report()
}

// safeDiv divides with a zero-denominator guard: rates over an empty
// denominator are 0, never NaN or Inf.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
