package analytics

import "github.com/abbasi303/Marketting-dashboard/internal/models"

// Calibration constants for the estimated fallbacks. Anything derived from
// these is labeled "estimated" so measured and modeled numbers never blur.
const (
	estChannelCostPerView  = 0.50
	estCampaignCostPerView = 0.60
	estRevenuePerPurchase  = 75.0
	estCampaignRevenue     = 85.0
	estAcquisitionRate     = 0.15
	estCostPerImpression   = 0.05
)

// Enhance fills the economics gaps of an events-kind report: it merges
// measured CAC totals into the performance rows and backfills missing
// costs and acquisitions with labeled estimates. Campaign-kind reports
// only gain the enhanced CAC view since their rows already carry measured
// acquisition costs.
func Enhance(rep *models.Report) {
	if rep == nil || rep.Error != "" {
		return
	}
	if rep.Kind == models.KindEvents {
		enhanceEventRows(rep.EventChannels, byChannel(rep.CAC), estChannelCostPerView, estRevenuePerPurchase)
		enhanceEventRows(rep.EventCampaigns, byCampaign(rep.CAC), estCampaignCostPerView, estCampaignRevenue)
	}
	rep.EnhancedCAC = enhancedCAC(rep.CAC)
}

type costTotal struct {
	total        float64
	acquisitions int64
	measured     bool
}

func byChannel(entries []models.CACEntry) map[string]costTotal {
	return groupCosts(entries, func(e models.CACEntry) string { return e.Channel })
}

func byCampaign(entries []models.CACEntry) map[string]costTotal {
	return groupCosts(entries, func(e models.CACEntry) string { return e.Campaign })
}

func groupCosts(entries []models.CACEntry, key func(models.CACEntry) string) map[string]costTotal {
	out := make(map[string]costTotal, len(entries))
	for _, e := range entries {
		t := out[key(e)]
		t.total += e.TotalCost
		t.acquisitions += e.Acquisitions
		t.measured = t.measured || e.CostBasis == models.CostBasisMeasured
		out[key(e)] = t
	}
	return out
}

func enhanceEventRows(rows []models.EventPerformanceRow, costs map[string]costTotal, costPerView, revenuePerPurchase float64) {
	for i := range rows {
		row := &rows[i]
		key := row.Channel
		if key == "" {
			key = row.Campaign
		}

		var cost float64
		if t, ok := costs[key]; ok && t.measured {
			cost = t.total
			row.CostBasis = models.CostBasisMeasured
		} else {
			// No cost data at all: model the spend from traffic volume.
			cost = float64(row.Views) * costPerView
			row.CostBasis = models.CostBasisEstimated
		}

		acq := row.Purchases
		if acq < 1 {
			acq = 1
		}
		row.Cost = round2(cost)
		row.AcquisitionCost = round2(cost / float64(acq))
		row.Revenue = round2(float64(row.Purchases) * revenuePerPurchase)
		row.Profit = round2(row.Revenue - cost)
		row.ROAS = round2(safeDiv(row.Revenue, cost))
	}
}

// enhancedCAC backfills zero acquisitions and zero costs with estimates so
// every pair gets a comparable CAC figure, each labeled for provenance.
func enhancedCAC(entries []models.CACEntry) []models.CACEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]models.CACEntry, len(entries))
	for i, e := range entries {
		if e.Acquisitions == 0 && e.Clicks > 0 {
			e.Acquisitions = int64(float64(e.Clicks) * estAcquisitionRate)
			if e.Acquisitions < 1 {
				e.Acquisitions = 1
			}
			e.CostBasis = models.CostBasisEstimated
		}
		if e.TotalCost == 0 && e.Impressions > 0 {
			e.TotalCost = round2(float64(e.Impressions) * estCostPerImpression)
			e.CostBasis = models.CostBasisEstimated
		}
		if e.Acquisitions > 0 {
			cac := round2(e.TotalCost / float64(e.Acquisitions))
			e.CAC = &cac
		} else {
			e.CAC = nil
		}
		e.CTR = round2(safeDiv(float64(e.Clicks), float64(e.Impressions)) * 100)
		if e.TotalCost > 0 {
			revenue := float64(e.Acquisitions) * estRevenuePerPurchase
			e.ROI = round2((revenue - e.TotalCost) / e.TotalCost * 100)
		}
		out[i] = e
	}
	return out
}
