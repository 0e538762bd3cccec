package analytics

import (
	"sort"
	"time"

	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

// eventAccum carries raw funnel counts for one campaign or channel.
type eventAccum struct {
	key       string
	views     int64
	signups   int64
	purchases int64
}

type eventTable struct {
	order []*eventAccum
	index map[string]*eventAccum
}

func newEventTable() *eventTable {
	return &eventTable{index: make(map[string]*eventAccum)}
}

func (t *eventTable) get(key string) *eventAccum {
	acc, ok := t.index[key]
	if !ok {
		acc = &eventAccum{key: key}
		t.index[key] = acc
		t.order = append(t.order, acc)
	}
	return acc
}

// AggregateEvents builds the events-kind report: funnel counts, per
// campaign and per channel conversion rates, and when cost rates are
// present, the CAC table joined on campaign/channel.
func AggregateEvents(events []models.EventRecord, costs []models.CostRate, cfg Config) *models.Report {
	var views, signups, purchases int64
	campaigns := newEventTable()
	channels := newEventTable()

	for _, ev := range events {
		camp := campaigns.get(ev.Campaign)
		chn := channels.get(ev.Channel)
		switch ev.EventType {
		case models.EventPageView:
			views++
			camp.views++
			chn.views++
		case models.EventSignup:
			signups++
			camp.signups++
			chn.signups++
		case models.EventPurchase:
			purchases++
			camp.purchases++
			chn.purchases++
		}
	}

	rep := &models.Report{
		Kind:        models.KindEvents,
		GeneratedAt: time.Now().UTC(),
		Rows:        int64(len(events)),
		Funnel: map[string]int64{
			models.EventPageView: views,
			models.EventSignup:   signups,
			models.EventPurchase: purchases,
		},
		ConversionRates: map[string]float64{
			"signup_rate":        round2(safeDiv(float64(signups), float64(views)) * 100),
			"purchase_rate":      round2(safeDiv(float64(purchases), float64(signups)) * 100),
			"overall_conversion": round2(safeDiv(float64(purchases), float64(views)) * 100),
		},
	}

	campRows := eventRows(campaigns, cfg.CampaignROIMultiplier, func(row *models.EventPerformanceRow, key string) { row.Campaign = key })
	// Rank campaigns by compound funnel strength; ties keep first-seen order.
	sort.SliceStable(campRows, func(i, j int) bool {
		return campRows[i].PurchaseRate*campRows[i].SignupRate > campRows[j].PurchaseRate*campRows[j].SignupRate
	})
	rep.EventCampaigns = campRows
	rep.EventChannels = eventRows(channels, cfg.ChannelROIMultiplier, func(row *models.EventPerformanceRow, key string) { row.Channel = key })

	if len(costs) > 0 {
		rep.CAC = BuildCAC(events, costs)
	}
	return rep
}

func eventRows(t *eventTable, roiMultiplier float64, setKey func(*models.EventPerformanceRow, string)) []models.EventPerformanceRow {
	rows := make([]models.EventPerformanceRow, 0, len(t.order))
	for _, acc := range t.order {
		purchaseRate := round2(safeDiv(float64(acc.purchases), float64(acc.signups)) * 100)
		row := models.EventPerformanceRow{
			Views:        acc.views,
			Signups:      acc.signups,
			Purchases:    acc.purchases,
			SignupRate:   round2(safeDiv(float64(acc.signups), float64(acc.views)) * 100),
			PurchaseRate: purchaseRate,
			ROI:          round2(purchaseRate * roiMultiplier),
		}
		setKey(&row, acc.key)
		rows = append(rows, row)
	}
	return rows
}

type pairKey struct {
	campaign string
	channel  string
}

type pairAccum struct {
	key       pairKey
	views     int64
	signups   int64
	purchases int64
	rate      models.CostRate
	hasRate   bool
}

// BuildCAC computes customer acquisition cost per campaign/channel pair by
// joining event funnel counts with uploaded cost rates. The join is an
// outer one: pairs that appear only on the cost side still get a line, and
// pairs with no cost row keep a zero total rather than being dropped.
func BuildCAC(events []models.EventRecord, costs []models.CostRate) []models.CACEntry {
	index := make(map[pairKey]*pairAccum)
	var order []*pairAccum
	get := func(k pairKey) *pairAccum {
		acc, ok := index[k]
		if !ok {
			acc = &pairAccum{key: k}
			index[k] = acc
			order = append(order, acc)
		}
		return acc
	}

	for _, ev := range events {
		acc := get(pairKey{ev.Campaign, ev.Channel})
		switch ev.EventType {
		case models.EventPageView:
			acc.views++
		case models.EventSignup:
			acc.signups++
		case models.EventPurchase:
			acc.purchases++
		}
	}
	// Later cost rows for the same pair replace earlier ones.
	for _, c := range costs {
		acc := get(pairKey{c.Campaign, c.Channel})
		acc.rate = c
		acc.hasRate = true
	}

	entries := make([]models.CACEntry, 0, len(order))
	for _, acc := range order {
		total := round2(float64(acc.signups)*acc.rate.CPC + float64(acc.views)/1000*acc.rate.CPM)
		entry := models.CACEntry{
			Campaign:     acc.key.campaign,
			Channel:      acc.key.channel,
			Acquisitions: acc.purchases,
			Clicks:       acc.signups,
			Impressions:  acc.views,
			TotalCost:    total,
		}
		if acc.hasRate {
			entry.CostBasis = models.CostBasisMeasured
		}
		if acc.purchases > 0 {
			cac := round2(total / float64(acc.purchases))
			entry.CAC = &cac
		}
		entries = append(entries, entry)
	}
	return entries
}
