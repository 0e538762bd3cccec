package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

// ErrUnreadableInput means the input could not be read as tabular data at
// all. Individual malformed rows and cells never produce it.
var ErrUnreadableInput = errors.New("ingest: unreadable input")

// MissingColumnError reports required columns absent from the header.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("ingest: missing required columns: %s", strings.Join(e.Columns, ", "))
}

// headerAliases maps legacy export header names onto canonical column
// names, resolved once when the header row is read.
var headerAliases = map[string]string{
	"id":           "campaign_id",
	"channel_used": "channel",
	"type":         "campaign_type",
	"audience":     "target_audience",
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	if canonical, ok := headerAliases[name]; ok {
		return canonical
	}
	return name
}

// headerIndex maps canonical column names to their position.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = normalizeHeader(name)
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx
}

func field(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func missingColumns(idx map[string]int, required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

var campaignRequired = []string{
	"campaign_id", "company", "campaign_type", "channel",
	"conversion_rate", "acquisition_cost", "clicks", "impressions", "date",
}

var eventsRequired = []string{"user_id", "event_type", "campaign", "channel", "timestamp"}

var costsRequired = []string{"campaign", "channel", "cpc", "cpm"}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// readHeader reads and indexes the header row and verifies the required
// column set. A missing header is an unreadable input; missing columns
// are a MissingColumnError.
func readHeader(cr *csv.Reader, required []string) (map[string]int, error) {
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}
	idx := headerIndex(header)
	if missing := missingColumns(idx, required); len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}
	return idx, nil
}

// nextRow reads one data row, skipping rows the CSV parser rejects.
// Row-level anomalies are tolerated; only transport-level failures stop
// the read.
func nextRow(cr *csv.Reader) ([]string, error) {
	for {
		row, err := cr.Read()
		if err == nil {
			return row, nil
		}
		if err == io.EOF {
			return nil, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			continue
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}
}

// ReadCampaignBatches streams campaign rows in fixed-size batches through
// fn. It is the backing reader for both the whole-file and the large-file
// paths so the two stay computationally identical.
func ReadCampaignBatches(r io.Reader, batchSize int, fn func([]models.CampaignRecord) error) error {
	cr := newCSVReader(r)
	idx, err := readHeader(cr, campaignRequired)
	if err != nil {
		return err
	}
	if batchSize <= 0 {
		batchSize = 10000
	}

	_, hasROI := idx["roi"]
	batch := make([]models.CampaignRecord, 0, batchSize)
	for {
		row, err := nextRow(cr)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		rec := models.CampaignRecord{
			CampaignID:      strings.TrimSpace(field(row, idx, "campaign_id")),
			Company:         strings.TrimSpace(field(row, idx, "company")),
			CampaignType:    strings.TrimSpace(field(row, idx, "campaign_type")),
			Channel:         strings.TrimSpace(field(row, idx, "channel")),
			ConversionRate:  parseFloatCell(field(row, idx, "conversion_rate")),
			AcquisitionCost: ParseMoney(field(row, idx, "acquisition_cost")),
			Clicks:          parseCountCell(field(row, idx, "clicks")),
			Impressions:     parseCountCell(field(row, idx, "impressions")),
			Date:            parseDateCell(field(row, idx, "date")),
			TargetAudience:  strings.TrimSpace(field(row, idx, "target_audience")),
		}
		if hasROI {
			rec.ROI = parseFloatCell(field(row, idx, "roi"))
		} else {
			rec.ROIMissing = true
		}
		batch = append(batch, rec)

		if len(batch) >= batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

// ReadCampaignCSV reads an entire campaign file into memory.
func ReadCampaignCSV(r io.Reader) ([]models.CampaignRecord, error) {
	var out []models.CampaignRecord
	err := ReadCampaignBatches(r, 10000, func(batch []models.CampaignRecord) error {
		out = append(out, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadEventCSV reads an events file. Rows with unknown event types are
// kept; the aggregator simply never counts them into a funnel stage.
func ReadEventCSV(r io.Reader) ([]models.EventRecord, error) {
	cr := newCSVReader(r)
	idx, err := readHeader(cr, eventsRequired)
	if err != nil {
		return nil, err
	}

	var out []models.EventRecord
	for {
		row, err := nextRow(cr)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, models.EventRecord{
			UserID:    strings.TrimSpace(field(row, idx, "user_id")),
			EventType: strings.ToLower(strings.TrimSpace(field(row, idx, "event_type"))),
			Campaign:  strings.TrimSpace(field(row, idx, "campaign")),
			Channel:   strings.TrimSpace(field(row, idx, "channel")),
			Timestamp: parseTimestampCell(field(row, idx, "timestamp")),
		})
	}
	return out, nil
}

// ReadCostCSV reads a cost-rate file.
func ReadCostCSV(r io.Reader) ([]models.CostRate, error) {
	cr := newCSVReader(r)
	idx, err := readHeader(cr, costsRequired)
	if err != nil {
		return nil, err
	}

	var out []models.CostRate
	for {
		row, err := nextRow(cr)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, models.CostRate{
			Campaign: strings.TrimSpace(field(row, idx, "campaign")),
			Channel:  strings.TrimSpace(field(row, idx, "channel")),
			CPC:      ParseMoney(field(row, idx, "cpc")),
			CPM:      ParseMoney(field(row, idx, "cpm")),
		})
	}
	return out, nil
}
