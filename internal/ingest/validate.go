package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

// Result is the validation contract: a merely malformed file yields
// valid=false with readable errors, never a Go error.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func requiredFor(kind models.InputKind) ([]string, bool) {
	switch kind {
	case models.KindCampaign:
		return campaignRequired, true
	case models.KindEvents:
		return eventsRequired, true
	case models.KindCosts:
		return costsRequired, true
	}
	return nil, false
}

var validEventTypes = map[string]bool{
	models.EventPageView: true,
	models.EventSignup:   true,
	models.EventPurchase: true,
}

// Validate checks a CSV against the required column set for kind. It
// returns an error only when the input cannot be read at all.
func Validate(r io.Reader, kind models.InputKind) (Result, error) {
	required, ok := requiredFor(kind)
	if !ok {
		return Result{Valid: false, Errors: []string{fmt.Sprintf("unknown file type: %s", kind)}}, nil
	}

	cr := newCSVReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return Result{Valid: false, Errors: []string{"file is empty"}}, nil
	}
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return Result{Valid: false, Errors: []string{fmt.Sprintf("error reading CSV file: %v", err)}}, nil
		}
		return Result{}, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}

	var errs []string
	idx := headerIndex(header)
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			errs = append(errs, fmt.Sprintf("Missing required column: %s", col))
		}
	}

	if kind == models.KindEvents {
		if _, ok := idx["event_type"]; ok {
			if invalid := scanEventTypes(cr, idx); len(invalid) > 0 {
				errs = append(errs, fmt.Sprintf("Invalid event types found: %s", strings.Join(invalid, ", ")))
			}
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}, nil
}

// scanEventTypes collects the distinct unknown event type values.
func scanEventTypes(cr *csv.Reader, idx map[string]int) []string {
	seen := map[string]bool{}
	for {
		row, err := nextRow(cr)
		if err != nil {
			break
		}
		v := strings.ToLower(strings.TrimSpace(field(row, idx, "event_type")))
		if v == "" || validEventTypes[v] {
			continue
		}
		seen[v] = true
	}
	invalid := make([]string, 0, len(seen))
	for v := range seen {
		invalid = append(invalid, v)
	}
	sort.Strings(invalid)
	return invalid
}
