package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abbasi303/Marketting-dashboard/internal/analytics"
	"github.com/abbasi303/Marketting-dashboard/internal/models"
	"github.com/abbasi303/Marketting-dashboard/internal/storage"
)

const (
	defaultPerPage = 10
	maxPerPage     = 50
)

// sectionAliases maps friendly section names onto canonical ones. The
// canonical names always resolve too.
var sectionAliases = map[string]string{
	"campaigns": "campaign_performance",
	"channels":  "channel_performance",
	"types":     "campaign_type_performance",
	"audiences": "audience_performance",
	"funnel":    "funnel",
}

type pageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type sectionResponse struct {
	Section string           `json:"section"`
	Data    []map[string]any `json:"data"`
	Meta    pageMeta         `json:"meta"`
}

type dashboardResponse struct {
	Kind              models.InputKind   `json:"kind"`
	GeneratedAt       time.Time          `json:"generated_at"`
	Rows              int64              `json:"rows"`
	Funnel            map[string]int64   `json:"funnel,omitempty"`
	ConversionRates   map[string]float64 `json:"conversion_rates,omitempty"`
	SectionsAvailable []string           `json:"sections_available"`
	Error             string             `json:"error,omitempty"`
}

func (s *Server) latestReport(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	rep, err := s.cache.Latest(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNoReport) {
			if s.metrics != nil {
				s.metrics.RecordCacheOp("miss", s.cacheBackend)
			}
			s.errorResponse(w, "no report available, upload data first", http.StatusNotFound)
			return nil, false
		}
		s.logger.Error("failed to load latest report", zap.Error(err))
		s.errorResponse(w, "failed to load report", http.StatusInternalServerError)
		return nil, false
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOp("hit", s.cacheBackend)
	}
	return rep, true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.latestReport(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, dashboardResponse{
		Kind:              rep.Kind,
		GeneratedAt:       rep.GeneratedAt,
		Rows:              rep.Rows,
		Funnel:            rep.Funnel,
		ConversionRates:   rep.ConversionRates,
		SectionsAvailable: sectionsAvailable(rep),
		Error:             rep.Error,
	})
}

func sectionsAvailable(rep *models.Report) []string {
	var out []string
	add := func(name string, n int) {
		if n > 0 {
			out = append(out, name)
		}
	}
	if rep.Kind == models.KindEvents {
		add("campaign_performance", len(rep.EventCampaigns))
		add("channel_performance", len(rep.EventChannels))
	} else {
		add("campaign_performance", len(rep.CampaignPerformance))
		add("channel_performance", len(rep.ChannelPerformance))
		add("campaign_type_performance", len(rep.CampaignTypePerformance))
		add("audience_performance", len(rep.AudiencePerformance))
	}
	add("cac", len(rep.CAC))
	add("enhanced_cac", len(rep.EnhancedCAC))
	return out
}

// sectionSlice resolves a canonical section name to its rows. The
// campaign/channel names resolve to whichever family the report kind
// populates, so clients use one name for both shapes.
func sectionSlice(rep *models.Report, name string) (any, bool) {
	switch name {
	case "campaign_performance":
		if rep.Kind == models.KindEvents {
			return rep.EventCampaigns, true
		}
		return rep.CampaignPerformance, true
	case "channel_performance":
		if rep.Kind == models.KindEvents {
			return rep.EventChannels, true
		}
		return rep.ChannelPerformance, true
	case "campaign_type_performance":
		return rep.CampaignTypePerformance, true
	case "audience_performance":
		return rep.AudiencePerformance, true
	case "cac":
		return rep.CAC, true
	case "enhanced_cac":
		return rep.EnhancedCAC, true
	}
	return nil, false
}

// toRows converts a typed section slice into generic rows so pagination
// and sorting work uniformly across section shapes.
func toRows(section any) ([]map[string]any, error) {
	data, err := json.Marshal(section)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// compareRows orders two generic cell values: numbers numerically,
// strings lexically, null always last.
func compareRows(a, b any) int {
	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case aNum && bNum:
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	as, _ := a.(string)
	bs, _ := b.(string)
	return strings.Compare(as, bs)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.latestReport(w, r)
	if !ok {
		return
	}
	if rep.Error != "" {
		s.errorResponse(w, rep.Error, http.StatusConflict)
		return
	}

	name := strings.ToLower(chi.URLParam(r, "section"))
	if canonical, ok := sectionAliases[name]; ok {
		name = canonical
	}

	if name == "funnel" {
		s.jsonResponse(w, map[string]any{
			"section":          "funnel",
			"funnel":           rep.Funnel,
			"conversion_rates": rep.ConversionRates,
		})
		return
	}

	section, ok := sectionSlice(rep, name)
	if !ok {
		s.errorResponse(w, "unknown section: "+name, http.StatusNotFound)
		return
	}
	rows, err := toRows(section)
	if err != nil {
		s.logger.Error("failed to render section", zap.String("section", name), zap.Error(err))
		s.errorResponse(w, "failed to render section", http.StatusInternalServerError)
		return
	}

	if sortBy := r.URL.Query().Get("sort_by"); sortBy != "" {
		desc := r.URL.Query().Get("sort_dir") != "asc"
		sort.SliceStable(rows, func(i, j int) bool {
			c := compareRows(rows[i][sortBy], rows[j][sortBy])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	page, perPage := paginationParams(r)
	total := len(rows)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	paged := rows[start:end]
	if paged == nil {
		paged = []map[string]any{}
	}

	s.jsonResponse(w, sectionResponse{
		Section: name,
		Data:    paged,
		Meta: pageMeta{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

func paginationParams(r *http.Request) (page, perPage int) {
	page = 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	perPage = defaultPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = v
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func (s *Server) handleAnalyticsReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.cache.Latest(r.Context())
	if err != nil && !errors.Is(err, storage.ErrNoReport) {
		s.logger.Error("failed to load latest report", zap.Error(err))
		s.errorResponse(w, "failed to load report", http.StatusInternalServerError)
		return
	}
	// A missing or failed report still yields a well-formed document with
	// an error marker.
	s.jsonResponse(w, analytics.GenerateReport(rep, s.analyticsCfg))
}
