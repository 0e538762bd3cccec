package httpserver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abbasi303/Marketting-dashboard/internal/analytics"
	"github.com/abbasi303/Marketting-dashboard/internal/ingest"
	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

type uploadResponse struct {
	UploadID string           `json:"upload_id"`
	Key      string           `json:"key,omitempty"`
	Kind     models.InputKind `json:"kind"`
	Rows     int64            `json:"rows"`
	Summary  map[string]any   `json:"summary,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type validationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func parseKind(value string) (models.InputKind, bool) {
	kind := models.InputKind(strings.ToLower(strings.TrimSpace(value)))
	switch kind {
	case models.KindCampaign, models.KindEvents, models.KindCosts:
		return kind, true
	}
	return "", false
}

// spoolUpload copies the upload to a temp file under the upload dir,
// hashing the bytes on the way through. The temp file lets large campaign
// files be re-read in batches without holding them in memory.
func (s *Server) spoolUpload(src io.Reader) (path, key string, size int64, err error) {
	if err := os.MkdirAll(s.config.Upload.Dir, 0o755); err != nil {
		return "", "", 0, err
	}
	tmp, err := os.CreateTemp(s.config.Upload.Dir, "upload-*.csv")
	if err != nil {
		return "", "", 0, err
	}
	hasher := sha256.New()
	size, err = io.Copy(io.MultiWriter(tmp, hasher), src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", "", 0, err
	}
	return tmp.Name(), hex.EncodeToString(hasher.Sum(nil)), size, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Upload.MaxBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	kind, ok := parseKind(r.FormValue("file_type"))
	if !ok {
		s.errorResponse(w, "unknown file type", http.StatusBadRequest)
		return
	}

	path, key, size, err := s.spoolUpload(file)
	if err != nil {
		s.logger.Error("failed to spool upload", zap.Error(err))
		s.errorResponse(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	defer os.Remove(path)

	result, err := s.validateFile(path, kind)
	if err != nil {
		s.recordUpload(kind, "unreadable", "whole", 0, start)
		s.errorResponse(w, "unreadable input", http.StatusBadRequest)
		return
	}
	if !result.Valid {
		s.recordUpload(kind, "invalid", "whole", 0, start)
		s.jsonResponseStatus(w, http.StatusBadRequest, validationResponse{Valid: false, Errors: result.Errors})
		return
	}

	resp := uploadResponse{UploadID: uuid.NewString(), Kind: kind}

	if kind == models.KindCosts {
		rates, err := s.readCosts(path)
		if err != nil {
			s.recordUpload(kind, "error", "whole", 0, start)
			s.errorResponse(w, "failed to read cost rates", http.StatusBadRequest)
			return
		}
		s.costs.Replace(rates)
		s.recordUpload(kind, "ok", "whole", int64(len(rates)), start)
		resp.Rows = int64(len(rates))
		s.jsonResponse(w, resp)
		return
	}

	rep, mode := s.processUpload(path, key, size, kind)
	rep.Key = key
	analytics.Enhance(rep)

	if err := s.cache.Put(r.Context(), key, rep); err != nil {
		s.logger.Error("failed to cache report", zap.String("key", key), zap.Error(err))
		s.errorResponse(w, "failed to store report", http.StatusInternalServerError)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOp("put", s.cacheBackend)
	}

	status := "ok"
	if rep.Error != "" {
		status = "error"
	}
	s.recordUpload(kind, status, mode, rep.Rows, start)

	resp.Key = key
	resp.Rows = rep.Rows
	resp.Error = rep.Error
	if rep.Error == "" {
		resp.Summary = map[string]any{
			"funnel":           rep.Funnel,
			"conversion_rates": rep.ConversionRates,
		}
	}
	s.jsonResponse(w, resp)
}

// processUpload builds the report for a campaign or events upload. Read
// failures become a report-level error in the same document shape, never
// a failed response.
func (s *Server) processUpload(path, key string, size int64, kind models.InputKind) (*models.Report, string) {
	mode := "whole"

	softFail := func(err error) *models.Report {
		s.logger.Warn("upload processing failed",
			zap.String("key", key),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return &models.Report{
			Kind:        kind,
			GeneratedAt: time.Now().UTC(),
			Error:       fmt.Sprintf("processing failed: %v", err),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return softFail(err), mode
	}
	defer f.Close()

	if kind == models.KindEvents {
		events, err := ingest.ReadEventCSV(f)
		if err != nil {
			return softFail(err), mode
		}
		return analytics.AggregateEvents(events, s.costs.Snapshot(), s.analyticsCfg), mode
	}

	if size > s.config.Upload.ChunkThresholdBytes {
		mode = "batched"
		acc := analytics.NewAccumulator(s.analyticsCfg)
		err := ingest.ReadCampaignBatches(f, s.config.Upload.BatchSize, func(batch []models.CampaignRecord) error {
			acc.Add(batch)
			return nil
		})
		if err != nil {
			return softFail(err), mode
		}
		return acc.Report(), mode
	}

	records, err := ingest.ReadCampaignCSV(f)
	if err != nil {
		return softFail(err), mode
	}
	return analytics.AggregateCampaigns(records, s.analyticsCfg), mode
}

func (s *Server) validateFile(path string, kind models.InputKind) (ingest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return ingest.Result{}, err
	}
	defer f.Close()
	return ingest.Validate(f, kind)
}

func (s *Server) readCosts(path string) ([]models.CostRate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.ReadCostCSV(f)
}

func (s *Server) recordUpload(kind models.InputKind, status, mode string, rows int64, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordUpload(string(kind), status, mode, rows, time.Since(start))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Upload.MaxBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	kind, ok := parseKind(r.FormValue("file_type"))
	if !ok {
		s.errorResponse(w, "unknown file type", http.StatusBadRequest)
		return
	}

	result, err := ingest.Validate(file, kind)
	if err != nil {
		s.errorResponse(w, "unreadable input", http.StatusBadRequest)
		return
	}
	s.jsonResponse(w, validationResponse{Valid: result.Valid, Errors: result.Errors})
}
