package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carbon-compass/compass/internal/calculator"
	"github.com/carbon-compass/compass/internal/factors"
	"github.com/carbon-compass/compass/internal/model"
	"github.com/carbon-compass/compass/internal/parser"
	"github.com/carbon-compass/compass/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload stores a PDF report for later analysis. The stored name
// is the basename of the uploaded filename.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, ok := s.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF files are accepted")
		return
	}

	if err := os.MkdirAll(s.reportsDir, 0o755); err != nil {
		s.fail(w, "create reports dir", err)
		return
	}
	dst, err := os.Create(filepath.Join(s.reportsDir, filename))
	if err != nil {
		s.fail(w, "create report file", err)
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		s.fail(w, "write report file", err)
		return
	}

	// A re-upload invalidates any previous analysis of the same name.
	s.pipeline.Evict(filename)

	s.log.Info("report uploaded", zap.String("filename", filename), zap.Int64("size", size))
	writeJSON(w, http.StatusCreated, map[string]any{
		"filename":   filename,
		"size_bytes": size,
	})
}

// handleAnalysis serves an analysis for a report, cheapest source first:
// the in-memory cache, then the store, then a fresh pipeline run.
// refresh=true skips both lookups.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	filename := filepath.Base(chi.URLParam(r, "filename"))
	refresh := r.URL.Query().Get("refresh") == "true"

	if !refresh {
		if cached, ok := s.pipeline.Cached(filename); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
		if s.store != nil {
			stored, err := s.store.GetAnalysis(r.Context(), filename)
			if err != nil {
				s.log.Warn("load stored analysis failed", zap.String("filename", filename), zap.Error(err))
			} else if stored != nil {
				writeJSON(w, http.StatusOK, stored)
				return
			}
		}
	}

	result, err := s.pipeline.Analyse(r.Context(), filename, refresh)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "report not found: "+filename)
			return
		}
		s.fail(w, "analyse report", err)
		return
	}

	if s.store != nil {
		if err := s.store.SaveAnalysis(r.Context(), result); err != nil {
			s.log.Warn("persist analysis failed", zap.String("filename", filename), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "no store configured")
		return
	}

	filter := store.AnalysisFilter{
		Filename:  r.URL.Query().Get("filename"),
		RiskLevel: model.RiskLevel(r.URL.Query().Get("risk_level")),
	}
	summaries, err := s.store.ListAnalyses(r.Context(), filter)
	if err != nil {
		s.fail(w, "list analyses", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": summaries})
}

func (s *Server) handleCalculateSingle(w http.ResponseWriter, r *http.Request) {
	var activity model.ActivityInput
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.calc.CalculateSingle(activity)
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.fail(w, "calculate single", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCalculateBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Activities []model.ActivityInput `json:"activities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Activities) == 0 {
		writeError(w, http.StatusBadRequest, "activities is required")
		return
	}

	total := s.calc.CalculateTotal(req.Activities)
	s.persistCalculation(r, "api", total)
	writeJSON(w, http.StatusOK, total)
}

// handleCalculateUpload parses an activity CSV/XLSX, validates it and
// calculates the total for the valid rows.
func (s *Server) handleCalculateUpload(w http.ResponseWriter, r *http.Request) {
	content, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	format, err := parser.FormatForPath(filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	activities, err := s.parser.Parse(content, format, nil)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	validation := s.parser.Validate(activities)
	if len(validation.ValidActivities) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"validation": validation,
		})
		return
	}

	total := s.calc.CalculateTotal(validation.ValidActivities)
	s.persistCalculation(r, filename, total)
	writeJSON(w, http.StatusOK, map[string]any{
		"validation": validation,
		"total":      total,
	})
}

func (s *Server) handleCalculatePreview(w http.ResponseWriter, r *http.Request) {
	content, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	format, err := parser.FormatForPath(filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	preview, err := s.parser.Preview(content, format, 5)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleCompare reconciles the metrics reported in an analysed PDF with
// emissions calculated from the posted activity data.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	filename := filepath.Base(chi.URLParam(r, "filename"))

	var req struct {
		Activities []model.ActivityInput `json:"activities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Activities) == 0 {
		writeError(w, http.StatusBadRequest, "activities is required")
		return
	}

	analysed, err := s.pipeline.Analyse(r.Context(), filename, false)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "report not found: "+filename)
			return
		}
		s.fail(w, "analyse report", err)
		return
	}

	total := s.calc.CalculateTotal(req.Activities)
	verification := s.verifier.Compare(analysed.Metrics.Metrics, total)

	writeJSON(w, http.StatusOK, map[string]any{
		"filename":     filename,
		"calculated":   total,
		"verification": verification,
	})
}

func (s *Server) handleFactors(w http.ResponseWriter, _ *http.Request) {
	methods, materials := s.catalog.WasteOptions()
	writeJSON(w, http.StatusOK, map[string]any{
		"countries":       s.catalog.Countries(),
		"fuels":           s.catalog.Fuels(),
		"transport":       s.catalog.Transport(),
		"waste_methods":   methods,
		"waste_materials": materials,
		"conversions":     factors.Conversions(),
	})
}

// helpers

func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return nil, nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return nil, nil, false
	}
	return file, header, true
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	file, header, ok := s.formFile(w, r)
	if !ok {
		return nil, "", false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, "read upload", err)
		return nil, "", false
	}
	return content, filepath.Base(header.Filename), true
}

func (s *Server) persistCalculation(r *http.Request, source string, total model.TotalEmissions) {
	if s.store == nil {
		return
	}
	if _, err := s.store.SaveCalculation(r.Context(), source, total); err != nil {
		s.log.Warn("persist calculation failed", zap.String("source", source), zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, action string, err error) {
	s.log.Error(action, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
