package handlers

import (
	"net/http"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/logger"
)

// ReportSource holds the most recently published report
type ReportSource interface {
	Get() (*contracts.Report, string)
}

// ReportHandler serves the latest prediction report
type ReportHandler struct {
	source ReportSource
	logger *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(source ReportSource, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		source: source,
		logger: log,
	}
}

// GetLatest returns the latest report as JSON, or as markdown with ?format=markdown
// GET /api/report/latest
func (h *ReportHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	report, markdown := h.source.Get()
	if report == nil {
		respondError(w, http.StatusNotFound, "No report published yet")
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(markdown))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"title":  report.Title(),
		"report": report,
	})
}
