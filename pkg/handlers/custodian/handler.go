package custodian

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/de-tools/db-custodian/pkg/adapters"
	"github.com/de-tools/db-custodian/pkg/models/api"
	"github.com/de-tools/db-custodian/pkg/models/domain"
	custodiansvc "github.com/de-tools/db-custodian/pkg/services/custodian"
)

// Info is the static part of the daemon status: what the daemon checks and how.
type Info struct {
	Profile   domain.Profile
	Threshold float64
	Table     string
}

type Handler struct {
	service custodiansvc.Service
	info    Info
}

func NewHandler(service custodiansvc.Service, info Info) *Handler {
	return &Handler{service: service, info: info}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status := api.Status{
		Profile:   h.info.Profile.Name,
		Engine:    string(h.info.Profile.Engine),
		Threshold: h.info.Threshold,
		Table:     h.info.Table,
		Runs:      h.service.Runs(),
	}
	if last, ok := h.service.LastReport(); ok {
		finished := last.FinishedAt
		status.LastRunAt = &finished
		status.LastRunId = last.ID
	}
	h.writeJSON(w, r, http.StatusOK, status)
}

func (h *Handler) LatestRun(w http.ResponseWriter, r *http.Request) {
	report, ok := h.service.LastReport()
	if !ok {
		http.Error(w, "no runs have completed yet", http.StatusNotFound)
		return
	}
	h.writeJSON(w, r, http.StatusOK, adapters.MapRunReportDomainToApi(report))
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	reports := h.service.Reports()
	response := make([]api.RunReport, 0, len(reports))
	for _, report := range reports {
		response = append(response, adapters.MapRunReportDomainToApi(report))
	}
	h.writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) TriggerCheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.RunNow(r.Context())
	if errors.Is(err, custodiansvc.ErrRunInProgress) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	h.writeJSON(w, r, http.StatusOK, adapters.MapRunReportDomainToApi(report))
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	logger := zerolog.Ctx(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("failed to encode response")
	}
}
