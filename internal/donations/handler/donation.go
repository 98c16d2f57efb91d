package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bloodbank/internal/donations/service"
	apperrors "bloodbank/pkg/errors"
	httputil "bloodbank/pkg/http"
	"bloodbank/pkg/logger"
	"bloodbank/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const dateOnly = "2006-01-02"

var knownStatuses = map[model.Status]bool{
	model.StatusPending:    true,
	model.StatusRegistered: true,
	model.StatusConfirmed:  true,
	model.StatusRejected:   true,
	model.StatusCancelled:  true,
	model.StatusNoShow:     true,
	model.StatusCompleted:  true,
}

type DonationHandler struct {
	service service.DonationService
	log     *logger.Logger
}

func NewDonationHandler(service service.DonationService, log *logger.Logger) *DonationHandler {
	return &DonationHandler{
		service: service,
		log:     log,
	}
}

func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	records, err := h.service.ListRecords(r.Context(), filter)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteList(w, records, len(records)); err != nil {
		h.log.Error("failed to write list response", "handler", "List", "operation", "WriteList", "error", err)
	}
}

func parseFilter(r *http.Request) (model.RecordFilter, error) {
	q := r.URL.Query()
	filter := model.RecordFilter{
		HospitalID:    q.Get("hospital_id"),
		DonorID:       q.Get("donor_id"),
		Status:        model.Status(q.Get("status")),
		DisplayStatus: model.Status(q.Get("display_status")),
		Source:        model.Source(q.Get("source")),
	}

	if filter.Status != "" && !knownStatuses[filter.Status] {
		return filter, apperrors.InvalidInput(fmt.Sprintf("Unknown status %q", filter.Status))
	}
	if filter.DisplayStatus != "" && !knownStatuses[filter.DisplayStatus] &&
		filter.DisplayStatus != model.StatusUsed && filter.DisplayStatus != model.StatusExpired {
		return filter, apperrors.InvalidInput(fmt.Sprintf("Unknown display status %q", filter.DisplayStatus))
	}
	switch filter.Source {
	case "", model.SourceEvent, model.SourceAppointment:
	default:
		return filter, apperrors.InvalidInput(fmt.Sprintf("Unknown source %q", filter.Source))
	}

	from, err := httputil.ParseTimeParam(r, "from")
	if err != nil {
		return filter, err
	}
	to, err := httputil.ParseTimeParam(r, "to")
	if err != nil {
		return filter, err
	}
	// A bare date in 'to' covers that whole day.
	if to != nil && len(r.URL.Query().Get("to")) == len(dateOnly) {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return filter, apperrors.InvalidInput("'to' must not be before 'from'")
	}
	filter.From, filter.To = from, to
	return filter, nil
}

func (h *DonationHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	record, err := h.service.GetRecord(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httputil.WriteSuccess(w, record); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DonationHandler) Transition(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Transition", apperrors.InvalidInput("Invalid request body"))
		return
	}

	record, err := h.service.Transition(r.Context(), ps.ByName("id"), req)
	if err != nil {
		h.writeError(w, "Transition", err)
		return
	}

	if record == nil {
		httputil.WriteNoContent(w)
		return
	}
	if err := httputil.WriteSuccess(w, record); err != nil {
		h.log.Error("failed to write success response", "handler", "Transition", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DonationHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *DonationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/donations", h.List)
	router.GET("/api/v1/donations/:id", h.Get)
	router.POST("/api/v1/donations/:id/transitions", h.Transition)
}
