package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bloodbank/internal/inventory/service"
	"bloodbank/internal/inventory/validator"
	apperrors "bloodbank/pkg/errors"
	httputil "bloodbank/pkg/http"
	"bloodbank/pkg/logger"
	"bloodbank/pkg/model"
	"bloodbank/pkg/validation"

	"github.com/julienschmidt/httprouter"
)

type StockHandler struct {
	service   service.InventoryService
	validator *validator.StockValidator
	log       *logger.Logger
}

func NewStockHandler(service service.InventoryService, validator *validator.StockValidator, log *logger.Logger) *StockHandler {
	return &StockHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

func (h *StockHandler) Summary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	items, err := h.service.StockSummary(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Summary", err)
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "Summary", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StockHandler) Issue(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	req, ok := h.decode(w, r, "Issue", false)
	if !ok {
		return
	}

	entry, err := h.service.Issue(r.Context(), ps.ByName("id"), req.BloodType, req.Quantity)
	if err != nil {
		h.writeError(w, "Issue", err)
		return
	}

	if err := httputil.WriteSuccess(w, h.summaryItem(req.BloodType, entry)); err != nil {
		h.log.Error("failed to write success response", "handler", "Issue", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StockHandler) Consume(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	req, ok := h.decode(w, r, "Consume", false)
	if !ok {
		return
	}

	entry, err := h.service.Consume(r.Context(), ps.ByName("id"), req.BloodType, req.Quantity)
	if err != nil {
		h.writeError(w, "Consume", err)
		return
	}

	if err := httputil.WriteSuccess(w, h.summaryItem(req.BloodType, entry)); err != nil {
		h.log.Error("failed to write success response", "handler", "Consume", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StockHandler) Transfer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	req, ok := h.decode(w, r, "Transfer", true)
	if !ok {
		return
	}

	hospitalID := ps.ByName("id")
	if err := h.service.Transfer(r.Context(), hospitalID, req.BloodType, req.ToBloodType, req.Quantity); err != nil {
		h.writeError(w, "Transfer", err)
		return
	}

	items, err := h.service.StockSummary(r.Context(), hospitalID)
	if err != nil {
		h.writeError(w, "Transfer", err)
		return
	}

	if err := httputil.WriteSuccess(w, items); err != nil {
		h.log.Error("failed to write success response", "handler", "Transfer", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StockHandler) decode(w http.ResponseWriter, r *http.Request, op string, transfer bool) (*model.StockRequest, bool) {
	var req model.StockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, op, apperrors.InvalidInput("Invalid request body"))
		return nil, false
	}

	if err := h.validator.Validate(&req, transfer); err != nil {
		var errs validation.ValidationErrors
		if errors.As(err, &errs) {
			h.writeError(w, op, apperrors.Validation("Stock request validation failed", errs.Fields()))
		} else {
			h.writeError(w, op, apperrors.Validation(err.Error(), nil))
		}
		return nil, false
	}
	return &req, true
}

func (h *StockHandler) summaryItem(bloodType string, entry *model.StockEntry) model.StockSummaryItem {
	bt, _ := model.NormalizeBloodType(bloodType)
	lastUpdated := entry.LastUpdated
	return model.StockSummaryItem{
		BloodType:   bt,
		Quantity:    entry.Quantity,
		Level:       service.DeriveLevel(*entry),
		Thresholds:  entry.Thresholds,
		LastUpdated: &lastUpdated,
	}
}

func (h *StockHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *StockHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/hospitals/:id/stock", h.Summary)
	router.POST("/api/v1/hospitals/:id/stock/issue", h.Issue)
	router.POST("/api/v1/hospitals/:id/stock/consume", h.Consume)
	router.POST("/api/v1/hospitals/:id/stock/transfer", h.Transfer)
}
