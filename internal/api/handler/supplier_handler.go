package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/providex/supplier-registry/internal/core/domain"
	"github.com/providex/supplier-registry/internal/core/ports"
)

const defaultListTimeout = 10 * time.Second

// SupplierHandler handles HTTP requests for supplier operations.
type SupplierHandler struct {
	registry    ports.SupplierRegistry
	logger      zerolog.Logger
	listTimeout time.Duration
}

func NewSupplierHandler(registry ports.SupplierRegistry, logger zerolog.Logger) *SupplierHandler {
	return &SupplierHandler{registry: registry, logger: logger, listTimeout: defaultListTimeout}
}

// Create handles POST /v1/suppliers.
//
// @Summary      Register or replace a supplier
// @Description  The identifier may be sent formatted; it is stored as digits only. An existing supplier with the same identifier is replaced in full.
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addSupplierRequest  true  "Supplier details"
// @Success      201   {object}  supplierResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/suppliers [post]
func (h *SupplierHandler) Create(c echo.Context) error {
	var req addSupplierRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	supplier, err := h.registry.AddSupplier(c.Request().Context(), toAddInput(req))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toSupplierResponse(*supplier))
}

// Get handles GET /v1/suppliers/:identifier.
//
// @Summary      Get a supplier by CNPJ
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        identifier  path      string  true  "CNPJ, formatted or digits only (e.g. 12.345.678/0001-95)"
// @Success      200         {object}  supplierResponse
// @Failure      404         {object}  errorResponse
// @Failure      502         {object}  errorResponse
// @Failure      503         {object}  errorResponse
// @Router       /v1/suppliers/{identifier} [get]
func (h *SupplierHandler) Get(c echo.Context) error {
	supplier, found, err := h.registry.FindSupplier(c.Request().Context(), c.Param("identifier"))
	if err != nil {
		return h.respondError(c, err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "supplier not found"})
	}
	return c.JSON(http.StatusOK, toSupplierResponse(*supplier))
}

// List handles GET /v1/suppliers and returns the current full set.
//
// @Summary      List all suppliers
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listSuppliersResponse
// @Failure      502  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Failure      504  {object}  errorResponse
// @Router       /v1/suppliers [get]
func (h *SupplierHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.listTimeout)
	defer cancel()

	for snapshot, err := range h.registry.ObserveAll(ctx) {
		if err != nil {
			return h.respondError(c, err)
		}
		return c.JSON(http.StatusOK, toListResponse(snapshot))
	}
	return c.JSON(http.StatusGatewayTimeout, errorResponse{Error: "supplier listing timed out"})
}

// Stream handles GET /v1/suppliers/stream. Every change to the supplier set
// is sent as a "snapshot" event carrying the full list; a lost subscription
// sends one "error" event and ends the stream.
//
// @Summary      Stream supplier snapshots
// @Tags         suppliers
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {object}  listSuppliersResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/suppliers/stream [get]
func (h *SupplierHandler) Stream(c echo.Context) error {
	res := c.Response()
	started := false

	for snapshot, err := range h.registry.ObserveAll(c.Request().Context()) {
		if err != nil {
			if !started {
				return h.respondError(c, err)
			}
			h.logger.Warn().Err(err).Msg("supplier stream ended by subscription failure")
			_ = writeEvent(res, "error", errorResponse{Error: "supplier subscription lost"})
			return nil
		}

		if !started {
			res.Header().Set(echo.HeaderContentType, "text/event-stream")
			res.Header().Set("Cache-Control", "no-cache")
			res.Header().Set("Connection", "keep-alive")
			res.WriteHeader(http.StatusOK)
			started = true
		}
		if err := writeEvent(res, "snapshot", toListResponse(snapshot)); err != nil {
			h.logger.Debug().Err(err).Msg("supplier stream client gone")
			return nil
		}
	}
	return nil
}

func writeEvent(res *echo.Response, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}

// respondError maps registry errors to HTTP status codes.
func (h *SupplierHandler) respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotReady):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "session not ready"})
	case errors.Is(err, domain.ErrPersistence), errors.Is(err, domain.ErrSubscription):
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("supplier store failure")
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "supplier store unavailable"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, errorResponse{Error: "supplier store timed out"})
	}
	return err
}
