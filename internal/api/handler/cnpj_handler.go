package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/providex/supplier-registry/pkg/cnpj"
)

// CNPJHandler exposes the identifier formatter used by data-entry clients
// to mask input as it is typed.
type CNPJHandler struct{}

func NewCNPJHandler() *CNPJHandler {
	return &CNPJHandler{}
}

// Format handles GET /v1/cnpj/format.
//
// @Summary      Mask a partial or complete CNPJ
// @Tags         cnpj
// @Produce      json
// @Param        value  query     string  false  "Raw input, any punctuation"
// @Success      200    {object}  formatResponse
// @Router       /v1/cnpj/format [get]
func (h *CNPJHandler) Format(c echo.Context) error {
	value := c.QueryParam("value")
	digits := cnpj.Normalize(value)
	return c.JSON(http.StatusOK, formatResponse{
		Input:     value,
		Digits:    digits,
		Formatted: cnpj.Format(digits),
		Complete:  cnpj.IsComplete(digits),
	})
}
