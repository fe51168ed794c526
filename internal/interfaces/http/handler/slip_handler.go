package handler

import (
	"fmt"
	"net/http"

	appreturns "github.com/erp/returns/internal/application/returns"
	"github.com/gin-gonic/gin"
)

// SlipHandler serves printable return slips
type SlipHandler struct {
	BaseHandler
	service *appreturns.SlipService
}

// NewSlipHandler creates a new SlipHandler
func NewSlipHandler(service *appreturns.SlipService) *SlipHandler {
	return &SlipHandler{service: service}
}

// Render godoc
//
//	@ID				getReturnSlip
//	@Summary		Download the return slip
//	@Description	Renders the return slip as a PDF. Returns 503 when printing is disabled.
//	@Tags			returns
//	@Produce		application/pdf
//	@Param			id	path		string	true	"Return ID"	format(uuid)
//	@Success		200	{file}		binary
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/returns/{id}/slip [get]
func (h *SlipHandler) Render(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	pdf, number, err := h.service.Render(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	disposition := "inline"
	if c.Query("download") == "true" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s.pdf"`, disposition, number))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
