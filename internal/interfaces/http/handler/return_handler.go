package handler

import (
	"context"
	"errors"
	"io"

	appreturns "github.com/erp/returns/internal/application/returns"
	"github.com/erp/returns/internal/domain/returns"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReturnHandler handles the return lifecycle API endpoints
type ReturnHandler struct {
	BaseHandler
	service *appreturns.ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(service *appreturns.ReturnService) *ReturnHandler {
	return &ReturnHandler{service: service}
}

// Create godoc
//
//	@ID				createReturn
//	@Summary		Take in a returned item
//	@Description	Creates a return record in RECEIVED status. Customer details are required for customer-facing sources.
//	@Tags			returns
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appreturns.CreateReturnRequest	true	"Return intake"
//	@Success		201		{object}	APIResponse[appreturns.ReturnResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns [post]
func (h *ReturnHandler) Create(c *gin.Context) {
	actorID, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req appreturns.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.ActorID = actorID

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// Inspect godoc
//
//	@ID				inspectReturn
//	@Summary		Record an inspection
//	@Description	Records product condition. Repeat inspections append to the history and overwrite the latest result.
//	@Tags			returns
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Return ID"	format(uuid)
//	@Param			request	body		appreturns.InspectReturnRequest	true	"Inspection result"
//	@Success		200		{object}	APIResponse[appreturns.ReturnResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/{id}/inspect [patch]
func (h *ReturnHandler) Inspect(c *gin.Context) {
	var req appreturns.InspectReturnRequest
	mutate(h, c, &req, func(r *appreturns.InspectReturnRequest, actor uuid.UUID) { r.ActorID = actor },
		h.service.Inspect)
}

// Approve godoc
//
//	@ID				approveReturn
//	@Summary		Approve a return
//	@Description	Approves an inspected return with the intended resolution.
//	@Tags			returns
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Return ID"	format(uuid)
//	@Param			request	body		appreturns.ApproveReturnRequest	true	"Approval"
//	@Success		200		{object}	APIResponse[appreturns.ReturnResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/{id}/approve [patch]
func (h *ReturnHandler) Approve(c *gin.Context) {
	var req appreturns.ApproveReturnRequest
	mutate(h, c, &req, func(r *appreturns.ApproveReturnRequest, actor uuid.UUID) { r.ActorID = actor },
		h.service.Approve)
}

// Reject godoc
//
//	@ID				rejectReturn
//	@Summary		Reject a return
//	@Description	Rejects an inspected return. The reason must be one of the offered rejection reasons.
//	@Tags			returns
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Return ID"	format(uuid)
//	@Param			request	body		appreturns.RejectReturnRequest	true	"Rejection"
//	@Success		200		{object}	APIResponse[appreturns.ReturnResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/{id}/reject [patch]
func (h *ReturnHandler) Reject(c *gin.Context) {
	var req appreturns.RejectReturnRequest
	mutate(h, c, &req, func(r *appreturns.RejectReturnRequest, actor uuid.UUID) { r.ActorID = actor },
		h.service.Reject)
}

// Process godoc
//
//	@ID				processReturn
//	@Summary		Execute the resolution
//	@Description	Dispatches the resolution to its collaborator and completes the return. On collaborator failure the return stays APPROVED.
//	@Tags			returns
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Return ID"	format(uuid)
//	@Param			request	body		appreturns.ProcessReturnRequest	true	"Resolution"
//	@Success		200		{object}	APIResponse[appreturns.ReturnResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/{id}/process [patch]
func (h *ReturnHandler) Process(c *gin.Context) {
	var req appreturns.ProcessReturnRequest
	mutate(h, c, &req, func(r *appreturns.ProcessReturnRequest, actor uuid.UUID) { r.ActorID = actor },
		h.service.Process)
}

// Cancel godoc
//
//	@ID				cancelReturn
//	@Summary		Cancel a return
//	@Description	Withdraws a return that has not been approved, rejected or completed.
//	@Tags			returns
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Return ID"	format(uuid)
//	@Param			request	body		appreturns.CancelReturnRequest	true	"Cancellation"
//	@Success		200		{object}	APIResponse[appreturns.ReturnResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/{id} [delete]
func (h *ReturnHandler) Cancel(c *gin.Context) {
	var req appreturns.CancelReturnRequest
	mutate(h, c, &req, func(r *appreturns.CancelReturnRequest, actor uuid.UUID) { r.ActorID = actor },
		h.service.Cancel)
}

// GetByID godoc
//
//	@ID				getReturnById
//	@Summary		Get a return
//	@Tags			returns
//	@Produce		json
//	@Param			id	path		string	true	"Return ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appreturns.ReturnResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/returns/{id} [get]
func (h *ReturnHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber godoc
//
//	@ID				getReturnByNumber
//	@Summary		Get a return by its number
//	@Tags			returns
//	@Produce		json
//	@Param			returnNumber	path		string	true	"Return number"
//	@Success		200				{object}	APIResponse[appreturns.ReturnResponse]
//	@Failure		404				{object}	ErrorResponse
//	@Router			/returns/number/{returnNumber} [get]
func (h *ReturnHandler) GetByNumber(c *gin.Context) {
	resp, err := h.service.GetByNumber(c.Request.Context(), c.Param("returnNumber"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetHistory godoc
//
//	@ID				getReturnAudit
//	@Summary		Get the audit trail
//	@Description	Returns the append-only audit trail and inspection history of a return.
//	@Tags			returns
//	@Produce		json
//	@Param			id	path		string	true	"Return ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appreturns.ReturnHistoryResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/returns/{id}/audit [get]
func (h *ReturnHandler) GetHistory(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetSuggestion godoc
//
//	@ID				getReturnSuggestion
//	@Summary		Get the suggested resolution
//	@Description	Advisory only. Derived from the recorded condition and return category.
//	@Tags			returns
//	@Produce		json
//	@Param			id	path		string	true	"Return ID"	format(uuid)
//	@Success		200	{object}	APIResponse[appreturns.SuggestionResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/returns/{id}/suggestion [get]
func (h *ReturnHandler) GetSuggestion(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetSuggestion(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
//
//	@ID				listReturns
//	@Summary		List returns
//	@Tags			returns
//	@Produce		json
//	@Param			location_id		query		string	false	"Location"	format(uuid)
//	@Param			status			query		string	false	"Status"
//	@Param			return_category	query		string	false	"Return category"
//	@Param			source_type		query		string	false	"Source type"
//	@Param			search			query		string	false	"Matches return number, product or customer"
//	@Param			date_from		query		string	false	"YYYY-MM-DD or RFC3339"
//	@Param			date_to			query		string	false	"YYYY-MM-DD or RFC3339"
//	@Param			page			query		int		false	"Page"		default(1)
//	@Param			page_size		query		int		false	"Page size"	default(20)
//	@Param			order_by		query		string	false	"Sort field"	default(created_at)
//	@Param			order_dir		query		string	false	"asc or desc"	default(desc)
//	@Success		200				{object}	APIResponse[[]appreturns.ReturnListItemResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		422				{object}	ErrorResponse
//	@Router			/returns [get]
func (h *ReturnHandler) List(c *gin.Context) {
	var filter appreturns.ReturnListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	page, pageSize := filter.Pagination()
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Stats godoc
//
//	@ID				getReturnStats
//	@Summary		Return counts and totals
//	@Tags			returns
//	@Produce		json
//	@Param			location_id	query		string	false	"Location"	format(uuid)
//	@Param			date_from	query		string	false	"YYYY-MM-DD or RFC3339"
//	@Param			date_to		query		string	false	"YYYY-MM-DD or RFC3339"
//	@Success		200			{object}	APIResponse[returns.Stats]
//	@Failure		422			{object}	ErrorResponse
//	@Router			/returns/stats [get]
func (h *ReturnHandler) Stats(c *gin.Context) {
	var q appreturns.StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), q)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, stats)
}

// Analytics godoc
//
//	@ID				getReturnAnalytics
//	@Summary		Return breakdowns and trends
//	@Tags			returns
//	@Produce		json
//	@Param			location_id	query		string	false	"Location"	format(uuid)
//	@Param			date_from	query		string	false	"YYYY-MM-DD or RFC3339"
//	@Param			date_to		query		string	false	"YYYY-MM-DD or RFC3339"
//	@Success		200			{object}	APIResponse[returns.Analytics]
//	@Failure		422			{object}	ErrorResponse
//	@Router			/returns/analytics [get]
func (h *ReturnHandler) Analytics(c *gin.Context) {
	var q appreturns.StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}
	analytics, err := h.service.Analytics(c.Request.Context(), q)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, analytics)
}

// SearchCustomers godoc
//
//	@ID				searchReturnCustomers
//	@Summary		Look up customers by phone
//	@Tags			returns
//	@Produce		json
//	@Param			phone	query		string	true	"Phone number"
//	@Success		200		{object}	APIResponse[[]returns.Customer]
//	@Failure		422		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/returns/customers [get]
func (h *ReturnHandler) SearchCustomers(c *gin.Context) {
	customers, err := h.service.SearchCustomers(c.Request.Context(), c.Query("phone"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, customers)
}

// RejectionReasons godoc
//
//	@ID				listRejectionReasons
//	@Summary		List the offered rejection reasons
//	@Tags			returns
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]string]
//	@Router			/returns/rejection-reasons [get]
func (h *ReturnHandler) RejectionReasons(c *gin.Context) {
	h.Success(c, returns.RejectionReasons())
}

// mutate runs the shared path of every lifecycle PATCH and DELETE. An empty
// body binds as the zero request so missing fields surface as guard failures.
func mutate[Req any](
	h *ReturnHandler,
	c *gin.Context,
	req *Req,
	stamp func(*Req, uuid.UUID),
	call func(context.Context, uuid.UUID, Req) (*appreturns.ReturnResponse, error),
) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	actorID, ok := h.requireActor(c)
	if !ok {
		return
	}
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		h.BindingError(c, err)
		return
	}
	stamp(req, actorID)

	resp, err := call(c.Request.Context(), id, *req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
