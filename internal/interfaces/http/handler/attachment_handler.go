package handler

import (
	appreturns "github.com/erp/returns/internal/application/returns"
	"github.com/gin-gonic/gin"
)

// AttachmentHandler serves inspection evidence uploads
type AttachmentHandler struct {
	BaseHandler
	service *appreturns.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(service *appreturns.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// RequestUpload godoc
//
//	@ID				requestReturnAttachmentUpload
//	@Summary		Request an evidence upload URL
//	@Description	Registers an attachment and returns a presigned PUT URL. Terminal returns accept no new evidence.
//	@Tags			return-attachments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Return ID"	format(uuid)
//	@Param			request	body		appreturns.RequestAttachmentRequest	true	"File metadata"
//	@Success		201		{object}	APIResponse[appreturns.AttachmentUploadResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/returns/{id}/attachments [post]
func (h *AttachmentHandler) RequestUpload(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	actorID, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req appreturns.RequestAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.ActorID = actorID

	resp, err := h.service.RequestUpload(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
//
//	@ID				listReturnAttachments
//	@Summary		List evidence attachments
//	@Tags			return-attachments
//	@Produce		json
//	@Param			id	path		string	true	"Return ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]appreturns.AttachmentResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/returns/{id}/attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, items)
}
