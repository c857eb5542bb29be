package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/service"
)

// DocumentHandler serves attachment metadata nested under debts and
// transactions.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

type documentRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

func toDocumentResponse(d *models.Document) gin.H {
	return gin.H{
		"id":          d.ID,
		"ownerType":   d.OwnerType,
		"ownerId":     d.OwnerID,
		"fileName":    d.FileName,
		"contentType": d.ContentType,
		"size":        d.Size,
		"uploadedAt":  d.UploadedAt,
	}
}

// AttachToDebt handles POST /debts/:id/documents.
func (h *DocumentHandler) AttachToDebt(c *gin.Context) {
	h.attach(c, models.OwnerDebt)
}

// ListForDebt handles GET /debts/:id/documents.
func (h *DocumentHandler) ListForDebt(c *gin.Context) {
	h.list(c, models.OwnerDebt)
}

// AttachToTransaction handles POST /transactions/:id/documents.
func (h *DocumentHandler) AttachToTransaction(c *gin.Context) {
	h.attach(c, models.OwnerTransaction)
}

// ListForTransaction handles GET /transactions/:id/documents.
func (h *DocumentHandler) ListForTransaction(c *gin.Context) {
	h.list(c, models.OwnerTransaction)
}

// DetachFromDebt handles DELETE /debts/:id/documents/:docId.
func (h *DocumentHandler) DetachFromDebt(c *gin.Context) {
	h.detach(c, models.OwnerDebt)
}

// DetachFromTransaction handles DELETE /transactions/:id/documents/:docId.
func (h *DocumentHandler) DetachFromTransaction(c *gin.Context) {
	h.detach(c, models.OwnerTransaction)
}

func (h *DocumentHandler) detach(c *gin.Context, ownerType string) {
	ownerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}
	if err := h.documents.Detach(c.Request.Context(), ownerType, ownerID, docID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) attach(c *gin.Context, ownerType string) {
	ownerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	d, err := h.documents.Attach(c.Request.Context(), &models.Document{
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDocumentResponse(d))
}

func (h *DocumentHandler) list(c *gin.Context, ownerType string) {
	ownerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.documents.List(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, toDocumentResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}
