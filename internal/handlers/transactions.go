package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/service"
)

// TransactionHandler serves the payment record endpoints.
type TransactionHandler struct {
	transactions *service.TransactionService
}

// NewTransactionHandler creates a TransactionHandler.
func NewTransactionHandler(transactions *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type transactionRequest struct {
	ProjectID    int64           `json:"projectId"`
	FromPersonID int64           `json:"fromPersonId"`
	ToPersonID   int64           `json:"toPersonId"`
	Code         string          `json:"code"`
	DueDate      string          `json:"dueDate"`
	AmountPaid   decimal.Decimal `json:"amountPaid"`
	PaymentType  string          `json:"paymentType"`
	TxType       string          `json:"txType"`
	Note         string          `json:"note"`
}

func (r transactionRequest) toModel(id int64) *models.Transaction {
	return &models.Transaction{
		ID:           id,
		ProjectID:    r.ProjectID,
		FromPersonID: r.FromPersonID,
		ToPersonID:   r.ToPersonID,
		Code:         r.Code,
		DueDate:      r.DueDate,
		AmountPaid:   r.AmountPaid,
		PaymentType:  r.PaymentType,
		TxType:       r.TxType,
		Note:         r.Note,
	}
}

type transactionResponse struct {
	ID               int64            `json:"id"`
	ProjectID        int64            `json:"projectId"`
	FromPersonID     int64            `json:"fromPersonId"`
	ToPersonID       int64            `json:"toPersonId"`
	Code             string           `json:"code"`
	DueDate          string           `json:"dueDate"`
	AmountPaid       decimal.Decimal  `json:"amountPaid"`
	PaymentType      string           `json:"paymentType"`
	PaymentTypeTitle string           `json:"paymentTypeTitle"`
	TxType           string           `json:"txType"`
	TxTypeTitle      string           `json:"txTypeTitle"`
	RegisteredAt     int64            `json:"registeredAt"`
	Note             string           `json:"note,omitempty"`
	Allocated        *decimal.Decimal `json:"allocated,omitempty"`
	Remaining        *decimal.Decimal `json:"remaining,omitempty"`
}

func toTransactionResponse(t *models.Transaction) transactionResponse {
	return transactionResponse{
		ID:               t.ID,
		ProjectID:        t.ProjectID,
		FromPersonID:     t.FromPersonID,
		ToPersonID:       t.ToPersonID,
		Code:             t.Code,
		DueDate:          t.DueDate,
		AmountPaid:       t.AmountPaid,
		PaymentType:      t.PaymentType,
		PaymentTypeTitle: models.PaymentTypeTitles[t.PaymentType],
		TxType:           t.TxType,
		TxTypeTitle:      models.TxTypeTitles[t.TxType],
		RegisteredAt:     t.RegisteredAt,
		Note:             t.Note,
	}
}

func toTransactionDetailResponse(d *models.TransactionDetail) transactionResponse {
	resp := toTransactionResponse(&d.Transaction)
	allocated := d.Allocated
	remaining := d.Remaining
	resp.Allocated = &allocated
	resp.Remaining = &remaining
	return resp
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	t, err := h.transactions.Create(c.Request.Context(), req.toModel(0))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTransactionResponse(t))
}

// Get handles GET /transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.transactions.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionDetailResponse(d))
}

// List handles GET /transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	list, err := h.transactions.GetAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]transactionResponse, 0, len(list))
	for i := range list {
		out = append(out, toTransactionDetailResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Update handles PUT /transactions/:id.
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	t, err := h.transactions.Update(c.Request.Context(), req.toModel(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(t))
}

// Delete handles DELETE /transactions/:id.
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.transactions.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
