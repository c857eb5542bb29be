package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/service"
)

// AllocationHandler serves the allocation engine from both sides: nested
// under debts and nested under transactions.
type AllocationHandler struct {
	allocations *service.AllocationService
}

// NewAllocationHandler creates an AllocationHandler.
func NewAllocationHandler(allocations *service.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocations: allocations}
}

// allocationRequest links the caller's record to a counterpart: the
// transaction when called under a debt, the debt when called under a
// transaction.
type allocationRequest struct {
	TransactionID int64           `json:"transactionId"`
	DebtID        int64           `json:"debtId"`
	Covered       decimal.Decimal `json:"covered"`
	Note          string          `json:"note"`
}

type allocationResponse struct {
	ID            int64           `json:"id"`
	DebtID        int64           `json:"debtId"`
	TransactionID int64           `json:"transactionId"`
	Covered       decimal.Decimal `json:"covered"`
	Note          string          `json:"note,omitempty"`
}

func toAllocationResponse(a *models.Allocation) allocationResponse {
	return allocationResponse{
		ID:            a.ID,
		DebtID:        a.DebtID,
		TransactionID: a.TransactionID,
		Covered:       a.Covered,
		Note:          a.Note,
	}
}

type allocationDetailResponse struct {
	allocationResponse
	TransactionCode         string          `json:"transactionCode"`
	TransactionRegisteredAt int64           `json:"transactionRegisteredAt"`
	TransactionAmount       decimal.Decimal `json:"transactionAmount"`
}

func toAllocationDetails(list []models.AllocationDetail) []allocationDetailResponse {
	out := make([]allocationDetailResponse, 0, len(list))
	for i := range list {
		d := &list[i]
		out = append(out, allocationDetailResponse{
			allocationResponse:      toAllocationResponse(&d.Allocation),
			TransactionCode:         d.TransactionCode,
			TransactionRegisteredAt: d.TransactionRegisteredAt,
			TransactionAmount:       d.TransactionAmount,
		})
	}
	return out
}

// CreateForDebt handles POST /debts/:id/allocations.
func (h *AllocationHandler) CreateForDebt(c *gin.Context) {
	debtID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	if req.TransactionID <= 0 {
		writeError(c, apperr.New(apperr.Invalid, "transactionId is required"))
		return
	}
	a, err := h.allocations.CreateFromDebt(c.Request.Context(), debtID, req.TransactionID, req.Covered, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAllocationResponse(a))
}

// ListForDebt handles GET /debts/:id/allocations.
func (h *AllocationHandler) ListForDebt(c *gin.Context) {
	debtID, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.allocations.ListByDebt(c.Request.Context(), debtID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAllocationDetails(list))
}

// UpdateForDebt handles PUT /debts/:id/allocations/:allocId.
func (h *AllocationHandler) UpdateForDebt(c *gin.Context) {
	debtID, ok := pathID(c, "id")
	if !ok {
		return
	}
	allocID, ok := pathID(c, "allocId")
	if !ok {
		return
	}
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	if req.TransactionID <= 0 {
		writeError(c, apperr.New(apperr.Invalid, "transactionId is required"))
		return
	}
	a, err := h.allocations.UpdateFromDebt(c.Request.Context(), debtID, allocID, req.TransactionID, req.Covered, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAllocationResponse(a))
}

// DeleteForDebt handles DELETE /debts/:id/allocations/:allocId.
func (h *AllocationHandler) DeleteForDebt(c *gin.Context) {
	debtID, ok := pathID(c, "id")
	if !ok {
		return
	}
	allocID, ok := pathID(c, "allocId")
	if !ok {
		return
	}
	if err := h.allocations.DeleteFromDebt(c.Request.Context(), debtID, allocID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CandidatesForDebt handles GET /debts/:id/allocations/candidates.
// The optional allocationId query names the allocation being edited so its
// linked transaction's editable remaining can include the old amount.
func (h *AllocationHandler) CandidatesForDebt(c *gin.Context) {
	debtID, ok := pathID(c, "id")
	if !ok {
		return
	}
	allocID, ok := queryID(c, "allocationId")
	if !ok {
		return
	}
	cands, err := h.allocations.TransactionCandidatesForDebt(c.Request.Context(), debtID, allocID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(cands))
	for _, cand := range cands {
		out = append(out, gin.H{
			"transactionId":     cand.TransactionID,
			"code":              cand.Code,
			"registeredAt":      cand.RegisteredAt,
			"amountPaid":        cand.AmountPaid,
			"allocated":         cand.Allocated,
			"remaining":         cand.Remaining,
			"editableRemaining": cand.EditableRemaining,
		})
	}
	c.JSON(http.StatusOK, out)
}

// CreateForTransaction handles POST /transactions/:id/allocations.
func (h *AllocationHandler) CreateForTransaction(c *gin.Context) {
	txID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	if req.DebtID <= 0 {
		writeError(c, apperr.New(apperr.Invalid, "debtId is required"))
		return
	}
	a, err := h.allocations.CreateFromTransaction(c.Request.Context(), txID, req.DebtID, req.Covered, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAllocationResponse(a))
}

// ListForTransaction handles GET /transactions/:id/allocations.
func (h *AllocationHandler) ListForTransaction(c *gin.Context) {
	txID, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.allocations.ListByTransaction(c.Request.Context(), txID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAllocationDetails(list))
}

// UpdateForTransaction handles PUT /transactions/:id/allocations/:allocId.
func (h *AllocationHandler) UpdateForTransaction(c *gin.Context) {
	txID, ok := pathID(c, "id")
	if !ok {
		return
	}
	allocID, ok := pathID(c, "allocId")
	if !ok {
		return
	}
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	if req.DebtID <= 0 {
		writeError(c, apperr.New(apperr.Invalid, "debtId is required"))
		return
	}
	a, err := h.allocations.UpdateFromTransaction(c.Request.Context(), txID, allocID, req.DebtID, req.Covered, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAllocationResponse(a))
}

// DeleteForTransaction handles DELETE /transactions/:id/allocations/:allocId.
func (h *AllocationHandler) DeleteForTransaction(c *gin.Context) {
	txID, ok := pathID(c, "id")
	if !ok {
		return
	}
	allocID, ok := pathID(c, "allocId")
	if !ok {
		return
	}
	if err := h.allocations.DeleteFromTransaction(c.Request.Context(), txID, allocID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CandidatesForTransaction handles GET /transactions/:id/allocations/candidates.
func (h *AllocationHandler) CandidatesForTransaction(c *gin.Context) {
	txID, ok := pathID(c, "id")
	if !ok {
		return
	}
	allocID, ok := queryID(c, "allocationId")
	if !ok {
		return
	}
	cands, err := h.allocations.DebtCandidatesForTransaction(c.Request.Context(), txID, allocID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(cands))
	for _, cand := range cands {
		out = append(out, gin.H{
			"debtId":            cand.DebtID,
			"personTitle":       cand.PersonTitle,
			"registeredAt":      cand.RegisteredAt,
			"total":             cand.Total,
			"allocated":         cand.Allocated,
			"remaining":         cand.Remaining,
			"editableRemaining": cand.EditableRemaining,
		})
	}
	c.JSON(http.StatusOK, out)
}
