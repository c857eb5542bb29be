package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/service"
)

// DebtHandler serves the debt aggregate endpoints.
type DebtHandler struct {
	debts *service.DebtService
}

// NewDebtHandler creates a DebtHandler.
func NewDebtHandler(debts *service.DebtService) *DebtHandler {
	return &DebtHandler{debts: debts}
}

type debtLineRequest struct {
	ItemID    int64           `json:"itemId"`
	UnitID    int64           `json:"unitId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Note      string          `json:"note"`
}

type debtRequest struct {
	ProjectID int64             `json:"projectId"`
	PersonID  int64             `json:"personId"`
	DueDate   string            `json:"dueDate"`
	Note      string            `json:"note"`
	Lines     []debtLineRequest `json:"lines"`
}

func (r debtRequest) toModel(id int64) *models.Debt {
	d := &models.Debt{
		ID:        id,
		ProjectID: r.ProjectID,
		PersonID:  r.PersonID,
		DueDate:   r.DueDate,
		Note:      r.Note,
	}
	for _, l := range r.Lines {
		d.Lines = append(d.Lines, models.DebtLine{
			DebtID:    id,
			ItemID:    l.ItemID,
			UnitID:    l.UnitID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Note:      l.Note,
		})
	}
	return d
}

type debtLineResponse struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"itemId"`
	UnitID    int64           `json:"unitId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Note      string          `json:"note,omitempty"`
}

type debtResponse struct {
	ID           int64              `json:"id"`
	ProjectID    int64              `json:"projectId"`
	PersonID     int64              `json:"personId"`
	DueDate      string             `json:"dueDate"`
	RegisteredAt int64              `json:"registeredAt"`
	Note         string             `json:"note,omitempty"`
	Lines        []debtLineResponse `json:"lines"`
}

func toDebtResponse(d *models.Debt) debtResponse {
	resp := debtResponse{
		ID:           d.ID,
		ProjectID:    d.ProjectID,
		PersonID:     d.PersonID,
		DueDate:      d.DueDate,
		RegisteredAt: d.RegisteredAt,
		Note:         d.Note,
		Lines:        []debtLineResponse{},
	}
	for _, l := range d.Lines {
		resp.Lines = append(resp.Lines, debtLineResponse{
			ID:        l.ID,
			ItemID:    l.ItemID,
			UnitID:    l.UnitID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Note:      l.Note,
		})
	}
	return resp
}

type debtSummaryResponse struct {
	ID           int64           `json:"id"`
	ProjectID    int64           `json:"projectId"`
	PersonID     int64           `json:"personId"`
	DueDate      string          `json:"dueDate"`
	RegisteredAt int64           `json:"registeredAt"`
	Total        decimal.Decimal `json:"total"`
	Covered      decimal.Decimal `json:"covered"`
	Remaining    decimal.Decimal `json:"remaining"`
}

func toDebtSummaries(list []models.DebtSummary) []debtSummaryResponse {
	out := make([]debtSummaryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, debtSummaryResponse{
			ID:           s.DebtID,
			ProjectID:    s.ProjectID,
			PersonID:     s.PersonID,
			DueDate:      s.DueDate,
			RegisteredAt: s.RegisteredAt,
			Total:        s.Total,
			Covered:      s.Covered,
			Remaining:    s.Remaining,
		})
	}
	return out
}

// Create handles POST /debts.
func (h *DebtHandler) Create(c *gin.Context) {
	var req debtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	d, err := h.debts.Create(c.Request.Context(), req.toModel(0))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDebtResponse(d))
}

// Get handles GET /debts/:id.
func (h *DebtHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.debts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDebtResponse(d))
}

// List handles GET /debts.
func (h *DebtHandler) List(c *gin.Context) {
	list, err := h.debts.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDebtSummaries(list))
}

// Update handles PUT /debts/:id.
func (h *DebtHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req debtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	d, err := h.debts.Update(c.Request.Context(), req.toModel(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDebtResponse(d))
}

// Delete handles DELETE /debts/:id.
func (h *DebtHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.debts.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// View handles GET /debts/:id/view, the full read model with lines,
// allocations and derived amounts.
func (h *DebtHandler) View(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.debts.View(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	lines := make([]gin.H, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, gin.H{
			"id":        l.ID,
			"itemId":    l.ItemID,
			"itemTitle": l.ItemTitle,
			"unitId":    l.UnitID,
			"unitTitle": l.UnitTitle,
			"quantity":  l.Quantity,
			"unitPrice": l.UnitPrice,
			"lineTotal": l.LineTotal,
			"note":      l.Note,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"debt":        toDebtResponse(&v.Debt),
		"lines":       lines,
		"allocations": toAllocationDetails(v.Allocations),
		"total":       v.Total,
		"covered":     v.Covered,
		"remaining":   v.Remaining,
	})
}

// Open handles GET /debts/open?projectId=&personId=.
func (h *DebtHandler) Open(c *gin.Context) {
	projectID, ok := queryID(c, "projectId")
	if !ok {
		return
	}
	if projectID == 0 {
		writeError(c, apperr.New(apperr.Invalid, "projectId is required"))
		return
	}
	personID, ok := queryID(c, "personId")
	if !ok {
		return
	}
	list, err := h.debts.OpenDebts(c.Request.Context(), projectID, personID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDebtSummaries(list))
}
