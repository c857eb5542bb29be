package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/service"
)

// ReportHandler serves the ledger and balance read models.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Ledger handles GET /reports/ledger?projectId=&personId=&from=&to=.
func (h *ReportHandler) Ledger(c *gin.Context) {
	projectID, personID, ok := h.scope(c, "personId")
	if !ok {
		return
	}
	rows, err := h.reports.Ledger(c.Request.Context(), projectID, personID, c.Query("from"), c.Query("to"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		out = append(out, gin.H{
			"transactionId": r.TransactionID,
			"registeredAt":  r.RegisteredAt,
			"code":          r.Code,
			"fromPersonId":  r.FromPersonID,
			"toPersonId":    r.ToPersonID,
			"amount":        r.Amount,
			"delta":         r.Delta,
			"balance":       r.Balance,
			"note":          r.Note,
		})
	}
	c.JSON(http.StatusOK, out)
}

// PersonBalance handles GET /reports/person-balance?projectId=&personId=.
func (h *ReportHandler) PersonBalance(c *gin.Context) {
	projectID, personID, ok := h.scope(c, "personId")
	if !ok {
		return
	}
	b, err := h.reports.PersonBalance(c.Request.Context(), projectID, personID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projectId": b.ProjectID,
		"personId":  b.PersonID,
		"totalIn":   b.TotalIn,
		"totalOut":  b.TotalOut,
		"net":       b.Net,
	})
}

// PairBalance handles GET /reports/pair-balance?projectId=&fromPersonId=&toPersonId=.
func (h *ReportHandler) PairBalance(c *gin.Context) {
	projectID, fromPersonID, ok := h.scope(c, "fromPersonId")
	if !ok {
		return
	}
	toPersonID, ok := queryID(c, "toPersonId")
	if !ok {
		return
	}
	if toPersonID == 0 {
		writeError(c, apperr.New(apperr.Invalid, "toPersonId is required"))
		return
	}
	b, err := h.reports.PairBalance(c.Request.Context(), projectID, fromPersonID, toPersonID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projectId":    b.ProjectID,
		"fromPersonId": b.FromPersonID,
		"toPersonId":   b.ToPersonID,
		"aToB":         b.AToB,
		"bToA":         b.BToA,
		"net":          b.Net,
	})
}

// scope parses the required projectId plus one required person parameter.
func (h *ReportHandler) scope(c *gin.Context, personParam string) (projectID, personID int64, ok bool) {
	projectID, ok = queryID(c, "projectId")
	if !ok {
		return 0, 0, false
	}
	if projectID == 0 {
		writeError(c, apperr.New(apperr.Invalid, "projectId is required"))
		return 0, 0, false
	}
	personID, ok = queryID(c, personParam)
	if !ok {
		return 0, 0, false
	}
	if personID == 0 {
		writeError(c, apperr.New(apperr.Invalid, "%s is required", personParam))
		return 0, 0, false
	}
	return projectID, personID, true
}
