package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/service"
)

// MasterDataHandler serves the person/project/item/unit reference records.
type MasterDataHandler struct {
	masterData *service.MasterDataService
}

// NewMasterDataHandler creates a MasterDataHandler.
func NewMasterDataHandler(masterData *service.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{masterData: masterData}
}

type personRequest struct {
	Name        string `json:"name"`
	LastName    string `json:"lastName"`
	CompanyName string `json:"companyName"`
	IsLegal     bool   `json:"isLegal"`
}

func toPersonResponse(p *models.Person) gin.H {
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"lastName":    p.LastName,
		"companyName": p.CompanyName,
		"isLegal":     p.IsLegal,
		"displayName": p.DisplayName(),
	}
}

// CreatePerson handles POST /persons.
func (h *MasterDataHandler) CreatePerson(c *gin.Context) {
	var req personRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	p, err := h.masterData.CreatePerson(c.Request.Context(), &models.Person{
		Name:        req.Name,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		IsLegal:     req.IsLegal,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPersonResponse(p))
}

// GetPerson handles GET /persons/:id.
func (h *MasterDataHandler) GetPerson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.masterData.GetPerson(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPersonResponse(p))
}

// ListPersons handles GET /persons.
func (h *MasterDataHandler) ListPersons(c *gin.Context) {
	list, err := h.masterData.ListPersons(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, toPersonResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

type projectRequest struct {
	Title    string `json:"title"`
	ParentID int64  `json:"parentId"`
}

func toProjectResponse(p *models.Project) gin.H {
	return gin.H{"id": p.ID, "title": p.Title, "parentId": p.ParentID}
}

// CreateProject handles POST /projects.
func (h *MasterDataHandler) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	p, err := h.masterData.CreateProject(c.Request.Context(), &models.Project{
		Title:    req.Title,
		ParentID: req.ParentID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProjectResponse(p))
}

// GetProject handles GET /projects/:id.
func (h *MasterDataHandler) GetProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.masterData.GetProject(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(p))
}

// ListProjects handles GET /projects.
func (h *MasterDataHandler) ListProjects(c *gin.Context) {
	list, err := h.masterData.ListProjects(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, toProjectResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// UpdateProject handles PUT /projects/:id.
func (h *MasterDataHandler) UpdateProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	p, err := h.masterData.UpdateProject(c.Request.Context(), &models.Project{
		ID:       id,
		Title:    req.Title,
		ParentID: req.ParentID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(p))
}

type titleRequest struct {
	Title string `json:"title"`
}

// CreateItem handles POST /items.
func (h *MasterDataHandler) CreateItem(c *gin.Context) {
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	i, err := h.masterData.CreateItem(c.Request.Context(), &models.Item{Title: req.Title})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": i.ID, "title": i.Title})
}

// GetItem handles GET /items/:id.
func (h *MasterDataHandler) GetItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	i, err := h.masterData.GetItem(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": i.ID, "title": i.Title})
}

// ListItems handles GET /items.
func (h *MasterDataHandler) ListItems(c *gin.Context) {
	list, err := h.masterData.ListItems(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, i := range list {
		out = append(out, gin.H{"id": i.ID, "title": i.Title})
	}
	c.JSON(http.StatusOK, out)
}

// CreateUnit handles POST /units.
func (h *MasterDataHandler) CreateUnit(c *gin.Context) {
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.Invalid, err, "invalid request body"))
		return
	}
	u, err := h.masterData.CreateUnit(c.Request.Context(), &models.Unit{Title: req.Title})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": u.ID, "title": u.Title})
}

// GetUnit handles GET /units/:id.
func (h *MasterDataHandler) GetUnit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := h.masterData.GetUnit(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "title": u.Title})
}

// ListUnits handles GET /units.
func (h *MasterDataHandler) ListUnits(c *gin.Context) {
	list, err := h.masterData.ListUnits(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, u := range list {
		out = append(out, gin.H{"id": u.ID, "title": u.Title})
	}
	c.JSON(http.StatusOK, out)
}
