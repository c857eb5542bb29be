package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samantr/randp-backend/internal/auth"
	"github.com/samantr/randp-backend/internal/middleware"
	"github.com/samantr/randp-backend/internal/service"
	"github.com/samantr/randp-backend/internal/storage"
)

// NewRouter assembles the full API surface. Auth endpoints, /healthz and
// /metrics are public; everything under /api/v1 requires a Bearer token.
func NewRouter(store storage.Store, jwtManager *auth.JWTManager) *gin.Engine {
	authService := service.NewAuthService(
		auth.NewPasswordAuthenticator(store), jwtManager, store)

	authHandler := NewAuthHandler(authService)
	debtHandler := NewDebtHandler(service.NewDebtService(store))
	txHandler := NewTransactionHandler(service.NewTransactionService(store))
	allocHandler := NewAllocationHandler(service.NewAllocationService(store))
	reportHandler := NewReportHandler(service.NewReportService(store))
	masterHandler := NewMasterDataHandler(service.NewMasterDataService(store))
	docHandler := NewDocumentHandler(service.NewDocumentService(store))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	api := v1.Group("/")
	api.Use(middleware.RequireAuth(jwtManager))
	{
		api.GET("/auth/me", authHandler.Me)

		api.POST("/persons", masterHandler.CreatePerson)
		api.GET("/persons", masterHandler.ListPersons)
		api.GET("/persons/:id", masterHandler.GetPerson)

		api.POST("/projects", masterHandler.CreateProject)
		api.GET("/projects", masterHandler.ListProjects)
		api.GET("/projects/:id", masterHandler.GetProject)
		api.PUT("/projects/:id", masterHandler.UpdateProject)

		api.POST("/items", masterHandler.CreateItem)
		api.GET("/items", masterHandler.ListItems)
		api.GET("/items/:id", masterHandler.GetItem)

		api.POST("/units", masterHandler.CreateUnit)
		api.GET("/units", masterHandler.ListUnits)
		api.GET("/units/:id", masterHandler.GetUnit)

		api.POST("/debts", debtHandler.Create)
		api.GET("/debts", debtHandler.List)
		api.GET("/debts/open", debtHandler.Open)
		api.GET("/debts/:id", debtHandler.Get)
		api.PUT("/debts/:id", debtHandler.Update)
		api.DELETE("/debts/:id", debtHandler.Delete)
		api.GET("/debts/:id/view", debtHandler.View)

		api.GET("/debts/:id/allocations", allocHandler.ListForDebt)
		api.POST("/debts/:id/allocations", allocHandler.CreateForDebt)
		api.GET("/debts/:id/allocations/candidates", allocHandler.CandidatesForDebt)
		api.PUT("/debts/:id/allocations/:allocId", allocHandler.UpdateForDebt)
		api.DELETE("/debts/:id/allocations/:allocId", allocHandler.DeleteForDebt)

		api.GET("/debts/:id/documents", docHandler.ListForDebt)
		api.POST("/debts/:id/documents", docHandler.AttachToDebt)
		api.DELETE("/debts/:id/documents/:docId", docHandler.DetachFromDebt)

		api.POST("/transactions", txHandler.Create)
		api.GET("/transactions", txHandler.List)
		api.GET("/transactions/:id", txHandler.Get)
		api.PUT("/transactions/:id", txHandler.Update)
		api.DELETE("/transactions/:id", txHandler.Delete)

		api.GET("/transactions/:id/allocations", allocHandler.ListForTransaction)
		api.POST("/transactions/:id/allocations", allocHandler.CreateForTransaction)
		api.GET("/transactions/:id/allocations/candidates", allocHandler.CandidatesForTransaction)
		api.PUT("/transactions/:id/allocations/:allocId", allocHandler.UpdateForTransaction)
		api.DELETE("/transactions/:id/allocations/:allocId", allocHandler.DeleteForTransaction)

		api.GET("/transactions/:id/documents", docHandler.ListForTransaction)
		api.POST("/transactions/:id/documents", docHandler.AttachToTransaction)
		api.DELETE("/transactions/:id/documents/:docId", docHandler.DetachFromTransaction)

		api.GET("/reports/ledger", reportHandler.Ledger)
		api.GET("/reports/person-balance", reportHandler.PersonBalance)
		api.GET("/reports/pair-balance", reportHandler.PairBalance)
	}

	return r
}
