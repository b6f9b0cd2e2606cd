package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/taskaloop-ledger/handlers"
)

// SetupRoutes configures all API routes for the application
func SetupRoutes(router *gin.Engine, ledgerHandler *handlers.LedgerHandler, exportHandler *handlers.ExportHandler) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	users := v1.Group("/users/:userId")
	{
		// Recording
		users.POST("/expenses", ledgerHandler.AddExpense)
		users.POST("/payments", ledgerHandler.AddPayment)

		// Transaction lifecycle
		users.GET("/transactions", ledgerHandler.ListTransactions)
		users.POST("/transactions/:id/confirm", ledgerHandler.ConfirmTransaction)
		users.POST("/transactions/:id/cancel", ledgerHandler.CancelTransaction)
		users.PATCH("/transactions/:id/category", ledgerHandler.SetCategory)

		// Derived views
		users.GET("/balances", ledgerHandler.GetBalances)
		users.GET("/settlements", ledgerHandler.GetSettlements)
		users.GET("/categories", ledgerHandler.GetCategories)
		users.GET("/export", exportHandler.ExportLedger)
	}
}
