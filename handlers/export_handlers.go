package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/taskaloop-ledger/services"
	"github.com/fadhlanhapp/taskaloop-ledger/utils"
)

// ExportHandler serves ledger downloads
type ExportHandler struct {
	exportService *services.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportLedger handles GET /users/:userId/export
func (h *ExportHandler) ExportLedger(c *gin.Context) {
	excelFile, filename, err := h.exportService.ExportLedgerToExcel(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	defer excelFile.Close()

	// Set headers for file download
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	if err := excelFile.Write(c.Writer); err != nil {
		utils.Logger.WithError(err).WithField("filename", filename).Error("Failed to write Excel file")
		// Headers and part of the body may already be on the wire
		if !c.Writer.Written() {
			utils.HandleError(c, utils.NewInternalError(utils.ErrFailedToExport))
			return
		}
		c.Abort()
	}
}
