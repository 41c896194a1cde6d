package handler

import (
	"net/http"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const reportFailedMessage = "Erro ao gerar relatório"

type ReportHandler interface {
	GetReport(c *gin.Context)
}

type reportHandler struct {
	service report.Service
	logger  *zap.Logger
}

func NewReportHandler(service report.Service, logger *zap.Logger) ReportHandler {
	return &reportHandler{
		service: service,
		logger:  logger,
	}
}

// GetReport handles GET /api/relatorios
// Query parameters:
// - periodo: hoje, semana, mes or todos (default todos; anything else behaves as todos)
func (h *reportHandler) GetReport(c *gin.Context) {
	periodo := c.DefaultQuery("periodo", report.DefaultPeriod)

	rep, err := h.service.Build(c.Request.Context(), periodo)
	if err != nil {
		h.logger.Error("Failed to build report", zap.String("periodo", periodo), zap.Error(err))
		message := err.Error()
		if message == "" {
			message = reportFailedMessage
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": message})
		return
	}

	c.JSON(http.StatusOK, rep)
}
