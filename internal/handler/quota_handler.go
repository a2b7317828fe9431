package handler

import (
	"net/http"

	"go-quota-availability/internal/model"
	"go-quota-availability/internal/service"
	apperrors "go-quota-availability/pkg/app_errors"
	"go-quota-availability/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QuotaHandler struct {
	service service.QuotaService
}

func NewQuotaHandler(service service.QuotaService) *QuotaHandler {
	return &QuotaHandler{service: service}
}

func (h *QuotaHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("quotas", h.List)
		router.GET("quotas/:uuid", h.GetByQuotaID)
		router.POST("quotas", h.Create)
		router.POST("quotas/:uuid/close", h.CloseByQuotaID)
		router.POST("quotas/:uuid/reopen", h.ReopenByQuotaID)
	}
}

// CreateQuotaRequest 建立配額請求。Size 為 null 表示無上限。
type CreateQuotaRequest struct {
	EventID    int    `json:"event_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Size       *int   `json:"size"`
	SubEventID *int   `json:"sub_event_id"`
}

func (h *QuotaHandler) List(c *gin.Context) {
	quotas, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, quotas)
}

func (h *QuotaHandler) GetByQuotaID(c *gin.Context) {
	quotaID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quota uuid"})
		return
	}
	quota, err := h.service.GetByQuotaID(c, quotaID)
	if err != nil {
		h.handleError(c, err, "GetByQuotaID")
		return
	}
	c.JSON(http.StatusOK, quota)
}

func (h *QuotaHandler) Create(c *gin.Context) {
	var req CreateQuotaRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if req.Size != nil && *req.Size < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	quota := &model.Quota{
		EventID:    req.EventID,
		Name:       req.Name,
		Size:       req.Size,
		SubEventID: req.SubEventID,
	}
	created, err := h.service.Create(c, quota)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *QuotaHandler) CloseByQuotaID(c *gin.Context) {
	quotaID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quota uuid"})
		return
	}
	if err := h.service.CloseByQuotaID(c, quotaID); err != nil {
		h.handleError(c, err, "CloseByQuotaID")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuotaHandler) ReopenByQuotaID(c *gin.Context) {
	quotaID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quota uuid"})
		return
	}
	if err := h.service.ReopenByQuotaID(c, quotaID); err != nil {
		h.handleError(c, err, "ReopenByQuotaID")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuotaHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case err == apperrors.ErrQuotaNotFound:
		log.Warn("Quota not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Quota not found"})
	case err == apperrors.ErrEventNotFound:
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case err == apperrors.ErrInvalidInput:
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
