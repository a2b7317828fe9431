package handler

import (
	"net/http"
	"time"

	"go-quota-availability/internal/cache"
	"go-quota-availability/internal/model"
	"go-quota-availability/internal/service"
	apperrors "go-quota-availability/pkg/app_errors"
	"go-quota-availability/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	quotaService service.QuotaService
	availability service.AvailabilityService
	refresh      service.RefreshService
	snapshot     cache.AvailabilityCacheManager
}

func NewAvailabilityHandler(
	quotaService service.QuotaService,
	availability service.AvailabilityService,
	refresh service.RefreshService,
	snapshot cache.AvailabilityCacheManager,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		quotaService: quotaService,
		availability: availability,
		refresh:      refresh,
		snapshot:     snapshot,
	}
}

func (h *AvailabilityHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events/:uuid/availability", h.EventAvailability)
		router.GET("quotas/:uuid/availability", h.QuotaAvailability)
		router.GET("quotas/:uuid/breakdown", h.QuotaBreakdown)
		router.POST("quotas/:uuid/refresh", h.RefreshQuota)
	}
}

// AvailabilityQuery 計算參數；預設計入候補名單、尊重關閉旗標
type AvailabilityQuery struct {
	ExcludeWaitingList bool `form:"exclude_waiting_list"`
	IgnoreClosed       bool `form:"ignore_closed"`
}

func (q AvailabilityQuery) toOptions() service.ComputeOptions {
	opts := service.DefaultComputeOptions()
	opts.IncludeWaitingList = !q.ExcludeWaitingList
	opts.IgnoreClosed = q.IgnoreClosed
	return opts
}

// AvailabilityResponse 單一配額的可售狀態回應
type AvailabilityResponse struct {
	QuotaID    uuid.UUID  `json:"quota_id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Remaining  *int       `json:"remaining"`
	ComputedAt *time.Time `json:"computed_at,omitempty"`
	Source     string     `json:"source"`
}

// EventAvailability 店面用：快取優先，沒有快照的配額退回同步計算
func (h *AvailabilityHandler) EventAvailability(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
		return
	}

	_, quotas, err := h.quotaService.ListByEvent(c, eventID)
	if err != nil {
		h.handleError(c, err, "EventAvailability")
		return
	}

	responses := make([]AvailabilityResponse, 0, len(quotas))
	missing := make([]*model.Quota, 0)

	for _, q := range quotas {
		snapshot, found, err := h.snapshot.Get(c, q.ID)
		if err != nil || !found {
			if err != nil {
				logger.WithComponent("handler").Warn("read availability snapshot failed",
					zap.Int("quota_id", q.ID), zap.Error(err))
			}
			missing = append(missing, q)
			continue
		}
		computedAt := snapshot.ComputedAt
		responses = append(responses, AvailabilityResponse{
			QuotaID:    q.QuotaID,
			Name:       q.Name,
			Status:     snapshot.Status.String(),
			Remaining:  snapshot.Remaining,
			ComputedAt: &computedAt,
			Source:     "cache",
		})
	}

	if len(missing) > 0 {
		computed, err := h.availability.ComputeAvailability(c, missing, service.DefaultComputeOptions())
		if err != nil {
			h.handleError(c, err, "EventAvailability")
			return
		}
		for _, q := range missing {
			availability := computed[q.ID]
			responses = append(responses, AvailabilityResponse{
				QuotaID:   q.QuotaID,
				Name:      q.Name,
				Status:    availability.Status.String(),
				Remaining: availability.Remaining,
				Source:    "computed",
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"availabilities": responses})
}

// QuotaAvailability 同步計算單一配額
func (h *AvailabilityHandler) QuotaAvailability(c *gin.Context) {
	quotaID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quota uuid"})
		return
	}
	var query AvailabilityQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	quota, err := h.quotaService.GetByQuotaID(c, quotaID)
	if err != nil {
		h.handleError(c, err, "QuotaAvailability")
		return
	}

	result, err := h.availability.ComputeAvailability(c, []*model.Quota{quota}, query.toOptions())
	if err != nil {
		h.handleError(c, err, "QuotaAvailability")
		return
	}

	availability := result[quota.ID]
	c.JSON(http.StatusOK, AvailabilityResponse{
		QuotaID:   quota.QuotaID,
		Name:      quota.Name,
		Status:    availability.Status.String(),
		Remaining: availability.Remaining,
		Source:    "computed",
	})
}

// QuotaBreakdown 診斷模式：逐來源計數
func (h *AvailabilityHandler) QuotaBreakdown(c *gin.Context) {
	quotaID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quota uuid"})
		return
	}
	var query AvailabilityQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	quota, err := h.quotaService.GetByQuotaID(c, quotaID)
	if err != nil {
		h.handleError(c, err, "QuotaBreakdown")
		return
	}

	result, err := h.availability.ComputeBreakdown(c, []*model.Quota{quota}, query.toOptions())
	if err != nil {
		h.handleError(c, err, "QuotaBreakdown")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quota_id":  quota.QuotaID,
		"breakdown": result[quota.ID],
	})
}

// RefreshQuota 後台用：立刻重算並覆寫快取
func (h *AvailabilityHandler) RefreshQuota(c *gin.Context) {
	quotaID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quota uuid"})
		return
	}

	quota, err := h.quotaService.GetByQuotaID(c, quotaID)
	if err != nil {
		h.handleError(c, err, "RefreshQuota")
		return
	}

	if err := h.refresh.RefreshQuota(c, quota.ID); err != nil {
		h.handleError(c, err, "RefreshQuota")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AvailabilityHandler) handleError(c *gin.Context, err error, operation string) {
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
