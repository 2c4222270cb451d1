package status

import (
	"net/http"

	"autotasking/pkg/errutil"
	"autotasking/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type setRequest struct {
	DestinationID string `json:"destinationId"`
	VideoID       string `json:"videoId"`
	Completed     bool   `json:"completed"`
}

func (r setRequest) entity(t tracker) string {
	if t.entity == "video_id" {
		return r.VideoID
	}
	return r.DestinationID
}

func (h *Handler) Get(platform Platform) gin.HandlerFunc {
	t := trackers[platform]
	return func(c *gin.Context) {
		id, ok := middleware.IdentityFrom(c)
		if !ok || id.ID == "" {
			_ = c.Error(errutil.Unauthorized("unauthorized", nil))
			return
		}

		items, err := h.svc.GetStatus(c.Request.Context(), platform, id.ID)
		if err != nil {
			_ = c.Error(err)
			return
		}

		out := make([]gin.H, 0, len(items))
		for _, it := range items {
			out = append(out, gin.H{t.entity: it.EntityID, "completed": it.Completed})
		}
		c.JSON(http.StatusOK, gin.H{"items": out})
	}
}

func (h *Handler) Set(platform Platform) gin.HandlerFunc {
	t := trackers[platform]
	return func(c *gin.Context) {
		id, ok := middleware.IdentityFrom(c)
		if !ok || id.ID == "" {
			_ = c.Error(errutil.Unauthorized("unauthorized", nil))
			return
		}

		var req setRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid JSON body", err))
			return
		}

		rec, err := h.svc.SetStatus(c.Request.Context(), platform, id.ID, req.entity(t), req.Completed)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "completed": rec.Completed})
	}
}
