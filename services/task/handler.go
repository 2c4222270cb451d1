package task

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

func (h *Handler) DailyTasks(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.ID == "" {
		_ = c.Error(errutil.Unauthorized("unauthorized", nil))
		return
	}

	tasks, generated, err := h.svc.GetToday(c.Request.Context(), id.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "generated": generated})
}

type addRequest struct {
	Title string `json:"title"`
}

func (h *Handler) Add(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.ID == "" {
		_ = c.Error(errutil.Unauthorized("unauthorized", nil))
		return
	}

	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid JSON body", err))
		return
	}

	if _, err := h.svc.AddManual(c.Request.Context(), id.ID, req.Title); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
