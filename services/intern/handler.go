package intern

import (
	"net/http"

	"autotasking/pkg/errutil"
	"autotasking/pkg/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc      *Service
	sessions *session.Manager
}

func NewHandler(svc *Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid JSON body", err))
		return
	}

	intern, err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	token, err := h.sessions.Issue(intern.ID, intern.Username)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.sessions.SetCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Logout(c *gin.Context) {
	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) List(c *gin.Context) {
	interns, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interns": interns})
}

func (h *Handler) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid JSON body", err))
		return
	}

	if _, err := h.svc.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
