package video

import (
	"net/http"

	"autotasking/pkg/errutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": out})
}

func (h *Handler) Upload(c *gin.Context) {
	req := UploadRequest{
		DestinationID: c.PostForm("destinationId"),
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
	}

	fh, err := c.FormFile("file")
	if err == nil {
		f, err := fh.Open()
		if err != nil {
			_ = c.Error(errutil.BadRequest("unreadable file", err))
			return
		}
		defer f.Close()

		req.Body = f
		req.FileName = fh.Filename
		req.Size = fh.Size
		req.ContentType = fh.Header.Get("Content-Type")
	}

	if _, err := h.svc.Upload(c.Request.Context(), req); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Query("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
