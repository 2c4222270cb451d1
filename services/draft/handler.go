package draft

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

type promptRequest struct {
	Prompt      string `json:"prompt"`
	Destination *struct {
		Name string  `json:"name"`
		URL  *string `json:"url"`
	} `json:"destination"`
	DestinationID string `json:"destinationId"`
}

func (h *Handler) Generate(c *gin.Context) {
	var body promptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(errutil.BadRequest("invalid JSON body", err))
		return
	}

	req := Request{Prompt: body.Prompt, DestinationID: body.DestinationID}
	if body.Destination != nil {
		req.Name = body.Destination.Name
		if body.Destination.URL != nil {
			req.URL = *body.Destination.URL
		}
	}

	draft, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, draft)
}
