package video

import (
	"autotasking/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("video.module",
	fx.Provide(NewService, NewHandler),
)

var ServerModule = fx.Module("video.server",
	Module,
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *httpapi.Router, h *Handler) {
	r.API.GET("/youtube-videos", h.List)
	r.API.POST("/youtube-videos", h.Upload)
	r.API.DELETE("/youtube-videos", h.Delete)
}
