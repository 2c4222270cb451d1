package status

import (
	"autotasking/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("status.module",
	fx.Provide(NewService, NewHandler),
)

var ServerModule = fx.Module("status.server",
	Module,
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *httpapi.Router, h *Handler) {
	r.API.GET("/reddit-status", h.Get(Reddit))
	r.API.POST("/reddit-status", h.Set(Reddit))
	r.API.GET("/facebook-status", h.Get(Facebook))
	r.API.POST("/facebook-status", h.Set(Facebook))
	r.API.GET("/youtube-status", h.Get(YouTube))
	r.API.POST("/youtube-status", h.Set(YouTube))
}
