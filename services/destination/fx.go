package destination

import (
	"autotasking/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("destination.module",
	fx.Provide(NewService, NewHandler),
)

var ServerModule = fx.Module("destination.server",
	Module,
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *httpapi.Router, h *Handler) {
	r.API.GET("/destinations", h.List)
	r.API.POST("/destinations", h.Create)
	r.API.DELETE("/destinations", h.Delete)
}
