package summary

import (
	"autotasking/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("summary.module",
	fx.Provide(NewService, NewHandler),
)

var ServerModule = fx.Module("summary.server",
	Module,
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *httpapi.Router, h *Handler) {
	r.API.GET("/admin-summary", h.Get)
}
