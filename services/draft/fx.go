package draft

import (
	"autotasking/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("draft.module",
	fx.Provide(NewService, NewHandler),
)

var ServerModule = fx.Module("draft.server",
	Module,
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *httpapi.Router, h *Handler) {
	r.API.POST("/reddit-prompt", h.Generate)
}
