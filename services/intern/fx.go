package intern

import (
	"autotasking/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("intern.module",
	fx.Provide(NewService, NewHandler),
)

var ServerModule = fx.Module("intern.server",
	Module,
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *httpapi.Router, h *Handler) {
	r.Public.POST("/login", h.Login)
	r.Public.POST("/logout", h.Logout)

	r.API.GET("/interns", h.List)
	r.API.POST("/interns", h.Register)
}
