package task

import (
	"autotasking/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("task.module",
	fx.Provide(NewService, NewHandler),
)

var ServerModule = fx.Module("task.server",
	Module,
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *httpapi.Router, h *Handler) {
	r.API.POST("/daily-tasks", h.DailyTasks)
	r.API.POST("/tasks", h.Add)
}
