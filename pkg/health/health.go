package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("health", fx.Provide(ProvideHealth))

type Dependency struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Health struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Deps    []Dependency `json:"deps,omitempty"`
}

type HealthService interface {
	Liveness(c *gin.Context)
	Readiness(c *gin.Context)
}

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type health struct {
	db      *gorm.DB
	storage Pinger
}

type HealthParams struct {
	fx.In
	DB      *gorm.DB `optional:"true"`
	Storage Pinger   `optional:"true"`
}

func ProvideHealth(p HealthParams) HealthService {
	return &health{
		db:      p.DB,
		storage: p.Storage,
	}
}

func (h *health) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, &Health{
		Status:  "healthy",
		Message: "OK",
	})
}

func (h *health) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	this := &Health{
		Status:  "healthy",
		Message: "OK",
	}

	if h.db != nil {
		this.Deps = append(this.Deps, check("database", func() error {
			sqlDB, err := h.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}))
	}

	if h.storage != nil {
		this.Deps = append(this.Deps, check("object_storage", func() error {
			return h.storage.Ping(ctx)
		}))
	}

	code := http.StatusOK
	for _, dep := range this.Deps {
		if dep.Status != "healthy" {
			this.Status = "unhealthy"
			this.Message = dep.Name + " unavailable"
			code = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(code, this)
}

func check(name string, ping func() error) Dependency {
	dep := Dependency{Name: name, Status: "healthy", Message: "OK"}
	if err := ping(); err != nil {
		dep.Status = "unhealthy"
		dep.Message = err.Error()
	}
	return dep
}
