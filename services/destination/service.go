package destination

import (
	"context"
	"strings"
	"time"

	"autotasking/pkg/db/option"
	"autotasking/pkg/errutil"
	"autotasking/pkg/logger"
	"autotasking/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("services/destination")

type Service struct {
	node *snowflake.Node
	repo repository.Repository[Destination]
	now  func() time.Time
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		node: p.Node,
		repo: repository.ProvideStore[Destination](p.DB),
		now:  time.Now,
	}
}

type CreateRequest struct {
	Platform string  `json:"platform"`
	Name     string  `json:"name"`
	URL      *string `json:"url"`
	Prompt   *string `json:"prompt"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Destination, error) {
	ctx, span := tracer.Start(ctx, "destination.Create")
	defer span.End()

	platform, ok := ParsePlatform(strings.TrimSpace(req.Platform))
	if !ok {
		return nil, errutil.ValidationFailed("platform must be one of Reddit, Facebook, YouTube, Other", nil)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errutil.ValidationFailed("name is required", nil)
	}

	d := &Destination{
		ID:        s.node.Generate().String(),
		Platform:  platform,
		Name:      name,
		URL:       trimmedOrNil(req.URL),
		Prompt:    trimmedOrNil(req.Prompt),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		logger.WithTrace(ctx).Error("failed to create destination", zap.Error(err))
		return nil, errutil.Store("create destination", err)
	}
	return d, nil
}

// List returns destinations newest first, optionally for one platform.
func (s *Service) List(ctx context.Context, platform Platform) ([]*Destination, error) {
	ctx, span := tracer.Start(ctx, "destination.List")
	defer span.End()
	span.SetAttributes(attribute.String("platform", string(platform)))

	out, err := s.repo.Find(ctx, &Destination{Platform: platform}, option.WithSortBy(option.QuerySortBy{OrderBy: "desc"}))
	if err != nil {
		logger.WithTrace(ctx).Error("failed to list destinations", zap.Error(err))
		return nil, errutil.Store("list destinations", err)
	}
	return out, nil
}

// ListForGeneration returns every destination oldest first.
func (s *Service) ListForGeneration(ctx context.Context) ([]*Destination, error) {
	ctx, span := tracer.Start(ctx, "destination.ListForGeneration")
	defer span.End()

	out, err := s.repo.Find(ctx, &Destination{}, option.WithSortBy(option.QuerySortBy{OrderBy: "asc"}))
	if err != nil {
		logger.WithTrace(ctx).Error("failed to list destinations", zap.Error(err))
		return nil, errutil.Store("list destinations", err)
	}
	return out, nil
}

// Get returns nil, nil when id is unknown.
func (s *Service) Get(ctx context.Context, id string) (*Destination, error) {
	d, err := s.repo.FindOne(ctx, &Destination{ID: id})
	if err != nil {
		return nil, errutil.Store("get destination", err)
	}
	return d, nil
}

func (s *Service) Count(ctx context.Context, platform Platform) (int64, error) {
	n, err := s.repo.Count(ctx, &Destination{Platform: platform})
	if err != nil {
		return 0, errutil.Store("count destinations", err)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "destination.Delete")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return errutil.ValidationFailed("id is required", nil)
	}

	n, err := s.repo.Delete(ctx, &Destination{ID: id})
	if err != nil {
		logger.WithTrace(ctx).Error("failed to delete destination", zap.String("id", id), zap.Error(err))
		return errutil.Store("delete destination", err)
	}
	if n == 0 {
		return errutil.NotFound("destination not found", nil)
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
