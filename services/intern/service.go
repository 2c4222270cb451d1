package intern

import (
	"context"
	"errors"
	"strings"
	"time"

	"autotasking/pkg/db/option"
	"autotasking/pkg/errutil"
	"autotasking/pkg/logger"
	"autotasking/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("services/intern")

type Service struct {
	node *snowflake.Node
	repo repository.Repository[Intern]
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
		repo: repository.ProvideStore[Intern](p.DB),
		now:  time.Now,
	}
}

// Register creates an intern with a bcrypt hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*Intern, error) {
	ctx, span := tracer.Start(ctx, "intern.Register")
	defer span.End()

	zapLog := logger.WithTrace(ctx)

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, errutil.ValidationFailed("username and password are required", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errutil.Internal("hash password", err)
	}

	intern := &Intern{
		ID:           s.node.Generate().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, intern); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errutil.Conflict("username already taken", nil)
		}
		zapLog.Error("failed to create intern", zap.String("username", username), zap.Error(err))
		return nil, errutil.Store("create intern", err)
	}

	zapLog.Info("intern registered", zap.String("intern_id", intern.ID))
	return intern, nil
}

func (s *Service) List(ctx context.Context) ([]*Intern, error) {
	ctx, span := tracer.Start(ctx, "intern.List")
	defer span.End()

	interns, err := s.repo.Find(ctx, &Intern{}, option.WithSortBy(option.QuerySortBy{OrderBy: "desc"}))
	if err != nil {
		logger.WithTrace(ctx).Error("failed to list interns", zap.Error(err))
		return nil, errutil.Store("list interns", err)
	}
	return interns, nil
}

// Authenticate returns the intern whose credentials match.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Intern, error) {
	ctx, span := tracer.Start(ctx, "intern.Authenticate")
	defer span.End()

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, errutil.ValidationFailed("username and password are required", nil)
	}

	intern, err := s.repo.FindOne(ctx, &Intern{Username: username})
	if err != nil {
		logger.WithTrace(ctx).Error("failed to find intern", zap.Error(err))
		return nil, errutil.Store("find intern", err)
	}
	if intern == nil {
		return nil, errutil.Unauthorized("invalid credentials", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(intern.PasswordHash), []byte(password)); err != nil {
		return nil, errutil.Unauthorized("invalid credentials", nil)
	}
	return intern, nil
}
