package video

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"autotasking/pkg/db/option"
	"autotasking/pkg/errutil"
	"autotasking/pkg/logger"
	"autotasking/pkg/minio"
	"autotasking/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("services/video")

const signConcurrency = 8

// ObjectStore holds the uploaded payloads.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	SignedURL(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

type UploadRequest struct {
	DestinationID string
	Title         string
	Description   string
	FileName      string
	ContentType   string
	Size          int64
	Body          io.Reader
}

type Service struct {
	repo  repository.Repository[Video]
	store ObjectStore
	node  *snowflake.Node
	now   func() time.Time
}

type ServiceParams struct {
	fx.In
	DB      *gorm.DB
	Node    *snowflake.Node
	Storage *minio.Storage
}

func NewService(p ServiceParams) *Service {
	return &Service{
		repo:  repository.ProvideStore[Video](p.DB),
		store: p.Storage,
		node:  p.Node,
		now:   time.Now,
	}
}

// ObjectKey builds youtube/<destination>/<unix millis>_<name>.
func ObjectKey(destinationID, fileName string, at time.Time) string {
	return fmt.Sprintf("youtube/%s/%d_%s", destinationID, at.UnixMilli(), safeName(fileName))
}

// safeName slugs the base name and keeps a lower-cased extension.
func safeName(name string) string {
	name = filepath.Base(name)
	ext := strings.ToLower(filepath.Ext(name))
	base := slug.Make(strings.TrimSuffix(name, filepath.Ext(name)))
	if base == "" {
		base = "video"
	}
	if ext = slug.Make(ext); ext != "" {
		return base + "." + ext
	}
	return base
}

// Upload stores the payload, then the metadata row. If the row cannot be
// written the object is removed again.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*Video, error) {
	ctx, span := tracer.Start(ctx, "video.Upload")
	defer span.End()

	destID := strings.TrimSpace(req.DestinationID)
	title := strings.TrimSpace(req.Title)
	desc := strings.TrimSpace(req.Description)
	if destID == "" || title == "" || desc == "" || req.Body == nil {
		return nil, errutil.ValidationFailed("destinationId, title, description, and file are required", nil)
	}

	now := s.now().UTC()
	key := ObjectKey(destID, req.FileName, now)
	span.SetAttributes(attribute.String("object_key", key))

	zapLog := logger.WithTrace(ctx).With(zap.String("object_key", key))

	if err := s.store.Put(ctx, key, req.Body, req.Size, req.ContentType); err != nil {
		zapLog.Error("failed to upload video", zap.Error(err))
		return nil, err
	}

	v := &Video{
		ID:            s.node.Generate().String(),
		DestinationID: destID,
		Title:         title,
		Description:   desc,
		FilePath:      key,
		CreatedAt:     now,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		zapLog.Error("failed to insert video", zap.Error(err))
		if rmErr := s.store.Remove(context.WithoutCancel(ctx), key); rmErr != nil {
			zapLog.Warn("failed to remove orphaned object", zap.Error(rmErr))
		}
		return nil, errutil.Store("insert video", err)
	}
	return v, nil
}

// List returns every video newest first with a signed download link.
func (s *Service) List(ctx context.Context) ([]*Listing, error) {
	ctx, span := tracer.Start(ctx, "video.List")
	defer span.End()

	rows, err := s.repo.Find(ctx, &Video{}, option.WithSortBy(option.QuerySortBy{OrderBy: "desc"}))
	if err != nil {
		logger.WithTrace(ctx).Error("failed to list videos", zap.Error(err))
		return nil, errutil.Store("list videos", err)
	}

	out := make([]*Listing, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(signConcurrency)
	for i, v := range rows {
		out[i] = &Listing{Video: v}
		g.Go(func() error {
			u, err := s.store.SignedURL(gctx, v.FilePath)
			if err != nil {
				logger.WithTrace(gctx).Warn("failed to sign video url", zap.String("id", v.ID), zap.Error(err))
				return nil
			}
			out[i].DownloadURL = &u
			return nil
		})
	}
	_ = g.Wait()

	return out, nil
}

// Delete removes the object first, then the row.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "video.Delete")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return errutil.ValidationFailed("id is required", nil)
	}

	v, err := s.repo.FindOne(ctx, &Video{ID: id})
	if err != nil {
		return errutil.Store("get video", err)
	}
	if v == nil {
		return errutil.NotFound("video not found", nil)
	}

	if err := s.store.Remove(ctx, v.FilePath); err != nil {
		logger.WithTrace(ctx).Error("failed to remove video object", zap.String("id", id), zap.Error(err))
		return err
	}
	if _, err := s.repo.Delete(ctx, &Video{ID: id}); err != nil {
		logger.WithTrace(ctx).Error("failed to delete video", zap.String("id", id), zap.Error(err))
		return errutil.Store("delete video", err)
	}
	return nil
}

// CountCreatedBetween counts videos with created_at in [start, end).
func (s *Service) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	n, err := s.repo.Count(ctx, &Video{}, option.ApplyOperator(
		option.Condition{Field: "created_at", Operator: option.GTE, Value: start},
		option.Condition{Field: "created_at", Operator: option.LT, Value: end},
	))
	if err != nil {
		return 0, errutil.Store("count videos", err)
	}
	return n, nil
}
