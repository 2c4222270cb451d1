package status

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autotasking/pkg/daykey"
	"autotasking/pkg/errutil"
	"autotasking/pkg/logger"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var tracer = otel.Tracer("services/status")

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	now  func() time.Time
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
		now:  time.Now,
	}
}

func lookup(platform Platform) (tracker, error) {
	t, ok := trackers[platform]
	if !ok {
		return tracker{}, errutil.Internal(fmt.Sprintf("unknown status platform %q", platform), nil)
	}
	return t, nil
}

func (t tracker) columns() string {
	return fmt.Sprintf("id, intern_id, %s AS entity_id, task_date, completed, completed_at, updated_at", t.entity)
}

// SetStatus upserts today's row for (intern, entity). Repeating the call
// with the same flag leaves a single row.
func (s *Service) SetStatus(ctx context.Context, platform Platform, internID, entityID string, completed bool) (*Record, error) {
	ctx, span := tracer.Start(ctx, "status.SetStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("platform", string(platform)),
		attribute.Bool("completed", completed),
	)

	t, err := lookup(platform)
	if err != nil {
		return nil, err
	}

	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return nil, errutil.ValidationFailed(t.param+" is required", nil)
	}

	now := s.now()
	day := daykey.Today(now)
	updatedAt := now.UTC()

	var completedAt any
	if completed {
		completedAt = updatedAt
	}

	row := map[string]any{
		"id":           s.node.Generate().String(),
		"intern_id":    internID,
		t.entity:       entityID,
		"task_date":    day,
		"completed":    completed,
		"completed_at": completedAt,
		"updated_at":   updatedAt,
	}

	err = s.db.WithContext(ctx).Table(t.table).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "intern_id"}, {Name: t.entity}, {Name: "task_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		logger.WithTrace(ctx).Error("failed to upsert status",
			zap.String("platform", string(platform)),
			zap.String("intern_id", internID),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
		return nil, errutil.Store("save status", err)
	}

	var rec Record
	err = s.db.WithContext(ctx).Table(t.table).
		Select(t.columns()).
		Where("intern_id = ?", internID).
		Where(t.entity+" = ?", entityID).
		Where("task_date = ?", day).
		Take(&rec).Error
	if err != nil {
		return nil, errutil.Store("read status", err)
	}
	return &rec, nil
}

// GetStatus returns the intern's rows for today only.
func (s *Service) GetStatus(ctx context.Context, platform Platform, internID string) ([]Item, error) {
	ctx, span := tracer.Start(ctx, "status.GetStatus")
	defer span.End()

	t, err := lookup(platform)
	if err != nil {
		return nil, err
	}

	var recs []Record
	err = s.db.WithContext(ctx).Table(t.table).
		Select(t.columns()).
		Where("intern_id = ? AND task_date = ?", internID, daykey.Today(s.now())).
		Find(&recs).Error
	if err != nil {
		logger.WithTrace(ctx).Error("failed to read status", zap.String("platform", string(platform)), zap.Error(err))
		return nil, errutil.Store("read status", err)
	}

	items := make([]Item, 0, len(recs))
	for _, r := range recs {
		items = append(items, Item{EntityID: r.EntityID, Completed: r.Completed})
	}
	return items, nil
}

// CompletedByIntern counts completed rows per intern for day.
func (s *Service) CompletedByIntern(ctx context.Context, platform Platform, day daykey.Key) (map[string]int64, error) {
	t, err := lookup(platform)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		InternID string
		Done     int64
	}
	err = s.db.WithContext(ctx).Table(t.table).
		Select("intern_id, COUNT(*) AS done").
		Where("task_date = ? AND completed = ?", day, true).
		Group("intern_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errutil.Store("count completed", err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.InternID] = r.Done
	}
	return out, nil
}
