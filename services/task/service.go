package task

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"autotasking/pkg/config"
	"autotasking/pkg/daykey"
	"autotasking/pkg/db/option"
	"autotasking/pkg/errutil"
	"autotasking/pkg/llm"
	"autotasking/pkg/logger"
	"autotasking/pkg/repository"
	"autotasking/services/destination"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("services/task")

const systemPrompt = "You generate daily intern task lists. Create exactly one task per destination. " +
	"Each task must start with an action verb, mention the platform and destination name, " +
	"and be 8-14 words. Use the provided destinations only. Return JSON only."

var taskSchema = llm.Object(map[string]*llm.Schema{
	"tasks": llm.Array(llm.Object(map[string]*llm.Schema{
		"title": llm.String(),
	})),
})

// DestinationSource lists the destinations a batch is generated from.
type DestinationSource interface {
	ListForGeneration(ctx context.Context) ([]*destination.Destination, error)
}

type Service struct {
	db           *gorm.DB
	node         *snowflake.Node
	tasks        repository.Repository[Task]
	batches      repository.Repository[TaskBatch]
	destinations DestinationSource
	llm          llm.Completer
	model        string
	now          func() time.Time
}

type Params struct {
	fx.In
	DB           *gorm.DB
	Node         *snowflake.Node
	Config       *config.Config
	Destinations *destination.Service
	LLM          llm.Completer
}

func NewService(p Params) *Service {
	return &Service{
		db:           p.DB,
		node:         p.Node,
		tasks:        repository.ProvideStore[Task](p.DB),
		batches:      repository.ProvideStore[TaskBatch](p.DB),
		destinations: p.Destinations,
		llm:          p.LLM,
		model:        p.Config.LLM.Model,
		now:          time.Now,
	}
}

// GetToday returns the intern's tasks for the current day, generating the
// day's batch on the first call. generated reports whether this call created it.
func (s *Service) GetToday(ctx context.Context, internID string) (tasks []*Task, generated bool, err error) {
	ctx, span := tracer.Start(ctx, "task.GetToday")
	defer span.End()
	span.SetAttributes(attribute.String("intern_id", internID))

	zapLog := logger.WithTrace(ctx).With(zap.String("intern_id", internID))

	now := s.now()
	start, end := daykey.Window(now)

	tasks, err = s.listWindow(ctx, internID, start, end)
	if err != nil {
		return nil, false, err
	}
	if len(tasks) > 0 {
		return tasks, false, nil
	}

	dests, err := s.destinations.ListForGeneration(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(dests) == 0 {
		zapLog.Info("no destinations configured, skipping generation")
		return []*Task{}, false, nil
	}

	prompt := toPromptDestinations(dests)
	titles, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, false, err
	}

	err = s.persist(ctx, internID, now, prompt, titles)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		zapLog.Info("batch already generated by a concurrent request")
		tasks, err = s.listWindow(ctx, internID, start, end)
		return tasks, false, err
	}
	if err != nil {
		zapLog.Error("failed to persist task batch", zap.Error(err))
		return nil, false, errutil.Store("persist tasks", err)
	}

	zapLog.Info("task batch generated", zap.Int("count", len(titles)))

	tasks, err = s.listWindow(ctx, internID, start, end)
	if err != nil {
		return nil, false, err
	}
	return tasks, true, nil
}

// AddManual inserts a single task outside any batch.
func (s *Service) AddManual(ctx context.Context, internID, title string) (*Task, error) {
	ctx, span := tracer.Start(ctx, "task.AddManual")
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errutil.ValidationFailed("task title is required", nil)
	}

	t := &Task{
		ID:        s.node.Generate().String(),
		Title:     title,
		InternID:  internID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		logger.WithTrace(ctx).Error("failed to create task", zap.Error(err))
		return nil, errutil.Store("create task", err)
	}
	return t, nil
}

func (s *Service) listWindow(ctx context.Context, internID string, start, end time.Time) ([]*Task, error) {
	tasks, err := s.tasks.Find(ctx, &Task{InternID: internID},
		option.ApplyOperator(
			option.Condition{Field: "created_at", Operator: option.GTE, Value: start},
			option.Condition{Field: "created_at", Operator: option.LT, Value: end},
		),
		option.WithSortBy(option.QuerySortBy{OrderBy: "desc"}),
		option.WithSortBy(option.QuerySortBy{
			SortBy:  "position",
			OrderBy: "asc",
			Allow:   map[string]bool{"position": true},
		}),
	)
	if err != nil {
		logger.WithTrace(ctx).Error("failed to list tasks", zap.Error(err))
		return nil, errutil.Store("list tasks", err)
	}
	return tasks, nil
}

type promptDestination struct {
	Platform string `json:"platform"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

func toPromptDestinations(dests []*destination.Destination) []promptDestination {
	out := make([]promptDestination, 0, len(dests))
	for _, d := range dests {
		pd := promptDestination{Platform: string(d.Platform), Name: d.Name}
		if d.URL != nil {
			pd.URL = *d.URL
		}
		out = append(out, pd)
	}
	return out
}

type generatedTasks struct {
	Tasks []struct {
		Title string `json:"title"`
	} `json:"tasks"`
}

func (s *Service) generate(ctx context.Context, dests []promptDestination) ([]string, error) {
	list, err := json.MarshalIndent(dests, "", "  ")
	if err != nil {
		return nil, errutil.Internal("encode destinations", err)
	}

	var out generatedTasks
	if err := s.llm.Complete(ctx, llm.Request{
		Name:   "daily_tasks",
		System: systemPrompt,
		User:   "Destinations:\n" + string(list),
		Schema: taskSchema,
	}, &out); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(out.Tasks))
	for _, t := range out.Tasks {
		titles = append(titles, strings.TrimSpace(t.Title))
	}
	if len(titles) == 0 {
		return nil, errutil.IncompleteOutput("generation returned no tasks", nil)
	}
	return titles, nil
}

// persist writes the batch row and its tasks in one transaction. A second
// batch for the same day fails with gorm.ErrDuplicatedKey.
func (s *Service) persist(ctx context.Context, internID string, now time.Time, dests []promptDestination, titles []string) error {
	snapshot, err := json.Marshal(dests)
	if err != nil {
		return err
	}

	createdAt := now.UTC()
	batch := &TaskBatch{
		ID:           s.node.Generate().String(),
		InternID:     internID,
		TaskDate:     daykey.Today(now),
		Model:        s.model,
		Destinations: datatypes.JSON(snapshot),
		CreatedAt:    createdAt,
	}

	tasks := make([]*Task, 0, len(titles))
	for i, title := range titles {
		tasks = append(tasks, &Task{
			ID:        s.node.Generate().String(),
			Title:     title,
			InternID:  internID,
			BatchID:   &batch.ID,
			Position:  i,
			CreatedAt: createdAt,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.batches.WithTrx(tx).Create(ctx, batch); err != nil {
			return err
		}
		return s.tasks.WithTrx(tx).BatchCreate(ctx, tasks)
	})
}
