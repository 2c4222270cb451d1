package summary

import (
	"context"
	"time"

	"autotasking/pkg/daykey"
	"autotasking/pkg/logger"
	"autotasking/services/destination"
	"autotasking/services/intern"
	"autotasking/services/status"
	"autotasking/services/video"

	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("services/summary")

type InternSource interface {
	List(ctx context.Context) ([]*intern.Intern, error)
}

type DestinationCounter interface {
	Count(ctx context.Context, platform destination.Platform) (int64, error)
}

type VideoCounter interface {
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
}

type CompletionSource interface {
	CompletedByIntern(ctx context.Context, platform status.Platform, day daykey.Key) (map[string]int64, error)
}

type Progress struct {
	Done    int64 `json:"done"`
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
}

func progress(done, total int64) Progress {
	return Progress{Done: done, Total: total, Pending: max(total-done, 0)}
}

type Totals struct {
	Reddit   int64 `json:"reddit"`
	Facebook int64 `json:"facebook"`
	YouTube  int64 `json:"youtube"`
}

type InternProgress struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Reddit   Progress `json:"reddit"`
	Facebook Progress `json:"facebook"`
	YouTube  Progress `json:"youtube"`
	Overall  Progress `json:"overall"`
}

type Summary struct {
	Date    daykey.Key       `json:"date"`
	Totals  Totals           `json:"totals"`
	Interns []InternProgress `json:"interns"`
}

type Service struct {
	interns      InternSource
	destinations DestinationCounter
	videos       VideoCounter
	completions  CompletionSource
	now          func() time.Time
}

type ServiceParams struct {
	fx.In
	Interns      *intern.Service
	Destinations *destination.Service
	Videos       *video.Service
	Status       *status.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		interns:      p.Interns,
		destinations: p.Destinations,
		videos:       p.Videos,
		completions:  p.Status,
		now:          time.Now,
	}
}

// Today reports per-intern progress for the current day.
func (s *Service) Today(ctx context.Context) (*Summary, error) {
	ctx, span := tracer.Start(ctx, "summary.Today")
	defer span.End()

	now := s.now()
	day := daykey.Today(now)
	start, end := daykey.Window(now)

	var (
		interns                              []*intern.Intern
		totals                               Totals
		redditDone, facebookDone, youtubeDone map[string]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		interns, err = s.interns.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		totals.Reddit, err = s.destinations.Count(gctx, destination.Reddit)
		return err
	})
	g.Go(func() (err error) {
		totals.Facebook, err = s.destinations.Count(gctx, destination.Facebook)
		return err
	})
	g.Go(func() (err error) {
		totals.YouTube, err = s.videos.CountCreatedBetween(gctx, start, end)
		return err
	})
	g.Go(func() (err error) {
		redditDone, err = s.completions.CompletedByIntern(gctx, status.Reddit, day)
		return err
	})
	g.Go(func() (err error) {
		facebookDone, err = s.completions.CompletedByIntern(gctx, status.Facebook, day)
		return err
	})
	g.Go(func() (err error) {
		youtubeDone, err = s.completions.CompletedByIntern(gctx, status.YouTube, day)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.WithTrace(ctx).Error("failed to build admin summary", zap.Error(err))
		return nil, err
	}

	out := &Summary{
		Date:    day,
		Totals:  totals,
		Interns: make([]InternProgress, 0, len(interns)),
	}
	for _, in := range interns {
		p := InternProgress{
			ID:       in.ID,
			Username: in.Username,
			Reddit:   progress(redditDone[in.ID], totals.Reddit),
			Facebook: progress(facebookDone[in.ID], totals.Facebook),
			YouTube:  progress(youtubeDone[in.ID], totals.YouTube),
		}
		p.Overall = progress(
			p.Reddit.Done+p.Facebook.Done+p.YouTube.Done,
			p.Reddit.Total+p.Facebook.Total+p.YouTube.Total,
		)
		out.Interns = append(out.Interns, p)
	}
	return out, nil
}
