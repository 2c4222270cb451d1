package draft

import (
	"context"
	"strings"

	"autotasking/pkg/errutil"
	"autotasking/pkg/llm"
	"autotasking/pkg/logger"
	"autotasking/services/destination"

	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("services/draft")

const systemPrompt = "You write Reddit post drafts for interns. Return only JSON. " +
	"Title: max 90 characters. Description: 2-4 sentences, no hashtags, no markdown."

var draftSchema = llm.Object(map[string]*llm.Schema{
	"title":       llm.String(),
	"description": llm.String(),
})

// DestinationLookup resolves a stored destination by id.
type DestinationLookup interface {
	Get(ctx context.Context, id string) (*destination.Destination, error)
}

type Request struct {
	Prompt        string
	Name          string
	URL           string
	DestinationID string
}

type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Service struct {
	destinations DestinationLookup
	llm          llm.Completer
}

type Params struct {
	fx.In
	Destinations *destination.Service
	LLM          llm.Completer
}

func NewService(p Params) *Service {
	return &Service{
		destinations: p.Destinations,
		llm:          p.LLM,
	}
}

// Generate drafts a post for a single destination. A stored destination
// fills in the name, url and prompt the request leaves empty.
func (s *Service) Generate(ctx context.Context, req Request) (*Draft, error) {
	ctx, span := tracer.Start(ctx, "draft.Generate")
	defer span.End()

	if id := strings.TrimSpace(req.DestinationID); id != "" {
		d, err := s.destinations.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, errutil.NotFound("destination not found", nil)
		}
		if strings.TrimSpace(req.Name) == "" {
			req.Name = d.Name
		}
		if strings.TrimSpace(req.URL) == "" && d.URL != nil {
			req.URL = *d.URL
		}
		if strings.TrimSpace(req.Prompt) == "" && d.Prompt != nil {
			req.Prompt = *d.Prompt
		}
	}

	prompt := strings.TrimSpace(req.Prompt)
	name := strings.TrimSpace(req.Name)
	url := strings.TrimSpace(req.URL)
	if prompt == "" || name == "" {
		return nil, errutil.ValidationFailed("prompt and destination name are required", nil)
	}

	var out Draft
	err := s.llm.Complete(ctx, llm.Request{
		Name:   "reddit_draft",
		System: systemPrompt,
		User:   userMessage(interpolate(prompt, name, url), name, url),
		Schema: draftSchema,
	}, &out)
	if err != nil {
		logger.WithTrace(ctx).Warn("draft generation failed", zap.String("destination", name), zap.Error(err))
		return nil, err
	}

	out.Title = strings.TrimSpace(out.Title)
	out.Description = strings.TrimSpace(out.Description)
	return &out, nil
}

func interpolate(prompt, name, url string) string {
	r := strings.NewReplacer("{{group}}", name, "{{url}}", url)
	return strings.TrimSpace(r.Replace(prompt))
}

func userMessage(prompt, name, url string) string {
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nDestination: ")
	b.WriteString(name)
	if url != "" {
		b.WriteString("\nURL: ")
		b.WriteString(url)
	}
	return b.String()
}
