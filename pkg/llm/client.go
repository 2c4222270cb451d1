package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"autotasking/pkg/config"
	"autotasking/pkg/errutil"
	"autotasking/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	maxResponseBytes = 4 << 20
	snippetLen       = 500
)

type Client struct {
	http        *http.Client
	url         string
	apiKey      string
	model       string
	temperature float64
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:        &http.Client{Timeout: cfg.LLM.Timeout},
		url:         cfg.LLM.APIURL,
		apiKey:      cfg.LLM.APIKey,
		model:       cfg.LLM.Model,
		temperature: cfg.LLM.Temperature,
	}
}

// Model is the model name sent with every request.
func (c *Client) Model() string {
	return c.model
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchema struct {
	Name   string  `json:"name"`
	Schema *Schema `json:"schema"`
	Strict bool    `json:"strict"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type completionRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

func (c *Client) Complete(ctx context.Context, req Request, out any) error {
	ctx, span := otel.Tracer("llm").Start(ctx, "llm.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.String("llm.schema", req.Name),
	)

	zapLog := logger.WithTrace(ctx)

	err := c.complete(ctx, req, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		zapLog.Warn("generation failed", zap.String("schema", req.Name), zap.Error(err))
	}
	return err
}

func (c *Client) complete(ctx context.Context, req Request, out any) error {
	body, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: c.temperature,
		ResponseFormat: responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchema{
				Name:   req.Name,
				Schema: req.Schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return errutil.Internal("encode generation request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errutil.Upstream("build generation request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return errutil.Upstream("generation endpoint unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errutil.Upstream("read generation response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errutil.Upstream(
			fmt.Sprintf("generation endpoint returned %d", resp.StatusCode), nil,
			errutil.WithDetails(errutil.Detail{Field: "body", Message: snippet(raw)}),
		)
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}

	content, value, err := extractJSON(env.text())
	if err != nil {
		return err
	}

	if v := validate(req.Schema, value, "$"); v != nil {
		return errutil.IncompleteOutput("generation output is missing required fields", v,
			errutil.WithDetails(errutil.Detail{Field: v.path, Message: v.reason}))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(content, out); err != nil {
		return errutil.MalformedOutput("generation output does not match the expected shape", err)
	}
	return nil
}

func snippet(b []byte) string {
	r := []rune(string(b))
	if len(r) > snippetLen {
		r = r[:snippetLen]
	}
	return string(r)
}
