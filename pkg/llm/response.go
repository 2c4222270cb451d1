package llm

import (
	"encoding/json"
	"regexp"

	"autotasking/pkg/errutil"
)

// envelope is one of the reply shapes a provider may return.
type envelope interface {
	text() string
}

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c chatCompletion) text() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

type outputText struct {
	OutputText string `json:"output_text"`
}

func (o outputText) text() string {
	return o.OutputText
}

// decodeEnvelope picks the first variant that carries text. Chat completions
// win over output_text.
func decodeEnvelope(body []byte) (envelope, error) {
	var chat chatCompletion
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, errutil.MalformedOutput("generation response is not JSON", err)
	}
	if chat.text() != "" {
		return chat, nil
	}

	var out outputText
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errutil.MalformedOutput("generation response is not JSON", err)
	}
	return out, nil
}

var objectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// extractJSON decodes content, falling back to the widest {...} span when the
// model wrapped the object in prose or code fences.
func extractJSON(content string) (json.RawMessage, any, error) {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err == nil {
		return json.RawMessage(content), v, nil
	}

	match := objectPattern.FindString(content)
	if match == "" {
		return nil, nil, errutil.MalformedOutput("generation output contains no JSON object", nil)
	}
	if err := json.Unmarshal([]byte(match), &v); err != nil {
		return nil, nil, errutil.MalformedOutput("generation output is not valid JSON", err)
	}
	return json.RawMessage(match), v, nil
}
