package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jeanpaul/lifeline/internal/schema"
	"github.com/jeanpaul/lifeline/internal/timeline"
)

// ErrNoAPIKey reports that no DeepSeek API key is configured. Callers
// downgrade it to an empty-events record rather than failing the request.
var ErrNoAPIKey = errors.New("enrich: deepseek api key not configured")

// DeepSeek is a chat-completions client against an OpenAI-compatible
// endpoint.
type DeepSeek struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
	validator   *schema.Validator
	log         *slog.Logger
}

func NewDeepSeek(baseURL, apiKey, model string, temperature float64, timeout time.Duration, logger *slog.Logger) *DeepSeek {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeepSeek{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		client:      &http.Client{Timeout: timeout},
		validator:   schema.NewValidator(),
		log:         logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func prompt(name string) string {
	return "你是一个历史资料整理助手。\n" +
		"请根据维基百科、百科资料和常识，生成 " + name + " 的生平轨迹，\n" +
		"输出 JSON 数组，每个元素包含以下字段：\n" +
		"year, age, place, lat, lon, title, detail。\n" +
		"请严格输出为 JSON，不要任何多余文字。"
}

// Resolve asks the model for a life trajectory and returns it as a person
// record with the default style. Content the model garbles yields a record
// with zero events and no error; transport failures return an error.
func (d *DeepSeek) Resolve(ctx context.Context, name string) (timeline.Person, error) {
	if d.apiKey == "" {
		return timeline.Person{}, ErrNoAPIKey
	}

	payload, err := json.Marshal(chatRequest{
		Model:       d.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt(name)}},
		Temperature: d.temperature,
	})
	if err != nil {
		return timeline.Person{}, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return timeline.Person{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return timeline.Person{}, fmt.Errorf("enrich: deepseek request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return timeline.Person{}, fmt.Errorf("enrich: deepseek: %s", parseServiceError(resp.StatusCode, body))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return timeline.Person{}, fmt.Errorf("enrich: decode deepseek response: %w", err)
	}
	if len(cr.Choices) == 0 {
		d.log.Warn("deepseek response had no choices", "name", name)
		return timeline.Person{Name: name, Style: DefaultStyle(), Events: []timeline.Event{}}, nil
	}

	events := d.extractEvents(cr.Choices[0].Message.Content)
	if len(events) == 0 {
		d.log.Warn("deepseek content yielded no events", "name", name)
	}
	return timeline.Person{Name: name, Style: DefaultStyle(), Events: events}, nil
}

// extractEvents pulls the event array out of the model's reply. The model
// is told to emit bare JSON but often wraps it in prose, so parsing
// starts at the first JSON token. Anything that fails to parse or
// validate yields zero events.
func (d *DeepSeek) extractEvents(content string) []timeline.Event {
	start := -1
	for _, tok := range []string{"[", "{"} {
		if i := strings.Index(content, tok); i >= 0 && (start < 0 || i < start) {
			start = i
		}
	}
	if start < 0 {
		return nil
	}
	text := strings.TrimSpace(content[start:])

	if strings.HasPrefix(text, "[") {
		return d.decodeEvents([]byte(text))
	}

	// Object form: { "events": [...] }
	var wrapper struct {
		Events json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal([]byte(text), &wrapper); err != nil || len(wrapper.Events) == 0 {
		return nil
	}
	return d.decodeEvents(wrapper.Events)
}

func (d *DeepSeek) decodeEvents(raw []byte) []timeline.Event {
	if err := d.validator.Validate(schema.EventsSchema, raw); err != nil {
		d.log.Debug("event payload failed schema validation", "err", err)
		return nil
	}
	var events []timeline.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil
	}
	return events
}
