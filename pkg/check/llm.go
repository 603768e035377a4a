package check

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const llmPrompt = `Please analyze the brand or organization: %s

Provide a verification with the following:
1. Existence: Does this appear to be a real, recognizable brand or organization? (Yes/No)
2. Type: What kind of entity is it? (e.g., company, product, nonprofit, etc.)
3. Confidence: On a scale of 0-100, how confident are you in your assessment?
4. Details: A brief explanation of your assessment.

Respond with ONLY a JSON object with the following keys:
{
  "exists": boolean,
  "type": string,
  "confidence": number (0-100),
  "details": string
}`

// LLM asks a language model whether it recognizes the entity and uses the
// model's confidence as the score.
type LLM struct {
	client     *http.Client
	provider   string // "openai" or "anthropic"
	model      string
	apiKey     string
	baseURL    string
	maxRetries int
}

// NewLLM creates an LLM checker. An empty model picks the provider default.
func NewLLM(provider, model, apiKey, baseURL string) *LLM {
	if model == "" {
		switch provider {
		case "anthropic":
			model = "claude-sonnet-4-20250514"
		default:
			model = "gpt-4o-mini"
		}
	}
	return &LLM{
		client:     &http.Client{Timeout: 60 * time.Second},
		provider:   provider,
		model:      model,
		apiKey:     apiKey,
		baseURL:    baseURL,
		maxRetries: 3,
	}
}

func (l *LLM) Kind() Kind { return KindLLM }

func (l *LLM) Check(ctx context.Context, entity Entity) Result {
	result, err := l.verify(ctx, entity)
	if err != nil {
		r := degraded("llm_verification", err)
		r.Details["model"] = l.model
		return r
	}
	return result
}

func (l *LLM) verify(ctx context.Context, entity Entity) (Result, error) {
	if l.apiKey == "" {
		return Result{}, fmt.Errorf("llm: API key not configured")
	}

	prompt := fmt.Sprintf(llmPrompt, entity.Name)

	var raw string
	var err error
	for attempt := 1; attempt <= l.maxRetries; attempt++ {
		switch l.provider {
		case "anthropic":
			raw, err = l.callAnthropic(ctx, prompt)
		default:
			raw, err = l.callOpenAI(ctx, prompt)
		}
		if err == nil {
			break
		}
		if attempt == l.maxRetries {
			return Result{}, fmt.Errorf("llm verification failed after %d attempts: %w", l.maxRetries, err)
		}
	}

	return l.parseVerdict(raw)
}

type llmVerdict struct {
	Exists     bool    `json:"exists"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Details    string  `json:"details"`
}

func (l *LLM) parseVerdict(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	// Handle markdown code block wrapping.
	if strings.HasPrefix(raw, "```") {
		if idx := strings.Index(raw[3:], "\n"); idx >= 0 {
			raw = raw[3+idx+1:]
		}
		if strings.HasSuffix(raw, "```") {
			raw = raw[:len(raw)-3]
		}
		raw = strings.TrimSpace(raw)
	}

	var verdict llmVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return Result{}, fmt.Errorf("invalid response format from llm: %w", err)
	}

	score := 0
	if verdict.Exists {
		score = clampScore(int(verdict.Confidence))
	}

	entityType := verdict.Type
	if entityType == "" {
		entityType = "unknown"
	}

	return Result{
		Score: score,
		Details: map[string]any{
			"type":        entityType,
			"explanation": verdict.Details,
			"confidence":  verdict.Confidence / 100.0,
			"model":       l.model,
			"method":      "llm_verification",
		},
	}, nil
}

func (l *LLM) callOpenAI(ctx context.Context, prompt string) (string, error) {
	baseURL := l.baseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	payload := map[string]any{
		"model": l.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a helpful assistant that verifies brands and organizations."},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.3,
		"max_tokens":  500,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("openai status %d: %v", resp.StatusCode, errResp)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return result.Choices[0].Message.Content, nil
}

func (l *LLM) callAnthropic(ctx context.Context, prompt string) (string, error) {
	baseURL := l.baseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	payload := map[string]any{
		"model":      l.model,
		"max_tokens": 500,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", l.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("anthropic status %d: %v", resp.StatusCode, errResp)
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic: no content returned")
	}
	return result.Content[0].Text, nil
}
