package check

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func openAIResponse(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"content":%q}}]}`, content)
}

func TestLLMParseVerdict(t *testing.T) {
	l := NewLLM("openai", "", "key", "")

	t.Run("existing entity uses confidence as score", func(t *testing.T) {
		result, err := l.parseVerdict(`{"exists":true,"type":"company","confidence":85,"details":"Well known."}`)
		require.NoError(t, err)
		require.Equal(t, 85, result.Score)
		require.Equal(t, "company", result.Details["type"])
		require.Equal(t, 0.85, result.Details["confidence"])
		require.Equal(t, "llm_verification", result.Details["method"])
	})

	t.Run("non-existing entity scores zero regardless of confidence", func(t *testing.T) {
		result, err := l.parseVerdict(`{"exists":false,"type":"unknown","confidence":95,"details":"Never heard of it."}`)
		require.NoError(t, err)
		require.Equal(t, 0, result.Score)
	})

	t.Run("strips markdown code fences", func(t *testing.T) {
		result, err := l.parseVerdict("```json\n{\"exists\":true,\"type\":\"company\",\"confidence\":60,\"details\":\"ok\"}\n```")
		require.NoError(t, err)
		require.Equal(t, 60, result.Score)
	})

	t.Run("confidence above 100 clamps", func(t *testing.T) {
		result, err := l.parseVerdict(`{"exists":true,"type":"company","confidence":150,"details":"x"}`)
		require.NoError(t, err)
		require.Equal(t, 100, result.Score)
	})

	t.Run("malformed JSON errors", func(t *testing.T) {
		_, err := l.parseVerdict("this is not json")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid response format")
	})
}

func TestLLMCheck(t *testing.T) {
	t.Run("missing API key degrades without network calls", func(t *testing.T) {
		l := NewLLM("openai", "", "", "")
		result := l.Check(context.Background(), Entity{Name: "Acme"})
		require.Equal(t, 0, result.Score)
		require.Contains(t, result.Details["error"], "API key not configured")
		require.Equal(t, "low", result.Details["confidence"])
		require.Equal(t, "gpt-4o-mini", result.Details["model"])
	})

	t.Run("openai success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/chat/completions", r.URL.Path)
			require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			fmt.Fprint(w, openAIResponse(`{"exists":true,"type":"company","confidence":72,"details":"ok"}`))
		}))
		defer srv.Close()

		l := NewLLM("openai", "", "test-key", srv.URL)
		result := l.Check(context.Background(), Entity{Name: "Acme"})
		require.Equal(t, 72, result.Score)
	})

	t.Run("anthropic success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/messages", r.URL.Path)
			require.Equal(t, "test-key", r.Header.Get("x-api-key"))
			fmt.Fprint(w, `{"content":[{"text":"{\"exists\":true,\"type\":\"company\",\"confidence\":64,\"details\":\"ok\"}"}]}`)
		}))
		defer srv.Close()

		l := NewLLM("anthropic", "", "test-key", srv.URL)
		require.Equal(t, "claude-sonnet-4-20250514", l.model)

		result := l.Check(context.Background(), Entity{Name: "Acme"})
		require.Equal(t, 64, result.Score)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, openAIResponse(`{"exists":true,"type":"company","confidence":40,"details":"ok"}`))
		}))
		defer srv.Close()

		l := NewLLM("openai", "", "test-key", srv.URL)
		result := l.Check(context.Background(), Entity{Name: "Acme"})
		require.Equal(t, int32(3), calls.Load())
		require.Equal(t, 40, result.Score)
	})

	t.Run("degrades after exhausting retries", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		l := NewLLM("openai", "", "test-key", srv.URL)
		result := l.Check(context.Background(), Entity{Name: "Acme"})
		require.Equal(t, int32(3), calls.Load())
		require.Equal(t, 0, result.Score)
		require.Contains(t, result.Details["error"], "after 3 attempts")
	})

	t.Run("parse failure degrades without retry", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			fmt.Fprint(w, openAIResponse("sorry, I cannot help with that"))
		}))
		defer srv.Close()

		l := NewLLM("openai", "", "test-key", srv.URL)
		result := l.Check(context.Background(), Entity{Name: "Acme"})
		require.Equal(t, int32(1), calls.Load())
		require.Equal(t, 0, result.Score)
		require.Contains(t, result.Details, "error")
	})
}
