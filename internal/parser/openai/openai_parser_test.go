package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceguard/internal/config"
	"invoiceguard/internal/parser"
	"invoiceguard/internal/parser/openai"
	"invoiceguard/internal/port"
)

func newTestParser(serverURL string) *openai.Parser {
	return openai.NewParserWithEndpoint(&config.ParserProviderConfig{
		Provider:     "openai",
		APIKey:       "sk-test",
		DefaultModel: "gpt-4o",
		TimeoutSecs:  30,
	}, serverURL+"/v1")
}

func chatCompletion(content, finish string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": finish,
			},
		},
	}
}

func TestOpenAIParser_Parse_ImageSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o", reqBody["model"])
		format := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", format["type"])

		parts := reqBody["messages"].([]interface{})[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, parts, 2)
		image := parts[1].(map[string]interface{})["image_url"].(map[string]interface{})
		assert.True(t, strings.HasPrefix(image["url"].(string), "data:image/jpeg;base64,"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"invoice_number":"INV-9","currency":"EUR"}`, "stop"))
	}))
	defer server.Close()

	result, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{
		FileBytes: []byte{0xFF, 0xD8, 0xFF}, ContentType: "image/jpeg",
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"invoice_number":"INV-9","currency":"EUR"}`, string(result.StructuredData))
	assert.Equal(t, "gpt-4o", result.ModelUsed)
}

func TestOpenAIParser_Parse_RejectsPDF(t *testing.T) {
	_, err := newTestParser("http://unused").Parse(context.Background(), port.ParseInput{
		FileBytes: []byte("%PDF"), ContentType: "application/pdf",
	})

	assert.ErrorContains(t, err, "unsupported content type")
}

func TestOpenAIParser_Parse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{
		FileBytes: []byte{0x89, 'P', 'N', 'G'}, ContentType: "image/png",
	})

	rl, ok := parser.AsRateLimit(err)
	require.True(t, ok)
	assert.Equal(t, "openai", rl.Provider)
}

func TestOpenAIParser_Parse_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"invoice_number":`, "length"))
	}))
	defer server.Close()

	_, err := newTestParser(server.URL).Parse(context.Background(), port.ParseInput{
		FileBytes: []byte{0x89, 'P', 'N', 'G'}, ContentType: "image/png",
	})

	assert.ErrorContains(t, err, "truncated")
}
