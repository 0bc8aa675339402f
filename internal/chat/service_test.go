package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_IsEnabled(t *testing.T) {
	assert.True(t, NewService("key", "gemini-1.5-flash").IsEnabled())
	assert.False(t, NewService("", "gemini-1.5-flash").IsEnabled())
}

func TestService_SendReturnsReplyVerbatim(t *testing.T) {
	var captured map[string]interface{}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-1.5-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"hi, friend!"}]}}]}`))
	}))
	defer upstream.Close()

	service := NewService("test-key", "gemini-1.5-flash")
	service.SetBaseURL(upstream.URL)

	reply, err := service.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi, friend!", reply)

	// The fixed system prompt and the user message are both forwarded
	require.NotNil(t, captured["system_instruction"])
	contents := captured["contents"].([]interface{})
	first := contents[0].(map[string]interface{})
	assert.Equal(t, "user", first["role"])
}

func TestService_SendUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer upstream.Close()

	service := NewService("bad-key", "gemini-1.5-flash")
	service.SetBaseURL(upstream.URL)

	_, err := service.Send(context.Background(), "hello")
	assert.Error(t, err)
}

func TestService_SendNoCandidates(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer upstream.Close()

	service := NewService("test-key", "gemini-1.5-flash")
	service.SetBaseURL(upstream.URL)

	_, err := service.Send(context.Background(), "hello")
	assert.Error(t, err)
}

func TestService_SendDisabled(t *testing.T) {
	service := NewService("", "gemini-1.5-flash")

	_, err := service.Send(context.Background(), "hello")
	assert.Error(t, err)
}
