package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visionServer(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)

		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVisionInspectRelevant(t *testing.T) {
	srv := visionServer(t, http.StatusOK,
		`{"isRelevant": true, "category": "garbage", "severity": "high", "keywords": ["waste", "overflow"]}`)

	client := NewOpenAIVisionClient("test-key", srv.URL, "", time.Second)
	verdict := client.Inspect(context.Background(), "https://img.example/1.jpg", "garbage pile")

	assert.Equal(t, VerdictRelevant, verdict.Kind)
	assert.Equal(t, "garbage", verdict.Category)
	assert.Equal(t, "high", verdict.Severity)
	assert.Equal(t, []string{"waste", "overflow"}, verdict.Keywords)
	assert.NoError(t, verdict.Err)
}

func TestVisionInspectIrrelevant(t *testing.T) {
	srv := visionServer(t, http.StatusOK,
		`{"isRelevant": false, "category": null, "severity": null, "keywords": []}`)

	client := NewOpenAIVisionClient("test-key", srv.URL, "", time.Second)
	verdict := client.Inspect(context.Background(), "selfie.jpg", "me at the park")

	assert.Equal(t, VerdictIrrelevant, verdict.Kind)
}

// Models sometimes wrap the JSON in a code fence despite instructions.
func TestVisionInspectFencedReply(t *testing.T) {
	srv := visionServer(t, http.StatusOK,
		"Here is the result:\n```json\n{\"isRelevant\": true, \"category\": \"road\", \"severity\": \"medium\", \"keywords\": [\"pothole\"]}\n```")

	client := NewOpenAIVisionClient("test-key", srv.URL, "", time.Second)
	verdict := client.Inspect(context.Background(), "img", "pothole")

	assert.Equal(t, VerdictRelevant, verdict.Kind)
	assert.Equal(t, "road", verdict.Category)
}

func TestVisionInspectNoJSONInReply(t *testing.T) {
	srv := visionServer(t, http.StatusOK, "I cannot classify this image.")

	client := NewOpenAIVisionClient("test-key", srv.URL, "", time.Second)
	verdict := client.Inspect(context.Background(), "img", "desc")

	assert.Equal(t, VerdictUnavailable, verdict.Kind)
	assert.Error(t, verdict.Err)
}

func TestVisionInspectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	client := NewOpenAIVisionClient("test-key", srv.URL, "", time.Second)
	verdict := client.Inspect(context.Background(), "img", "desc")

	assert.Equal(t, VerdictUnavailable, verdict.Kind)
	assert.Error(t, verdict.Err)
}

func TestVisionInspectUnreachableEndpoint(t *testing.T) {
	client := NewOpenAIVisionClient("test-key", "http://127.0.0.1:1", "", 100*time.Millisecond)
	verdict := client.Inspect(context.Background(), "img", "desc")

	assert.Equal(t, VerdictUnavailable, verdict.Kind)
	assert.Error(t, verdict.Err)
}
