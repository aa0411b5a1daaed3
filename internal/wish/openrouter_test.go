package wish_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwijaya/lucky-money-be/internal/wish"
)

func chatServer(t *testing.T, status int, content string, gotReq *map[string]any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("bad auth header: %s", r.Header.Get("Authorization"))
		}
		if gotReq != nil {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, gotReq)
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
			return
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenRouter_Wish_Success(t *testing.T) {
	var gotReq map[string]any
	srv := chatServer(t, http.StatusOK, "Mã đáo thành công!", &gotReq)

	client := wish.NewOpenRouter(srv.Client(), "test-key", srv.URL+"/", "test-model", 0.8)

	text, err := client.Wish(context.Background(), 10000, "10.000 đ")
	require.NoError(t, err)
	assert.Equal(t, "Mã đáo thành công!", text)
	assert.Equal(t, "test-model", gotReq["model"])

	msgs, ok := gotReq["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestOpenRouter_Wish_UpstreamError(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "", nil)
	client := wish.NewOpenRouter(srv.Client(), "test-key", srv.URL, "m", 0.8)

	_, err := client.Wish(context.Background(), 1, "x")
	assert.ErrorIs(t, err, wish.ErrUpstream)
}

func TestOpenRouter_Wish_EmptyContent(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "  ", nil)
	client := wish.NewOpenRouter(srv.Client(), "test-key", srv.URL, "m", 0.8)

	_, err := client.Wish(context.Background(), 1, "x")
	assert.ErrorIs(t, err, wish.ErrEmptyWish)
}
