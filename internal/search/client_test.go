package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSearchBody = `{
	"data": [
		{
			"id": "101",
			"text": "Solar eclipse over the coast",
			"author_id": "u1",
			"attachments": {"media_keys": ["m1"]},
			"public_metrics": {"like_count": 12}
		}
	],
	"includes": {
		"users": [{"id": "u1", "username": "skywatcher"}],
		"media": [{"media_key": "m1", "type": "photo", "url": "https://img.example.com/1.jpg"}]
	}
}`

func TestClient_RecentSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))
		assert.Equal(t, "solar eclipse", r.URL.Query().Get("query"))
		assert.Equal(t, "25", r.URL.Query().Get("max_results"))
		assert.Equal(t, "attachments.media_keys,author_id", r.URL.Query().Get("expansions"))
		fmt.Fprint(w, sampleSearchBody)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Bearer: "token123"})

	resp, err := c.RecentSearch(context.Background(), "solar eclipse", 25)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "101", resp.Data[0].ID)
	assert.Equal(t, 12, resp.Data[0].PublicMetrics.LikeCount)
	require.Len(t, resp.Includes.Media, 1)
	assert.Equal(t, "photo", resp.Includes.Media[0].Type)
}

func TestClient_RecentSearch_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"429 is rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"401 is unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"403 is unauthorized", http.StatusForbidden, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(ClientConfig{BaseURL: srv.URL, Bearer: "x"})
			_, err := c.RecentSearch(context.Background(), "anything", 25)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("other statuses are generic errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(ClientConfig{BaseURL: srv.URL, Bearer: "x"})
		_, err := c.RecentSearch(context.Background(), "anything", 25)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRateLimited)
		assert.NotErrorIs(t, err, ErrUnauthorized)
	})
}
