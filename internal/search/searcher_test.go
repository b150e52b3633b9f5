package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearchAPI scripts responses per request. respond is called with
// the query string of each incoming search call.
type fakeSearchAPI struct {
	srv     *httptest.Server
	calls   atomic.Int32
	respond func(w http.ResponseWriter, query string)
}

func newFakeSearchAPI(t *testing.T, respond func(w http.ResponseWriter, query string)) *fakeSearchAPI {
	f := &fakeSearchAPI{respond: respond}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.respond(w, r.URL.Query().Get("query"))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSearchAPI) searcher(ttl time.Duration) *Searcher {
	return NewSearcher(SearcherConfig{
		Client:        NewClient(ClientConfig{BaseURL: f.srv.URL, Bearer: "test-token"}),
		TTL:           ttl,
		RetryInterval: time.Millisecond,
	})
}

func writeHits(w http.ResponseWriter, ids ...string) {
	resp := map[string]any{}
	var data []map[string]any
	var media []map[string]any
	for _, id := range ids {
		data = append(data, map[string]any{
			"id":             id,
			"text":           "caption for " + id,
			"author_id":      "u-" + id,
			"attachments":    map[string]any{"media_keys": []string{"m-" + id}},
			"public_metrics": map[string]any{"like_count": 3},
		})
		media = append(media, map[string]any{
			"media_key": "m-" + id,
			"type":      "photo",
			"url":       "https://img.example.com/" + id + ".jpg",
		})
	}
	resp["data"] = data
	resp["includes"] = map[string]any{
		"users": []map[string]any{},
		"media": media,
	}
	json.NewEncoder(w).Encode(resp)
}

func TestSearcher_NoCredential(t *testing.T) {
	s := NewSearcher(SearcherConfig{})

	hits, err := s.Search(context.Background(), "anything", 5)
	assert.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearcher_FirstProductiveVariantWins(t *testing.T) {
	api := newFakeSearchAPI(t, func(w http.ResponseWriter, query string) {
		// Strict image variants come back empty; the first has:media
		// variant produces results.
		if strings.Contains(query, "has:images") {
			writeHits(w)
			return
		}
		writeHits(w, "900", "901")
	})

	hits, err := api.searcher(0).Search(context.Background(), "solar eclipse", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "900", hits[0].ID)

	// Four empty image variants plus one productive media variant; the
	// looser variants are never reached.
	assert.Equal(t, int32(5), api.calls.Load())
}

func TestSearcher_RetriesSameVariantThenMovesOn(t *testing.T) {
	api := newFakeSearchAPI(t, func(w http.ResponseWriter, query string) {
		// The first variant always fails; every later variant succeeds
		// on its first try.
		if strings.HasPrefix(query, `"solar eclipse" has:images lang:en`) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeHits(w, "42")
	})

	hits, err := api.searcher(0).Search(context.Background(), "solar eclipse", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// 3 attempts on the failing variant, then 1 on the next.
	assert.Equal(t, int32(4), api.calls.Load())
}

func TestSearcher_RateLimit(t *testing.T) {
	t.Run("propagates with empty cache", func(t *testing.T) {
		api := newFakeSearchAPI(t, func(w http.ResponseWriter, query string) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := api.searcher(0).Search(context.Background(), "hot topic", 5)
		assert.ErrorIs(t, err, ErrRateLimited)
		// No retries on a rate-limit response.
		assert.Equal(t, int32(1), api.calls.Load())
	})

	t.Run("falls back to stale cache", func(t *testing.T) {
		var limited atomic.Bool
		api := newFakeSearchAPI(t, func(w http.ResponseWriter, query string) {
			if limited.Load() {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			writeHits(w, "7", "8", "9")
		})

		// A nanosecond TTL means the entry written by the first search
		// is already expired by the second.
		s := api.searcher(time.Nanosecond)
		ctx := context.Background()

		first, err := s.Search(ctx, "hot topic", 3)
		require.NoError(t, err)
		require.Len(t, first, 3)

		limited.Store(true)

		hits, err := s.Search(ctx, "hot topic", 2)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "7", hits[0].ID)
	})
}

func TestSearcher_Unauthorized(t *testing.T) {
	api := newFakeSearchAPI(t, func(w http.ResponseWriter, query string) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := api.searcher(0).Search(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, ErrUnauthorized)
	// Auth failures never retry and never fall through to looser
	// variants.
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestSearcher_CacheHitSkipsNetwork(t *testing.T) {
	api := newFakeSearchAPI(t, func(w http.ResponseWriter, query string) {
		writeHits(w, "1", "2", "3")
	})

	s := api.searcher(0)
	ctx := context.Background()

	_, err := s.Search(ctx, "cached topic", 3)
	require.NoError(t, err)
	before := api.calls.Load()

	// Second call is served from cache, truncated to the new limit.
	hits, err := s.Search(ctx, "cached topic", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, before, api.calls.Load())
}

func TestSearcher_ZeroResultsIsNotAnError(t *testing.T) {
	api := newFakeSearchAPI(t, func(w http.ResponseWriter, query string) {
		writeHits(w)
	})

	hits, err := api.searcher(0).Search(context.Background(), "obscure topic", 5)
	assert.NoError(t, err)
	assert.Empty(t, hits)
	// All 8 variants were tried.
	assert.Equal(t, int32(8), api.calls.Load())
}

func TestExtractHits_Filtering(t *testing.T) {
	resp := &searchResponse{}
	resp.Data = []apiPost{
		{ID: "1", Text: "english with photo", AuthorID: "u1"},
		{ID: "2", Text: "日本語のポスト"},
		{ID: "3", Text: "no media attached"},
		{ID: "4", Text: "media key resolves to nothing"},
		{ID: "5", Text: ""},
	}
	resp.Data[0].Attachments.MediaKeys = []string{"m1"}
	resp.Data[1].Attachments.MediaKeys = []string{"m1"}
	resp.Data[3].Attachments.MediaKeys = []string{"missing"}
	resp.Data[4].Attachments.MediaKeys = []string{"m2"}
	resp.Includes.Users = []apiUser{{ID: "u1", Username: "poster1"}}
	resp.Includes.Media = []apiMedia{
		{MediaKey: "m1", Type: "photo", URL: "https://img.example.com/a.jpg"},
		{MediaKey: "m2", Type: "video", PreviewImageURL: "https://img.example.com/b.jpg"},
	}

	s := NewSearcher(SearcherConfig{})
	hits := s.extractHits(resp, "fallback topic", 10)

	require.Len(t, hits, 2)
	assert.Equal(t, "1", hits[0].ID)
	assert.Equal(t, "poster1", hits[0].Username)
	assert.Equal(t, "https://img.example.com/a.jpg", hits[0].ImageURL)

	// Empty text falls back to the topic as caption; unknown author
	// gets the sentinel username; a preview URL is acceptable when no
	// direct URL exists.
	assert.Equal(t, "5", hits[1].ID)
	assert.Equal(t, "fallback topic", hits[1].Caption)
	assert.Equal(t, "unknown", hits[1].Username)
	assert.Equal(t, "https://img.example.com/b.jpg", hits[1].ImageURL)
}

func TestRepresentativeMediaURL_PrefersPhoto(t *testing.T) {
	media := map[string]apiMedia{
		"v": {MediaKey: "v", Type: "video", URL: "https://img.example.com/video-thumb.jpg"},
		"p": {MediaKey: "p", Type: "photo", URL: "https://img.example.com/photo.jpg"},
	}

	// The photo wins even when a non-photo URL appears first.
	got := representativeMediaURL([]string{"v", "p"}, media)
	assert.Equal(t, "https://img.example.com/photo.jpg", got)

	// Without a photo, the first usable URL wins.
	got = representativeMediaURL([]string{"v"}, media)
	assert.Equal(t, "https://img.example.com/video-thumb.jpg", got)

	// Attachments resolving to nothing yield no URL.
	got = representativeMediaURL([]string{"x"}, media)
	assert.Empty(t, got)
}
