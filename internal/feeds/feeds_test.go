package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeather_Current(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/current.json", r.URL.Path)
		assert.Equal(t, "wkey", r.URL.Query().Get("key"))
		fmt.Fprintf(w, `{"location":{"name":%q},"current":{"temp_c":21.5}}`, r.URL.Query().Get("q"))
	}))
	t.Cleanup(srv.Close)

	w := NewWeather(WeatherConfig{APIKey: "wkey", BaseURL: srv.URL})
	ctx := context.Background()

	r, err := w.Current(ctx, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"location":{"name":"Johannesburg"},"current":{"temp_c":21.5}}`, string(r.Value))

	_, err = w.Current(ctx, "johannesburg")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "city lookups are case-insensitive")

	r, err = w.Current(ctx, "Cape Town")
	require.NoError(t, err)
	assert.Contains(t, string(r.Value), "Cape Town")
	assert.Equal(t, int32(2), hits.Load())
}

func TestWeather_Errors(t *testing.T) {
	_, err := NewWeather(WeatherConfig{}).Current(context.Background(), "Paris")
	require.ErrorIs(t, err, ErrWeatherNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"No matching location found."}}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	_, err = NewWeather(WeatherConfig{APIKey: "k", BaseURL: srv.URL}).Current(context.Background(), "Atlantis")
	require.ErrorContains(t, err, "400")
}

const newsdataBody = `{
	"status": "success",
	"totalResults": 120,
	"results": [
		{
			"title": " Rand firms ",
			"link": "https://news.example/rand",
			"description": "<p>The rand &amp; bonds <b>firmed</b>\n today.</p>",
			"pubDate": "2025-06-10 08:00:00",
			"image_url": "https://news.example/rand.jpg",
			"source_id": "bizday",
			"source_name": "Business Day",
			"creator": ["A. Writer", "B. Writer"]
		},
		{"title": "", "link": "https://news.example/empty"},
		{"title": "Second", "link": "https://news.example/2", "source_id": "iol", "creator": null},
		{"title": "Third", "link": "https://news.example/3", "source_id": "iol"}
	]
}`

func TestNews_Latest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "nkey", r.URL.Query().Get("apikey"))
		assert.Equal(t, "za", r.URL.Query().Get("country"))
		assert.Equal(t, "2", r.URL.Query().Get("size"))
		fmt.Fprint(w, newsdataBody)
	}))
	t.Cleanup(srv.Close)

	n := NewNews(NewsConfig{APIKey: "nkey", BaseURL: srv.URL})
	r, err := n.Latest(context.Background(), "ZA", 2)
	require.NoError(t, err)

	h := r.Value
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 120, h.TotalResults)
	require.Len(t, h.Articles, 2)

	first := h.Articles[0]
	assert.Equal(t, Source{ID: "bizday", Name: "Business Day"}, first.Source)
	assert.Equal(t, "Rand firms", first.Title)
	assert.Equal(t, "The rand & bonds firmed today.", first.Description)
	assert.Equal(t, "https://news.example/rand", first.URL)
	assert.Equal(t, "https://news.example/rand.jpg", first.URLToImage)
	assert.Equal(t, "A. Writer, B. Writer", first.Author)

	second := h.Articles[1]
	assert.Equal(t, "Second", second.Title)
	assert.Equal(t, "iol", second.Source.Name)
	assert.Empty(t, second.Author)

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"urlToImage"`)
	assert.Contains(t, string(data), `"publishedAt"`)
}

func TestNews_PageSizeBounds(t *testing.T) {
	n := NewNews(NewsConfig{APIKey: "k", BaseURL: "http://127.0.0.1:0"})

	for _, size := range []int{-1, 51} {
		_, err := n.Latest(context.Background(), "", size)
		require.ErrorContains(t, err, "pageSize must be between 1 and 50")
	}
}

func TestNews_Errors(t *testing.T) {
	_, err := NewNews(NewsConfig{}).Latest(context.Background(), "za", 5)
	require.ErrorIs(t, err, ErrNewsNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","results":{"message":"API key invalid","code":"Unauthorized"}}`)
	}))
	t.Cleanup(srv.Close)

	_, err = NewNews(NewsConfig{APIKey: "bad", BaseURL: srv.URL}).Latest(context.Background(), "za", 5)
	require.ErrorContains(t, err, `upstream status "error"`)
}
