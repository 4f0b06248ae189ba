package anidb

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justchokingaround/anidb/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Client = config.ClientConfig{Name: "testclient", Version: 2, ProtocolVersion: 1}
	cfg.API.BaseURL = server.URL + "/httpapi"
	cfg.API.TitlesURL = server.URL + "/api/anime-titles.xml.gz"
	cfg.API.Timeout = 5 * time.Second
	return NewClient(cfg, nil)
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestClient_FetchAnime(t *testing.T) {
	t.Run("sends client identity", func(t *testing.T) {
		doc := loadTestdata(t, "anime.xml")
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "/httpapi", r.URL.Path)
			assert.Equal(t, "testclient", q.Get("client"))
			assert.Equal(t, "2", q.Get("clientver"))
			assert.Equal(t, "1", q.Get("protover"))
			assert.Equal(t, "anime", q.Get("request"))
			assert.Equal(t, "22", q.Get("aid"))
			_, _ = w.Write(doc)
		})

		got, err := client.FetchAnime(context.Background(), 22)

		require.NoError(t, err)
		assert.Equal(t, doc, got)
	})

	t.Run("error envelope", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<error>Banned</error>`))
		})

		_, err := client.FetchAnime(context.Background(), 22)

		var svcErr *ServiceError
		require.True(t, errors.As(err, &svcErr), "got %v", err)
		assert.Equal(t, "Banned", svcErr.Message)
	})

	t.Run("http failure", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := client.FetchAnime(context.Background(), 22)

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, http.StatusServiceUnavailable, transportErr.StatusCode)
	})
}

func TestClient_RequestAnime(t *testing.T) {
	doc := loadTestdata(t, "anime.xml")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(doc)
	})

	got, err := client.RequestAnime(context.Background(), 22)

	require.NoError(t, err)
	assert.Equal(t, evangelion, got)
}

func TestClient_RequestRejectsErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<error>Banned</error>`))
	})

	_, err := client.RequestAnime(context.Background(), 22)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Banned", svcErr.Message)

	_, err = client.RequestTitles(context.Background())
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Banned", svcErr.Message)
}

func TestClient_RequestTitles(t *testing.T) {
	t.Run("gzip framed dump", func(t *testing.T) {
		doc := loadTestdata(t, "titles.xml")
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/anime-titles.xml.gz", r.URL.Path)
			assert.Empty(t, r.URL.RawQuery)
			w.Header().Set("Content-Type", "application/x-gzip")
			_, _ = w.Write(gzipBytes(t, doc))
		})

		got, err := client.RequestTitles(context.Background())

		require.NoError(t, err)
		assert.Equal(t, titlesEntries, got.Entries)
		assert.Equal(t, doc, got.Source)
	})

	t.Run("plain dump", func(t *testing.T) {
		doc := loadTestdata(t, "titles.xml")
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(doc)
		})

		got, err := client.RequestTitles(context.Background())

		require.NoError(t, err)
		assert.Len(t, got.Entries, 2)
	})

	t.Run("corrupt gzip", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte{0x1f, 0x8b, 0x00, 0x01})
		})

		_, err := client.RequestTitles(context.Background())

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
	})
}
