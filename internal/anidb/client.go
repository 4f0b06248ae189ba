package anidb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/gzip"

	"github.com/justchokingaround/anidb/internal/config"
	"github.com/justchokingaround/anidb/internal/httpclient"
)

// Client talks to the AniDB HTTP API and the titles dump endpoint
type Client struct {
	httpClient *httpclient.Client
	identity   config.ClientConfig
	apiURL     string
	titlesURL  string
	logger     *slog.Logger
}

// NewClient creates a client from the application configuration
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := httpclient.NewClient(httpclient.ClientConfig{
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Debug:     cfg.Advanced.Debug,
		Logger:    logger,
	})

	return &Client{
		httpClient: httpClient,
		identity:   cfg.Client,
		apiURL:     cfg.API.BaseURL,
		titlesURL:  cfg.API.TitlesURL,
		logger:     logger.With("component", "anidb"),
	}
}

// FetchAnime returns the raw anime document for aid
func (c *Client) FetchAnime(ctx context.Context, aid int) ([]byte, error) {
	params := map[string]string{
		"client":    c.identity.Name,
		"clientver": strconv.Itoa(c.identity.Version),
		"protover":  strconv.Itoa(c.identity.ProtocolVersion),
		"request":   "anime",
		"aid":       strconv.Itoa(aid),
	}
	return c.fetch(ctx, c.apiURL, params)
}

// FetchTitles returns the raw titles dump, decompressed
func (c *Client) FetchTitles(ctx context.Context) ([]byte, error) {
	return c.fetch(ctx, c.titlesURL, nil)
}

// RequestAnime fetches and unpacks an anime record
func (c *Client) RequestAnime(ctx context.Context, aid int) (AnimeRecord, error) {
	doc, err := c.FetchAnime(ctx, aid)
	if err != nil {
		return AnimeRecord{}, err
	}
	return decodeAnime(doc)
}

// RequestTitles fetches and unpacks the titles dump. The fetched bytes are
// kept in the returned index.
func (c *Client) RequestTitles(ctx context.Context) (TitlesIndex, error) {
	doc, err := c.FetchTitles(ctx)
	if err != nil {
		return TitlesIndex{}, err
	}
	entries, err := decodeTitles(doc)
	if err != nil {
		return TitlesIndex{}, err
	}
	c.logger.Info("fetched titles dump", "entries", len(entries), "bytes", len(doc))
	return TitlesIndex{Entries: entries, Source: doc}, nil
}

// fetch returns the decompressed body. It is the single place the client
// checks for the <error> envelope.
func (c *Client) fetch(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	resp, err := c.httpClient.Get(ctx, url, params)
	if err != nil {
		return nil, transportError(url, resp, err)
	}

	doc, err := maybeGunzip(resp.Body())
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	if err := CheckEnvelope(doc); err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			c.logger.Warn("anidb rejected request", "url", url, "message", svcErr.Message)
		}
		return nil, err
	}

	return doc, nil
}

func transportError(url string, resp *resty.Response, err error) error {
	te := &TransportError{URL: url, Err: err}
	if resp != nil {
		te.StatusCode = resp.StatusCode()
	}
	return te
}

var gzipMagic = []byte{0x1f, 0x8b}

// maybeGunzip decompresses gzip framed bodies. The titles dump is served
// as a .gz file rather than with a Content-Encoding header.
func maybeGunzip(body []byte) ([]byte, error) {
	if !bytes.HasPrefix(body, gzipMagic) {
		return body, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("open gzip body: %w", err)
	}
	defer zr.Close()

	doc, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("read gzip body: %w", err)
	}
	return doc, nil
}
