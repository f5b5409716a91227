package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/routetrace/pkg/errors"
)

// maxBody bounds a downloaded file.
const maxBody = 64 << 20

// IsURL reports whether path names an http or https resource.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Fetcher downloads files with retries.
type Fetcher struct {
	Client   *http.Client
	Attempts int
	Delay    time.Duration
	Mirror   *Mirror // optional
	Logger   *log.Logger
}

// NewFetcher returns a Fetcher with 3 attempts starting at a one second
// delay. mirror and logger may be nil.
func NewFetcher(mirror *Mirror, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Attempts: 3,
		Delay:    time.Second,
		Mirror:   mirror,
		Logger:   logger,
	}
}

// Get returns the body of url. A 404 is FILE_NOT_FOUND; exhausted retries
// and other non-200 responses are SOURCE_UNAVAILABLE, unless the mirror
// holds a stale copy, which is returned instead.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var stale []byte
	if f.Mirror != nil {
		data, err := f.Mirror.Get(url)
		switch {
		case err == nil && data != nil:
			f.Logger.Debug("mirror hit", "url", url)
			return data, nil
		case errors.Is(err, ErrExpired):
			stale = data
		case err != nil:
			f.Logger.Warn("mirror read failed", "url", url, "err", err)
		}
	}

	var body []byte
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		var err error
		body, err = f.get(ctx, url)
		if err != nil && isRetryable(err) {
			f.Logger.Debug("fetch failed, retrying", "url", url, "err", err)
		}
		return err
	})
	if err != nil {
		if stale != nil && ctx.Err() == nil {
			f.Logger.Warn("serving stale mirror copy", "url", url, "err", err)
			return stale, nil
		}
		if isRetryable(err) {
			return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "fetch %s", url)
		}
		return nil, err
	}

	if f.Mirror != nil {
		if err := f.Mirror.Set(url, body); err != nil {
			f.Logger.Warn("mirror write failed", "url", url, "err", err)
		}
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "bad url %q", url)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, errs.New(errs.ErrCodeFileNotFound, "%s not found", url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("GET %s: %s", url, resp.Status)}
	default:
		return nil, errs.New(errs.ErrCodeSourceUnavailable, "GET %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	return body, nil
}
