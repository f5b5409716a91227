// Package httputil fetches network files served over HTTP.
//
// [Fetcher.Get] downloads a URL, retrying transient failures (transport
// errors, 429 and 5xx responses) with exponential backoff via [Retry].
//
// An optional [Mirror] keeps the last good copy of each URL on disk. A fresh
// mirror entry is served without touching the network; an expired one is
// refreshed, and served stale when the refresh fails:
//
//	m, _ := httputil.NewMirror(dir, time.Hour)
//	f := httputil.NewFetcher(m, logger)
//	data, err := f.Get(ctx, "https://example.org/StopsAndStations.json")
package httputil
