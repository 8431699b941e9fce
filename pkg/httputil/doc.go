// Package httputil provides the HTTP client plumbing used by remote feeds.
//
// [GetJSON] performs a GET, decodes the JSON body and classifies failures:
// network errors, 5xx and 429 responses are wrapped in [RetryableError] so
// that [Retry] attempts them again with exponential backoff, honouring a
// Retry-After header from rate-limited feeds, while 4xx responses fail
// immediately.
//
//	var resp feed.Response
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return httputil.GetJSON(ctx, client, url, &resp)
//	})
//
// Every request reports to the HTTP hooks of package observability.
package httputil
