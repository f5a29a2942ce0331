package driven

import "context"

// WebClient is the network access used by url and external converters.
type WebClient interface {
	// Head issues a HEAD request without following redirects and returns
	// the status code.
	Head(ctx context.Context, url string) (int, error)

	// Get fetches url and returns the body as text. Non-200 responses are errors.
	Get(ctx context.Context, url string) (string, error)
}
