package httpclient

import "context"

// Response is a minimal HTTP response contract. Header exposes response
// headers so callers can honor the declared charset when decoding bodies.
type Response interface {
	Body() []byte
	StatusCode() int
	Header(name string) string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
