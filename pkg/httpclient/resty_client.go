package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Default request headers. Bangladeshi news sites serve trimmed or
// blocked responses to clients without a browser user agent, and the
// Accept-Language hint selects the Bengali edition where one exists.
const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	defaultLanguage  = "bn-BD,bn;q=0.9,en-US;q=0.8,en;q=0.7"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a RestyClient with the specified timeout and
// the default browser-like headers applied to every request.
func NewRestyClient(timeout time.Duration) *RestyClient {
	c := NewRestyHTTPClient(timeout)
	c.SetHeader("User-Agent", defaultUserAgent)
	c.SetHeader("Accept", defaultAccept)
	c.SetHeader("Accept-Language", defaultLanguage)
	return &RestyClient{client: c}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers
// needing custom verbs or their own header policy.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Get performs an HTTP GET request. Per-call headers override the
// client defaults for that request only.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return restyResponse{resp: resp}, nil
}

// restyResponse adapts resty.Response to the httpclient.Response interface.
type restyResponse struct {
	resp *resty.Response
}

func (r restyResponse) Body() []byte              { return r.resp.Body() }
func (r restyResponse) StatusCode() int           { return r.resp.StatusCode() }
func (r restyResponse) Header(name string) string { return r.resp.Header().Get(name) }
