package llm

import (
	"net/http"
	"time"
)

// headerTransport 为每个出站请求附加固定请求头
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, vs := range t.headers {
		r.Header.Del(k)
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	return t.base.RoundTrip(r)
}

// newHTTPClient 构造带 OpenRouter 归属头与鉴权头的 http.Client
func newHTTPClient(base http.RoundTripper, referer, title, apiKey string, timeout time.Duration) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	h := http.Header{}
	if referer != "" {
		h.Set("HTTP-Referer", referer)
	}
	if title != "" {
		h.Set("X-Title", title)
	}
	if apiKey != "" {
		h.Set("Authorization", "Bearer "+apiKey)
	}
	return &http.Client{
		Transport: &headerTransport{base: base, headers: h},
		Timeout:   timeout,
	}
}
