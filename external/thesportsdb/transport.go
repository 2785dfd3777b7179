package thesportsdb

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 6 << 20

// Transport issues one GET and returns the status and body.
type Transport interface {
	Get(ctx context.Context, rawURL string, header http.Header) (int, []byte, error)
	CloseIdleConnections()
}

// TransportFactory builds a fresh connection pool for one session.
type TransportFactory func() Transport

type httpTransport struct {
	base   *http.Transport
	client *http.Client
}

// NewHTTPTransport returns a net/http transport traced through otelhttp.
func NewHTTPTransport() Transport {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxIdleConnsPerHost = 32
	return &httpTransport{
		base:   base,
		client: &http.Client{Transport: otelhttp.NewTransport(base)},
	}
}

func (t *httpTransport) Get(ctx context.Context, rawURL string, header http.Header) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, errors.Wrap(err, "build request")
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "read response body")
	}
	return resp.StatusCode, body, nil
}

func (t *httpTransport) CloseIdleConnections() {
	t.base.CloseIdleConnections()
}

type fastHTTPTransport struct {
	client *fasthttp.Client
}

// NewFastHTTPTransport returns a fasthttp-backed transport. It honours the
// context deadline but not early cancellation.
func NewFastHTTPTransport() Transport {
	return &fastHTTPTransport{
		client: &fasthttp.Client{
			Name:                          "live-tracker",
			MaxConnsPerHost:               32,
			MaxResponseBodySize:           maxBodyBytes,
			NoDefaultUserAgentHeader:      true,
			DisableHeaderNamesNormalizing: false,
		},
	}
}

func (t *fastHTTPTransport) Get(ctx context.Context, rawURL string, header http.Header) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = t.client.DoDeadline(req, resp, deadline)
	} else {
		err = t.client.DoTimeout(req, resp, 30*time.Second)
	}
	if err != nil {
		return 0, nil, errors.Wrap(err, "send request")
	}

	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}

func (t *fastHTTPTransport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}

// TransportFactoryFor maps the configured transport name to a factory.
func TransportFactoryFor(name string) (TransportFactory, error) {
	switch name {
	case "", "nethttp":
		return NewHTTPTransport, nil
	case "fasthttp":
		return NewFastHTTPTransport, nil
	default:
		return nil, errors.Newf("unknown transport %q", name)
	}
}
