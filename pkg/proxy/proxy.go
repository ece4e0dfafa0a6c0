// Package proxy performs the outbound call to a resolved backend and
// translates transport failures into a small set of gateway errors.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrTimeout means the backend did not answer within the bounded
	// per-call timeout.
	ErrTimeout = errors.New("backend timeout")
	// ErrUnreachable means the connection to the backend failed.
	ErrUnreachable = errors.New("backend unreachable")
	// ErrMalformed means the backend answered with a body that is not
	// valid JSON and cannot be relayed as-is.
	ErrMalformed = errors.New("backend response malformed")
)

// Hop-by-hop headers are transport details of the inbound connection and
// must not be forwarded (RFC 9110 §7.6.1). Host is rebuilt from the
// backend URL by the transport.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Result is a backend response to relay verbatim.
type Result struct {
	Status int
	Body   []byte
	Header http.Header
}

// Forwarder calls backends with the client's timeout bound. The body is
// never transformed and no retries are attempted; a hung backend is cut
// off by the HTTP client timeout.
type Forwarder struct {
	Client *http.Client
}

// Forward sends method+body to baseURL+restPath, preserving all inbound
// headers except Host and hop-by-hop ones. The bearer token passes
// through untouched so backends can authenticate independently.
func (f *Forwarder) Forward(ctx context.Context, method, baseURL, restPath, rawQuery string, inbound http.Header, body []byte) (Result, error) {
	target := baseURL + restPath
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header = scrubHeaders(inbound)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, classify(err)
	}
	defer func() { _ = resp.Body.Close() }()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, classify(err)
	}
	if len(bytes.TrimSpace(respBody)) > 0 && !json.Valid(respBody) {
		return Result{}, ErrMalformed
	}
	return Result{Status: resp.StatusCode, Body: respBody, Header: resp.Header}, nil
}

func scrubHeaders(inbound http.Header) http.Header {
	out := make(http.Header, len(inbound))
	for k, vals := range inbound {
		if strings.EqualFold(k, "Host") {
			continue
		}
		out[k] = append([]string(nil), vals...)
	}
	for _, h := range hopHeaders {
		out.Del(h)
	}
	return out
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return ErrUnreachable
}
