package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
)

type bodyKey struct{}

// Doer serves fhttp requests from an http.Handler without a network
// round trip. It satisfies api.HTTPDoer.
type Doer struct {
	Handler http.Handler

	mu  sync.Mutex
	err error
}

// NewDoer wraps h.
func NewDoer(h http.Handler) *Doer {
	return &Doer{Handler: h}
}

// FailWith makes every following request fail with err before reaching
// the handler. nil restores normal operation.
func (d *Doer) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// Do implements api.HTTPDoer
func (d *Doer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	d.mu.Lock()
	err := d.err
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	ctx := req.Context()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body []byte
	if req.Body != nil {
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()
	}

	inner, err := http.NewRequestWithContext(context.WithValue(ctx, bodyKey{}, body), req.Method, req.URL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for key, values := range req.Header {
		for _, v := range values {
			inner.Header.Add(key, v)
		}
	}

	rec := httptest.NewRecorder()
	d.Handler.ServeHTTP(rec, inner)
	res := rec.Result()

	return &fhttp.Response{
		Status:        res.Status,
		StatusCode:    res.StatusCode,
		Proto:         res.Proto,
		ProtoMajor:    res.ProtoMajor,
		ProtoMinor:    res.ProtoMinor,
		Header:        fhttp.Header(res.Header),
		Body:          res.Body,
		ContentLength: res.ContentLength,
		Request:       req,
	}, nil
}

// readAll returns the request body captured by the Doer, falling back to
// reading r.Body for requests that arrive another way.
func readAll(r *http.Request) ([]byte, error) {
	if body, ok := r.Context().Value(bodyKey{}).([]byte); ok {
		return body, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// decodeRecorded decodes the JSON request body.
func decodeRecorded(r *http.Request, out interface{}) error {
	body, err := readAll(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
