// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package client provides access to a REST api, either over HTTP or in-process

A client created with NewWithURL talks HTTP to a remote backend. A client created
with NewWithRouter does not marshal HTTP at all, it talks directly to a mux router.
The latter is the tool of choice for unit tests.

Every request treats any 2xx status as success. Everything else is returned as
a *StatusError carrying the status code and the response body.
*/
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/gorilla/mux"
	"github.com/relabs-tech/utilities/core/logger"
)

// DefaultTimeout is the timeout of the HTTP client created by NewWithURL
const DefaultTimeout = 20 * time.Second

// Client provides easy access to the REST API.
type Client struct {
	router     *mux.Router
	httpClient *http.Client
	url        string
	token      string
	ctx        context.Context

	defaultHeaders map[string]string
}

// StatusError is returned for every response with a non-2xx status code
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned wrong status code: got %d. Error: %s", e.Method, e.Path, e.Status, e.Body)
}

// NewWithRouter creates a client to make pseudo-REST requests to the backend,
// through the mux router
func NewWithRouter(router *mux.Router) Client {
	return Client{
		router:         router,
		defaultHeaders: map[string]string{},
	}
}

// NewWithURL creates a client to make REST requests to the backend
//
// WithToken adds an authorization token to the request header.
func NewWithURL(url string) Client {
	return Client{
		url:            strings.TrimSuffix(url, "/"),
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		defaultHeaders: map[string]string{},
	}
}

// WithHeader returns a new client with a default header added
func (c Client) WithHeader(key string, value string) Client {
	// we want a true copy to avoid side effects
	headers := map[string]string{key: value}
	for k, v := range c.defaultHeaders {
		if k != key {
			headers[k] = v
		}
	}
	c.defaultHeaders = headers
	return c
}

// WithToken returns a new client with a bearer token
func (c Client) WithToken(token string) Client {
	c.token = token
	return c
}

// WithTimeout returns a new client with a different HTTP timeout. It has
// no effect on clients talking to a router.
func (c Client) WithTimeout(timeout time.Duration) Client {
	if c.httpClient != nil {
		c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
	}
	return c
}

// WithHTTPClient returns a new client using the given HTTP client
func (c Client) WithHTTPClient(httpClient *http.Client) Client {
	c.httpClient = httpClient
	return c
}

// WithContext returns a new client with specific request context
func (c Client) WithContext(ctx context.Context) Client {
	c.ctx = ctx
	return c
}

// Context returns the request context of the client
func (c Client) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// WithParameters appends query parameters to path. Parameters are sorted by key
// so that the resulting path is stable.
func WithParameters(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var parameters []string
	for _, key := range keys {
		parameters = append(parameters, url.QueryEscape(key)+"="+url.QueryEscape(params[key]))
	}
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return path + separator + strings.Join(parameters, "&")
}

// RawGet gets the resource from path. Expects a 2xx status as response, otherwise it will
// flag an error. Returns the actual http status code.
//
// params are added as query parameters, the path can also be extended with query strings.
//
// result can be a pointer to any JSON decodable type or a raw *[]byte.
// result can be nil.
func (c Client) RawGet(path string, params map[string]string, result interface{}) (int, error) {
	return c.do(http.MethodGet, WithParameters(path, params), nil, result)
}

// RawPost posts a resource to path. Expects a 2xx status as response, otherwise it will
// flag an error. Returns the actual http status code.
//
// body can also be a []byte, result can also be raw *[]byte.
// result can be nil.
func (c Client) RawPost(path string, body interface{}, result interface{}) (int, error) {
	j, err := marshalBody(body)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("POST to %s: %w", path, err)
	}
	return c.do(http.MethodPost, path, j, result)
}

// RawPut puts a resource to path. Expects a 2xx status as response, otherwise it will
// flag an error. Returns the actual http status code.
//
// body can also be a []byte, result can also be raw *[]byte.
// result can be nil.
func (c Client) RawPut(path string, body interface{}, result interface{}) (int, error) {
	j, err := marshalBody(body)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("PUT to %s: %w", path, err)
	}
	return c.do(http.MethodPut, path, j, result)
}

// RawDelete deletes the resource at path. Expects a 2xx status as response, otherwise it will
// flag an error.
//
// Returns the actual http status code.
func (c Client) RawDelete(path string) (int, error) {
	return c.do(http.MethodDelete, path, nil, nil)
}

func marshalBody(body interface{}) ([]byte, error) {
	if j, ok := body.([]byte); ok {
		return j, nil
	}
	return json.Marshal(body)
}

func (c Client) do(method, path string, body []byte, result interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	ctx := c.Context()
	r, err := http.NewRequestWithContext(ctx, method, c.url+path, reader)
	if err != nil {
		return http.StatusBadRequest, err
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.defaultHeaders {
		r.Header.Add(key, value)
	}
	if requestID := logger.RequestIDFromContext(ctx); requestID != "" {
		r.Header.Set(logger.RequestIDHeader, requestID)
	}
	if c.token != "" {
		r.Header.Add("Authorization", "Bearer "+c.token)
	}

	var status int
	var resBody []byte
	if c.router != nil {
		// handlers may rely on a non-nil body, as for any server request
		if r.Body == nil {
			r.Body = http.NoBody
		}
		rec := httptest.NewRecorder()
		c.router.ServeHTTP(rec, r)
		res := rec.Result()
		status = res.StatusCode
		resBody = rec.Body.Bytes()
	} else {
		res, err := c.httpClient.Do(r)
		if err != nil {
			return http.StatusInternalServerError, err
		}
		defer res.Body.Close()
		status = res.StatusCode
		resBody, err = io.ReadAll(res.Body)
		if err != nil {
			return status, err
		}
	}

	if status < 200 || status > 299 {
		return status, &StatusError{
			Method: method,
			Path:   path,
			Status: status,
			Body:   strings.TrimSpace(string(resBody)),
		}
	}

	if len(resBody) > 0 && result != nil {
		if raw, ok := result.(*[]byte); ok {
			*raw = resBody
		} else {
			err = json.Unmarshal(resBody, result)
		}
	}
	return status, err
}
