// Package api parses inbound HTTP calls into Request values and dispatches them
// to endpoint handlers through an explicit table.
package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mapcandy-api/internal/apperr"
	"mapcandy-api/internal/sanitize"
)

// MethodOverrideHeader lets a POST stand in for DELETE or PUT.
const MethodOverrideHeader = "X-HTTP-Method"

// maxBodyBytes caps the raw PUT body kept on a Request.
const maxBodyBytes = 1 << 20

var (
	ErrInvalidMethodOverride = errors.New("unexpected method override header")
	ErrUnsupportedMethod     = errors.New("invalid method")
)

// Request is the parsed, read-only view of one HTTP call.
type Request struct {
	Method   string
	Endpoint string
	// Verb is the second path segment when it is not numeric.
	Verb string
	// Args holds the remaining path segments.
	Args []string
	// Input holds the sanitized query (GET, PUT) or form body (POST, DELETE) values.
	// Single values are strings, repeated keys become []string.
	Input map[string]any
	// File is the raw, unprocessed PUT body.
	File []byte
}

// Param returns the first value stored under key in Input.
func (r Request) Param(key string) (string, bool) {
	switch v := r.Input[key].(type) {
	case string:
		return v, true
	case []string:
		if len(v) > 0 {
			return v[0], true
		}
	}
	return "", false
}

// Arg returns the path argument at i, or "" when there is none.
func (r Request) Arg(i int) string {
	if i < 0 || i >= len(r.Args) {
		return ""
	}
	return r.Args[i]
}

// ParseRequest builds a Request from r. path is the part of the URL path after
// the API prefix, e.g. "/pins/12/data".
func ParseRequest(r *http.Request, path string) (Request, error) {
	req := Request{}
	req.Endpoint, req.Verb, req.Args = ParsePath(path)

	method, err := ResolveMethod(r.Method, r.Header.Get(MethodOverrideHeader))
	if err != nil {
		return req, err
	}
	req.Method = method

	switch method {
	case http.MethodDelete, http.MethodPost:
		if err := r.ParseForm(); err != nil {
			return req, apperr.Wrap(apperr.KindBadRequest, "malformed request body", err)
		}
		req.Input = cleanValues(r.PostForm)
	case http.MethodGet:
		req.Input = cleanValues(r.URL.Query())
	case http.MethodPut:
		req.Input = cleanValues(r.URL.Query())
		if r.Body != nil {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
			if err != nil {
				return req, apperr.Wrap(apperr.KindBadRequest, "unreadable request body", err)
			}
			if len(body) > maxBodyBytes {
				return req, apperr.BadRequest("request body exceeds %d bytes", maxBodyBytes)
			}
			req.File = body
		}
	}

	return req, nil
}

// ParsePath splits path into endpoint, verb and positional arguments.
// A numeric second segment is an identifier, so it stays in args.
func ParsePath(path string) (endpoint, verb string, args []string) {
	path = strings.TrimRight(strings.TrimLeft(path, "/"), "/")
	if path == "" {
		return "", "", []string{}
	}

	segments := strings.Split(path, "/")
	endpoint, args = segments[0], segments[1:]
	if len(args) > 0 && !IsNumeric(args[0]) {
		verb, args = args[0], args[1:]
	}
	return endpoint, verb, args
}

// ResolveMethod applies the method override header to a POST and rejects
// methods the API does not serve.
func ResolveMethod(base, override string) (string, error) {
	method := strings.ToUpper(base)
	if method == http.MethodPost && override != "" {
		switch strings.ToUpper(override) {
		case http.MethodDelete:
			method = http.MethodDelete
		case http.MethodPut:
			method = http.MethodPut
		default:
			return "", apperr.Wrap(apperr.KindBadRequest, fmt.Sprintf("unexpected %s header: %q", MethodOverrideHeader, override), ErrInvalidMethodOverride)
		}
	}

	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return method, nil
	default:
		return "", apperr.Wrap(apperr.KindMethodNotAllowed, "Invalid Method", ErrUnsupportedMethod)
	}
}

// IsNumeric reports whether s is a plain decimal number such as "12", "-3" or "4.5e2".
func IsNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xXpP_") {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func cleanValues(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		key = sanitize.String(key)
		if len(vals) == 1 {
			out[key] = sanitize.String(vals[0])
			continue
		}
		out[key] = sanitize.Value(vals)
	}
	return out
}
