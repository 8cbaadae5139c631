package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/auth"
	"github.com/nhollis/inkwell/internal/service"
)

// buildRequest assembles the transport-agnostic request descriptor the
// service operations consume.
//
// Credentials can arrive two ways: an HTTP basic-auth header, or an "auth"
// object in the JSON body ({"emailAddress": ..., "password": ...}), which
// is stripped from the body before validation sees it. A bearer session
// token validated by the middleware arrives through the request context.
func buildRequest(r *http.Request, paramNames ...string) (*service.Request, error) {
	req := &service.Request{
		Params: make(map[string]string, len(paramNames)),
		Query:  make(map[string]string),
		Body:   make(map[string]any),
	}

	for _, name := range paramNames {
		if v := r.PathValue(name); v != "" {
			req.Params[name] = v
		}
	}

	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			req.Query[key] = values[0]
		}
	}

	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req.Body); err != nil && !errors.Is(err, io.EOF) {
			return nil, apperror.Malformed("request body must be a JSON object")
		}
	}

	if email, password, ok := r.BasicAuth(); ok {
		req.Auth = &service.Credentials{Email: email, Password: password}
	} else if raw, ok := req.Body["auth"]; ok {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, apperror.Malformed("auth: must be an object with emailAddress and password")
		}
		email, _ := obj["emailAddress"].(string)
		password, _ := obj["password"].(string)
		if email == "" || password == "" {
			return nil, apperror.Malformed("auth: must carry emailAddress and password")
		}
		req.Auth = &service.Credentials{Email: email, Password: password}
		delete(req.Body, "auth")
	}

	if req.Auth == nil {
		if id, ok := auth.SessionAccountID(r.Context()); ok {
			req.Session = id
		}
	}

	return req, nil
}
