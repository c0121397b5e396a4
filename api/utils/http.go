// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/yield"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return HTTPError(cause, http.StatusNotFound)
}

// Forbidden convenience method to create http forbidden error.
func Forbidden(cause error) error {
	return HTTPError(cause, http.StatusForbidden)
}

// ContractError maps a contract revert to its http status. Other errors pass through.
func ContractError(err error) error {
	ve, ok := reverts.As(err)
	if !ok {
		return err
	}
	switch ve.Kind() {
	case reverts.UnknownPool, reverts.UnknownUser:
		return NotFound(err)
	case reverts.Unauthorized:
		return Forbidden(err)
	case reverts.ExternalCallFailed:
		return HTTPError(err, http.StatusBadGateway)
	}
	return BadRequest(err)
}

// HandlerFunc like http.HandlerFunc, bu it returns an error.
// If the returned error is httpError type, httpError.status will be responded,
// otherwise http.StatusInternalServerError responded.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err != nil {
			if he, ok := err.(*httpError); ok {
				if he.cause != nil {
					http.Error(w, he.cause.Error(), he.status)
				} else {
					w.WriteHeader(he.status)
				}
			} else {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// WriteRawJSON responds with an already encoded JSON document.
func WriteRawJSON(w http.ResponseWriter, data []byte) error {
	w.Header().Set("Content-Type", JSONContentType)
	_, err := w.Write(data)
	return err
}

// Resolver maps a contract or account name to its address.
type Resolver interface {
	Resolve(name string) yield.Address
}

// ParseAddress parses a hex address or, with a resolver, a known name.
func ParseAddress(s string, resolver Resolver) (yield.Address, error) {
	if addr, err := yield.ParseAddress(s); err == nil {
		return addr, nil
	}
	if resolver == nil || s == "" {
		return yield.Address{}, errors.Errorf("invalid address %q", s)
	}
	return resolver.Resolve(s), nil
}

// M shortcut for type map[string]any.
type M map[string]any
