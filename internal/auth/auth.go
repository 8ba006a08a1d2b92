// Package auth resolves the player identity behind a request. Full identity
// (OAuth against the chat provider) lives in an upstream service; this
// backend only needs the resolved player id.
package auth

import (
	"errors"
	"net/http"
)

var ErrNoIdentity = errors.New("no player identity on request")

// IdentityResolver extracts the calling player's identity from a request.
type IdentityResolver interface {
	Resolve(r *http.Request) (string, error)
}

const identityHeader = "X-Player-ID"

// HeaderResolver trusts the identity header stamped by the fronting proxy
// after it has validated the session.
type HeaderResolver struct{}

func NewHeaderResolver() *HeaderResolver {
	return &HeaderResolver{}
}

func (h *HeaderResolver) Resolve(r *http.Request) (string, error) {
	id := r.Header.Get(identityHeader)
	if id == "" {
		return "", ErrNoIdentity
	}
	return id, nil
}
