package auth

import (
	"fmt"

	"switchboard-ai/hermes/pkg/registry"
)

// TokenInfo describes an authenticated gateway token.
type TokenInfo struct {
	// Description is the human-readable label from the token table.
	Description string
}

// SnapshotSource yields the registry snapshot to authenticate against.
// *registry.Registry satisfies it; tests can substitute a fixed snapshot.
type SnapshotSource interface {
	Snapshot() *registry.Snapshot
}

// TokenValidator validates bearer tokens against the current registry
// snapshot, so a reload takes effect for the next request without any
// re-wiring.
type TokenValidator struct {
	source SnapshotSource
}

// NewTokenValidator creates a validator that reads tokens from source.
func NewTokenValidator(source SnapshotSource) *TokenValidator {
	return &TokenValidator{source: source}
}

// Validate checks a bearer token value and returns the token holder's
// info. An empty or unknown value is an error.
func (v *TokenValidator) Validate(value string) (*TokenInfo, error) {
	if value == "" {
		return nil, fmt.Errorf("no token provided")
	}

	description, ok := v.source.Snapshot().Authenticate(value)
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}

	return &TokenInfo{Description: description}, nil
}
