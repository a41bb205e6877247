package registry

import (
	"fmt"
	"strings"
)

// Provider is an upstream AI API endpoint plus credentials, addressable by
// name. Providers are loaded from a pipe-delimited table file and addressed
// by the prefix of incoming "provider/model" identifiers.
type Provider struct {
	// Name is the provider identifier used as the model prefix.
	Name string

	// BaseURL is the provider's API base URL with any trailing slash removed.
	BaseURL string

	// APIKey is the credential substituted for the client's token on
	// forwarded requests.
	APIKey string
}

// chatCompletionsSuffix is recognized on base URLs that already point at the
// full chat endpoint rather than an API root.
const chatCompletionsSuffix = "/chat/completions"

// ChatCompletionsURL returns the full URL for chat completion requests.
// A base URL that already ends in "/chat/completions" is used verbatim;
// otherwise the standard OpenAI-compatible path is appended.
func (p Provider) ChatCompletionsURL() string {
	if strings.HasSuffix(p.BaseURL, chatCompletionsSuffix) {
		return p.BaseURL
	}
	return p.BaseURL + chatCompletionsSuffix
}

// ModelsURL returns the full URL for model listing requests.
// For base URLs pointing directly at a chat endpoint, the sibling /models
// path is derived by trimming the chat suffix.
func (p Provider) ModelsURL() string {
	base := strings.TrimSuffix(p.BaseURL, chatCompletionsSuffix)
	return base + "/models"
}

// Token is an access credential for the gateway itself. Only the value is
// checked against incoming Authorization headers; the description identifies
// the holder in logs and audit records.
type Token struct {
	// Description is a human-readable label for the token holder.
	Description string

	// Value is the secret compared against bearer tokens.
	Value string
}

// ModelRef is a parsed "provider/model" identifier.
type ModelRef struct {
	// Provider is the prefix before the first '/'.
	Provider string

	// Model is everything after the first '/', passed through unmodified
	// as the upstream model identifier.
	Model string
}

// String returns the canonical "provider/model" form.
func (r ModelRef) String() string {
	return r.Provider + "/" + r.Model
}

// SplitModel parses a "provider/model" identifier, splitting on the FIRST
// '/' so that upstream model identifiers containing slashes survive intact
// (e.g. "openrouter/meta-llama/llama-3-8b").
func SplitModel(model string) (ModelRef, error) {
	provider, rest, found := strings.Cut(model, "/")
	if !found {
		return ModelRef{}, &MalformedModelError{Model: model}
	}
	if provider == "" || rest == "" {
		return ModelRef{}, &MalformedModelError{Model: model}
	}
	return ModelRef{Provider: provider, Model: rest}, nil
}

// MalformedModelError indicates a model identifier without the required
// "provider/" prefix.
type MalformedModelError struct {
	// Model is the offending identifier.
	Model string
}

// Error implements the error interface.
func (e *MalformedModelError) Error() string {
	return fmt.Sprintf("malformed model %q: expected \"provider/model\"", e.Model)
}

// UnknownProviderError indicates a model prefix that does not resolve to any
// loaded provider.
type UnknownProviderError struct {
	// Provider is the unresolved prefix.
	Provider string
}

// Error implements the error interface.
func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Provider)
}
