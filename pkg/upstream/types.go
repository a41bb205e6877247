package upstream

// Model is a single entry from a provider's /v1/models listing.
type Model struct {
	// ID is the model identifier. After aggregation the gateway prefixes
	// it with "provider/".
	ID string `json:"id"`

	// Object is the OpenAI object type, always "model".
	Object string `json:"object"`

	// Created is the model's creation time as a Unix timestamp.
	Created int64 `json:"created,omitempty"`

	// OwnedBy identifies the organization that owns the model.
	OwnedBy string `json:"owned_by,omitempty"`
}

// ModelList is the OpenAI-compatible model listing envelope.
type ModelList struct {
	// Object is always "list".
	Object string `json:"object"`

	// Data contains the model entries.
	Data []Model `json:"data"`
}
