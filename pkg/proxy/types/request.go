package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChatCompletionRequest is an OpenAI-compatible chat completion request as
// handled by the gateway. Only the fields the gateway inspects or rewrites
// are decoded; every other field is preserved verbatim so request bodies
// survive the round trip to the provider untouched.
type ChatCompletionRequest struct {
	// Model is the "provider/model" identifier selecting the upstream.
	Model string

	// Stream indicates whether the client requested SSE streaming.
	Stream bool

	// fields holds every top-level field of the original body, including
	// model and stream, as raw JSON.
	fields map[string]json.RawMessage
	// order preserves the original field order for stable re-encoding.
	order []string
}

// UnmarshalJSON decodes the body, capturing known fields and retaining the
// rest as raw JSON.
func (r *ChatCompletionRequest) UnmarshalJSON(data []byte) error {
	r.fields = make(map[string]json.RawMessage)
	r.order = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("request body must be a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in request body", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}

		if _, seen := r.fields[key]; !seen {
			r.order = append(r.order, key)
		}
		r.fields[key] = value
	}

	if raw, ok := r.fields["model"]; ok {
		if err := json.Unmarshal(raw, &r.Model); err != nil {
			return fmt.Errorf("model must be a string: %w", err)
		}
	}
	if raw, ok := r.fields["stream"]; ok {
		if err := json.Unmarshal(raw, &r.Stream); err != nil {
			return fmt.Errorf("stream must be a boolean: %w", err)
		}
	}

	return nil
}

// MarshalJSON re-encodes the body with the current Model value substituted,
// preserving all other fields and their original order.
func (r *ChatCompletionRequest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	for _, key := range r.order {
		value := r.fields[key]
		if key == "model" {
			encoded, err := json.Marshal(r.Model)
			if err != nil {
				return nil, err
			}
			value = encoded
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false

		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SetModel replaces the model identifier forwarded upstream. The gateway
// uses it to strip its "provider/" prefix before dispatch.
func (r *ChatCompletionRequest) SetModel(model string) {
	if r.fields == nil {
		r.fields = make(map[string]json.RawMessage)
	}
	if _, ok := r.fields["model"]; !ok {
		r.order = append(r.order, "model")
		r.fields["model"] = json.RawMessage(`""`)
	}
	r.Model = model
}

// Validate checks that the fields the gateway depends on are present.
// Everything else is the upstream provider's concern.
func (r *ChatCompletionRequest) Validate() error {
	if r.Model == "" {
		return &ValidationError{
			Field:   "model",
			Message: "model is required",
		}
	}

	messages, ok := r.fields["messages"]
	if !ok {
		return &ValidationError{
			Field:   "messages",
			Message: "messages is required",
		}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(messages, &elems); err != nil {
		return &ValidationError{
			Field:   "messages",
			Message: "messages must be an array",
		}
	}
	if len(elems) == 0 {
		return &ValidationError{
			Field:   "messages",
			Message: "messages must contain at least one message",
		}
	}

	return nil
}

// NormalizeContent flattens message content given as an array of typed
// parts into a plain string by joining the text parts. Providers that only
// accept string content then work regardless of the client SDK's shape.
// String content and messages without content pass through unchanged.
func (r *ChatCompletionRequest) NormalizeContent() error {
	raw, ok := r.fields["messages"]
	if !ok {
		return nil
	}

	var messages []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil
	}

	changed := false
	for _, msg := range messages {
		content, ok := msg["content"]
		if !ok {
			continue
		}

		var parts []contentPart
		if err := json.Unmarshal(content, &parts); err != nil {
			// Not an array of parts; leave as-is.
			continue
		}

		var text bytes.Buffer
		for _, part := range parts {
			if part.Type == "text" {
				text.WriteString(part.Text)
			}
		}

		flattened, err := json.Marshal(text.String())
		if err != nil {
			return err
		}
		msg["content"] = flattened
		changed = true
	}

	if !changed {
		return nil
	}

	encoded, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	r.fields["messages"] = encoded
	return nil
}

// contentPart is one element of a multimodal content array.
type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}
