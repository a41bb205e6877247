// Package audit records an audit trail of chat completion requests.
//
// Each forwarded request produces a Record capturing routing (provider,
// model), the caller's token description, the outcome status, latency, and
// token usage. Message content and credentials are never recorded.
//
// The Recorder writes asynchronously through a buffered channel so that
// audit storage latency never appears on the request path; a full buffer
// drops records rather than blocking. Storage backends live in the storage
// subpackage and retention pruning in the retention subpackage.
package audit
