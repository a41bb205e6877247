package registry

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sync"
	"time"
)

// Snapshot is an immutable view of the provider and token tables. Handlers
// resolve a snapshot once per request and use it for the request's lifetime,
// so a concurrent reload never changes routing mid-request.
type Snapshot struct {
	providers map[string]Provider
	order     []string
	tokens    map[string]string // value -> description
	patterns  []*regexp.Regexp
	loadedAt  time.Time
}

// Provider returns the provider with the given name.
func (s *Snapshot) Provider(name string) (Provider, error) {
	p, ok := s.providers[name]
	if !ok {
		return Provider{}, &UnknownProviderError{Provider: name}
	}
	return p, nil
}

// Resolve parses a "provider/model" identifier and resolves its provider.
func (s *Snapshot) Resolve(model string) (Provider, ModelRef, error) {
	ref, err := SplitModel(model)
	if err != nil {
		return Provider{}, ModelRef{}, err
	}
	p, err := s.Provider(ref.Provider)
	if err != nil {
		return Provider{}, ModelRef{}, err
	}
	return p, ref, nil
}

// Providers returns all providers in file order.
func (s *Snapshot) Providers() []Provider {
	providers := make([]Provider, 0, len(s.order))
	for _, name := range s.order {
		providers = append(providers, s.providers[name])
	}
	return providers
}

// ProviderCount returns the number of loaded providers.
func (s *Snapshot) ProviderCount() int {
	return len(s.providers)
}

// TokenCount returns the number of loaded tokens.
func (s *Snapshot) TokenCount() int {
	return len(s.tokens)
}

// Authenticate checks a bearer token value against the token table and
// returns the matching token's description.
func (s *Snapshot) Authenticate(value string) (description string, ok bool) {
	if value == "" {
		return "", false
	}
	description, ok = s.tokens[value]
	return description, ok
}

// ModelAllowed reports whether a model identifier matches the configured
// allow-list. An empty allow-list permits every model. Matching is
// case-insensitive substring search, mirroring how the patterns are compiled.
func (s *Snapshot) ModelAllowed(model string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	for _, pattern := range s.patterns {
		if pattern.MatchString(model) {
			return true
		}
	}
	return false
}

// LoadedAt returns the time this snapshot was installed.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Registry loads the provider and token tables and publishes them as
// immutable snapshots. Load is all-or-nothing: any parse failure leaves the
// previously installed snapshot in place.
//
// Registry is safe for concurrent use.
type Registry struct {
	providersFile string
	tokensFile    string
	patterns      []*regexp.Regexp

	mu   sync.RWMutex
	snap *Snapshot

	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for load reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New creates a Registry for the given table files and model allow-list
// patterns. Patterns are compiled case-insensitively; an invalid pattern is
// an error. The registry starts empty; call Load before serving.
func New(providersFile, tokensFile string, modelPatterns []string, opts ...Option) (*Registry, error) {
	patterns := make([]*regexp.Regexp, 0, len(modelPatterns))
	for _, raw := range modelPatterns {
		pattern, err := regexp.Compile("(?i)" + raw)
		if err != nil {
			return nil, fmt.Errorf("invalid model pattern %q: %w", raw, err)
		}
		patterns = append(patterns, pattern)
	}

	r := &Registry{
		providersFile: providersFile,
		tokensFile:    tokensFile,
		patterns:      patterns,
		snap: &Snapshot{
			providers: map[string]Provider{},
			tokens:    map[string]string{},
			patterns:  patterns,
			loadedAt:  time.Now(),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Load re-reads both table files and atomically installs a new snapshot.
// On any error the current snapshot is left untouched.
func (r *Registry) Load() error {
	providers, err := r.loadProviders()
	if err != nil {
		return fmt.Errorf("loading provider table: %w", err)
	}

	tokens, err := r.loadTokens()
	if err != nil {
		return fmt.Errorf("loading token table: %w", err)
	}

	byName := make(map[string]Provider, len(providers))
	order := make([]string, 0, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
		order = append(order, p.Name)
	}

	byValue := make(map[string]string, len(tokens))
	for _, t := range tokens {
		byValue[t.Value] = t.Description
	}

	snap := &Snapshot{
		providers: byName,
		order:     order,
		tokens:    byValue,
		patterns:  r.patterns,
		loadedAt:  time.Now(),
	}

	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()

	r.logger.Info("registry loaded",
		"providers", len(byName),
		"tokens", len(byValue),
		"model_patterns", len(r.patterns),
	)

	return nil
}

// Snapshot returns the current table snapshot. The returned value is
// immutable and remains valid after subsequent reloads.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Files returns the watched table file paths.
func (r *Registry) Files() []string {
	return []string{r.providersFile, r.tokensFile}
}

func (r *Registry) loadProviders() ([]Provider, error) {
	f, err := os.Open(r.providersFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseProviders(f, r.providersFile)
}

func (r *Registry) loadTokens() ([]Token, error) {
	f, err := os.Open(r.tokensFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTokens(f, r.tokensFile)
}
