package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"switchboard-ai/hermes/pkg/registry"
)

// maxModelListBody caps how much of a model listing response is read,
// guarding against a misbehaving upstream.
const maxModelListBody = 4 * 1024 * 1024

// ListModels queries a provider's /v1/models endpoint and returns its
// models with IDs rewritten to the gateway's "provider/model" form.
func (c *Client) ListModels(ctx context.Context, provider registry.Provider) ([]Model, error) {
	resp, err := c.Do(ctx, provider, http.MethodGet, provider.ModelsURL(), nil, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxModelListBody))
	if err != nil {
		return nil, &ParseError{
			Provider: provider.Name,
			Cause:    err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Provider:   provider.Name,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var list ModelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &ParseError{
			Provider:    provider.Name,
			RawResponse: string(body),
			Cause:       err,
		}
	}

	models := make([]Model, 0, len(list.Data))
	for _, m := range list.Data {
		m.ID = provider.Name + "/" + m.ID
		if m.Object == "" {
			m.Object = "model"
		}
		models = append(models, m)
	}
	return models, nil
}
