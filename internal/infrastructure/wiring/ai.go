package wiring

import (
	"github.com/felixgeelhaar/featurecraft/internal/infrastructure/config"
	infraai "github.com/felixgeelhaar/featurecraft/pkg/ai"
	domainai "github.com/felixgeelhaar/featurecraft/pkg/domain/ai"
)

// LoadAIProvider builds the completion provider. The proxy URL only applies
// here; the tracker is reached directly.
func LoadAIProvider(cfg config.Config) (domainai.Provider, error) {
	// The provider enforces the completion timeout itself.
	client, err := cfg.Network.HTTPClient(0)
	if err != nil {
		return nil, err
	}
	return infraai.NewProvider(infraai.ProviderConfig{
		Provider:   cfg.AI.Provider,
		Model:      cfg.AI.Model,
		APIKey:     cfg.AI.APIKey,
		BaseURL:    cfg.AI.BaseURL,
		HTTPClient: client,
		Timeout:    cfg.AI.Timeout,
	})
}
