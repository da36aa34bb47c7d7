package completion

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/grounded-ai/groundedqa/internal/models"
)

// configHash fingerprints a provider config for client-cache keying. The API
// key is hashed before inclusion so the key material never sits in a map key.
func configHash(providerConfig models.ProviderConfig) (string, error) {
	type configForHash struct {
		BaseURL    string
		Headers    map[string]string
		TimeoutMs  int
		APIKeyHash string
	}

	apiKeyHash := sha256.Sum256([]byte(providerConfig.APIKey))
	hashConfig := configForHash{
		BaseURL:    providerConfig.BaseURL,
		Headers:    providerConfig.Headers,
		TimeoutMs:  providerConfig.TimeoutMs,
		APIKeyHash: fmt.Sprintf("%x", apiKeyHash[:8]),
	}

	configJSON, err := json.Marshal(hashConfig)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(configJSON)
	return fmt.Sprintf("%x", hash[:16]), nil
}
