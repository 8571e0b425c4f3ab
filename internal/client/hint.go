package client

import (
	"errors"
	"fmt"

	"github.com/yanmxa/wtf/internal/provider"
)

// ErrMissingAPIKey reports that no key could be found for a provider.
type ErrMissingAPIKey struct {
	Meta provider.ProviderMeta
}

func (e *ErrMissingAPIKey) Error() string {
	if len(e.Meta.EnvVars) == 0 {
		return fmt.Sprintf("no API key configured for %s", e.Meta.Provider)
	}
	return fmt.Sprintf("API key not found in environment variable %s", e.Meta.EnvVars[0])
}

func (e *ErrMissingAPIKey) Unwrap() error { return ErrInvalidAPIKey }

// Hint returns a one-line remediation for a classified error, or "".
func Hint(err error) string {
	var missing *ErrMissingAPIKey
	if errors.As(err, &missing) {
		if missing.Meta.KeyURL != "" {
			return fmt.Sprintf("Get a key at %s and export %s.", missing.Meta.KeyURL, missing.Meta.EnvVars[0])
		}
		return "Configure credentials and try again."
	}

	switch {
	case errors.Is(err, ErrInvalidAPIKey):
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if meta, ok := provider.GetMeta(provider.Provider(apiErr.Provider), provider.AuthAPIKey); ok && meta.KeyURL != "" {
				return fmt.Sprintf("Check your API key. New keys: %s", meta.KeyURL)
			}
		}
		return "Check your API key."
	case errors.Is(err, ErrRateLimit):
		return "Rate limited by the provider. Wait a moment and try again."
	case errors.Is(err, ErrNetwork):
		return "Could not reach the provider. Check your network connection."
	case errors.Is(err, ErrServer):
		return "The provider is having trouble. Try again shortly."
	}
	return ""
}
