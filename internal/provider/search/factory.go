package search

import (
	"net/url"
	"strings"
)

// CreateProvider creates a search provider by name. Unknown names fall back
// to DuckDuckGo.
func CreateProvider(name ProviderName) Provider {
	switch name {
	case ProviderBrave:
		return NewBraveProvider()
	default:
		return NewDuckDuckGoProvider()
	}
}

// GetDefaultProvider returns Brave when BRAVE_API_KEY is set, DuckDuckGo
// otherwise.
func GetDefaultProvider() Provider {
	if brave := NewBraveProvider(); brave.IsAvailable() {
		return brave
	}
	return NewDuckDuckGoProvider()
}

// matchesDomainFilter checks if a URL matches the domain filter criteria
func matchesDomainFilter(urlStr string, allowedDomains, blockedDomains []string) bool {
	if len(allowedDomains) == 0 && len(blockedDomains) == 0 {
		return true
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return true
	}
	host := strings.ToLower(parsedURL.Host)

	for _, blocked := range blockedDomains {
		blocked = strings.ToLower(blocked)
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return false
		}
	}

	if len(allowedDomains) > 0 {
		for _, allowed := range allowedDomains {
			allowed = strings.ToLower(allowed)
			if host == allowed || strings.HasSuffix(host, "."+allowed) {
				return true
			}
		}
		return false
	}
	return true
}
