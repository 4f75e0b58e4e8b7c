package registry

import (
	"fmt"
)

// Strategy is the service-specific login handshake. It is a closed tagged
// type: raw configuration strings are parsed once at the data boundary via
// ParseStrategy and nothing downstream branches on raw strings.
type Strategy string

const (
	// StrategyNone performs a plain redirect; authorization is trusted
	// entirely to the forward-auth gateway.
	StrategyNone Strategy = "none"
	// StrategyBasic embeds shared credentials in the destination URL.
	StrategyBasic Strategy = "basic"
	// StrategyTokenInject exchanges a stored per-service credential for a
	// bearer token the service's own setup page writes into client storage.
	StrategyTokenInject Strategy = "token-inject"
	// StrategyCookieProxy exchanges a stored per-service credential for
	// session cookies set directly on the response.
	StrategyCookieProxy Strategy = "cookie-proxy"
	// StrategyCredentialDisplay renders stored credentials for manual copy.
	StrategyCredentialDisplay Strategy = "credential-display"
)

// ParseStrategy maps a stored strategy tag to its closed variant. Unknown
// tags degrade to StrategyNone so an end user still gets a plain redirect,
// but the error makes the misconfiguration visible to the operator.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case StrategyNone, StrategyBasic, StrategyTokenInject, StrategyCookieProxy, StrategyCredentialDisplay:
		return Strategy(raw), nil
	case "":
		return StrategyNone, nil
	}
	return StrategyNone, fmt.Errorf("unknown auth strategy %q", raw)
}

// Service is a curated backend service reachable on a subdomain of the
// portal's base domain.
type Service struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Subdomain string   `json:"subdomain"`
	Strategy  Strategy `json:"strategy"`
	URL       string   `json:"url,omitempty"` // internal API URL, used by integrations only
}
