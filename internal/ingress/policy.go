package ingress

import (
	"encoding/json"
	"fmt"

	"github.com/soundprobe/soundprobe/internal/config"
)

// Traffic-policy document evaluated by the tunnel provider before a request
// reaches the local service.
type policyDocument struct {
	OnHTTPRequest []policyRule `json:"on_http_request"`
}

type policyRule struct {
	Actions []policyAction `json:"actions"`
}

type policyAction struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config"`
}

// TrafficPolicy builds the policy JSON for the configured credentials.
// Username+password produce a basic-auth policy, an OAuth provider produces
// an oauth policy, and no credentials produce an empty string. The caller is
// responsible for warning about the unauthenticated endpoint.
func TrafficPolicy(cfg config.Ingress) (string, error) {
	var action *policyAction
	switch {
	case cfg.Username != "" && cfg.Password != "":
		action = &policyAction{
			Type: "basic-auth",
			Config: map[string]any{
				"credentials": []string{fmt.Sprintf("%s:%s", cfg.Username, cfg.Password)},
			},
		}
	case cfg.OAuthProvider != "":
		action = &policyAction{
			Type: "oauth",
			Config: map[string]any{
				"provider": cfg.OAuthProvider,
			},
		}
	default:
		return "", nil
	}

	doc := policyDocument{
		OnHTTPRequest: []policyRule{{Actions: []policyAction{*action}}},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal traffic policy: %w", err)
	}
	return string(raw), nil
}
