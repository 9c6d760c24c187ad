package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/hearth-collective/hearth/internal/pkg/env"
)

// Collective is the static configuration for one sub-group: its display name
// and the billing provider key pair used for its subscriptions.
type Collective struct {
	DisplayName           string `json:"display_name"`
	Currency              string `json:"currency"`
	BillingSecretKey      string `json:"billing_secret_key"`
	BillingPublishableKey string `json:"billing_publishable_key"`
}

// Collectives maps collective name to its configuration. The projector
// enumerates these names; the reconciler selects provider credentials from
// them. The value is threaded explicitly through constructors, never read
// from ambient globals.
type Collectives map[string]Collective

// LoadCollectives reads the collective configuration from the JSON file named
// by COLLECTIVES_FILE (default collectives.json).
func LoadCollectives() (Collectives, error) {
	path := env.GetEnv("COLLECTIVES_FILE", "collectives.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collectives config %s: %w", path, err)
	}
	var out Collectives
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse collectives config %s: %w", path, err)
	}
	for name, c := range out {
		if c.DisplayName == "" {
			return nil, fmt.Errorf("collective %q has no display_name", name)
		}
		if c.Currency == "" {
			c.Currency = "usd"
			out[name] = c
		}
	}
	return out, nil
}

// Names returns the configured collective names in stable sorted order.
func (cs Collectives) Names() []string {
	names := make([]string, 0, len(cs))
	for name := range cs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a collective is configured.
func (cs Collectives) Has(name string) bool {
	_, ok := cs[name]
	return ok
}
