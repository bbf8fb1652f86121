package parser

import (
	"fmt"
	"sort"

	"invoiceguard/internal/config"
	"invoiceguard/internal/port"
)

// ProviderFactory is a function that creates a DocumentParser from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.DocumentParser, error)

// registry of parser provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a parser provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewParser creates a DocumentParser from a provider config using the registered factory.
func NewParser(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the primary parser, wrapped in a FallbackParser when a
// secondary provider is configured.
func NewFromConfig(cfg *config.ParserConfig) (port.DocumentParser, error) {
	primaryCfg := cfg.PrimaryConfig()
	primary, err := NewParser(primaryCfg)
	if err != nil {
		return nil, fmt.Errorf("primary parser: %w", err)
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}
	secondary, err := NewParser(secondaryCfg)
	if err != nil {
		return nil, fmt.Errorf("secondary parser: %w", err)
	}
	return NewFallbackParser(
		[]port.DocumentParser{primary, secondary},
		[]string{primaryCfg.Provider, secondaryCfg.Provider},
	), nil
}
