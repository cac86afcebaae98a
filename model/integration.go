package model

import (
	"net/url"
	"strings"
)

// Integration is a configured source code host
type Integration struct {
	Type    string
	Host    string
	BaseURL string
}

// Integrations is a lookup of configured integrations by host
type Integrations struct {
	byHost map[string]Integration
}

// NewIntegrations builds the registry from configuration entries.
// Later entries for the same host replace earlier ones.
func NewIntegrations(configs []IntegrationConfig) *Integrations {
	integrations := &Integrations{byHost: make(map[string]Integration, len(configs))}
	for _, c := range configs {
		host := strings.ToLower(strings.TrimSpace(c.Host))
		if host == "" {
			continue
		}
		baseURL := c.BaseURL
		if baseURL == "" {
			baseURL = "https://" + host
		}
		integrations.byHost[host] = Integration{
			Type:    strings.ToLower(c.Type),
			Host:    host,
			BaseURL: strings.TrimRight(baseURL, "/"),
		}
	}
	return integrations
}

// ByHost returns the integration for a host
func (i *Integrations) ByHost(host string) (Integration, bool) {
	if i == nil {
		return Integration{}, false
	}
	integration, ok := i.byHost[strings.ToLower(host)]
	return integration, ok
}

// ByURL returns the integration matching the host of an absolute URL
func (i *Integrations) ByURL(rawURL string) (Integration, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Integration{}, false
	}
	return i.ByHost(u.Hostname())
}

// EditURL returns the URL to edit the file at target, if the target's
// integration supports it
func (i *Integrations) EditURL(target string) (string, bool) {
	integration, ok := i.ByURL(target)
	if !ok {
		return "", false
	}

	switch integration.Type {
	case "github":
		if strings.Contains(target, "/blob/") {
			return strings.Replace(target, "/blob/", "/edit/", 1), true
		}
	case "gitlab":
		if strings.Contains(target, "/-/blob/") {
			return strings.Replace(target, "/-/blob/", "/-/edit/", 1), true
		}
	}
	return "", false
}
