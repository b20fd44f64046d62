// Package brand maps a customer slug to its branding and staff recipient
// routing. The registry is constructor-injected so the intake pipeline is
// testable without config fixtures.
package brand

import (
	"strings"

	"github.com/AHLJvanderPlas/Podfy-app/internal/config"
)

// DefaultSlug is the sentinel brand used when a submitted slug is unknown.
const DefaultSlug = "default"

type Brand struct {
	Slug        string
	DisplayName string
	ColorTheme  string
	LogoKey     string
	Recipients  []string
}

type Registry struct {
	brands   map[string]Brand
	fallback Brand
}

func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{
		brands: make(map[string]Brand, len(cfg.Brands)),
		fallback: Brand{
			Slug:        DefaultSlug,
			DisplayName: cfg.App.Name,
			Recipients:  cfg.Mail.StaffFallback,
		},
	}
	for _, b := range cfg.Brands {
		br := Brand{
			Slug:        strings.ToLower(b.Slug),
			DisplayName: b.DisplayName,
			ColorTheme:  b.ColorTheme,
			LogoKey:     b.LogoKey,
			Recipients:  b.Recipients,
		}
		r.brands[br.Slug] = br
		if br.Slug == DefaultSlug {
			r.fallback = br
		}
	}
	return r
}

// Resolve returns the brand for slug, falling back to the default brand for
// anything outside the known set. The returned slug is therefore always a
// member of the known-brand set.
func (r *Registry) Resolve(slug string) Brand {
	if b, ok := r.brands[strings.ToLower(strings.TrimSpace(slug))]; ok {
		return b
	}
	return r.fallback
}

// Known reports whether slug is a configured brand.
func (r *Registry) Known(slug string) bool {
	_, ok := r.brands[strings.ToLower(strings.TrimSpace(slug))]
	return ok
}
