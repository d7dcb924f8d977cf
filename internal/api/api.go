// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"github.com/JaimeStill/cookbook/internal/config"
	"github.com/JaimeStill/cookbook/internal/infrastructure"
	"github.com/JaimeStill/cookbook/pkg/middleware"
	"github.com/JaimeStill/cookbook/pkg/module"
)

// API is the mounted module together with the domain systems that need
// lifecycle registration.
type API struct {
	Module *module.Module
	Domain *Domain
}

// New creates the API module with all domain handlers and middleware.
// Metrics is the innermost middleware so it observes the matched route pattern.
func New(cfg *config.Config, infra *infrastructure.Infrastructure) (*API, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	m := module.FromGroups(cfg.API.BasePath, routeGroups(domain, cfg)...)
	m.Use(
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
		middleware.Auth(cfg.API.AuthToken),
		middleware.Metrics(),
	)

	return &API{Module: m, Domain: domain}, nil
}

// Start registers the domain's background consumers with the lifecycle coordinator.
func (a *API) Start(infra *infrastructure.Infrastructure) error {
	return a.Domain.Start(infra)
}
