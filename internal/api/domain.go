package api

import (
	"fmt"

	"github.com/JaimeStill/cookbook/internal/counters"
	"github.com/JaimeStill/cookbook/internal/feed"
	"github.com/JaimeStill/cookbook/internal/infrastructure"
	"github.com/JaimeStill/cookbook/internal/recipes"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Recipes  recipes.System
	Counters counters.System
	Feed     *feed.Hub
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	recipesSystem := recipes.New(
		runtime.Documents,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	countersSystem := counters.New(
		runtime.Documents,
		runtime.Events,
		runtime.Logger,
	)

	return &Domain{
		Recipes:  recipesSystem,
		Counters: countersSystem,
		Feed:     feed.NewHub(runtime.Events, runtime.Logger),
	}
}

// Start subscribes the counter consumer and the feed hub to the event bus.
func (d *Domain) Start(infra *infrastructure.Infrastructure) error {
	if err := d.Counters.Start(infra.Lifecycle); err != nil {
		return fmt.Errorf("counters start failed: %w", err)
	}
	if err := d.Feed.Start(infra.Lifecycle); err != nil {
		return fmt.Errorf("feed start failed: %w", err)
	}
	return nil
}
