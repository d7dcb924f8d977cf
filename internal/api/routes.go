package api

import (
	"github.com/JaimeStill/cookbook/internal/config"
	"github.com/JaimeStill/cookbook/pkg/routes"
)

func routeGroups(domain *Domain, cfg *config.Config) []routes.Group {
	return []routes.Group{
		domain.Recipes.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Counters.Handler().Routes(),
		domain.Feed.Handler().Routes(),
	}
}
