package events

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/cookbook/pkg/lifecycle"
)

// Config selects the event bus. An empty URL selects the in-process bus.
type Config struct {
	URL string `toml:"url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL string
}

// Finalize applies environment variable overrides. The in-process default needs no validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil && env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
}

// System is a Bus with lifecycle coordination.
type System interface {
	Bus
	// Start registers a shutdown hook that closes the bus.
	Start(lc *lifecycle.Coordinator) error
}

type system struct {
	Bus
	kind   string
	logger *slog.Logger
}

// New creates the event bus selected by cfg.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "events")

	if cfg.URL == "" {
		return &system{Bus: NewLocal(), kind: "local", logger: logger}, nil
	}

	bus, err := NewNATS(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("create event bus: %w", err)
	}
	return &system{Bus: bus, kind: "nats", logger: logger}, nil
}

func (s *system) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting event bus", "kind", s.kind)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.logger.Info("closing event bus")

		if err := s.Close(); err != nil {
			s.logger.Error("event bus close failed", "error", err)
			return
		}

		s.logger.Info("event bus closed")
	})

	return nil
}
