package counters

import (
	"context"
	"fmt"

	"github.com/JaimeStill/cookbook/internal/recipes"
	"github.com/JaimeStill/cookbook/pkg/events"
	"github.com/JaimeStill/cookbook/pkg/lifecycle"
	"github.com/JaimeStill/cookbook/pkg/metrics"
)

// ConsumerName identifies the durable consumer that feeds the counters.
const ConsumerName = "counters"

// Start registers the durable counter consumer on recipe creation events.
// Every event is applied at least once; the consumer stops on shutdown.
func (s *system) Start(lc *lifecycle.Coordinator) error {
	topic := events.Topic(recipes.Collection, events.ActionCreated)

	stop, err := s.consumer.Consume(lc.Context(), ConsumerName, topic, s.handle)
	if err != nil {
		return fmt.Errorf("consume %s: %w", topic, err)
	}

	s.logger.Info("starting counter consumer", "topic", topic)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		stop()
		s.logger.Info("counter consumer stopped")
	})

	return nil
}

// handle applies one creation event. Malformed events are acknowledged and
// dropped; a failed update is returned so the bus redelivers it.
func (s *system) handle(ctx context.Context, raw []byte) error {
	env, err := events.Decode(raw)
	if err != nil {
		s.logger.Warn("dropping malformed event", "error", err)
		metrics.RecordCounterEvent("malformed")
		return nil
	}

	var doc events.DocumentCreated
	if err := env.Unmarshal(&doc); err != nil {
		s.logger.Warn("dropping malformed event", "event", env.ID, "error", err)
		metrics.RecordCounterEvent("malformed")
		return nil
	}

	if err := s.Apply(ctx, doc); err != nil {
		s.logger.Error("counter update failed", "event", env.ID, "recipe", doc.ID, "error", err)
		metrics.RecordCounterEvent("failed")
		return err
	}

	metrics.RecordCounterEvent("applied")
	return nil
}
