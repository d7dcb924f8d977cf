package events

import (
	"context"
	"strings"
	"sync"
)

type subscription struct {
	pattern  []string
	ch       chan []byte
	lossless bool
	done     chan struct{}
	halt     sync.Once
}

func (s *subscription) stop() {
	s.halt.Do(func() { close(s.done) })
}

type localBus struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]*subscription
	closed  bool
	closing chan struct{}
	once    sync.Once
}

// NewLocal returns an in-process Bus with NATS subject semantics.
// Subscribe drops messages for subscribers whose buffer is full.
// Consume blocks the publisher until the consumer has room.
func NewLocal() Bus {
	return &localBus{
		subs:    make(map[int]*subscription),
		closing: make(chan struct{}),
	}
}

func (b *localBus) Publish(ctx context.Context, topic string, event any) error {
	data, err := encode(topic, event)
	if err != nil {
		return err
	}

	subject := strings.Split(topic, ".")

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !matchSubject(sub.pattern, subject) {
			continue
		}

		if !sub.lossless {
			select {
			case sub.ch <- data:
			default:
			}
			continue
		}

		select {
		case sub.ch <- data:
		case <-sub.done:
		case <-b.closing:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *localBus) Subscribe(topic string) (<-chan []byte, func(), error) {
	ch, cancel := b.subscribe(topic, false)
	return ch, cancel, nil
}

// Consume runs handler on a lossless subscription. The name is only
// meaningful to durable buses.
func (b *localBus) Consume(ctx context.Context, _, topic string, handler Handler) (func(), error) {
	ch, cancel := b.subscribe(topic, true)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for raw := range ch {
			deliver(ctx, raw, handler)
		}
	}()

	return func() {
		cancel()
		<-finished
	}, nil
}

func (b *localBus) subscribe(topic string, lossless bool) (<-chan []byte, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{
		pattern:  strings.Split(topic, "."),
		ch:       make(chan []byte, 64),
		lossless: lossless,
		done:     make(chan struct{}),
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			// release publishers blocked on this subscription before taking the lock
			sub.stop()

			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub.ch)
			}
		})
	}

	return sub.ch, cancel
}

func (b *localBus) Close() error {
	b.once.Do(func() { close(b.closing) })

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
	return nil
}

// matchSubject reports whether subject matches pattern, where "*" matches
// exactly one token and a trailing ">" matches one or more.
func matchSubject(pattern, subject []string) bool {
	for i, tok := range pattern {
		if tok == ">" {
			return len(subject) > i
		}
		if i >= len(subject) {
			return false
		}
		if tok != "*" && tok != subject[i] {
			return false
		}
	}
	return len(pattern) == len(subject)
}
