package infrastructure_test

import (
	"context"
	"testing"
	"time"

	"github.com/JaimeStill/cookbook/internal/config"
	"github.com/JaimeStill/cookbook/internal/infrastructure"
	"github.com/JaimeStill/cookbook/pkg/database"
	"github.com/JaimeStill/cookbook/pkg/docstore"
	"github.com/JaimeStill/cookbook/pkg/events"
	"github.com/JaimeStill/cookbook/pkg/storage"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Documents: docstore.Config{Driver: docstore.DriverMemory},
		Storage:   storage.Config{Provider: storage.ProviderNone},
		Version:   "0.1.0",
	}
}

func postgresConfig() *config.Config {
	cfg := memoryConfig()
	cfg.Documents.Driver = docstore.DriverPostgres
	cfg.Database = database.Config{
		Host:            "localhost",
		Port:            5432,
		Name:            "cookbook",
		User:            "cookbook",
		Password:        "cookbook",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: "15m",
		ConnTimeout:     "5s",
	}
	return cfg
}

func TestNewMemory(t *testing.T) {
	infra, err := infrastructure.New(memoryConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database != nil {
		t.Error("Database should be nil for the memory driver")
	}
	if infra.Documents == nil || infra.Events == nil || infra.Storage == nil {
		t.Error("document store, events, and storage are required")
	}
}

func TestNewPostgres(t *testing.T) {
	infra, err := infrastructure.New(postgresConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Database == nil {
		t.Fatal("Database is nil")
	}
	if infra.Database.Connection() == nil {
		t.Error("Connection() returned nil")
	}
}

func TestStartMemory(t *testing.T) {
	infra, err := infrastructure.New(memoryConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}
	if !infra.Lifecycle.Ready() {
		t.Error("lifecycle not ready")
	}

	if err := infra.Lifecycle.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestDocumentsPublishEvents(t *testing.T) {
	infra, err := infrastructure.New(memoryConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	msgs, cancel, err := infra.Events.Subscribe(events.CollectionTopics("recipes"))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	id, err := infra.Documents.Create(context.Background(), "recipes", docstore.Fields{"name": "Soup"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	select {
	case raw := <-msgs:
		env, err := events.Decode(raw)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		var created events.DocumentCreated
		if err := env.Unmarshal(&created); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if created.ID != id {
			t.Errorf("event id = %q, want %q", created.ID, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no created event published")
	}
}
