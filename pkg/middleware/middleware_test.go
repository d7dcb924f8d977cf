package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/cookbook/pkg/middleware"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestApplyOrder(t *testing.T) {
	var order []string
	mw := middleware.New()

	for _, name := range []string{"first", "second"} {
		mw.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	handler := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "first,second,handler" {
		t.Errorf("order: got %v, want [first second handler]", order)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		cfg        middleware.CORSConfig
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{
			name:       "disabled",
			cfg:        middleware.CORSConfig{Enabled: false, Origins: []string{"http://example.com"}},
			method:     "GET",
			origin:     "http://example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "allowed origin",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"http://example.com"}, MaxAge: 60},
			method:     "GET",
			origin:     "http://example.com",
			wantOrigin: "http://example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "disallowed origin",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"http://example.com"}},
			method:     "GET",
			origin:     "http://evil.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wildcard preflight",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"*"}},
			method:     "OPTIONS",
			origin:     "http://app.local",
			wantOrigin: "http://app.local",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			handler := middleware.CORS(&cfg)(http.HandlerFunc(ok))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestCORSConfigFinalizeDefaults(t *testing.T) {
	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !strings.Contains(strings.Join(cfg.AllowedMethods, ","), "PATCH") {
		t.Errorf("AllowedMethods = %v, want PATCH included", cfg.AllowedMethods)
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("MaxAge = %d", cfg.MaxAge)
	}
}

func TestCORSConfigEnv(t *testing.T) {
	t.Setenv("TEST_CORS_ORIGINS", "http://a.com, http://b.com")
	t.Setenv("TEST_CORS_ENABLED", "true")

	cfg := middleware.CORSConfig{}
	err := cfg.Finalize(&middleware.CORSEnv{Enabled: "TEST_CORS_ENABLED", Origins: "TEST_CORS_ORIGINS"})
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !cfg.Enabled || len(cfg.Origins) != 2 || cfg.Origins[1] != "http://b.com" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/recipes?category=vegetables", nil))

	out := buf.String()
	if !strings.Contains(out, "status=418") {
		t.Errorf("log missing status: %s", out)
	}
	if !strings.Contains(out, "uri=\"/api/recipes?category=vegetables\"") && !strings.Contains(out, "uri=/api/recipes?category=vegetables") {
		t.Errorf("log missing uri: %s", out)
	}
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name         string
		token        string
		header       string
		wantStatus   int
		wantSignedIn bool
	}{
		{"disabled", "", "", http.StatusOK, true},
		{"anonymous", "secret", "", http.StatusOK, false},
		{"valid", "secret", "Bearer secret", http.StatusOK, true},
		{"wrong token", "secret", "Bearer nope", http.StatusUnauthorized, false},
		{"wrong scheme", "secret", "Basic secret", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var signedIn bool
			handler := middleware.Auth(tt.token)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				signedIn = middleware.SignedIn(r.Context())
			}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if signedIn != tt.wantSignedIn {
				t.Errorf("signedIn = %v, want %v", signedIn, tt.wantSignedIn)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := middleware.Auth("secret")(middleware.RequireAuth(ok))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("Authorization", "Bearer secret")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("signed in status = %d, want 200", rec.Code)
	}
}

func TestMetricsPassesThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /recipes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	handler := middleware.Metrics()(mux)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/recipes/abc", nil))

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
}

func TestUseVariadicKeepsOrder(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	mw := middleware.New()
	mw.Use(tag("cors"), tag("logger"))
	mw.Use(tag("auth"))

	mw.Apply(http.HandlerFunc(ok)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "cors,logger,auth" {
		t.Errorf("order = %v", order)
	}
}

func TestCORSConfigRejectsWildcardWithCredentials(t *testing.T) {
	cfg := middleware.CORSConfig{Enabled: true, Origins: []string{"*"}, AllowCredentials: true}
	if err := cfg.Finalize(nil); err == nil || !strings.Contains(err.Error(), "allow_credentials") {
		t.Errorf("err = %v, want allow_credentials rejection", err)
	}
}

func TestCORSConfigEnvMethods(t *testing.T) {
	t.Setenv("TEST_CORS_METHODS", "get, patch,,")

	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(&middleware.CORSEnv{AllowedMethods: "TEST_CORS_METHODS"}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if strings.Join(cfg.AllowedMethods, ",") != "GET,PATCH" {
		t.Errorf("AllowedMethods = %v", cfg.AllowedMethods)
	}
}

func TestCORSConfigMergeKeepsMaxAge(t *testing.T) {
	cfg := middleware.CORSConfig{MaxAge: 600}
	cfg.Merge(&middleware.CORSConfig{Enabled: true})

	if cfg.MaxAge != 600 || !cfg.Enabled {
		t.Errorf("cfg = %+v", cfg)
	}
}
