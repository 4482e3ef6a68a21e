package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crossbeg/crossbeg-backend/pkg/config"
)

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func healthConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(healthConfig())(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-CrossBeg-Env") != "test" {
		t.Fatalf("env header missing")
	}
}

func TestHealthReadyAllUp(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := HealthReady(healthConfig(), nil, &fakePinger{}, &fakePinger{})
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHealthReadyDependencyDown(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := HealthReady(healthConfig(), nil, &fakePinger{}, &fakePinger{err: errors.New("chain mismatch")})
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
