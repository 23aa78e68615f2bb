package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "STORE_BACKEND", "CURRENCY", "MOCK_PAYMENTS", "OUTBOX_POLL_INTERVAL", "PAYMENT_BASE_URL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.HTTPPort != 8080 || cfg.GRPCPort != 8081 {
		t.Fatalf("unexpected ports: %d %d", cfg.HTTPPort, cfg.GRPCPort)
	}
	if cfg.StoreBackend != StoreBackendPostgres {
		t.Fatalf("expected postgres backend, got %q", cfg.StoreBackend)
	}
	if cfg.Currency != "USD" {
		t.Fatalf("expected USD, got %q", cfg.Currency)
	}
	if !cfg.MockPayments {
		t.Fatalf("expected mock payments by default")
	}
	if cfg.OutboxPoll != time.Second {
		t.Fatalf("expected 1s poll, got %s", cfg.OutboxPoll)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("CURRENCY", "eur")
	t.Setenv("MOCK_PAYMENTS", "false")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("PAYMENT_BASE_URL", "http://payments.local/")

	cfg := Load()
	if cfg.HTTPPort != 9090 {
		t.Fatalf("expected 9090, got %d", cfg.HTTPPort)
	}
	if cfg.StoreBackend != StoreBackendMemory {
		t.Fatalf("expected memory backend, got %q", cfg.StoreBackend)
	}
	if cfg.Currency != "EUR" {
		t.Fatalf("expected EUR, got %q", cfg.Currency)
	}
	if cfg.MockPayments {
		t.Fatalf("expected mock payments off")
	}
	if cfg.OutboxPoll != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", cfg.OutboxPoll)
	}
	if cfg.PaymentURL != "http://payments.local" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.PaymentURL)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("OUTBOX_POLL_INTERVAL", "-1s")
	t.Setenv("MOCK_PAYMENTS", "maybe")

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port, got %d", cfg.HTTPPort)
	}
	if cfg.OutboxPoll != time.Second {
		t.Fatalf("expected default poll, got %s", cfg.OutboxPoll)
	}
	if !cfg.MockPayments {
		t.Fatalf("expected default mock payments")
	}
}
