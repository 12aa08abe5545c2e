package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func remoteEnv() map[string]string {
	return map[string]string{
		"STOREFRONT_BACKEND":            "remote",
		"REMOTE_ENDPOINT":               "https://storage.googleapis.com",
		"REMOTE_PROJECT_ID":             "shop",
		"REMOTE_DATABASE_ID":            "storefront",
		"REMOTE_PRODUCTS_COLLECTION_ID": "products",
		"REMOTE_ORDERS_COLLECTION_ID":   "orders",
		"REMOTE_USERS_COLLECTION_ID":    "users",
		"REMOTE_ACCOUNTS_COLLECTION_ID": "accounts",
		"REMOTE_BUCKET_ID":              "product-images",
		"MONGO_URI":                     "mongodb://localhost:27017",
		"REDIS_ADDR":                    "localhost:6379",
		"SESSION_SECRET":                "s3cret",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != BackendEphemeral || cfg.Port != "8080" || cfg.Ephemeral.LatencyScale != 1 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Events.Queue != "orders" || cfg.Events.Workers != 8 {
		t.Errorf("unexpected event defaults %+v", cfg.Events)
	}
	if !cfg.IsDevelopment() {
		t.Error("development should be the default")
	}
}

func TestLoad_Remote(t *testing.T) {
	env := remoteEnv()
	env["SESSION_TTL"] = "2h"
	cfg, err := load(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Remote.SessionTTL != 2*time.Hour || cfg.Remote.BucketID != "product-images" {
		t.Errorf("unexpected remote config %+v", cfg.Remote)
	}
}

func TestLoad_RemoteMissingFields(t *testing.T) {
	env := remoteEnv()
	delete(env, "SESSION_SECRET")
	delete(env, "REMOTE_BUCKET_ID")

	_, err := load(context.Background(), envconfig.MapLookuper(env))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, name := range []string{"SESSION_SECRET", "REMOTE_BUCKET_ID"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name %s: %v", name, err)
		}
	}
}

func TestLoad_RemoteFieldsIgnoredForEphemeral(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"SESSION_SECRET": ""})); err != nil {
		t.Fatalf("ephemeral must not need remote settings: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown backend":  {"STOREFRONT_BACKEND": "firebase"},
		"negative scale":   {"EPHEMERAL_LATENCY_SCALE": "-1"},
		"negative workers": {"EVENTS_WORKERS": "-2"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
