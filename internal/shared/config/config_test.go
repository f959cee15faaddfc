package config

import (
	"testing"
	"time"
)

func TestFormatState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "california", want: "California"},
		{raw: "new   york", want: "New York"},
		{raw: "  NORTH dakota ", want: "North Dakota"},
		{raw: "", want: ""},
	}

	for _, tt := range tests {
		if got := FormatState(tt.raw); got != tt.want {
			t.Fatalf("FormatState(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DEBUG_MODE", "ENV", "US_STATE", "AWS_DYNAMODB_TABLE", "AWS_BUCKET", "DATABASE_URL",
		"RECORD_STORE", "OBJECT_STORE", "PRESIGN_EXPIRY", "SECRET_KEY", "MAX_UPLOAD_MB", "VERIFY_PDF",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "5000" {
		t.Fatalf("expected default port 5000, got %s", cfg.Port)
	}
	if !cfg.Debug {
		t.Fatalf("expected debug on by default")
	}
	if cfg.RecordStore != RecordStoreMemory {
		t.Fatalf("expected memory record store, got %s", cfg.RecordStore)
	}
	if cfg.ObjectStoreType != ObjectStoreLocal {
		t.Fatalf("expected local object store, got %s", cfg.ObjectStoreType)
	}
	if cfg.PresignExpiry != time.Hour {
		t.Fatalf("expected 1h presign expiry, got %s", cfg.PresignExpiry)
	}
	if len(cfg.SecretKey) != 32 {
		t.Fatalf("expected generated 32 byte secret, got %d", len(cfg.SecretKey))
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected 10MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if !cfg.VerifyPDF {
		t.Fatalf("expected pdf verification on by default")
	}
}

func TestLoadInfersAWSBackends(t *testing.T) {
	t.Setenv("RECORD_STORE", "")
	t.Setenv("OBJECT_STORE", "")
	t.Setenv("AWS_DYNAMODB_TABLE", "humangov-california-dynamodb")
	t.Setenv("AWS_BUCKET", "humangov-california-s3")
	t.Setenv("US_STATE", "california")
	t.Setenv("DEBUG_MODE", "0")
	t.Setenv("PRESIGN_EXPIRY", "10m")

	cfg := Load()
	if cfg.RecordStore != RecordStoreDynamo {
		t.Fatalf("expected dynamodb record store, got %s", cfg.RecordStore)
	}
	if cfg.ObjectStoreType != ObjectStoreS3 {
		t.Fatalf("expected s3 object store, got %s", cfg.ObjectStoreType)
	}
	if cfg.USState != "California" {
		t.Fatalf("unexpected state label %q", cfg.USState)
	}
	if cfg.Debug {
		t.Fatalf("expected debug off")
	}
	if cfg.PresignExpiry != 10*time.Minute {
		t.Fatalf("expected 10m presign expiry, got %s", cfg.PresignExpiry)
	}
}

func TestLoadExplicitStoreWins(t *testing.T) {
	t.Setenv("AWS_DYNAMODB_TABLE", "table")
	t.Setenv("DATABASE_URL", "postgres://localhost/humangov")
	t.Setenv("RECORD_STORE", "pg")

	cfg := Load()
	if cfg.RecordStore != RecordStorePostgres {
		t.Fatalf("expected postgres record store, got %s", cfg.RecordStore)
	}
}

func TestLoadSecureCookies(t *testing.T) {
	tests := []struct {
		env    string
		secure string
		want   bool
	}{
		{env: "dev", want: false},
		{env: "production", want: true},
		{env: "production", secure: "false", want: false},
		{env: "local", secure: "true", want: true},
	}

	for _, tt := range tests {
		t.Setenv("ENV", tt.env)
		t.Setenv("COOKIE_SECURE", tt.secure)
		t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")
		if got := Load().SecureCookies; got != tt.want {
			t.Fatalf("ENV=%s COOKIE_SECURE=%q: got %t, want %t", tt.env, tt.secure, got, tt.want)
		}
	}
}
