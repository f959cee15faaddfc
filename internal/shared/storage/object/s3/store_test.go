package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "Jane_20240101120000_ab12cd34.pdf", want: "Jane_20240101120000_ab12cd34.pdf"},
		{name: "simple prefix", prefix: "docs", key: "a.pdf", want: "docs/a.pdf"},
		{name: "prefix trailing slash", prefix: "docs/", key: "a.pdf", want: "docs/a.pdf"},
		{name: "prefix and key slashes", prefix: "/docs/", key: "/a.pdf", want: "docs/a.pdf"},
		{name: "empty key", prefix: "docs", key: "", want: "docs"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(aws.Config{Region: "us-east-1"}, Options{Bucket: "  "}); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}

func TestPresignGetBuildsExpiringURL(t *testing.T) {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	}
	store, err := New(cfg, Options{Bucket: "humangov-docs", Prefix: "california", PathStyle: true})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	raw, err := store.PresignGet(context.Background(), "jane_20240101120000_ab12cd34.pdf", time.Hour)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if !strings.HasSuffix(u.Path, "/humangov-docs/california/jane_20240101120000_ab12cd34.pdf") {
		t.Fatalf("unexpected path: %s", u.Path)
	}
	q := u.Query()
	if q.Get("X-Amz-Expires") != "3600" {
		t.Fatalf("expected X-Amz-Expires=3600, got %q", q.Get("X-Amz-Expires"))
	}
	if q.Get("X-Amz-Signature") == "" {
		t.Fatalf("expected signature in %s", raw)
	}
}
