package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"humangov/internal/shared/awsx"
	"humangov/internal/shared/metrics"
	"humangov/internal/shared/storage/object"
	"humangov/internal/shared/telemetry"
)

const contentTypePDF = "application/pdf"

// Service stores uploaded documents and issues signed links to them.
type Service struct {
	Store     object.ObjectStore
	MaxBytes  int64
	Verify    bool
	URLExpiry time.Duration

	// NewKey derives the object key from the record's first name.
	NewKey func(stem string) string
}

// Upload reads the document, checks it and stores it under a fresh key.
func (s *Service) Upload(ctx context.Context, stem string, r io.Reader) (string, error) {
	if r == nil {
		return "", ErrMissingFile
	}

	data, err := s.read(r)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrMissingFile
	}
	if s.Verify {
		if _, err := VerifyPDF(data); err != nil {
			return "", err
		}
	}

	newKey := s.NewKey
	if newKey == nil {
		newKey = NewFileName
	}
	key := newKey(stem)

	start := time.Now()
	err = s.Store.Put(ctx, key, contentTypePDF, bytes.NewReader(data))
	metrics.ObserveUploadDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.IncUploadFailed()
		telemetry.Error("documents.upload_failed", map[string]any{
			"key":   key,
			"error": awsx.ErrorMessage(err),
		})
		return "", fmt.Errorf("upload document %s: %w", key, err)
	}

	telemetry.Info("documents.uploaded", map[string]any{
		"key":        key,
		"size_bytes": len(data),
	})
	return key, nil
}

// SignedURL returns a time-limited GET link for key.
func (s *Service) SignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", object.ErrNotFound
	}
	ttl := s.URLExpiry
	if ttl <= 0 {
		ttl = time.Hour
	}
	url, err := s.Store.PresignGet(ctx, key, ttl)
	if err != nil {
		telemetry.Error("documents.presign_failed", map[string]any{
			"key":   key,
			"error": awsx.ErrorMessage(err),
		})
		return "", fmt.Errorf("presign document %s: %w", key, err)
	}
	return url, nil
}

func (s *Service) read(r io.Reader) ([]byte, error) {
	if s.MaxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrTooLarge
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > s.MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
