package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusWithoutChecksIsHealthy(t *testing.T) {
	ok, failures := NewService().Status(context.Background())
	assert.True(t, ok)
	assert.Empty(t, failures)
}

func TestStatusReportsFailingChecks(t *testing.T) {
	svc := NewService()
	svc.Register("db", func(context.Context) error { return errors.New("connection refused") })
	svc.Register("bucket", func(context.Context) error { return nil })

	ok, failures := svc.Status(context.Background())
	assert.False(t, ok)
	assert.Equal(t, map[string]string{"db": "connection refused"}, failures)
}
