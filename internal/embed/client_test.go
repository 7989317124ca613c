package embed

import (
	"errors"
	"testing"
)

func TestNewClient_BatchSizeFallback(t *testing.T) {
	c := NewClient("sk-test", "text-embedding-3-large", 0)
	if c.BatchSize() != DefaultBatchSize {
		t.Errorf("expected default batch size %d, got %d", DefaultBatchSize, c.BatchSize())
	}
	c = NewClient("sk-test", "text-embedding-3-large", 25)
	if c.BatchSize() != 25 {
		t.Errorf("expected batch size 25, got %d", c.BatchSize())
	}
}

func TestClient_Model(t *testing.T) {
	c := NewClient("sk-test", "text-embedding-3-large", 100)
	if c.Model() != "text-embedding-3-large" {
		t.Errorf("unexpected model %q", c.Model())
	}
}

func TestAdapterError_Unwrap(t *testing.T) {
	inner := errors.New("quota exceeded")
	err := &AdapterError{Op: "create", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected AdapterError to unwrap to inner error")
	}
}
