package shared

import (
	"bytes"
	"testing"
)

func TestGenerateID(t *testing.T) {
	first := GenerateID()
	second := GenerateID()

	if first == "" {
		t.Fatal("expected a non-empty ID")
	}
	if first == second {
		t.Error("expected unique IDs across calls")
	}
	if len(first) != 36 {
		t.Errorf("expected UUID string length 36, got %d", len(first))
	}
}

func TestGenerateState(t *testing.T) {
	first, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	second, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}

	if first == "" || first == second {
		t.Error("expected distinct non-empty state tokens")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello", "key", "value")

	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("log output missing message: %s", buf.String())
	}
}
