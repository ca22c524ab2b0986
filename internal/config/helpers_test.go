package config

import (
	"encoding/json"
	"testing"
)

func mustMarshal(t *testing.T, cfg *Config) []byte {
	t.Helper()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
