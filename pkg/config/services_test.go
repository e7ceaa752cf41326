package config

import (
	"testing"

	"github.com/adept-ml/preprocessing/pkg/cache"
)

func TestInitializeMetrics_Disabled(t *testing.T) {
	result := InitializeMetrics(GetDefaultConfig())
	if result.Server != nil || result.Preprocess != nil {
		t.Errorf("Expected no metrics when disabled, got %+v", result)
	}
}

func TestCreateCache(t *testing.T) {
	c, err := CreateCache(cache.Config{Type: cache.TypeNone})
	if err != nil {
		t.Fatalf("CreateCache(none) failed: %v", err)
	}
	if c != nil {
		t.Errorf("Expected nil cache for type none, got %T", c)
	}

	cfg := cache.Config{Type: cache.TypeMemory}
	cfg.ApplyDefaults()
	c, err = CreateCache(cfg)
	if err != nil {
		t.Fatalf("CreateCache(memory) failed: %v", err)
	}
	if c == nil || c.Type() != cache.TypeMemory {
		t.Fatalf("Expected memory cache, got %v", c)
	}
	_ = c.Close()

	if _, err := CreateCache(cache.Config{Type: "redis"}); err == nil {
		t.Fatal("Expected error for unknown cache type")
	}
}

func TestCreateProcessor(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Preprocessing.UniqueThreshold = 4

	p := CreateProcessor(cfg, nil, nil)
	if got := p.Config().UniqueThreshold; got != 4 {
		t.Errorf("Expected unique threshold 4, got %d", got)
	}
}
