package config

import (
	"errors"
	"sync"
	"testing"
)

func TestStore_SetOnce(t *testing.T) {
	store := NewStore()

	if err := store.Set(&Config{Environment: "test"}); err != nil {
		t.Fatalf("First Set failed: %v", err)
	}

	err := store.Set(&Config{Environment: "other"})
	if !errors.Is(err, ErrAlreadySet) {
		t.Errorf("Second Set error = %v, want ErrAlreadySet", err)
	}

	cfg, err := store.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cfg.Environment != "test" {
		t.Errorf("Second Set overwrote the configuration: %s", cfg.Environment)
	}
}

func TestStore_GetBeforeSet(t *testing.T) {
	store := NewStore()

	if _, err := store.Get(); !errors.Is(err, ErrNotSet) {
		t.Errorf("Get error = %v, want ErrNotSet", err)
	}
	if _, err := store.CryptoConfig(); !errors.Is(err, ErrNotSet) {
		t.Errorf("CryptoConfig error = %v, want ErrNotSet", err)
	}
}

func TestStore_RejectsNil(t *testing.T) {
	store := NewStore()

	if err := store.Set(nil); err == nil {
		t.Error("Set(nil) succeeded")
	}
}

func TestStore_ConcurrentSet_ExactlyOneWins(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Set(&Config{Environment: "race"})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, ErrAlreadySet) {
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("Expected exactly one successful Set, got %d", wins)
	}
}

func TestStore_CryptoConfig_Delegates(t *testing.T) {
	store := NewStore()
	if err := store.Set(&Config{Algorithm: DefaultAlgorithm, SecretKeyHex: validKeyHex}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	cc, err := store.CryptoConfig()
	if err != nil {
		t.Fatalf("CryptoConfig failed: %v", err)
	}
	if cc.Algorithm != DefaultAlgorithm || len(cc.SecretKey) != 32 {
		t.Errorf("Unexpected crypto config: %+v", cc)
	}
}
