package config

import (
	"errors"
	"sync"
)

var (
	// ErrAlreadySet is returned when a second Set is attempted. Overwriting the
	// configuration mid-process would desynchronise already-issued ciphertexts
	// from a now-different key, so the write is rejected loudly.
	ErrAlreadySet = errors.New("config: store already initialised")

	// ErrNotSet is returned when the store is read before initialisation.
	ErrNotSet = errors.New("config: store not initialised")
)

// Store is a one-time-settable configuration holder. It exists for callers
// that need a shared handle created before the configuration is known; code
// that can take a *Config directly should do that instead.
type Store struct {
	mu  sync.RWMutex
	cfg *Config
}

func NewStore() *Store {
	return &Store{}
}

// Set installs the configuration exactly once per process lifetime.
func (s *Store) Set(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: cannot store nil config")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg != nil {
		return ErrAlreadySet
	}
	s.cfg = cfg
	return nil
}

// Get returns the stored configuration, or ErrNotSet before initialisation.
func (s *Store) Get() (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg == nil {
		return nil, ErrNotSet
	}
	return s.cfg, nil
}

// CryptoConfig satisfies the codec's provider contract, failing when the
// store was never initialised or holds no usable key.
func (s *Store) CryptoConfig() (CryptoConfig, error) {
	cfg, err := s.Get()
	if err != nil {
		return CryptoConfig{}, err
	}
	return cfg.CryptoConfig()
}
