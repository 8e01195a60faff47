package auth

import (
	"fmt"
	"sync"
)

// ServiceName is the fixed service name the session is stored under in the
// platform credential store.
const ServiceName = "pagelens"

// SessionAccount is the account key for the persisted session blob.
const SessionAccount = "oauth-session"

// CredentialStore abstracts secure storage of an opaque string blob.
// The OS-native variant is KeyringStore; MemoryStore is the in-memory
// reference implementation used in tests.
type CredentialStore interface {
	// Get returns the stored value and whether one existed.
	Get(service, account string) (string, bool, error)

	// Set stores value under service/account, replacing any previous value.
	Set(service, account, value string) error

	// Delete removes the value, reporting whether something was deleted.
	// Deleting a missing entry is not an error.
	Delete(service, account string) (bool, error)

	// Available reports whether the backing store is usable on this system.
	Available() bool
}

// MemoryStore is a thread-safe in-memory CredentialStore keyed by
// "service:account". It is the behavioral reference for the keyring variant.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func storeKey(service, account string) string {
	return fmt.Sprintf("%s:%s", service, account)
}

// Get returns the stored value for service/account.
func (s *MemoryStore) Get(service, account string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[storeKey(service, account)]
	return value, ok, nil
}

// Set stores value under service/account.
func (s *MemoryStore) Set(service, account, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[storeKey(service, account)] = value
	return nil
}

// Delete removes the value for service/account.
func (s *MemoryStore) Delete(service, account string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(service, account)
	_, ok := s.values[key]
	delete(s.values, key)
	return ok, nil
}

// Available always reports true.
func (*MemoryStore) Available() bool {
	return true
}
