package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// availabilityProbeAccount is read to detect whether the OS keyring responds
// at all. The entry is never written.
const availabilityProbeAccount = "pagelens-availability-probe"

// KeyringStore is the OS-native CredentialStore backed by the platform
// keychain (macOS Keychain, Windows Credential Manager, Secret Service on
// Linux). Every platform failure is wrapped into a KindKeychain error; raw
// platform errors never escape.
type KeyringStore struct{}

// NewKeyringStore returns the OS-native credential store.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

// Get returns the stored secret for service/account.
func (*KeyringStore) Get(service, account string) (string, bool, error) {
	value, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, WrapError(KindKeychain, "failed to read from system keyring", err)
	}
	return value, true, nil
}

// Set stores the secret under service/account.
func (*KeyringStore) Set(service, account, value string) error {
	if err := keyring.Set(service, account, value); err != nil {
		return WrapError(KindKeychain, "failed to write to system keyring", err)
	}
	return nil
}

// Delete removes the secret, reporting whether one existed.
func (*KeyringStore) Delete(service, account string) (bool, error) {
	err := keyring.Delete(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return false, nil
		}
		return false, WrapError(KindKeychain, "failed to delete from system keyring", err)
	}
	return true, nil
}

// Available probes the keyring with a read. "Not found" means the keyring
// answered and is usable; any other failure means it is not.
func (*KeyringStore) Available() bool {
	_, err := keyring.Get(ServiceName, availabilityProbeAccount)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return true
	}
	return false
}
