package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const service = "plateadmin-cli"

// ErrNotLoggedIn is returned when no token is stored for a server
var ErrNotLoggedIn = errors.New("not logged in. Please run 'plateadmin login' first")

// keyringKey returns the keyring entry name for a server
func keyringKey(serverURL string) string {
	return fmt.Sprintf("session-%s", serverURL)
}

// SaveToken stores the session token in the OS keychain/credential manager
func SaveToken(serverURL, token string) error {
	if err := keyring.Set(service, keyringKey(serverURL), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken reads the session token from the OS keychain/credential manager
func LoadToken(serverURL string) (string, error) {
	token, err := keyring.Get(service, keyringKey(serverURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotLoggedIn
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// DeleteToken removes the session token. Deleting a missing token is not an error.
func DeleteToken(serverURL string) error {
	if err := keyring.Delete(service, keyringKey(serverURL)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
