package auth

// TokenStore persists session tokens per server. Tests swap in an in-memory store.
type TokenStore interface {
	SaveToken(serverURL, token string) error
	LoadToken(serverURL string) (string, error)
	DeleteToken(serverURL string) error
}

// keyringStore implements TokenStore using the OS keyring
type keyringStore struct{}

// Default is the keyring-backed store used by the CLI
var Default TokenStore = &keyringStore{}

func (keyringStore) SaveToken(serverURL, token string) error {
	return SaveToken(serverURL, token)
}

func (keyringStore) LoadToken(serverURL string) (string, error) {
	return LoadToken(serverURL)
}

func (keyringStore) DeleteToken(serverURL string) error {
	return DeleteToken(serverURL)
}
