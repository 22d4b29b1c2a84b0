package auth

import (
	"os"
	"time"
)

// TokenEnvVar holds a session token supplied through the environment
const TokenEnvVar = "BEDOWNLOADER_TOKEN"

// EnvironmentStore implements CredentialStore over BEDOWNLOADER_TOKEN.
// It is read only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(session *Session) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment token for any profile
func (e *EnvironmentStore) Retrieve(profile string) (*Session, error) {
	token := os.Getenv(TokenEnvVar)
	if token == "" {
		return nil, ErrCredentialsNotFound
	}
	if profile == "" {
		profile = DefaultProfile
	}
	return &Session{
		Profile:      profile,
		Token:        token,
		LastModified: time.Time{},
	}, nil
}

// List returns a single session if the variable is set
func (e *EnvironmentStore) List() ([]*Session, error) {
	session, err := e.Retrieve("")
	if err != nil {
		return []*Session{}, nil
	}
	return []*Session{session}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

// Exists checks if the environment token is set
func (e *EnvironmentStore) Exists(profile string) bool {
	return os.Getenv(TokenEnvVar) != ""
}
