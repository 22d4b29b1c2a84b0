package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"bedownloader/pkg/behance"
)

// DefaultProfile names the session used when none is given
const DefaultProfile = "default"

// Session is a stored Behance session token. The token is the value the
// site keeps in localStorage after sign-in.
type Session struct {
	Profile      string    `json:"profile"`
	Token        string    `json:"token"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving sessions
type CredentialStore interface {
	// Store saves a session under its profile name
	Store(session *Session) error

	// Retrieve gets the session of a profile
	Retrieve(profile string) (*Session, error)

	// List returns all stored sessions
	List() ([]*Session, error)

	// Delete removes the session of a profile
	Delete(profile string) error

	// Exists checks if a session exists for a profile
	Exists(profile string) bool
}

// Manager handles session storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a manager that tries the system keychain, then an
// encrypted file in configDir, then the environment. An empty configDir
// uses the per-user config directory.
func NewManager(configDir string) (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	if configDir == "" {
		dir, err := getConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		configDir = dir
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over the given stores, tried in order
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the session using the first store that accepts it
func (m *Manager) Store(session *Session) error {
	if session == nil || strings.TrimSpace(session.Token) == "" {
		return ErrInvalidCredentials
	}
	if session.Profile == "" {
		session.Profile = DefaultProfile
	}
	session.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(session)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store session: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve gets the session of a profile from the first store that has it
func (m *Manager) Retrieve(profile string) (*Session, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	for _, store := range m.stores {
		if session, err := store.Retrieve(profile); err == nil && session != nil {
			return session, nil
		}
	}
	return nil, fmt.Errorf("%w: profile %s", ErrCredentialsNotFound, profile)
}

// Token returns the token of a profile, or "" when none is stored
func (m *Manager) Token(profile string) string {
	session, err := m.Retrieve(profile)
	if err != nil {
		return ""
	}
	return session.Token
}

// List returns all sessions, keeping the most recent one per profile
func (m *Manager) List() ([]*Session, error) {
	byProfile := make(map[string]*Session)
	var order []string

	for _, store := range m.stores {
		sessions, err := store.List()
		if err != nil {
			continue
		}
		for _, s := range sessions {
			existing, ok := byProfile[s.Profile]
			if !ok {
				order = append(order, s.Profile)
			}
			if !ok || s.LastModified.After(existing.LastModified) {
				byProfile[s.Profile] = s
			}
		}
	}

	result := make([]*Session, 0, len(order))
	for _, p := range order {
		result = append(result, byProfile[p])
	}
	return result, nil
}

// Delete removes the profile's session from every store
func (m *Manager) Delete(profile string) error {
	if profile == "" {
		profile = DefaultProfile
	}

	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		if err := store.Delete(profile); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil && !errors.Is(lastErr, ErrCredentialsNotFound) && !errors.Is(lastErr, ErrStoreUnavailable) {
		return fmt.Errorf("failed to delete session: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w: profile %s", ErrCredentialsNotFound, profile)
	}
	return nil
}

// HasAuthScope reports whether token is usable for signing in. Tokens
// without the re-auth scope are ignored by the downloader.
func HasAuthScope(token string) bool {
	return strings.Contains(token, behance.AuthTokenMarker)
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "bedownloader")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "bedownloader")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "bedownloader")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "bedownloader")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeSession returns a copy with the token masked
func SanitizeSession(session *Session) *Session {
	if session == nil {
		return nil
	}
	return &Session{
		Profile:      session.Profile,
		Token:        MaskToken(session.Token),
		LastModified: session.LastModified,
	}
}

// MaskToken masks all but the first 4 and last 4 characters of a token
func MaskToken(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
