package history

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bedownloader/pkg/logger"
)

// Load reads the history file. A missing or unreadable file yields an empty
// list. CRLF and LF line endings are both accepted and blank lines dropped.
func Load(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{}
	}
	return parse(data)
}

func parse(data []byte) []string {
	urls := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls
}

// Append adds url to the history file unless it is already present. The
// file is re-read first so concurrent edits by the user are kept, then
// rewritten through a temp file and rename.
func Append(path, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}

	existing := Load(path)
	for _, u := range existing {
		if u == url {
			return nil
		}
	}

	return write(path, append(existing, url))
}

func write(path string, urls []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	var buf bytes.Buffer
	for _, u := range urls {
		buf.WriteString(u)
		buf.WriteByte('\n')
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary history file: %w", err)
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync history file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close history file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// Store is the history file bound to a path
type Store struct {
	mu     sync.Mutex
	path   string
	logger logger.Logger
}

// NewStore binds a Store to path
func NewStore(path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{path: path, logger: log}
}

// Path returns the file location
func (s *Store) Path() string {
	return s.path
}

// Load reads all recorded URLs
func (s *Store) Load() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	urls := Load(s.path)
	s.logger.DebugWithFields("history loaded", map[string]interface{}{
		"path":    s.path,
		"entries": len(urls),
	})
	return urls
}

// Append records url on disk
func (s *Store) Append(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Append(s.path, url)
}

// Clear removes every entry
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return write(s.path, nil)
}
