// Package session keeps the last uploaded report of each user in a temp file.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const ckLastReport = "report_user_%s"

// ErrNoReport is returned when a user has not uploaded anything yet, or it expired
var ErrNoReport = errors.New("no report uploaded")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Store maps user keys to temp files. Uploading again replaces the previous file.
type Store struct {
	dir   string
	cache *cache.Cache
	mu    sync.Mutex
}

// NewStore keeps reports in dir for ttl after the last upload
func NewStore(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(key string, v interface{}) {
		removeFile(v.(string))
	})

	return &Store{dir: dir, cache: c}, nil
}

// Put saves data as the user's current report
func (s *Store) Put(user string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := fmt.Sprintf("%s-%s.html", unsafeChars.ReplaceAllString(user, "_"), uuid.NewString())
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing report file: %w", err)
	}

	key := fmt.Sprintf(ckLastReport, user)
	if prev, ok := s.cache.Get(key); ok {
		removeFile(prev.(string))
	}
	s.cache.SetDefault(key, path)
	return nil
}

// Get returns the user's current report
func (s *Store) Get(user string) ([]byte, error) {
	v, ok := s.cache.Get(fmt.Sprintf(ckLastReport, user))
	if !ok {
		return nil, ErrNoReport
	}

	data, err := os.ReadFile(v.(string))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoReport
		}
		return nil, fmt.Errorf("reading report file: %w", err)
	}
	return data, nil
}

// Delete drops the user's report and its file
func (s *Store) Delete(user string) {
	s.cache.Delete(fmt.Sprintf(ckLastReport, user))
}

// Close removes every stored file
func (s *Store) Close() {
	for key := range s.cache.Items() {
		s.cache.Delete(key)
	}
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("path", path).Warn("Failed to remove session file")
	}
}
