package service

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Export is one generated CSV held for download behind a signed token.
type Export struct {
	Token     string
	FileName  string
	Data      []byte
	EntryIDs  []string
	ExpiresAt time.Time
}

// ExportStore keeps generated CSVs in memory for a short TTL. Exports
// are download-once artifacts for the operator's browser, not durable
// state: the journal rows themselves record that an export happened.
type ExportStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	exports map[string]*Export
	nowFn   func() time.Time
}

func NewExportStore(ttl time.Duration) *ExportStore {
	return &ExportStore{
		ttl:     ttl,
		exports: make(map[string]*Export),
		nowFn:   time.Now,
	}
}

// Put stores the CSV and returns its download token.
func (s *ExportStore) Put(fileName string, data []byte, entryIDs []string) *Export {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	exp := &Export{
		Token:     newExportToken(),
		FileName:  fileName,
		Data:      data,
		EntryIDs:  entryIDs,
		ExpiresAt: s.nowFn().Add(s.ttl),
	}
	s.exports[exp.Token] = exp
	return exp
}

// Get returns a live export, or nil when the token is unknown or
// expired.
func (s *ExportStore) Get(token string) *Export {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.exports[token]
	if !ok {
		return nil
	}
	if s.nowFn().After(exp.ExpiresAt) {
		delete(s.exports, token)
		return nil
	}
	return exp
}

func (s *ExportStore) sweepLocked() {
	now := s.nowFn()
	for token, exp := range s.exports {
		if now.After(exp.ExpiresAt) {
			delete(s.exports, token)
		}
	}
}

func newExportToken() string {
	b := make([]byte, 24)
	rand.Read(b)
	return hex.EncodeToString(b)
}
