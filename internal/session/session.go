// Package session implements the in-process SessionRegistry: opaque
// ≥256-bit session tokens with idle-timeout eviction.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/ingestguard/ingestguard/internal/apperror"
)

// TokenByteLength is the random byte length backing each session token,
// giving 256 bits of entropy before base64 encoding.
const TokenByteLength = 32

// Session is a principal's authenticated session.
type Session struct {
	Token      string
	Principal  string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// Registry is a concurrent, in-memory session store with idle-timeout
// eviction. It holds no persistence across restarts by design.
type Registry struct {
	mu            sync.RWMutex
	sessions      map[string]*Session
	idleTimeout   time.Duration
	sweepInterval time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewRegistry builds a Registry and starts its background sweep goroutine.
// Call Stop to release it.
func NewRegistry(idleTimeout, sweepInterval time.Duration) *Registry {
	r := &Registry{
		sessions:      make(map[string]*Session),
		idleTimeout:   idleTimeout,
		sweepInterval: sweepInterval,
		stopCh:        make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

func newToken() (string, error) {
	b := make([]byte, TokenByteLength)
	if _, err := rand.Read(b); err != nil {
		return "", apperror.New(apperror.TransientIO, "new_session_token", err)
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b), nil
}

// Create issues a fresh session for principal.
func (r *Registry) Create(principal string) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{Token: token, Principal: principal, CreatedAt: now, LastSeenAt: now}

	r.mu.Lock()
	r.sessions[token] = sess
	r.mu.Unlock()

	return sess, nil
}

// Validate looks up token, returning the principal on a live session and
// touching LastSeenAt. A missing or expired session returns ok == false.
func (r *Registry) Validate(token string) (principal string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, found := r.sessions[token]
	if !found {
		return "", false
	}
	if time.Since(sess.LastSeenAt) > r.idleTimeout {
		delete(r.sessions, token)
		return "", false
	}
	sess.LastSeenAt = time.Now()
	return sess.Principal, true
}

// Destroy removes token, if present. Destroying an unknown token is a no-op.
func (r *Registry) Destroy(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

// Stop halts the sweep goroutine. Safe to call multiple times or on a
// Registry whose sweep already stopped.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweepExpired()
		case <-r.stopCh:
			return
		}
	}
}

func (r *Registry) sweepExpired() {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for token, sess := range r.sessions {
		if now.Sub(sess.LastSeenAt) > r.idleTimeout {
			delete(r.sessions, token)
		}
	}
}

// Len returns the number of currently tracked sessions, expired or not.
// Intended for tests and diagnostics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
