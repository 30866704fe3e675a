// Package session tracks whether the admin is logged in.
package session

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	KeyToken = "adminToken"
	KeyName  = "adminName"
	KeyID    = "sessionId"

	DefaultName = "Admin"
	LoginPath   = "/login"
)

var ErrEmptyToken = errors.New("login token is empty")

// Storage is a flat string key/value store, such as a signed cookie.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Committer is implemented by storages that buffer writes.
type Committer interface {
	Commit() error
}

// Session is the mutable login state over a Storage.
type Session struct {
	store Storage
}

func New(store Storage) *Session {
	return &Session{store: store}
}

// Login records the token and display name and starts a new session id.
func (s *Session) Login(token, name string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	s.store.Set(KeyToken, token)
	s.store.Set(KeyName, name)
	s.store.Set(KeyID, uuid.NewString())
	return s.commit()
}

// Logout clears the token and name.
func (s *Session) Logout() error {
	s.store.Delete(KeyToken)
	s.store.Delete(KeyName)
	s.store.Delete(KeyID)
	return s.commit()
}

func (s *Session) commit() error {
	if c, ok := s.store.(Committer); ok {
		return c.Commit()
	}
	return nil
}

// IsAuthenticated needs both the token and the session id Login stores.
func (s *Session) IsAuthenticated() bool {
	token, _ := s.store.Get(KeyToken)
	id, _ := s.store.Get(KeyID)
	return token != "" && id != ""
}

func (s *Session) Token() string {
	v, _ := s.store.Get(KeyToken)
	return v
}

// Name is the admin's display name, "Admin" when none was stored.
func (s *Session) Name() string {
	if v, ok := s.store.Get(KeyName); ok && v != "" {
		return v
	}
	return DefaultName
}

// ID identifies this login. It is empty when logged out.
func (s *Session) ID() string {
	if !s.IsAuthenticated() {
		return ""
	}
	v, _ := s.store.Get(KeyID)
	return v
}

// View is the read-only part of a session handed to pages.
type View struct {
	Authenticated bool
	Name          string
}

func (s *Session) View() View {
	return View{Authenticated: s.IsAuthenticated(), Name: s.Name()}
}

// Decision is the outcome of Require.
type Decision struct {
	Allow    bool
	Redirect string
}

// Require lets authenticated requests through and sends everything else to
// the login page, carrying the requested URI as return_to.
func Require(requestURI string, v View) Decision {
	if v.Authenticated {
		return Decision{Allow: true}
	}
	target := LoginPath
	if requestURI != "" && requestURI != "/" && !strings.HasPrefix(requestURI, LoginPath) {
		target += "?return_to=" + url.QueryEscape(requestURI)
	}
	return Decision{Redirect: target}
}

// SafeReturn accepts only local absolute paths as post-login targets.
func SafeReturn(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}

// MemoryStorage is a Storage backed by a map.
type MemoryStorage struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: map[string]string{}}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemoryStorage) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *MemoryStorage) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}
