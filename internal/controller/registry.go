package controller

import (
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
)

// BuildFunc creates a controller for def acting with the session's token.
type BuildFunc func(def schema.Resource, token string) *Controller

type entry struct {
	ctl      *Controller
	lastUsed time.Time
}

// Registry keeps one controller per (session, resource). Sessions idle for
// longer than ttl are unmounted by Sweep.
type Registry struct {
	build BuildFunc
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]map[string]*entry
}

func NewRegistry(build BuildFunc, ttl time.Duration) *Registry {
	return &Registry{
		build:    build,
		ttl:      ttl,
		now:      time.Now,
		sessions: map[string]map[string]*entry{},
	}
}

// Get returns the session's controller for def, creating it on first use.
func (r *Registry) Get(session, token string, def schema.Resource) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := r.sessions[session]
	if !ok {
		byName = map[string]*entry{}
		r.sessions[session] = byName
	}
	e, ok := byName[def.Name]
	if !ok {
		e = &entry{ctl: r.build(def, token)}
		byName[def.Name] = e
	}
	e.lastUsed = r.now()
	return e.ctl
}

// Mounted returns the session's controllers ordered by resource name.
func (r *Registry) Mounted(session string) []*Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	byName := r.sessions[session]
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Controller, 0, len(names))
	for _, name := range names {
		out = append(out, byName[name].ctl)
	}
	return out
}

// DropSession unmounts and forgets every controller of session.
func (r *Registry) DropSession(session string) {
	r.mu.Lock()
	byName := r.sessions[session]
	delete(r.sessions, session)
	r.mu.Unlock()

	for _, e := range byName {
		e.ctl.Unmount()
	}
}

// Sweep unmounts controllers unused for longer than ttl and returns how
// many were dropped.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	var idle []*Controller
	r.mu.Lock()
	for session, byName := range r.sessions {
		for name, e := range byName {
			if e.lastUsed.Before(cutoff) {
				idle = append(idle, e.ctl)
				delete(byName, name)
			}
		}
		if len(byName) == 0 {
			delete(r.sessions, session)
		}
	}
	r.mu.Unlock()

	for _, c := range idle {
		c.Unmount()
	}
	return len(idle)
}

// Builder wires controllers to the backend API.
type Builder struct {
	BaseURL   string
	Resources *schema.Registry
	HTTP      *http.Client
	Observer  resource.Observer
	Log       *slog.Logger
}

func (b Builder) Build(def schema.Resource, token string) *Controller {
	opts := []resource.Option{
		resource.WithHTTPClient(b.HTTP),
		resource.WithToken(token),
		resource.WithLogger(b.Log),
	}
	if b.Observer != nil {
		opts = append(opts, resource.WithObserver(b.Observer))
	}

	relations := map[string]Client{}
	for _, name := range def.Relations() {
		if rel, ok := b.Resources.Lookup(name); ok {
			relations[name] = resource.NewClient(b.BaseURL, rel.Endpoint, opts...)
		}
	}
	return New(def, resource.NewClient(b.BaseURL, def.Endpoint, opts...), relations, b.Log)
}
