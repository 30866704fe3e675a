// Package controller drives one CRUD screen: it loads the collection,
// owns the open form and runs mutations one at a time.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shivansh-Raheja/admin-panel/internal/confirm"
	"github.com/Shivansh-Raheja/admin-panel/internal/form"
	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
)

var (
	ErrBusy             = errors.New("another change is still in progress")
	ErrNotLoaded        = errors.New("collection is not loaded")
	ErrRelationsMissing = errors.New("related collections are not loaded")
	ErrNotFound         = errors.New("record not found")
	ErrUnsupported      = errors.New("action not available for this resource")
	ErrUnmounted        = errors.New("controller is unmounted")
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	default:
		return "idle"
	}
}

type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
	AlertWarning AlertKind = "warning"
)

// Alert is a dismissable notice for the admin.
type Alert struct {
	ID      string
	Kind    AlertKind
	Message string
}

// Client is the resource client surface a controller uses.
type Client interface {
	List(ctx context.Context) ([]resource.Record, error)
	Get(ctx context.Context, id string) (resource.Record, error)
	Create(ctx context.Context, p resource.Payload) (resource.Record, error)
	Update(ctx context.Context, id string, p resource.Payload) (resource.Record, error)
	Remove(ctx context.Context, id string) error
}

// Controller is safe for concurrent use. State is guarded by mu; client
// calls run without holding it.
type Controller struct {
	def       schema.Resource
	client    Client
	relations map[string]Client
	log       *slog.Logger

	mu       sync.Mutex
	mounted  bool
	ready    chan struct{}
	epoch    uint64 // bumped by Unmount
	gen      uint64 // bumped by every load and by Unmount
	phase    Phase
	records  []resource.Record
	related  map[string][]resource.Record
	loadErr  error
	loadedAt time.Time
	form     *form.State
	busy     bool
	deleting string
	alerts   []Alert
}

// New builds a controller for def. relations must hold a client for every
// collection def refers to.
func New(def schema.Resource, client Client, relations map[string]Client, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		def:       def,
		client:    client,
		relations: relations,
		log:       log.With(slog.String("resource", def.Name)),
	}
}

func (c *Controller) Resource() schema.Resource { return c.def }

// Mount loads the collection and its relations once. Later calls wait for
// that first load and report its outcome without refetching; a failed load
// is only retried by Reload.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if !c.mounted {
		c.mounted = true
		c.ready = make(chan struct{})
		ready := c.ready
		c.mu.Unlock()

		err := c.load(ctx)
		close(ready)
		return err
	}
	ready := c.ready
	c.mu.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Reload refetches the collection regardless of its state.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrUnmounted
	}
	c.mu.Unlock()
	return c.load(ctx)
}

func (c *Controller) load(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.phase = PhaseLoading
	c.mu.Unlock()

	records, related, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || !c.mounted {
		c.log.Debug("stale_load_dropped", slog.Uint64("gen", gen))
		return nil
	}
	if err != nil {
		c.loadErr = err
		c.log.Warn("load_failed", slog.Any("err", err))
		c.alert(AlertError, fmt.Sprintf("Failed to load %s. %s", strings.ToLower(c.def.Label), resource.Describe(err)))
		return err
	}
	c.records = records
	c.related = related
	c.loadErr = nil
	c.loadedAt = time.Now()
	c.phase = PhaseLoaded
	return nil
}

func (c *Controller) fetch(ctx context.Context) ([]resource.Record, map[string][]resource.Record, error) {
	records, err := c.client.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	related := make(map[string][]resource.Record, len(c.def.Relations()))
	for _, name := range c.def.Relations() {
		rc, ok := c.relations[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrRelationsMissing, name)
		}
		rel, err := rc.List(ctx)
		if err != nil {
			return nil, nil, err
		}
		related[name] = rel
	}
	return records, related, nil
}

// OpenCreate opens an empty form.
func (c *Controller) OpenCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.def.Capabilities.Create {
		return ErrUnsupported
	}
	if err := c.formReady(); err != nil {
		return err
	}
	if c.form != nil && c.form.Mode() == form.ModeCreate {
		return nil
	}
	f := form.New(c.def)
	f.OpenForCreate()
	c.form = f
	return nil
}

// OpenEdit opens the form on a cached record.
func (c *Controller) OpenEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.def.Capabilities.Edit {
		return ErrUnsupported
	}
	if err := c.formReady(); err != nil {
		return err
	}
	if c.form != nil && c.form.Editing() && c.form.ID() == id {
		return nil
	}
	rec, ok := c.find(id)
	if !ok {
		return ErrNotFound
	}
	f := form.New(c.def)
	if err := f.OpenForEdit(rec); err != nil {
		return err
	}
	c.form = f
	return nil
}

func (c *Controller) formReady() error {
	if c.busy {
		return ErrBusy
	}
	if c.phase != PhaseLoaded {
		return ErrNotLoaded
	}
	for _, name := range c.def.Relations() {
		if _, ok := c.related[name]; !ok {
			return ErrRelationsMissing
		}
	}
	return nil
}

// EditForm runs fn against the open form.
func (c *Controller) EditForm(fn func(*form.State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil || !c.form.IsOpen() {
		return form.ErrClosed
	}
	if c.busy {
		return ErrBusy
	}
	return fn(c.form)
}

// Cancel discards the open form.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return
	}
	c.form = nil
}

// Submit sends the open form. On success the form closes and the
// collection is refetched; on failure the form stays open.
func (c *Controller) Submit(ctx context.Context) (resource.Record, error) {
	c.mu.Lock()
	if c.form == nil || !c.form.IsOpen() {
		c.mu.Unlock()
		return nil, form.ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	f := c.form
	action := "create"
	if f.Editing() {
		action = "update"
	}
	req, err := f.Prepare()
	if err != nil {
		c.alert(AlertError, fmt.Sprintf("Failed to %s %s. %s", action, c.def.Singular, describe(err)))
		c.mu.Unlock()
		return nil, err
	}
	c.busy = true
	epoch := c.epoch
	c.mu.Unlock()

	rec, err := req.Send(ctx, c.client)

	c.mu.Lock()
	if c.stale(epoch) {
		c.busy = false
		c.mu.Unlock()
		return rec, err
	}
	f.Finish(err)
	if err != nil {
		c.busy = false
		c.log.Warn("submit_failed", slog.String("action", action), slog.Any("err", err))
		c.alert(AlertError, fmt.Sprintf("Failed to %s %s. %s", action, c.def.Singular, describe(err)))
		c.mu.Unlock()
		return nil, err
	}
	c.form = nil
	c.alert(AlertSuccess, fmt.Sprintf("%s %sd.", capitalize(c.def.Singular), action))
	c.mu.Unlock()

	_ = c.load(ctx)

	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
	return rec, nil
}

// Delete asks gate first and removes the record only on an affirmative
// answer. The boolean reports whether the admin confirmed.
func (c *Controller) Delete(ctx context.Context, id string, gate confirm.Gate) (bool, error) {
	c.mu.Lock()
	if !c.def.Capabilities.Delete {
		c.mu.Unlock()
		return false, ErrUnsupported
	}
	if c.phase != PhaseLoaded {
		c.mu.Unlock()
		return false, ErrNotLoaded
	}
	if c.busy {
		c.mu.Unlock()
		return false, ErrBusy
	}
	if _, ok := c.find(id); !ok {
		c.mu.Unlock()
		return false, ErrNotFound
	}
	c.mu.Unlock()

	title, body := c.DeletePrompt()
	if !gate.Confirm(ctx, title, body) {
		return false, nil
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return true, ErrBusy
	}
	c.busy = true
	c.deleting = id
	epoch := c.epoch
	c.mu.Unlock()

	err := c.client.Remove(ctx, id)

	c.mu.Lock()
	c.deleting = ""
	if c.stale(epoch) {
		c.busy = false
		c.mu.Unlock()
		return true, err
	}
	if err != nil {
		c.busy = false
		c.log.Warn("delete_failed", slog.String("id", id), slog.Any("err", err))
		c.alert(AlertError, fmt.Sprintf("Failed to delete %s. %s", c.def.Singular, resource.Describe(err)))
		c.mu.Unlock()
		return true, err
	}
	c.alert(AlertSuccess, fmt.Sprintf("%s deleted.", capitalize(c.def.Singular)))
	c.mu.Unlock()

	_ = c.load(ctx)

	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
	return true, nil
}

// DeletePrompt is the question asked before a delete.
func (c *Controller) DeletePrompt() (title, body string) {
	return fmt.Sprintf("Delete this %s?", c.def.Singular),
		fmt.Sprintf("This %s will be permanently deleted.", c.def.Singular)
}

// Detail fetches one record from the backend.
func (c *Controller) Detail(ctx context.Context, id string) (resource.Record, error) {
	if !c.def.Capabilities.Detail {
		return nil, ErrUnsupported
	}
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	rec, err := c.client.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale(epoch) {
		return nil, ErrUnmounted
	}
	if err != nil {
		c.log.Warn("detail_failed", slog.String("id", id), slog.Any("err", err))
		c.alert(AlertError, fmt.Sprintf("Failed to load %s. %s", c.def.Singular, resource.Describe(err)))
		return nil, err
	}
	return rec, nil
}

// Unmount drops all state. Results of calls still in flight are
// discarded.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounted = false
	c.epoch++
	c.gen++
	c.phase = PhaseIdle
	c.records = nil
	c.related = nil
	c.loadErr = nil
	c.form = nil
	c.alerts = nil
}

// TakeAlerts returns and clears the pending alerts.
func (c *Controller) TakeAlerts() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.alerts
	c.alerts = nil
	return out
}

func (c *Controller) alert(kind AlertKind, msg string) {
	c.alerts = append(c.alerts, Alert{ID: uuid.NewString(), Kind: kind, Message: strings.TrimSpace(msg)})
}

func (c *Controller) stale(epoch uint64) bool {
	return !c.mounted || epoch != c.epoch
}

func (c *Controller) find(id string) (resource.Record, bool) {
	key := c.def.Endpoint.IDKey()
	for _, r := range c.records {
		if rid, ok := r.ID(key); ok && rid == id {
			return r, true
		}
	}
	return nil, false
}

func describe(err error) string {
	if errors.Is(err, form.ErrInvalid) {
		return "Check the highlighted fields."
	}
	return resource.Describe(err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
