package controller

import (
	"time"

	"github.com/Shivansh-Raheja/admin-panel/internal/form"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/validation"
	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
)

// FormSnapshot is a read-only copy of the open form.
type FormSnapshot struct {
	Mode        form.Mode
	ID          string
	Values      map[string]string
	Existing    map[string][]string
	Pending     map[string][]string
	Warnings    []string
	FieldErrors validation.FieldErrors
	Err         error
}

// Snapshot is a read-only copy of controller state for rendering.
type Snapshot struct {
	Resource schema.Resource
	Phase    Phase
	Records  []resource.Record
	Related  map[string][]resource.Record
	LoadErr  error
	LoadedAt time.Time
	Busy     bool
	Deleting string
	Form     *FormSnapshot
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Resource: c.def,
		Phase:    c.phase,
		LoadErr:  c.loadErr,
		LoadedAt: c.loadedAt,
		Busy:     c.busy,
		Deleting: c.deleting,
	}
	if c.records != nil {
		snap.Records = make([]resource.Record, len(c.records))
		for i, r := range c.records {
			snap.Records[i] = r.Clone()
		}
	}
	if c.related != nil {
		snap.Related = make(map[string][]resource.Record, len(c.related))
		for k, v := range c.related {
			snap.Related[k] = append([]resource.Record(nil), v...)
		}
	}
	if c.form != nil && c.form.IsOpen() {
		fs := &FormSnapshot{
			Mode:        c.form.Mode(),
			ID:          c.form.ID(),
			Values:      c.form.Values(),
			Existing:    map[string][]string{},
			Pending:     map[string][]string{},
			Warnings:    c.form.Warnings(),
			FieldErrors: c.form.FieldErrors(),
			Err:         c.form.Err(),
		}
		for _, f := range c.def.FormFields() {
			if !f.IsMedia() {
				continue
			}
			fs.Existing[f.Name] = c.form.Existing(f.Name)
			for _, p := range c.form.Pending(f.Name) {
				fs.Pending[f.Name] = append(fs.Pending[f.Name], p.Filename)
			}
		}
		snap.Form = fs
	}
	return snap
}

// Count is the number of cached records, or -1 when nothing is loaded.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseLoaded {
		return -1
	}
	return len(c.records)
}
