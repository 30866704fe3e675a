package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shivansh-Raheja/admin-panel/internal/confirm"
	"github.com/Shivansh-Raheja/admin-panel/internal/controller"
	"github.com/Shivansh-Raheja/admin-panel/internal/form"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/flash"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/middleware"
	"github.com/Shivansh-Raheja/admin-panel/internal/http/render"
	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
	"github.com/Shivansh-Raheja/admin-panel/internal/schema"
	"github.com/Shivansh-Raheja/admin-panel/internal/shared/apperr"
	"github.com/Shivansh-Raheja/admin-panel/pkg/view"
	"github.com/Shivansh-Raheja/admin-panel/templates/pages"
)

// maxUploadMemory is the multipart memory budget; larger parts spill to
// temporary files.
const maxUploadMemory = 32 << 20

// MutationRecorder counts mutation outcomes.
type MutationRecorder interface {
	Mutation(resource, action, result string)
}

// ResourceHandlers serves the generic CRUD screens under
// /dashboard/:resource.
type ResourceHandlers struct {
	shell       Shell
	controllers *controller.Registry
	flash       *flash.Codec
	media       view.MediaResolver
	metrics     MutationRecorder
	log         *slog.Logger
}

func NewResourceHandlers(shell Shell, controllers *controller.Registry, flashCodec *flash.Codec, media view.MediaResolver, metrics MutationRecorder, log *slog.Logger) *ResourceHandlers {
	return &ResourceHandlers{
		shell:       shell,
		controllers: controllers,
		flash:       flashCodec,
		media:       media,
		metrics:     metrics,
		log:         log,
	}
}

// mount resolves the route's resource and mounts the session's controller.
func (h *ResourceHandlers) mount(c *gin.Context) (*controller.Controller, schema.Resource, bool) {
	def, ok := h.shell.Resources.Lookup(c.Param("resource"))
	if !ok {
		middleware.Fail(c, apperr.NotFoundErr("Unknown resource."))
		return nil, schema.Resource{}, false
	}
	sess := middleware.CurrentSession(c)
	ctl := h.controllers.Get(sess.ID(), sess.Token(), def)
	// a failed load is reported through the controller's alerts
	_ = ctl.Mount(c.Request.Context())
	return ctl, def, true
}

func (h *ResourceHandlers) record(def schema.Resource, action, result string) {
	if h.metrics != nil {
		h.metrics.Mutation(def.Name, action, result)
	}
}

// back sends the browser to the list, carrying the controller's alerts.
func (h *ResourceHandlers) back(c *gin.Context, ctl *controller.Controller, def schema.Resource, extra ...view.Flash) {
	fs := view.Notices(append(alertFlashes(ctl.TakeAlerts()), extra...)...)
	render.RedirectWithFlashes(c, h.flash, ResourcePath(def.Name), fs)
}

// refuse maps controller refusals to a redirect with a notice.
func (h *ResourceHandlers) refuse(c *gin.Context, ctl *controller.Controller, def schema.Resource, err error) {
	switch {
	case errors.Is(err, controller.ErrNotFound):
		middleware.Fail(c, apperr.NotFoundErr(capitalize(def.Singular)+" not found."))
	case errors.Is(err, controller.ErrUnsupported):
		middleware.Fail(c, apperr.NotFoundErr("This action is not available for "+def.Label+"."))
	case errors.Is(err, controller.ErrBusy):
		h.back(c, ctl, def, view.Flash{Kind: view.FlashWarning, Message: "Another change is still in progress. Try again in a moment."})
	case errors.Is(err, controller.ErrNotLoaded), errors.Is(err, controller.ErrRelationsMissing):
		h.back(c, ctl, def, view.Flash{Kind: view.FlashWarning, Message: def.Label + " are not loaded yet. Reload and try again."})
	default:
		middleware.Fail(c, apperr.Wrap(err))
	}
}

// List renders the cached collection.
func (h *ResourceHandlers) List(c *gin.Context) {
	ctl, def, ok := h.mount(c)
	if !ok {
		return
	}
	snap := ctl.Snapshot()
	base := ResourcePath(def.Name)

	p := view.ResourceListPage{
		Layout:     h.shell.Layout(c, def.Label, def.Name, alertFlashes(ctl.TakeAlerts())),
		Heading:    def.Label,
		Singular:   def.Singular,
		Columns:    view.Columns(def),
		ReloadHref: base + "/reload",
		Loading:    snap.Phase != controller.PhaseLoaded,
		Busy:       snap.Busy,
	}
	if def.Capabilities.Create {
		p.NewHref = base + "/new"
	}
	if snap.LoadErr != nil {
		p.LoadError = fmt.Sprintf("Failed to load %s. %s", def.Label, resource.Describe(snap.LoadErr))
	}
	if snap.Phase == controller.PhaseLoaded {
		p.Rows = view.Rows(def, snap.Records, snap.Related, h.media, base, snap.Deleting)
	}
	render.Component(c, http.StatusOK, pages.ResourceList(p))
}

// Reload refetches the collection.
func (h *ResourceHandlers) Reload(c *gin.Context) {
	ctl, def, ok := h.mount(c)
	if !ok {
		return
	}
	var extra []view.Flash
	if err := ctl.Reload(c.Request.Context()); err == nil {
		extra = append(extra, view.Flash{Kind: view.FlashInfo, Message: def.Label + " reloaded."})
	}
	h.back(c, ctl, def, extra...)
}

// New opens the create form.
func (h *ResourceHandlers) New(c *gin.Context) {
	ctl, def, ok := h.mount(c)
	if !ok {
		return
	}
	if err := ctl.OpenCreate(); err != nil {
		h.refuse(c, ctl, def, err)
		return
	}
	h.formPage(c, ctl, def, http.StatusOK)
}

// Edit opens the edit form on a cached record.
func (h *ResourceHandlers) Edit(c *gin.Context) {
	ctl, def, ok := h.mount(c)
	if !ok {
		return
	}
	if err := ctl.OpenEdit(c.Param("id")); err != nil {
		h.refuse(c, ctl, def, err)
		return
	}
	h.formPage(c, ctl, def, http.StatusOK)
}

// Create submits the create form.
func (h *ResourceHandlers) Create(c *gin.Context) {
	ctl, def, ok := h.mount(c)
	if !ok {
		return
	}
	if err := ctl.OpenCreate(); err != nil {
		h.refuse(c, ctl, def, err)
		return
	}
	h.submit(c, ctl, def, "create")
}

// Update submits the edit form of :id.
func (h *ResourceHandlers) Update(c *gin.Context) {
	ctl, def, ok := h.mount(c)
	if !ok {
		return
	}
	if err := ctl.OpenEdit(c.Param("id")); err != nil {
		h.refuse(c, ctl, def, err)
		return
	}
	h.submit(c, ctl, def, "update")
}

// Cancel discards the open form.
func (h *ResourceHandlers) Cancel(c *gin.Context) {
	ctl, def, ok := h.mount(c)
	if !ok {
		return
	}
	ctl.Cancel()
	h.back(c, ctl, def)
}

func (h *ResourceHandlers) submit(c *gin.Context, ctl *controller.Controller, def schema.Resource, action string) {
	values, files, err := readSubmission(c, def)
	if err != nil {
		h.log.Warn("form_read_failed", slog.String("request_id", middleware.GetRequestID(c)), slog.Any("err", err))
		middleware.Fail(c, apperr.InvalidErr("The submitted form could not be read.", nil))
		return
	}

	err = ctl.EditForm(func(f *form.State) error {
		if err := f.Apply(values); err != nil {
			return err
		}
		for name, fs := range files {
			if err := f.SetMediaField(name, fs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, controller.ErrBusy) {
			h.record(def, action, "busy")
			h.refuse(c, ctl, def, err)
			return
		}
		h.record(def, action, "invalid")
		h.formPage(c, ctl, def, http.StatusUnprocessableEntity, view.Flash{Kind: view.FlashError, Message: err.Error()})
		return
	}

	if _, err := ctl.Submit(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, controller.ErrBusy):
			h.record(def, action, "busy")
			h.refuse(c, ctl, def, err)
		case errors.Is(err, form.ErrInvalid):
			h.record(def, action, "invalid")
			h.formPage(c, ctl, def, http.StatusUnprocessableEntity)
		default:
			// refused input re-renders as 400, an unreachable backend as 502
			h.record(def, action, "failed")
			h.formPage(c, ctl, def, apperr.HTTPStatus(apperr.Backend(err)))
		}
		return
	}
	h.record(def, action, "ok")
	h.back(c, ctl, def)
}

// readSubmission splits the posted form into scalar values and staged
// files per media field. Media fields without files are left out so their
// existing paths are kept.
func readSubmission(c *gin.Context, def schema.Resource) (map[string]string, map[string][]resource.File, error) {
	values := map[string]string{}
	files := map[string][]resource.File{}

	var mf *multipart.Form
	if c.ContentType() == "multipart/form-data" {
		var err error
		if mf, err = c.MultipartForm(); err != nil {
			return nil, nil, err
		}
	} else if err := c.Request.ParseForm(); err != nil {
		return nil, nil, err
	}

	for _, f := range def.FormFields() {
		if !f.IsMedia() {
			// checkboxes post a hidden "0" before the box; the last value wins
			if vs := c.PostFormArray(f.Name); len(vs) > 0 {
				values[f.Name] = vs[len(vs)-1]
			}
			continue
		}
		if mf == nil {
			continue
		}
		for _, fh := range mf.File[f.Name] {
			file, err := readFile(fh)
			if err != nil {
				return nil, nil, err
			}
			if file.Filename != "" {
				files[f.Name] = append(files[f.Name], file)
			}
		}
	}
	return values, files, nil
}

func readFile(fh *multipart.FileHeader) (resource.File, error) {
	src, err := fh.Open()
	if err != nil {
		return resource.File{}, err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return resource.File{}, err
	}
	return resource.File{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

func (h *ResourceHandlers) formPage(c *gin.Context, ctl *controller.Controller, def schema.Resource, status int, extra ...view.Flash) {
	snap := ctl.Snapshot()
	fs := snap.Form
	if fs == nil {
		h.back(c, ctl, def)
		return
	}
	alerts := append(alertFlashes(ctl.TakeAlerts()), extra...)

	base := ResourcePath(def.Name)
	editing := fs.Mode == form.ModeEdit
	p := view.ResourceFormPage{
		Heading:    "Add " + def.Singular,
		Action:     base,
		CancelHref: base + "/cancel",
		SubmitText: "Create",
		Warnings:   fs.Warnings,
		Fields: view.FormFields(def, view.FormInput{
			Editing:  editing,
			Values:   fs.Values,
			Existing: fs.Existing,
			Pending:  fs.Pending,
			Errors:   fs.FieldErrors,
		}, snap.Related, h.media),
	}
	if editing {
		p.Heading = "Edit " + def.Singular
		p.Action = base + "/" + fs.ID
		p.SubmitText = "Save"
	}
	for _, f := range def.FormFields() {
		if f.IsMedia() {
			p.Multipart = true
			break
		}
	}
	if fs.Err != nil && len(alerts) == 0 {
		p.Error = formError(fs.Err)
	}
	p.Layout = h.shell.Layout(c, p.Heading, def.Name, alerts)
	render.Component(c, status, pages.ResourceForm(p))
}

func formError(err error) string {
	if errors.Is(err, form.ErrInvalid) {
		return "Check the highlighted fields."
	}
	return resource.Describe(err)
}

// Detail shows one record fetched from the backend.
func (h *ResourceHandlers) Detail(c *gin.Context) {
	ctl, def, ok := h.mount(c)
	if !ok {
		return
	}
	id := c.Param("id")
	rec, err := ctl.Detail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, controller.ErrUnsupported) {
			h.refuse(c, ctl, def, err)
			return
		}
		h.back(c, ctl, def)
		return
	}

	snap := ctl.Snapshot()
	pairs, tables := view.Detail(def, rec, snap.Related, h.media)
	base := ResourcePath(def.Name)
	p := view.ResourceDetailPage{
		Heading:  capitalize(def.Singular) + " " + id,
		Pairs:    pairs,
		Tables:   tables,
		BackHref: base,
	}
	if def.Capabilities.Edit {
		p.EditHref = base + "/" + id + "/edit"
	}
	if def.Capabilities.Delete {
		p.DeleteHref = base + "/" + id + "/delete"
	}
	p.Layout = h.shell.Layout(c, p.Heading, def.Name, alertFlashes(ctl.TakeAlerts()))
	render.Component(c, http.StatusOK, pages.ResourceDetail(p))
}

// ConfirmDelete asks before deleting :id.
func (h *ResourceHandlers) ConfirmDelete(c *gin.Context) {
	ctl, def, ok := h.mount(c)
	if !ok {
		return
	}
	if !def.Capabilities.Delete {
		h.refuse(c, ctl, def, controller.ErrUnsupported)
		return
	}
	id := c.Param("id")
	title, body := ctl.DeletePrompt()
	base := ResourcePath(def.Name)
	render.Component(c, http.StatusOK, pages.Confirm(view.ConfirmPage{
		Layout:     h.shell.Layout(c, title, def.Name, alertFlashes(ctl.TakeAlerts())),
		Heading:    title,
		Body:       body,
		Action:     base + "/" + id + "/delete",
		CancelHref: base,
	}))
}

// Delete removes :id when the post carries confirm=1. Anything else counts
// as a declined confirmation and changes nothing.
func (h *ResourceHandlers) Delete(c *gin.Context) {
	ctl, def, ok := h.mount(c)
	if !ok {
		return
	}
	confirmed, err := ctl.Delete(c.Request.Context(), c.Param("id"), confirm.Answer(c.PostForm("confirm")))
	switch {
	case err != nil && (!confirmed || errors.Is(err, controller.ErrBusy)):
		h.refuse(c, ctl, def, err)
	case !confirmed:
		h.record(def, "delete", "declined")
		h.back(c, ctl, def, view.Flash{Kind: view.FlashInfo, Message: capitalize(def.Singular) + " was not deleted."})
	case err != nil:
		h.record(def, "delete", "failed")
		h.back(c, ctl, def)
	default:
		h.record(def, "delete", "ok")
		h.back(c, ctl, def)
	}
}
