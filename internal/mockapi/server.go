// Package mockapi is a reference implementation of the catalog backend's
// REST contract, used for local development and end-to-end tests.
package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shivansh-Raheja/admin-panel/internal/http/middleware"
	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
	"github.com/Shivansh-Raheja/admin-panel/internal/storage"
)

const (
	loginFile       = "login.php"
	passwordHashKey = "password_hash"
	timeLayout      = "2006-01-02 15:04:05"
)

// Admin is the built-in account that can always log in.
type Admin struct {
	Email        string
	PasswordHash string
	Name         string
}

// HashPassword hashes a password for Admin or for stored users.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// Server answers every collection endpoint plus login.
type Server struct {
	store       Store
	files       storage.Storage
	admin       Admin
	log         *slog.Logger
	collections []collection

	// RequireToken rejects collection calls without a token issued by
	// login.
	RequireToken bool

	mu     sync.Mutex
	tokens map[string]string
}

func New(store Store, files storage.Storage, admin Admin, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		store:       store,
		files:       files,
		admin:       admin,
		log:         log,
		collections: defaultCollections(),
		tokens:      map[string]string{},
	}
}

// Handler builds the engine. uploadsDir, when set, is served under
// <basePath>/uploads.
func (s *Server) Handler(basePath, uploadsDir string) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(s.log),
		middleware.ErrorHandler(s.log, nil),
		middleware.Recovery(s.log),
	)
	g := r.Group("/" + strings.Trim(basePath, "/"))
	s.Register(g)
	if uploadsDir != "" {
		g.Static("/uploads", uploadsDir)
	}
	return r
}

// Register mounts login and the collection endpoints on g.
func (s *Server) Register(g *gin.RouterGroup) {
	g.POST("/"+loginFile, s.login)
	for _, col := range s.collections {
		g.Any("/"+col.Name+".php", s.endpoint(col))
	}
}

type loginInput struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBind(&in); err != nil {
		fail(c, http.StatusBadRequest, "Email and password are required.", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	name, ok := s.authenticate(c.Request.Context(), email, in.Password)
	if !ok {
		s.log.Info("login_rejected", slog.String("email", email))
		fail(c, http.StatusUnauthorized, "Invalid email or password.", nil)
		return
	}
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = email
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "name": name})
}

// authenticate checks the built-in admin first, then stored users.
func (s *Server) authenticate(ctx context.Context, email, password string) (string, bool) {
	if s.admin.Email != "" && strings.EqualFold(email, s.admin.Email) {
		if bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)) == nil {
			return s.admin.Name, true
		}
		return "", false
	}
	rows, err := s.store.List(ctx, "users")
	if err != nil {
		s.log.Warn("login_lookup_failed", slog.Any("err", err))
		return "", false
	}
	for _, r := range rows {
		if !strings.EqualFold(resource.FormatScalar(r.Data["email"]), email) {
			continue
		}
		hash := resource.FormatScalar(r.Data[passwordHashKey])
		if hash != "" && bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil {
			return resource.FormatScalar(r.Data["name"]), true
		}
		return "", false
	}
	return "", false
}

func (s *Server) authorized(c *gin.Context) bool {
	if !s.RequireToken {
		return true
	}
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, known := s.tokens[token]
	return known
}

func (s *Server) endpoint(col collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.authorized(c) {
			fail(c, http.StatusUnauthorized, "Unauthorized.", nil)
			return
		}
		switch c.Request.Method {
		case http.MethodGet:
			s.read(c, col)
		case http.MethodDelete:
			s.remove(c, col)
		case http.MethodPost, http.MethodPut:
			in, err := readInput(c, col)
			if err != nil {
				fail(c, http.StatusBadRequest, "Malformed request body.", nil)
				return
			}
			switch {
			case c.Request.Method == http.MethodPut || in.override:
				s.update(c, col, in)
			case col.Name == "users" && in.id != "":
				s.update(c, col, in)
			case col.NoCreate:
				fail(c, http.StatusMethodNotAllowed, "Records cannot be created here.", nil)
			default:
				s.create(c, col, in)
			}
		default:
			fail(c, http.StatusMethodNotAllowed, "Method not allowed.", nil)
		}
	}
}

func (s *Server) read(c *gin.Context, col collection) {
	ctx := c.Request.Context()
	if raw := c.Query("id"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			fail(c, http.StatusNotFound, "Record not found.", nil)
			return
		}
		row, err := s.store.Get(ctx, col.Name, id)
		if err != nil {
			s.storeFailed(c, col, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": present(col, row)})
		return
	}

	rows, err := s.store.List(ctx, col.Name)
	if err != nil {
		s.storeFailed(c, col, err)
		return
	}
	if col.ItemKey != "" {
		var item any
		if len(rows) > 0 {
			item = present(col, rows[len(rows)-1])
		}
		c.JSON(http.StatusOK, gin.H{"success": true, col.ItemKey: item})
		return
	}
	items := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		items = append(items, present(col, r))
	}
	switch col.Envelope {
	case envelopeArray:
		c.JSON(http.StatusOK, items)
	case envelopeData, "":
		c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, col.Envelope: items})
	}
}

// input is a decoded create or update request.
type input struct {
	fields   map[string]any
	files    map[string][]*multipart.FileHeader
	id       string
	override bool
}

// readInput decodes JSON, multipart or urlencoded bodies. The id comes
// from ?id= or the collection's id field; _method=PUT marks an override.
func readInput(c *gin.Context, col collection) (input, error) {
	in := input{fields: map[string]any{}, files: map[string][]*multipart.FileHeader{}}

	switch c.ContentType() {
	case "application/json":
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return in, err
		}
		if len(bytes.TrimSpace(body)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(body))
			dec.UseNumber()
			if err := dec.Decode(&in.fields); err != nil {
				return in, err
			}
		}
	case "multipart/form-data":
		form, err := c.MultipartForm()
		if err != nil {
			return in, err
		}
		for k, vs := range form.Value {
			if len(vs) > 0 {
				in.fields[k] = vs[len(vs)-1]
			}
		}
		for name, multiple := range col.Media {
			var fhs []*multipart.FileHeader
			if multiple {
				fhs = append(fhs, form.File[name+"[]"]...)
			}
			fhs = append(fhs, form.File[name]...)
			if len(fhs) > 0 {
				in.files[name] = fhs
			}
		}
	default:
		if err := c.Request.ParseForm(); err != nil {
			return in, err
		}
		for k, vs := range c.Request.PostForm {
			if len(vs) > 0 {
				in.fields[k] = vs[len(vs)-1]
			}
		}
	}

	if strings.EqualFold(c.Query("_method"), http.MethodPut) || strings.EqualFold(resource.FormatScalar(in.fields["_method"]), http.MethodPut) {
		in.override = true
	}
	in.id = c.Query("id")
	for _, key := range []string{col.idField(), "id"} {
		if in.id == "" {
			in.id = resource.FormatScalar(in.fields[key])
		}
	}
	delete(in.fields, "_method")
	delete(in.fields, col.idField())
	delete(in.fields, "id")
	for name := range col.Media {
		// media fields only change through uploaded files
		delete(in.fields, name)
	}
	return in, nil
}

func (s *Server) create(c *gin.Context, col collection, in input) {
	ctx := c.Request.Context()
	if errs := validate(col, in, true); len(errs) > 0 {
		fail(c, http.StatusBadRequest, "Please fill in the required fields.", errs)
		return
	}
	data, stored, errs, err := s.prepare(ctx, col, in)
	if err != nil {
		s.storeFailed(c, col, err)
		return
	}
	if len(errs) > 0 {
		fail(c, http.StatusBadRequest, "Some files could not be accepted.", errs)
		return
	}
	data["created_at"] = time.Now().Format(timeLayout)

	row, err := s.store.Create(ctx, col.Name, data, col.Unique)
	if err != nil {
		s.discard(ctx, stored)
		s.storeFailed(c, col, err)
		return
	}
	s.log.Info("record_created", slog.String("collection", col.Name), slog.Int64("id", row.ID))
	s.respond(c, col, http.StatusCreated, "Created successfully.", row)
}

func (s *Server) update(c *gin.Context, col collection, in input) {
	ctx := c.Request.Context()
	id, ok := parseID(in.id)
	if !ok {
		fail(c, http.StatusBadRequest, "A record id is required.", nil)
		return
	}
	before, err := s.store.Get(ctx, col.Name, id)
	if err != nil {
		s.storeFailed(c, col, err)
		return
	}
	if errs := validate(col, in, false); len(errs) > 0 {
		fail(c, http.StatusBadRequest, "Please fill in the required fields.", errs)
		return
	}
	data, stored, errs, err := s.prepare(ctx, col, in)
	if err != nil {
		s.storeFailed(c, col, err)
		return
	}
	if len(errs) > 0 {
		fail(c, http.StatusBadRequest, "Some files could not be accepted.", errs)
		return
	}
	data["updated_at"] = time.Now().Format(timeLayout)

	row, err := s.store.Update(ctx, col.Name, id, data, col.Unique)
	if err != nil {
		s.discard(ctx, stored)
		s.storeFailed(c, col, err)
		return
	}
	// files replaced by new uploads are gone for good
	var replaced []string
	for name := range in.files {
		replaced = append(replaced, mediaPaths(before.Data[name])...)
	}
	s.discard(ctx, replaced)

	s.log.Info("record_updated", slog.String("collection", col.Name), slog.Int64("id", row.ID))
	s.respond(c, col, http.StatusOK, "Updated successfully.", row)
}

func (s *Server) remove(c *gin.Context, col collection) {
	ctx := c.Request.Context()
	raw := c.Query("id")
	if raw == "" && c.ContentType() == "application/json" {
		var body map[string]any
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err == nil {
			raw = resource.FormatScalar(body[col.idField()])
			if raw == "" {
				raw = resource.FormatScalar(body["id"])
			}
		}
	}
	id, ok := parseID(raw)
	if !ok {
		fail(c, http.StatusBadRequest, "A record id is required.", nil)
		return
	}
	row, err := s.store.Get(ctx, col.Name, id)
	if err != nil {
		s.storeFailed(c, col, err)
		return
	}
	if err := s.store.Delete(ctx, col.Name, id); err != nil {
		s.storeFailed(c, col, err)
		return
	}
	var files []string
	for name := range col.Media {
		files = append(files, mediaPaths(row.Data[name])...)
	}
	s.discard(ctx, files)

	s.log.Info("record_deleted", slog.String("collection", col.Name), slog.Int64("id", id))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Deleted successfully."})
}

// validate reports required fields that are missing (on create) or sent
// blank (on both create and update).
func validate(col collection, in input, creating bool) map[string]string {
	errs := map[string]string{}
	for _, name := range col.Required {
		if _, uploaded := in.files[name]; uploaded {
			continue
		}
		v, present := in.fields[name]
		if !present && !creating {
			continue
		}
		if strings.TrimSpace(resource.FormatScalar(v)) == "" {
			errs[name] = "This field is required."
		}
	}
	if col.Secret != "" && creating && strings.TrimSpace(resource.FormatScalar(in.fields[col.Secret])) == "" {
		errs[col.Secret] = "This field is required."
	}
	return errs
}

// prepare turns request fields into stored data: secrets are hashed and
// uploaded files are stored. stored lists what was written so it can be
// rolled back.
func (s *Server) prepare(ctx context.Context, col collection, in input) (map[string]any, []string, map[string]string, error) {
	data := make(map[string]any, len(in.fields)+len(in.files))
	for k, v := range in.fields {
		data[k] = v
	}
	delete(data, passwordHashKey)

	if col.Secret != "" {
		secret := resource.FormatScalar(data[col.Secret])
		delete(data, col.Secret)
		if secret != "" {
			hash, err := HashPassword(secret)
			if err != nil {
				return nil, nil, nil, err
			}
			data[passwordHashKey] = hash
		}
	}

	var stored []string
	errs := map[string]string{}
	for name, fhs := range in.files {
		multiple := col.Media[name]
		if !multiple {
			fhs = fhs[len(fhs)-1:]
		}
		paths := make([]any, 0, len(fhs))
		for _, fh := range fhs {
			url, err := s.put(ctx, fh)
			if errors.Is(err, storage.ErrUnsupportedType) {
				errs[name] = "Unsupported file type."
				break
			}
			if err != nil {
				s.discard(ctx, stored)
				return nil, nil, nil, err
			}
			stored = append(stored, url)
			paths = append(paths, url)
		}
		if multiple {
			data[name] = paths
		} else if len(paths) == 1 {
			data[name] = paths[0]
		}
	}
	if len(errs) > 0 {
		s.discard(ctx, stored)
		return nil, nil, errs, nil
	}
	return data, stored, nil, nil
}

func (s *Server) put(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	res, err := s.files.Put(ctx, f, storage.PutInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	})
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// discard removes stored files on a best-effort basis.
func (s *Server) discard(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.files.Delete(ctx, p); err != nil {
			s.log.Warn("media_delete_failed", slog.String("path", p), slog.Any("err", err))
		}
	}
}

func (s *Server) respond(c *gin.Context, col collection, status int, msg string, row Row) {
	switch {
	case col.AckOnly:
		c.JSON(status, gin.H{"success": true, "message": msg, col.idField(): row.ID})
	case col.ItemKey != "":
		c.JSON(status, gin.H{"success": true, "message": msg, col.ItemKey: present(col, row)})
	default:
		c.JSON(status, gin.H{"success": true, "message": msg, "data": present(col, row)})
	}
}

func (s *Server) storeFailed(c *gin.Context, col collection, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		fail(c, http.StatusNotFound, "Record not found.", nil)
	case errors.Is(err, ErrDuplicate):
		field := col.Unique
		if field == "" {
			field = "id"
		}
		msg := humanField(field) + " already exists."
		fail(c, http.StatusConflict, msg, map[string]string{field: msg})
	default:
		s.log.Error("store_failed", slog.String("collection", col.Name), slog.Any("err", err))
		fail(c, http.StatusInternalServerError, "Something went wrong. Please try again.", nil)
	}
}

// present renders a row as the backend returns it: data plus the id
// field, without secrets.
func present(col collection, r Row) map[string]any {
	out := make(map[string]any, len(r.Data)+2)
	for k, v := range r.Data {
		out[k] = v
	}
	delete(out, passwordHashKey)
	out[col.idField()] = r.ID
	if _, ok := out["created_at"]; !ok && !r.CreatedAt.IsZero() {
		out["created_at"] = r.CreatedAt.Format(timeLayout)
	}
	return out
}

func fail(c *gin.Context, status int, msg string, errs map[string]string) {
	body := gin.H{"success": false, "message": msg}
	if len(errs) > 0 {
		body["errors"] = errs
	}
	c.AbortWithStatusJSON(status, body)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	return id, err == nil && id > 0
}

// mediaPaths lists the stored paths of a single or multiple media value.
func mediaPaths(v any) []string {
	switch x := v.(type) {
	case string:
		if x != "" {
			return []string{x}
		}
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if p := resource.FormatScalar(e); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []string:
		return x
	}
	return nil
}

func humanField(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
