package sessioncookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var ErrInvalid = errors.New("invalid session cookie")

type Codec struct {
	Secret     []byte
	CookieName string
	Secure     bool
	TTL        time.Duration
	now        func() time.Time
}

func New(secret []byte, name string, secure bool, ttl time.Duration) *Codec {
	return &Codec{Secret: secret, CookieName: name, Secure: secure, TTL: ttl, now: time.Now}
}

type payload struct {
	Values  map[string]string `json:"v"`
	Expires int64             `json:"exp"`
}

// value format: base64(json).base64(hmac)
func (c *Codec) Encode(values map[string]string) (string, error) {
	b, err := json.Marshal(payload{Values: values, Expires: c.clock().Add(c.TTL).Unix()})
	if err != nil {
		return "", err
	}
	body := base64.RawURLEncoding.EncodeToString(b)
	return body + "." + sign(c.Secret, body), nil
}

func (c *Codec) Decode(v string) (map[string]string, error) {
	parts := strings.Split(v, ".")
	if len(parts) != 2 || parts[0] == "" {
		return nil, ErrInvalid
	}
	if !verify(c.Secret, parts[0], parts[1]) {
		return nil, ErrInvalid
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalid
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ErrInvalid
	}
	if c.TTL > 0 && c.clock().Unix() > p.Expires {
		return nil, ErrInvalid
	}
	if p.Values == nil {
		p.Values = map[string]string{}
	}
	return p.Values, nil
}

func (c *Codec) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// Load reads the request's cookie into a Storage. A tampered or expired
// cookie yields an empty storage and is cleared.
func (c *Codec) Load(ctx *gin.Context) *Storage {
	s := &Storage{codec: c, ctx: ctx, values: map[string]string{}}
	v, err := ctx.Cookie(c.CookieName)
	if err != nil || v == "" {
		return s
	}
	values, err := c.Decode(v)
	if err != nil {
		c.clear(ctx)
		return s
	}
	s.values = values
	return s
}

func (c *Codec) write(ctx *gin.Context, values map[string]string) error {
	if len(values) == 0 {
		c.clear(ctx)
		return nil
	}
	val, err := c.Encode(values)
	if err != nil {
		return err
	}
	maxAge := 0
	if c.TTL > 0 {
		maxAge = int(c.TTL.Seconds())
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, val, maxAge, "/", "", c.Secure, true)
	return nil
}

func (c *Codec) clear(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, "", -1, "/", "", c.Secure, true)
}

// Storage is a per-request view of the session cookie. Writes are buffered
// until Commit.
type Storage struct {
	codec  *Codec
	ctx    *gin.Context
	values map[string]string
	dirty  bool
}

func (s *Storage) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Storage) Set(key, value string) {
	s.values[key] = value
	s.dirty = true
}

func (s *Storage) Delete(key string) {
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// Commit writes the cookie if anything changed.
func (s *Storage) Commit() error {
	if !s.dirty {
		return nil
	}
	s.dirty = false
	return s.codec.write(s.ctx, s.values)
}

func sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verify(secret []byte, payload, sig string) bool {
	return hmac.Equal([]byte(sign(secret, payload)), []byte(sig))
}
