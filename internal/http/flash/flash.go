// Package flash carries one-shot notices across a redirect in a signed
// cookie.
package flash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Shivansh-Raheja/admin-panel/pkg/view"
)

var (
	ErrInvalid = errors.New("invalid flash cookie")
	ErrEmpty   = errors.New("no flash message")
)

// MaxMessages bounds how many notices one cookie carries.
const MaxMessages = 5

type Codec struct {
	Secret     []byte
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

func NewCodec(secret []byte, cookieName string, secure bool) *Codec {
	return &Codec{Secret: secret, CookieName: cookieName, Secure: secure, MaxAge: 2 * time.Minute}
}

// Encode drops blank messages and keeps the last MaxMessages.
// value format: base64(json).base64(hmac)
func (c *Codec) Encode(fs []view.Flash) (string, error) {
	kept := make([]view.Flash, 0, len(fs))
	for _, f := range fs {
		if strings.TrimSpace(f.Message) != "" {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return "", ErrEmpty
	}
	if len(kept) > MaxMessages {
		kept = kept[len(kept)-MaxMessages:]
	}
	b, err := json.Marshal(kept)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(b)
	return payload + "." + sign(c.Secret, payload), nil
}

func (c *Codec) Decode(v string) ([]view.Flash, error) {
	payload, sig, ok := strings.Cut(v, ".")
	if !ok || payload == "" || !verify(c.Secret, payload, sig) {
		return nil, ErrInvalid
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalid
	}
	var fs []view.Flash
	if err := json.Unmarshal(raw, &fs); err != nil || len(fs) == 0 {
		return nil, ErrInvalid
	}
	return fs, nil
}

func (c *Codec) CookieMaxAge() int {
	return int(c.MaxAge.Seconds())
}

func sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verify(secret []byte, payload, sig string) bool {
	return hmac.Equal([]byte(sign(secret, payload)), []byte(sig))
}
