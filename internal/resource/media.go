package resource

import (
	"path"
	"strings"
)

// File is a pending local upload.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

type SlotState int

const (
	SlotAbsent SlotState = iota
	SlotExisting
	SlotPending
)

func (s SlotState) String() string {
	switch s {
	case SlotExisting:
		return "existing"
	case SlotPending:
		return "pending"
	default:
		return "absent"
	}
}

// MediaSlot holds the file references of one media field. Pending files
// replace the existing paths on submit; existing-only slots are left alone.
type MediaSlot struct {
	Existing []string
	Pending  []File
	Multiple bool
}

func (s MediaSlot) State() SlotState {
	switch {
	case len(s.Pending) > 0:
		return SlotPending
	case len(s.Existing) > 0:
		return SlotExisting
	default:
		return SlotAbsent
	}
}

// MediaURL resolves a server-relative media path against the API origin and
// base path. Backslash separators are normalized; absolute URLs pass through.
func MediaURL(origin, base, p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	if p == "" {
		return ""
	}
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return p
	}
	rel := path.Clean("/" + strings.Trim(base, "/") + "/" + strings.TrimLeft(p, "/"))
	return strings.TrimRight(origin, "/") + rel
}
