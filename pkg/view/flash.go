package view

// FlashKind is the severity of a notice shown above the page content.
type FlashKind string

const (
	FlashInfo    FlashKind = "info"
	FlashSuccess FlashKind = "success"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)

// Class is the alert style of k. Unknown kinds render as info.
func (k FlashKind) Class() string {
	switch k {
	case FlashSuccess, FlashWarning, FlashError:
		return "alert alert-" + string(k)
	default:
		return "alert alert-info"
	}
}

// Flash is one notice. It survives a redirect inside the flash cookie.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Notices drops empty messages and keeps the order of fs.
func Notices(fs ...Flash) []Flash {
	out := make([]Flash, 0, len(fs))
	for _, f := range fs {
		if f.Message != "" {
			out = append(out, f)
		}
	}
	return out
}
