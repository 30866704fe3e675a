package resource

// UpdateMode selects how an update travels over the wire.
type UpdateMode string

const (
	// UpdatePut sends PUT with the id inside the body.
	UpdatePut UpdateMode = "put"
	// UpdatePostOverride sends POST ?id=<id>&_method=PUT for servers that
	// cannot read PUT bodies (multipart on PHP).
	UpdatePostOverride UpdateMode = "post_override"
	// UpdatePost sends POST with the id field; the server upserts.
	UpdatePost UpdateMode = "post"
)

// DeleteMode selects where the id goes on DELETE.
type DeleteMode string

const (
	DeleteQuery DeleteMode = "query"
	DeleteBody  DeleteMode = "body"
)

const methodOverrideField = "_method"

// Endpoint describes one collection endpoint and its quirks.
type Endpoint struct {
	Path      string     `yaml:"path"`
	IDField   string     `yaml:"id_field"`
	ListKey   string     `yaml:"list_key"`
	ItemKey   string     `yaml:"item_key"`
	Update    UpdateMode `yaml:"update"`
	Delete    DeleteMode `yaml:"delete"`
	Multipart bool       `yaml:"multipart"`
}

func (e Endpoint) IDKey() string {
	if e.IDField == "" {
		return "id"
	}
	return e.IDField
}

func (e Endpoint) updateMode() UpdateMode {
	if e.Update == "" {
		return UpdatePut
	}
	return e.Update
}

func (e Endpoint) deleteMode() DeleteMode {
	if e.Delete == "" {
		return DeleteBody
	}
	return e.Delete
}
