package view

// Cell is one table cell. Images are shown as thumbnails, Links as
// download links; Text is used otherwise.
type Cell struct {
	Text   string
	Badge  string
	Images []string
	Links  []string
}

type Row struct {
	ID         string
	Cells      []Cell
	EditHref   string
	DetailHref string
	DeleteHref string
	Deleting   bool
}

type Column struct {
	Label string
}

type ResourceListPage struct {
	Layout
	Heading    string
	Singular   string
	Columns    []Column
	Rows       []Row
	NewHref    string
	ReloadHref string
	Loading    bool
	LoadError  string
	Busy       bool
}

type FieldOption struct {
	Value    string
	Label    string
	Selected bool
}

// ExistingFile is a stored media path resolved for preview.
type ExistingFile struct {
	URL   string
	Name  string
	Image bool
}

type FormField struct {
	Name     string
	Label    string
	Kind     string
	Value    string
	Required bool
	Options  []FieldOption
	Existing []ExistingFile
	Pending  []string
	Multiple bool
	Accept   string
	Max      int
	Error    string
}

type ResourceFormPage struct {
	Layout
	Heading    string
	Action     string
	Multipart  bool
	Fields     []FormField
	Warnings   []string
	Error      string
	CancelHref string
	SubmitText string
}

type Pair struct {
	Label string
	Value string
	Links []string
}

type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

type ResourceDetailPage struct {
	Layout
	Heading    string
	Pairs      []Pair
	Tables     []Table
	EditHref   string
	DeleteHref string
	BackHref   string
}
