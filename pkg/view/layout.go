package view

// NavItem is one sidebar entry.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// Layout is shared by every authenticated page.
type Layout struct {
	Title     string
	AdminName string
	Nav       []NavItem
	Flashes   []Flash
	RequestID string
}

type LoginForm struct {
	Email    string
	ReturnTo string
}

type LoginPage struct {
	Title   string
	Form    LoginForm
	Errors  map[string]string
	Message string
	Flashes []Flash
}

// CountCard shows the size of a collection on the home page. Count is
// empty when the collection has not been loaded in this session.
type CountCard struct {
	Label string
	Href  string
	Count string
}

type DashboardPage struct {
	Layout
	Welcome string
	Cards   []CountCard
}

type ConfirmPage struct {
	Layout
	Heading    string
	Body       string
	Action     string
	CancelHref string
}

type ErrorPage struct {
	Layout
	Status  int
	Message string
}
