package mockapi

// Envelope styles of list responses.
const (
	envelopeArray = "array" // bare JSON array
	envelopeData  = "data"  // {"success": true, "data": [...]}
)

// collection describes how one endpoint of the reference backend answers.
type collection struct {
	Name    string
	IDField string
	// Envelope is envelopeArray, envelopeData or the key the list is
	// wrapped under.
	Envelope string
	// ItemKey makes the endpoint return only its newest record under this
	// key (or null).
	ItemKey string
	// Media maps media fields to whether they hold several files.
	Media    map[string]bool
	Required []string
	Unique   string
	// Secret is stored as a bcrypt hash and never returned.
	Secret string
	// AckOnly mutations answer with the id instead of the record.
	AckOnly  bool
	NoCreate bool
}

func (c collection) idField() string {
	if c.IDField == "" {
		return "id"
	}
	return c.IDField
}

func defaultCollections() []collection {
	return []collection{
		{Name: "categories", Envelope: envelopeArray, Media: map[string]bool{"image": false}, Required: []string{"title"}, AckOnly: true},
		{Name: "products", Envelope: envelopeData, Media: map[string]bool{"images": true, "image_3d": false}, Required: []string{"name", "cost", "category_id"}},
		{Name: "orders", IDField: "orderId", Envelope: envelopeData, NoCreate: true},
		{Name: "order_requests", Envelope: envelopeData, NoCreate: true},
		{Name: "coupon", Envelope: envelopeArray, Required: []string{"name", "discount"}},
		{Name: "banners", Envelope: envelopeData, Media: map[string]bool{"image": false}, Required: []string{"title"}},
		{Name: "partners", Envelope: envelopeData, Media: map[string]bool{"image": false}, Required: []string{"title"}},
		{Name: "brochure", Envelope: "brochures", Media: map[string]bool{"file": false}, Required: []string{"title", "type"}},
		{Name: "blog", Envelope: "blogs", Media: map[string]bool{"author_image": false, "blog_image": false}, Required: []string{"title", "author_name", "short_description", "description"}},
		{Name: "reviews", Envelope: "reviews", Media: map[string]bool{"image": false}, Required: []string{"name", "review"}},
		{Name: "users", Envelope: "users", Required: []string{"name", "email"}, Unique: "email", Secret: "password"},
		{Name: "site_banners", ItemKey: "banner", Required: []string{"text"}},
	}
}
