package cms

const (
	CollectionTables        = "tables"
	CollectionOrders        = "orders"
	CollectionProducts      = "products"
	CollectionCategories    = "categories"
	CollectionSubcategories = "subcategories"
	CollectionExtras        = "extras"
	CollectionQuickNotes    = "quick-notes"
)
