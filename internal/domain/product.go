package domain

// Product represents a single catalog item
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Style       string  `json:"style"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
}

// EmbeddingText returns the text a product is indexed under.
// Vector index rows are built from this string in catalog order.
func (p Product) EmbeddingText() string {
	return p.Name + " " + p.Style + " " + p.Category + " " + p.Description
}

// Catalog is an immutable, position-addressable view over loaded products
type Catalog struct {
	products []Product
	byID     map[int]int
}

// NewCatalog builds a catalog from products in load order.
// The slice is copied so later mutation by the caller cannot leak in.
func NewCatalog(products []Product) *Catalog {
	items := make([]Product, len(products))
	copy(items, products)

	byID := make(map[int]int, len(items))
	for i, p := range items {
		if _, exists := byID[p.ID]; !exists {
			byID[p.ID] = i
		}
	}

	return &Catalog{products: items, byID: byID}
}

// Len returns the number of products
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// At returns the product at a 0-based load position
func (c *Catalog) At(pos int) (Product, bool) {
	if c == nil || pos < 0 || pos >= len(c.products) {
		return Product{}, false
	}
	return c.products[pos], true
}

// ByID returns the product with the given identifier
func (c *Catalog) ByID(id int) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	pos, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[pos], true
}

// Products returns the products in load order. Callers must not modify the result.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	return c.products
}
