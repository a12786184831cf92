package models

// Product represents one cleaned catalogue row ready for export.
// Every field except LineName must be present and not "N/A" for the
// row to count as complete.
type Product struct {
	ProductID   string `validate:"required,ne=N/A"`
	Name        string `validate:"required,ne=N/A"`
	LineName    string
	BrandName   string `validate:"required,ne=N/A"`
	Description string `validate:"required,ne=N/A"`
	Images      string `validate:"required,ne=N/A"`
	Barcode     string `validate:"required,ne=N/A"`
	Price       string `validate:"required,ne=N/A"`
	SizeVolume  string `validate:"required,ne=N/A"`
	Ingredients string `validate:"required,ne=N/A"`
	SkinConcern string `validate:"required,ne=N/A"`
	SourceURL   string `validate:"required,ne=N/A"`
}

// ProductColumns is the CSV header, in export order.
var ProductColumns = []string{
	"Product ID",
	"Product Name",
	"Product Line Name",
	"Brand Name",
	"Product Description",
	"Product Images",
	"Barcode (EAN/UPC)",
	"Price",
	"Size/Volume",
	"Ingredients",
	"Skin Concern",
	"Source URL",
}

// ColumnForField maps a Product struct field to its CSV column name.
var ColumnForField = map[string]string{
	"ProductID":   "Product ID",
	"Name":        "Product Name",
	"LineName":    "Product Line Name",
	"BrandName":   "Brand Name",
	"Description": "Product Description",
	"Images":      "Product Images",
	"Barcode":     "Barcode (EAN/UPC)",
	"Price":       "Price",
	"SizeVolume":  "Size/Volume",
	"Ingredients": "Ingredients",
	"SkinConcern": "Skin Concern",
	"SourceURL":   "Source URL",
}

// Row returns the product as a CSV record in ProductColumns order.
func (p Product) Row() []string {
	return []string{
		p.ProductID,
		p.Name,
		p.LineName,
		p.BrandName,
		p.Description,
		p.Images,
		p.Barcode,
		p.Price,
		p.SizeVolume,
		p.Ingredients,
		p.SkinConcern,
		p.SourceURL,
	}
}

// ProductListRequest is the POST body of the get-product-list endpoint.
type ProductListRequest struct {
	AppIdentifier    string         `json:"app_identifier"`
	DeviceIdentifier string         `json:"device_identifier"`
	Parameters       ListParameters `json:"parameters"`
	Page             int            `json:"page"`
	PageSize         int            `json:"page_size"`
}

// ListParameters narrows a catalogue listing. Nil slices marshal to
// JSON null, which is what the API expects for unused filters.
type ListParameters struct {
	Brands      []string `json:"brands"`
	Categories  []string `json:"categories"`
	Conditions  []string `json:"conditions"`
	UseSemantic bool     `json:"use_semantic"`
}

// ProductListResponse carries the slugs of one catalogue page.
type ProductListResponse struct {
	Results []ProductSummary `json:"results"`
}

// ProductSummary is the slimmed-down listing entry. Only the slug is
// needed to queue the product for a detail fetch.
type ProductSummary struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// ProductDetailRequest is the POST body of the get-product endpoint.
type ProductDetailRequest struct {
	ProductSlug string         `json:"product_slug"`
	Extensions  map[string]any `json:"extensions"`
}

// ProductDetailResponse wraps the raw product payload. The payload is
// kept as a generic map because the API mixes value types per field
// (numeric ids, float prices, nested detail blocks).
type ProductDetailResponse struct {
	Product map[string]any `json:"product"`
}
