package models

import "encoding/json"

type Category string

const (
	CategoryProperty Category = "property"
	CategoryLocation Category = "location"
	CategoryService  Category = "service"
	CategoryPrice    Category = "price"
	CategoryExternal Category = "external"
)

// Relevance scores are fixed per category; ranking is by category only.
const (
	RelevanceProperty = 0.9
	RelevancePrice    = 0.85
	RelevanceLocation = 0.8
	RelevanceService  = 0.7
)

// Source labels shown next to a result
const (
	SourcePropertySales    = "Property Sales"
	SourceLocationServices = "Location Services"
	SourceServices         = "Services"
	SourceMarketData       = "Market Data"
)

// SearchResult is a ranked projection of a record for one query.
// Detail holds the category-specific fields.
type SearchResult struct {
	ID        string
	Title     string
	Content   string
	Source    string
	Relevance float64
	Detail    Detail
}

// Category reports which variant the result carries
func (r SearchResult) Category() Category {
	if r.Detail == nil {
		return ""
	}
	return r.Detail.Category()
}

func (r SearchResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string   `json:"id"`
		Title     string   `json:"title"`
		Content   string   `json:"content"`
		Source    string   `json:"source"`
		Relevance float64  `json:"relevance"`
		Category  Category `json:"category"`
		Detail    Detail   `json:"detail,omitempty"`
	}{r.ID, r.Title, r.Content, r.Source, r.Relevance, r.Category(), r.Detail})
}

// Detail is implemented only by the variants in this file.
type Detail interface {
	Category() Category
	isDetail()
}

type PropertyDetail struct {
	Price        int64  `json:"price"`
	Location     string `json:"location"`
	PropertyType string `json:"property_type"`
	Bedrooms     *int   `json:"bedrooms,omitempty"`
}

type LocationDetail struct {
	Name           string `json:"name"`
	AveragePrice   int64  `json:"average_price"`
	ActiveListings int    `json:"active_listings"`
	GrowthRate     string `json:"growth_rate"`
}

type ServiceDetail struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PriceDetail is the synthesized pricing summary; it is not backed by a record
type PriceDetail struct {
	Summary string `json:"summary"`
}

type ExternalDetail struct {
	Price        int64  `json:"price"`
	Location     string `json:"location"`
	PropertyType string `json:"property_type"`
	Provider     string `json:"provider"`
	Bedrooms     *int   `json:"bedrooms,omitempty"`
}

func (PropertyDetail) Category() Category { return CategoryProperty }
func (LocationDetail) Category() Category { return CategoryLocation }
func (ServiceDetail) Category() Category  { return CategoryService }
func (PriceDetail) Category() Category    { return CategoryPrice }
func (ExternalDetail) Category() Category { return CategoryExternal }

func (PropertyDetail) isDetail() {}
func (LocationDetail) isDetail() {}
func (ServiceDetail) isDetail()  {}
func (PriceDetail) isDetail()    {}
func (ExternalDetail) isDetail() {}
