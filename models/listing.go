package models

// ListingRecord is a property shown on the Property Sales page
type ListingRecord struct {
	ID           string `json:"id" yaml:"id" db:"id"`
	Title        string `json:"title" yaml:"title" db:"title"`
	Price        int64  `json:"price" yaml:"price" db:"price"`
	Location     string `json:"location" yaml:"location" db:"location"`
	Bedrooms     *int   `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty" db:"bedrooms"`
	PropertyType string `json:"property_type" yaml:"property_type" db:"property_type"`
	Description  string `json:"description" yaml:"description" db:"description"`
}

// LocationRecord summarises the market in one city
type LocationRecord struct {
	Name           string `json:"name" yaml:"name" db:"name"`
	AveragePrice   int64  `json:"average_price" yaml:"average_price" db:"average_price"`
	ActiveListings int    `json:"active_listings" yaml:"active_listings" db:"active_listings"`
	GrowthRate     string `json:"growth_rate" yaml:"growth_rate" db:"growth_rate"` // formatted, e.g. "+12%"
}

// ServiceRecord is one of the company's service lines
type ServiceRecord struct {
	Name        string `json:"name" yaml:"name" db:"name"`
	Description string `json:"description" yaml:"description" db:"description"`
}

// ExternalListing is a property advertised by a third-party provider
type ExternalListing struct {
	ID           string  `json:"id" yaml:"id" db:"id"`
	Title        string  `json:"title" yaml:"title" db:"title"`
	Price        int64   `json:"price" yaml:"price" db:"price"`
	Location     string  `json:"location" yaml:"location" db:"location"`
	Provider     string  `json:"provider" yaml:"provider" db:"provider"`
	Relevance    float64 `json:"relevance" yaml:"relevance" db:"relevance"`
	PropertyType string  `json:"property_type" yaml:"property_type" db:"property_type"`
	Bedrooms     *int    `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty" db:"bedrooms"`
	Description  string  `json:"description" yaml:"description" db:"description"`
}

// MarketTrend describes demand and outlook for a city as reported externally
type MarketTrend struct {
	Location          string   `json:"location" yaml:"location" db:"location"`
	AveragePrice      int64    `json:"average_price" yaml:"average_price" db:"average_price"`
	Growth            string   `json:"growth" yaml:"growth" db:"growth"`
	DemandFactors     []string `json:"demand_factors" yaml:"demand_factors" db:"demand_factors"`
	InvestmentOutlook string   `json:"investment_outlook" yaml:"investment_outlook" db:"investment_outlook"`
}

// ComparativeData holds national reference averages in BWP
type ComparativeData struct {
	RegionalAverage int64 `json:"regional_average" yaml:"regional_average"`
	BotswanaAverage int64 `json:"botswana_average" yaml:"botswana_average"`
	PremiumAverage  int64 `json:"premium_average" yaml:"premium_average"`
}

// ExternalData is the payload returned by the external realty simulator
type ExternalData struct {
	Listings     []ExternalListing `json:"listings"`
	Results      []SearchResult    `json:"results"`
	MarketTrends []MarketTrend     `json:"market_trends"`
	Comparative  ComparativeData   `json:"comparative"`
	Insights     []string          `json:"insights"`
}
