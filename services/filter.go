package services

import (
	"fmt"
	"strings"

	"raksproperties/models"
)

const (
	AnyLocation = "All Locations"
	AnyType     = "All Types"

	DefaultPriceMin int64 = 50000
	DefaultPriceMax int64 = 5000000
)

// PropertyFilter narrows the Property Sales listing. Zero values and the
// "All ..." labels mean no restriction.
type PropertyFilter struct {
	Location     string
	PropertyType string
	MinBedrooms  int
	PriceMin     int64
	PriceMax     int64
}

// DefaultPropertyFilter matches everything inside the default price range
func DefaultPropertyFilter() PropertyFilter {
	return PropertyFilter{
		Location:     AnyLocation,
		PropertyType: AnyType,
		PriceMin:     DefaultPriceMin,
		PriceMax:     DefaultPriceMax,
	}
}

func (f PropertyFilter) anyLocation() bool {
	return f.Location == "" || f.Location == AnyLocation
}

func (f PropertyFilter) anyType() bool {
	return f.PropertyType == "" || f.PropertyType == AnyType
}

func (f PropertyFilter) priceRange() (int64, int64) {
	lo, hi := f.PriceMin, f.PriceMax
	if lo <= 0 {
		lo = DefaultPriceMin
	}
	if hi <= 0 {
		hi = DefaultPriceMax
	}
	return lo, hi
}

// Matches reports whether p passes every active filter
func (f PropertyFilter) Matches(p models.ListingRecord) bool {
	if !f.anyLocation() && !strings.EqualFold(p.Location, f.Location) {
		return false
	}
	if !f.anyType() && !strings.EqualFold(p.PropertyType, f.PropertyType) {
		return false
	}
	if f.MinBedrooms > 0 && (p.Bedrooms == nil || *p.Bedrooms < f.MinBedrooms) {
		return false
	}
	lo, hi := f.priceRange()
	return p.Price >= lo && p.Price <= hi
}

// Apply returns the records that pass the filter, in their original order
func (f PropertyFilter) Apply(records []models.ListingRecord) []models.ListingRecord {
	var out []models.ListingRecord
	for _, p := range records {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// ActiveFilters describes the filters that differ from the defaults
func (f PropertyFilter) ActiveFilters() []string {
	var out []string
	if !f.anyLocation() {
		out = append(out, "location: "+f.Location)
	}
	if !f.anyType() {
		out = append(out, "type: "+f.PropertyType)
	}
	if f.MinBedrooms > 0 {
		out = append(out, fmt.Sprintf("bedrooms: %d+", f.MinBedrooms))
	}
	lo, hi := f.priceRange()
	if lo != DefaultPriceMin || hi != DefaultPriceMax {
		out = append(out, fmt.Sprintf("P %s - P %s", FormatAmount(lo), FormatAmount(hi)))
	}
	return out
}
