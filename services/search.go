package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"raksproperties/catalog"
	"raksproperties/models"
)

// Keywords are matched as plain substrings of the normalized query.
var (
	propertyShortcutKeywords = []string{"property", "house"}
	priceKeywords            = []string{"price", "cost", "bwp"}
)

const priceResultID = "price-info"
const priceResultTitle = "Property Pricing Information"

// CatalogProvider hands out the current catalog snapshot
type CatalogProvider interface {
	Current() *catalog.Catalog
}

// Match scans the catalog for query and returns results ranked by
// descending relevance. A blank query yields no results.
func Match(cat *catalog.Catalog, query string) []models.SearchResult {
	query = NormalizeQuery(query)
	if cat == nil || query == "" {
		return nil
	}

	var results []models.SearchResult

	shortcut := containsAny(query, propertyShortcutKeywords...)
	for _, p := range cat.Properties {
		if shortcut || propertyMatches(p, query) {
			results = append(results, PropertyResult(p))
		}
	}

	for _, l := range cat.Locations {
		if strings.Contains(strings.ToLower(l.Name), query) {
			results = append(results, LocationResult(l))
		}
	}

	for _, s := range cat.Services {
		if strings.Contains(strings.ToLower(s.Name), query) ||
			strings.Contains(strings.ToLower(s.Description), query) {
			results = append(results, ServiceResult(s))
		}
	}

	if containsAny(query, priceKeywords...) {
		results = append(results, PriceResult(cat.PriceSummary))
	}

	SortByRelevance(results)
	return results
}

func propertyMatches(p models.ListingRecord, query string) bool {
	return strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Location), query) ||
		strings.Contains(strings.ToLower(p.PropertyType), query)
}

// SortByRelevance orders results by non-increasing relevance, keeping the
// original order for equal scores.
func SortByRelevance(results []models.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
}

func PropertyResult(p models.ListingRecord) models.SearchResult {
	return models.SearchResult{
		ID:        p.ID,
		Title:     p.Title,
		Content:   listingContent(p.Bedrooms, p.PropertyType, p.Location, p.Price),
		Source:    models.SourcePropertySales,
		Relevance: models.RelevanceProperty,
		Detail: models.PropertyDetail{
			Price:        p.Price,
			Location:     p.Location,
			PropertyType: p.PropertyType,
			Bedrooms:     p.Bedrooms,
		},
	}
}

func LocationResult(l models.LocationRecord) models.SearchResult {
	return models.SearchResult{
		ID:    "loc-" + l.Name,
		Title: l.Name + " Market Overview",
		Content: fmt.Sprintf("Average price: %s, %d properties available, Market growth: %s",
			FormatBWP(l.AveragePrice), l.ActiveListings, l.GrowthRate),
		Source:    models.SourceLocationServices,
		Relevance: models.RelevanceLocation,
		Detail: models.LocationDetail{
			Name:           l.Name,
			AveragePrice:   l.AveragePrice,
			ActiveListings: l.ActiveListings,
			GrowthRate:     l.GrowthRate,
		},
	}
}

func ServiceResult(s models.ServiceRecord) models.SearchResult {
	return models.SearchResult{
		ID:        "service-" + s.Name,
		Title:     s.Name,
		Content:   s.Description,
		Source:    models.SourceServices,
		Relevance: models.RelevanceService,
		Detail:    models.ServiceDetail{Name: s.Name, Description: s.Description},
	}
}

func PriceResult(summary string) models.SearchResult {
	return models.SearchResult{
		ID:        priceResultID,
		Title:     priceResultTitle,
		Content:   summary,
		Source:    models.SourceMarketData,
		Relevance: models.RelevancePrice,
		Detail:    models.PriceDetail{Summary: summary},
	}
}

func ExternalResult(e models.ExternalListing) models.SearchResult {
	return models.SearchResult{
		ID:        e.ID,
		Title:     e.Title,
		Content:   listingContent(e.Bedrooms, e.PropertyType, e.Location, e.Price),
		Source:    e.Provider,
		Relevance: e.Relevance,
		Detail: models.ExternalDetail{
			Price:        e.Price,
			Location:     e.Location,
			PropertyType: e.PropertyType,
			Provider:     e.Provider,
			Bedrooms:     e.Bedrooms,
		},
	}
}

// listingContent renders "4 bedroom House in Francistown. Price: BWP 1,250,000".
// The bedroom prefix is dropped for records without a bedroom count.
func listingContent(bedrooms *int, propertyType, location string, price int64) string {
	var b strings.Builder
	if bedrooms != nil {
		fmt.Fprintf(&b, "%d bedroom ", *bedrooms)
	}
	fmt.Fprintf(&b, "%s in %s. Price: %s", propertyType, location, FormatBWP(price))
	return b.String()
}

// SearchService runs Match against the current catalog behind the
// simulated search latency
type SearchService struct {
	catalogs CatalogProvider
	delay    Delayer
	latency  time.Duration
}

func NewSearchService(catalogs CatalogProvider, delay Delayer, latency time.Duration) *SearchService {
	if delay == nil {
		delay = NoDelay{}
	}
	return &SearchService{catalogs: catalogs, delay: delay, latency: latency}
}

// Search returns ranked results for raw. Blank input returns nil without
// waiting.
func (s *SearchService) Search(ctx context.Context, raw string) ([]models.SearchResult, error) {
	if IsBlank(raw) {
		return nil, nil
	}
	if err := s.delay.Wait(ctx, s.latency); err != nil {
		return nil, err
	}
	return Match(s.catalogs.Current(), raw), nil
}
