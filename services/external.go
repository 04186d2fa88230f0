package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"raksproperties/models"
)

const (
	externalFallbackCount = 2
	externalInsightCount  = 3
)

// ExternalService simulates the third-party realty feeds the chat blends
// into its answers. All data comes from the current catalog snapshot.
type ExternalService struct {
	catalogs CatalogProvider
	delay    Delayer
	latency  time.Duration
}

func NewExternalService(catalogs CatalogProvider, delay Delayer, latency time.Duration) *ExternalService {
	if delay == nil {
		delay = NoDelay{}
	}
	return &ExternalService{catalogs: catalogs, delay: delay, latency: latency}
}

// Fetch returns the external listings relevant to query along with market
// trends, comparative averages and a few insights. When no listing matches,
// the first two listings are returned so the section is never empty.
func (s *ExternalService) Fetch(ctx context.Context, query string) (models.ExternalData, error) {
	if err := s.delay.Wait(ctx, s.latency); err != nil {
		return models.ExternalData{}, fmt.Errorf("fetch external listings: %w", err)
	}

	cat := s.catalogs.Current()
	if cat == nil {
		return models.ExternalData{}, fmt.Errorf("fetch external listings: no catalog loaded")
	}

	q := NormalizeQuery(query)
	broad := containsAny(q, "property", "investment")

	var listings []models.ExternalListing
	for _, e := range cat.External {
		if broad || externalMatches(e, q) {
			listings = append(listings, e)
		}
	}
	if len(listings) == 0 {
		listings = append(listings, cat.External[:min(externalFallbackCount, len(cat.External))]...)
	}

	results := make([]models.SearchResult, 0, len(listings))
	for _, e := range listings {
		results = append(results, ExternalResult(e))
	}

	insights := cat.Insights[:min(externalInsightCount, len(cat.Insights))]

	return models.ExternalData{
		Listings:     listings,
		Results:      results,
		MarketTrends: append([]models.MarketTrend(nil), cat.MarketTrends...),
		Comparative:  cat.Comparative,
		Insights:     append([]string(nil), insights...),
	}, nil
}

// MarketComparison looks up the market trend for location, ignoring case
func (s *ExternalService) MarketComparison(location string) (models.MarketTrend, bool) {
	cat := s.catalogs.Current()
	if cat == nil {
		return models.MarketTrend{}, false
	}
	for _, t := range cat.MarketTrends {
		if strings.EqualFold(t.Location, strings.TrimSpace(location)) {
			return t, true
		}
	}
	return models.MarketTrend{}, false
}

// An empty query matches every listing, as a substring search would.
func externalMatches(e models.ExternalListing, q string) bool {
	return strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Location), q) ||
		strings.Contains(strings.ToLower(e.PropertyType), q)
}
