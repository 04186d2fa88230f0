package services

import (
	"context"
	"testing"

	"raksproperties/catalog"
	"raksproperties/models"
)

func newExternal(t *testing.T) *ExternalService {
	t.Helper()
	return NewExternalService(catalog.NewStore(loadCatalog(t)), nil, 0)
}

func TestExternal_FetchMatches(t *testing.T) {
	svc := newExternal(t)
	data, err := svc.Fetch(context.Background(), "Villa")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(data.Listings) != 1 || data.Listings[0].ID != "ext1" {
		t.Fatalf("expected only ext1, got %+v", data.Listings)
	}
	if len(data.Results) != 1 || data.Results[0].Category() != models.CategoryExternal {
		t.Fatalf("expected one external result, got %+v", data.Results)
	}
	if data.Results[0].Relevance != 0.95 {
		t.Fatalf("expected provider relevance 0.95, got %.2f", data.Results[0].Relevance)
	}
	if len(data.MarketTrends) != 3 {
		t.Fatalf("expected 3 market trends, got %d", len(data.MarketTrends))
	}
	if len(data.Insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(data.Insights))
	}
	if data.Comparative.PremiumAverage != 3200000 {
		t.Fatalf("unexpected comparative data %+v", data.Comparative)
	}
}

func TestExternal_FetchBroadQuery(t *testing.T) {
	svc := newExternal(t)
	for _, q := range []string{"investment ideas", "any property"} {
		data, err := svc.Fetch(context.Background(), q)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(data.Listings) != 3 {
			t.Fatalf("query %q: expected all 3 listings, got %d", q, len(data.Listings))
		}
	}
}

func TestExternal_FetchFallsBackToFirstTwo(t *testing.T) {
	svc := newExternal(t)
	data, err := svc.Fetch(context.Background(), "kasane plot")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(data.Listings) != 2 {
		t.Fatalf("expected 2 fallback listings, got %d", len(data.Listings))
	}
	if data.Listings[0].ID != "ext1" || data.Listings[1].ID != "ext2" {
		t.Fatalf("unexpected fallback listings %s, %s", data.Listings[0].ID, data.Listings[1].ID)
	}
}

func TestExternal_FetchCancelled(t *testing.T) {
	svc := newExternal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Fetch(ctx, "villa"); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestExternal_MarketComparison(t *testing.T) {
	svc := newExternal(t)
	trend, ok := svc.MarketComparison("maun")
	if !ok || trend.Growth != "+18%" {
		t.Fatalf("expected Maun trend +18%%, got %+v (%v)", trend, ok)
	}
	if _, ok := svc.MarketComparison(" GABORONE "); !ok {
		t.Fatalf("expected case-insensitive match for Gaborone")
	}
	if _, ok := svc.MarketComparison("Kasane"); ok {
		t.Fatalf("expected no trend for Kasane")
	}
}
