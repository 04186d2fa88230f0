package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"raksproperties/catalog"
	"raksproperties/models"
)

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to load default catalog: %v", err)
	}
	return c
}

func TestMatch_SortedByRelevance(t *testing.T) {
	cat := loadCatalog(t)
	for _, q := range []string{"property price", "francistown", "services", "house location", "bwp", "gaborone villa", "x"} {
		results := Match(cat, q)
		for i := 1; i < len(results); i++ {
			if results[i].Relevance > results[i-1].Relevance {
				t.Fatalf("query %q: result %d (%.2f) ranked above %d (%.2f)",
					q, i, results[i].Relevance, i-1, results[i-1].Relevance)
			}
		}
	}
}

func TestMatch_BlankQuery(t *testing.T) {
	cat := loadCatalog(t)
	for _, q := range []string{"", "   ", "\t\n"} {
		if got := Match(cat, q); len(got) != 0 {
			t.Fatalf("expected no results for %q, got %d", q, len(got))
		}
	}
	if got := Match(nil, "house"); got != nil {
		t.Fatalf("expected nil results without a catalog")
	}
}

func TestMatch_Francistown(t *testing.T) {
	cat := loadCatalog(t)
	results := Match(cat, "  Francistown ")
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].ID != "p1" || results[0].Category() != models.CategoryProperty {
		t.Fatalf("expected property p1 first, got %s (%s)", results[0].ID, results[0].Category())
	}
	if results[0].Relevance != models.RelevanceProperty {
		t.Fatalf("expected property relevance %.2f, got %.2f", models.RelevanceProperty, results[0].Relevance)
	}
	if results[1].ID != "loc-Francistown" || results[1].Category() != models.CategoryLocation {
		t.Fatalf("expected location result second, got %s (%s)", results[1].ID, results[1].Category())
	}
	if results[1].Relevance != models.RelevanceLocation {
		t.Fatalf("expected location relevance %.2f, got %.2f", models.RelevanceLocation, results[1].Relevance)
	}
	if results[1].Content != "Average price: BWP 1,200,000, 45 properties available, Market growth: +12%" {
		t.Fatalf("unexpected location content %q", results[1].Content)
	}
}

func TestMatch_PriceResultExactlyOnce(t *testing.T) {
	cat := loadCatalog(t)
	for _, q := range []string{"price", "property price", "cost of a house in maun", "BWP"} {
		results := Match(cat, q)
		count := 0
		for _, r := range results {
			if r.Category() == models.CategoryPrice {
				count++
				if r.Content != cat.PriceSummary {
					t.Fatalf("query %q: unexpected price content %q", q, r.Content)
				}
				if r.ID != "price-info" {
					t.Fatalf("query %q: unexpected price id %s", q, r.ID)
				}
			}
		}
		if count != 1 {
			t.Fatalf("query %q: expected exactly 1 price result, got %d", q, count)
		}
	}
}

func TestMatch_PropertyShortcut(t *testing.T) {
	cat := loadCatalog(t)
	results := Match(cat, "any house available?")
	props := 0
	for _, r := range results {
		if r.Category() == models.CategoryProperty {
			props++
		}
	}
	if props != len(cat.Properties) {
		t.Fatalf("expected all %d properties, got %d", len(cat.Properties), props)
	}
}

func TestMatch_Services(t *testing.T) {
	cat := loadCatalog(t)
	results := Match(cat, "commissions")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "service-Affiliate Program" || results[0].Relevance != models.RelevanceService {
		t.Fatalf("unexpected service result %+v", results[0])
	}
}

func TestPropertyResult_Content(t *testing.T) {
	cat := loadCatalog(t)
	r := PropertyResult(cat.Properties[0])
	if r.Content != "4 bedroom House in Francistown. Price: BWP 1,250,000" {
		t.Fatalf("unexpected content %q", r.Content)
	}
	d, ok := r.Detail.(models.PropertyDetail)
	if !ok {
		t.Fatalf("expected PropertyDetail, got %T", r.Detail)
	}
	if d.Price != 1250000 || d.Location != "Francistown" || *d.Bedrooms != 4 {
		t.Fatalf("unexpected detail %+v", d)
	}
}

func TestExternalResult_NoBedrooms(t *testing.T) {
	cat := loadCatalog(t)
	r := ExternalResult(cat.External[1])
	if r.Content != "Commercial in Gaborone. Price: BWP 15,000,000" {
		t.Fatalf("unexpected content %q", r.Content)
	}
	if r.Source != "Commercial Real Estate Hub" || r.Relevance != 0.90 {
		t.Fatalf("unexpected source/relevance %s %.2f", r.Source, r.Relevance)
	}
}

func TestFormatBWP(t *testing.T) {
	cases := map[int64]string{
		0:        "BWP 0",
		950:      "BWP 950",
		50000:    "BWP 50,000",
		1250000:  "BWP 1,250,000",
		15000000: "BWP 15,000,000",
	}
	for in, want := range cases {
		if got := FormatBWP(in); got != want {
			t.Fatalf("FormatBWP(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeQuery(t *testing.T) {
	if got := NormalizeQuery("  Luxury VILLA \n"); got != "luxury villa" {
		t.Fatalf("unexpected normalized query %q", got)
	}
	if !IsBlank(" \t ") || IsBlank(" a ") {
		t.Fatalf("IsBlank misclassified input")
	}
}

type countingDelay struct {
	calls int
}

func (d *countingDelay) Wait(ctx context.Context, _ time.Duration) error {
	d.calls++
	return ctx.Err()
}

func TestSearchService_Search(t *testing.T) {
	store := catalog.NewStore(loadCatalog(t))
	delay := &countingDelay{}
	svc := NewSearchService(store, delay, time.Second)

	results, err := svc.Search(context.Background(), "   ")
	if err != nil || results != nil {
		t.Fatalf("expected nil results for blank input, got %v, %v", results, err)
	}
	if delay.calls != 0 {
		t.Fatalf("blank input should not wait, waited %d times", delay.calls)
	}

	results, err = svc.Search(context.Background(), "Maun")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 || delay.calls != 1 {
		t.Fatalf("expected 2 results after one wait, got %d results and %d waits", len(results), delay.calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Search(ctx, "Maun"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSleepDelay_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := (SleepDelay{}).Wait(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancelled wait blocked")
	}
	if err := (SleepDelay{}).Wait(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("short wait failed: %v", err)
	}
}
