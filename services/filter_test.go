package services

import (
	"testing"

	"raksproperties/models"
)

func ids(records []models.ListingRecord) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestPropertyFilter_Defaults(t *testing.T) {
	cat := loadCatalog(t)
	f := DefaultPropertyFilter()
	got := f.Apply(cat.Properties)
	if len(got) != 3 {
		t.Fatalf("expected all 3 properties, got %v", ids(got))
	}
	if active := f.ActiveFilters(); len(active) != 0 {
		t.Fatalf("expected no active filters, got %v", active)
	}
	if len((PropertyFilter{}).Apply(cat.Properties)) != 3 {
		t.Fatalf("zero filter should behave like the default")
	}
}

func TestPropertyFilter_Location(t *testing.T) {
	cat := loadCatalog(t)
	f := DefaultPropertyFilter()
	f.Location = "gaborone"
	got := f.Apply(cat.Properties)
	if len(got) != 1 || got[0].ID != "p2" {
		t.Fatalf("expected p2, got %v", ids(got))
	}
	active := f.ActiveFilters()
	if len(active) != 1 || active[0] != "location: gaborone" {
		t.Fatalf("unexpected active filters %v", active)
	}
}

func TestPropertyFilter_PriceRange(t *testing.T) {
	cat := loadCatalog(t)
	f := DefaultPropertyFilter()
	f.PriceMax = 2000000
	got := f.Apply(cat.Properties)
	if len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("expected p1, got %v", ids(got))
	}
	active := f.ActiveFilters()
	if len(active) != 1 || active[0] != "P 50,000 - P 2,000,000" {
		t.Fatalf("unexpected active filters %v", active)
	}
}

func TestPropertyFilter_BedroomsAndType(t *testing.T) {
	cat := loadCatalog(t)
	records := append([]models.ListingRecord{}, cat.Properties...)
	records = append(records, models.ListingRecord{ID: "plot", Price: 90000, Location: "Maun", PropertyType: "Land"})

	f := DefaultPropertyFilter()
	f.MinBedrooms = 5
	got := f.Apply(records)
	if len(got) != 2 || got[0].ID != "p2" || got[1].ID != "p3" {
		t.Fatalf("expected p2, p3 in order, got %v", ids(got))
	}

	f = DefaultPropertyFilter()
	f.PropertyType = "Land"
	got = f.Apply(records)
	if len(got) != 1 || got[0].ID != "plot" {
		t.Fatalf("expected plot, got %v", ids(got))
	}
}
