package identity

import (
	"testing"

	"raksproperties/models"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Luxury Villa - Phakalane  ", "luxury villa phakalane"},
		{"3 Bedrooms, Tati Road", "3 bed tati rd"},
		{"Broadhurst Extension 2", "broadhurst ext 2"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFingerprint_IgnoresProviderAndFormatting(t *testing.T) {
	beds := 3
	a := models.ExternalListing{ID: "a", Title: "Family Home, Tati Road", Location: "Francistown",
		PropertyType: "House", Price: 1250000, Bedrooms: &beds, Provider: "One"}
	b := models.ExternalListing{ID: "b", Title: "family home tati rd", Location: " francistown ",
		PropertyType: "house", Price: 1250000, Bedrooms: &beds, Provider: "Two", Relevance: 0.4}

	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("expected matching fingerprints")
	}

	b.Price = 1300000
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("different price should change fingerprint")
	}
}
