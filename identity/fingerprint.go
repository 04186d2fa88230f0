package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"raksproperties/models"
)

var (
	wordReplacements = map[string]string{
		"bedrooms":  "bed",
		"bedroom":   "bed",
		"beds":      "bed",
		"bathrooms": "bath",
		"bathroom":  "bath",
		"street":    "st",
		"road":      "rd",
		"avenue":    "ave",
		"extension": "ext",
		"apartment": "apt",
	}
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
)

// Fingerprint identifies an external listing independent of which provider
// published it, so the same lodge imported twice is recognised.
func Fingerprint(listing models.ExternalListing) string {
	bedrooms := 0
	if listing.Bedrooms != nil {
		bedrooms = *listing.Bedrooms
	}
	input := fmt.Sprintf("%s|%s|%s|%d|%d",
		NormalizeText(listing.Title),
		NormalizeText(listing.Location),
		strings.ToLower(strings.TrimSpace(listing.PropertyType)),
		listing.Price,
		bedrooms,
	)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

// NormalizeText lowercases s, drops punctuation and abbreviates common
// listing words word by word.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRegex.ReplaceAllString(s, " ")
	words := strings.Fields(multiSpaceRegex.ReplaceAllString(s, " "))
	for i, w := range words {
		if abbrev, ok := wordReplacements[w]; ok {
			words[i] = abbrev
		}
	}
	return strings.Join(words, " ")
}
