package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"raksproperties/catalog"
	"raksproperties/logging"
	"raksproperties/models"
)

const defaultHTMLRelevance = 0.5

// ParseListingsHTML extracts external listings from a saved listings page.
// Each listing is a ".listing" element carrying its id; provider and
// relevance come from data attributes when present. Listings without an id,
// title or readable price are skipped.
func ParseListingsHTML(r io.Reader, provider string) ([]models.ExternalListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var listings []models.ExternalListing
	doc.Find(".listing").Each(func(i int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		title := extractText(s, ".listing-title")
		if id == "" || title == "" {
			log.Printf("Warning: listing %d has no id or title, skipping", i)
			return
		}

		price, ok := parsePrice(extractText(s, ".listing-price"))
		if !ok {
			log.Printf("Warning: listing %s has no readable price, skipping", id)
			return
		}

		l := models.ExternalListing{
			ID:           id,
			Title:        title,
			Price:        price,
			Location:     extractText(s, ".listing-location"),
			Provider:     provider,
			Relevance:    defaultHTMLRelevance,
			PropertyType: extractText(s, ".listing-type"),
			Bedrooms:     extractInt(s, ".listing-bedrooms"),
			Description:  extractText(s, ".listing-description"),
		}
		if p, ok := s.Attr("data-provider"); ok && strings.TrimSpace(p) != "" {
			l.Provider = strings.TrimSpace(p)
		}
		if v, ok := s.Attr("data-relevance"); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
				l.Relevance = f
			}
		}
		listings = append(listings, l)
	})

	return listings, nil
}

func extractText(s *goquery.Selection, selector string) string {
	return strings.Join(strings.Fields(s.Find(selector).First().Text()), " ")
}

func extractInt(s *goquery.Selection, selector string) *int {
	text := extractText(s, selector)
	var n int
	if _, err := fmt.Sscanf(text, "%d", &n); err != nil || n < 0 {
		return nil
	}
	return &n
}

// parsePrice reads "BWP 1,250,000" or "P 350 000" as whole pula. Thebe
// after a decimal point are dropped.
func parsePrice(text string) (int64, bool) {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		} else if r == '.' && digits.Len() > 0 {
			break
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HTMLSource loads a base catalog and merges in the listings found in a
// listings page. Path is a local file or an http(s) URL fetched with Client.
// A missing or unreadable page leaves the base untouched.
type HTMLSource struct {
	Base     catalog.Source
	Path     string
	Provider string
	Client   *http.Client
}

func (s HTMLSource) Name() string { return s.Base.Name() + "+html:" + s.Path }

func (s HTMLSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	c, err := s.Base.Load(ctx)
	if err != nil {
		return nil, err
	}

	body, err := s.open(ctx)
	if err != nil {
		log.Printf("Warning: external listings page unavailable: %v", err)
		return c, nil
	}
	defer body.Close()

	provider := s.Provider
	if provider == "" {
		provider = "Imported Listings"
	}
	listings, err := ParseListingsHTML(body, provider)
	if err != nil {
		log.Printf("Warning: external listings page %s: %v", s.Path, err)
		return c, nil
	}
	logging.Debugf("Imported %d external listings from %s", len(listings), s.Path)
	return c.WithExternal(listings), nil
}

func (s HTMLSource) open(ctx context.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(s.Path, "http://") && !strings.HasPrefix(s.Path, "https://") {
		return os.Open(s.Path)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d", s.Path, resp.StatusCode)
	}
	return resp.Body, nil
}
