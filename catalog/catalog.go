package catalog

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"raksproperties/identity"
	"raksproperties/models"
)

//go:embed default.yaml
var defaultYAML []byte

// Catalog bundles every fixture dataset the engine reads. A Catalog is never
// mutated after it has been built; reloads produce a new value.
type Catalog struct {
	PriceSummary string                   `yaml:"price_summary"`
	Properties   []models.ListingRecord   `yaml:"properties"`
	Locations    []models.LocationRecord  `yaml:"locations"`
	Services     []models.ServiceRecord   `yaml:"services"`
	External     []models.ExternalListing `yaml:"external_listings"`
	MarketTrends []models.MarketTrend     `yaml:"market_trends"`
	Comparative  models.ComparativeData   `yaml:"comparative"`
	Insights     []string                 `yaml:"insights"`
}

// Source loads a catalog from somewhere (embedded data, file, database, bucket)
type Source interface {
	Name() string
	Load(ctx context.Context) (*Catalog, error)
}

// Parse decodes YAML fixture data and validates it
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the fixtures compiled into the binary
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Validate checks the invariants the matcher relies on
func (c *Catalog) Validate() error {
	var errs []error

	if strings.TrimSpace(c.PriceSummary) == "" {
		errs = append(errs, errors.New("price_summary is empty"))
	}

	seen := make(map[string]bool)
	for i, p := range c.Properties {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("properties[%d]: missing id", i))
		} else if seen[p.ID] {
			errs = append(errs, fmt.Errorf("properties[%d]: duplicate id %q", i, p.ID))
		}
		seen[p.ID] = true
		if p.Price < 0 {
			errs = append(errs, fmt.Errorf("properties[%d]: negative price", i))
		}
		if p.Bedrooms != nil && *p.Bedrooms < 0 {
			errs = append(errs, fmt.Errorf("properties[%d]: negative bedrooms", i))
		}
	}

	for i, l := range c.Locations {
		if l.Name == "" {
			errs = append(errs, fmt.Errorf("locations[%d]: missing name", i))
		}
	}

	for i, s := range c.Services {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("services[%d]: missing name", i))
		}
	}

	for i, e := range c.External {
		if e.ID == "" {
			errs = append(errs, fmt.Errorf("external_listings[%d]: missing id", i))
		} else if seen[e.ID] {
			errs = append(errs, fmt.Errorf("external_listings[%d]: duplicate id %q", i, e.ID))
		}
		seen[e.ID] = true
		if e.Relevance < 0 || e.Relevance > 1 {
			errs = append(errs, fmt.Errorf("external_listings[%d]: relevance %.2f out of range", i, e.Relevance))
		}
	}

	return errors.Join(errs...)
}

// Fingerprint returns a short stable hash of the catalog contents, used to
// tell whether a reload actually changed anything.
func (c *Catalog) Fingerprint() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// WithExternal returns a copy of c with extra external listings appended.
// Listings whose ID is already taken by a property or external listing, or
// that describe the same property as an existing listing, are skipped.
func (c *Catalog) WithExternal(extra []models.ExternalListing) *Catalog {
	out := *c
	out.External = make([]models.ExternalListing, 0, len(c.External)+len(extra))
	out.External = append(out.External, c.External...)

	knownIDs := make(map[string]bool, len(c.Properties)+len(c.External))
	knownPrints := make(map[string]bool, len(c.External))
	for _, p := range c.Properties {
		knownIDs[p.ID] = true
	}
	for _, e := range c.External {
		knownIDs[e.ID] = true
		knownPrints[identity.Fingerprint(e)] = true
	}
	for _, e := range extra {
		fp := identity.Fingerprint(e)
		if knownIDs[e.ID] || knownPrints[fp] {
			continue
		}
		knownIDs[e.ID] = true
		knownPrints[fp] = true
		out.External = append(out.External, e)
	}
	return &out
}

// Marshal encodes the catalog back to YAML
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// EmbeddedSource serves the compiled-in fixtures
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Load(ctx context.Context) (*Catalog, error) {
	return Default()
}

// FileSource reads a YAML catalog from disk on every Load
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(ctx context.Context) (*Catalog, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}
