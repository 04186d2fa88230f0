package services

import (
	"fmt"
	"log"
	"math"
	"strings"

	"raksproperties/catalog"
	"raksproperties/models"
)

// Branch is one of the fixed response templates
type Branch string

const (
	BranchPrice    Branch = "price"
	BranchLocation Branch = "location"
	BranchProperty Branch = "property"
	BranchService  Branch = "service"
	BranchGeneral  Branch = "general"
)

const DefaultContactPhone = "+267 71 323 746"

// ApologyText prefixes every response produced after a failure
const ApologyText = "I encountered an issue with AI integration. Let me search our internal database for you."

const externalSectionLabel = "External Market Opportunities:"

const analysisLabel = "AI Analysis (Raks Filtered):"

// Checked in order; the first branch with a keyword hit wins.
var branchKeywords = []struct {
	branch   Branch
	keywords []string
}{
	{BranchPrice, []string{"price", "cost"}},
	{BranchLocation, []string{"location", "area"}},
	{BranchProperty, []string{"property", "house"}},
	{BranchService, []string{"service", "help"}},
}

type branchTemplate struct {
	header  string
	closing string
	keep    []models.Category // nil keeps every category
	bullet  func(r models.SearchResult) string
}

func contentBullet(r models.SearchResult) string { return "• " + r.Content }

var templates = map[Branch]branchTemplate{
	BranchPrice: {
		header:  "Based on current market data from our Property Sales and Location Services pages, here's what I found about pricing in Botswana:",
		closing: "For specific property valuations, I recommend scheduling an appointment with our team. We also offer market analysis reports through our Location Services.",
		keep:    []models.Category{models.CategoryPrice, models.CategoryProperty},
		bullet:  contentBullet,
	},
	BranchLocation: {
		header:  "Here's comprehensive location information from our database:",
		closing: "Our Location Services page provides detailed market insights for all major cities in Botswana. Each location offers unique investment opportunities based on economic growth and development plans.",
		keep:    []models.Category{models.CategoryLocation, models.CategoryProperty},
		bullet:  contentBullet,
	},
	BranchProperty: {
		header:  "I found several relevant properties in our Property Sales database:",
		closing: "These properties are available for immediate viewing. Our Property Development team can also create custom solutions if you don't find exactly what you're looking for.",
		keep:    []models.Category{models.CategoryProperty},
		bullet:  contentBullet,
	},
	BranchService: {
		header:  "Raks Properties offers comprehensive real estate services:",
		closing: "We also have an Affiliate Program where you can earn commissions by referring clients.",
		keep:    []models.Category{models.CategoryService},
		bullet: func(r models.SearchResult) string {
			return "• " + r.Title + ": " + r.Content
		},
	},
	BranchGeneral: {
		header:  "Based on information from multiple pages of our website, here's what I found:",
		closing: "For more detailed information, you can visit the specific pages mentioned above or contact our team directly.",
		bullet: func(r models.SearchResult) string {
			return "• From " + r.Source + ": " + r.Content
		},
	},
}

// BranchFor selects the template for query by keyword precedence:
// price, location, property, service, then general.
func BranchFor(query string) Branch {
	q := NormalizeQuery(query)
	for _, bk := range branchKeywords {
		if containsAny(q, bk.keywords...) {
			return bk.branch
		}
	}
	return BranchGeneral
}

// Composer renders ranked results as prose. It holds no per-request state;
// identical inputs always produce identical output.
type Composer struct {
	Phone       string
	TopResults  int
	TopExternal int
}

func NewComposer(phone string) *Composer {
	if phone == "" {
		phone = DefaultContactPhone
	}
	return &Composer{Phone: phone, TopResults: 3, TopExternal: 2}
}

// ContactLine is the call to action closing every response
func (c *Composer) ContactLine() string {
	return fmt.Sprintf("Contact Raks Properties at %s for personalized assistance.", c.Phone)
}

// Compose renders results for query. external, when non-empty, is added
// as its own section ahead of the contact line.
func (c *Composer) Compose(query string, results, external []models.SearchResult) string {
	return c.render(query, results, external, nil)
}

// ComposeChat is Compose for an X-Chart turn: the assistant's analysis leads
// the response and its source quality line precedes the contact line.
func (c *Composer) ComposeChat(query string, results, external []models.SearchResult, reply models.AssistantReply) string {
	return c.render(query, results, external, &reply)
}

func (c *Composer) render(query string, results, external []models.SearchResult, reply *models.AssistantReply) string {
	tmpl := templates[BranchFor(query)]

	var bullets []string
	for _, r := range head(results, c.TopResults) {
		if tmpl.keep != nil && !hasCategory(tmpl.keep, r.Category()) {
			continue
		}
		bullets = append(bullets, tmpl.bullet(r))
	}

	var sections []string
	if reply != nil {
		sections = append(sections, analysisLabel+"\n"+reply.Text)
	}
	sections = append(sections, tmpl.header)
	if len(bullets) > 0 {
		sections = append(sections, strings.Join(bullets, "\n"))
	}
	sections = append(sections, tmpl.closing)

	if len(external) > 0 {
		lines := []string{externalSectionLabel}
		for i, r := range head(external, c.TopExternal) {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, externalLine(r)))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if reply != nil {
		sections = append(sections, SourceQuality(*reply))
	}
	sections = append(sections, c.ContactLine())
	return strings.Join(sections, "\n\n")
}

// SourceQuality describes where a reply came from and how much to trust it,
// e.g. "Source Quality: AI Assistant (90% confidence, Filtered)".
func SourceQuality(reply models.AssistantReply) string {
	filtered := "Unfiltered"
	if reply.Filtered {
		filtered = "Filtered"
	}
	source := "AI Assistant"
	if reply.Source == models.ReplySourceRaksData {
		source = "Raks Data"
	}
	return fmt.Sprintf("Source Quality: %s (%d%% confidence, %s)", source, int(math.Round(reply.Confidence*100)), filtered)
}

// ComposeSafe is Compose with failures turned into the apology response.
// The second return value reports whether the fallback was used.
func (c *Composer) ComposeSafe(cat *catalog.Catalog, query string, results, external []models.SearchResult) (text string, fallback bool) {
	return c.safe(cat, query, func() string { return c.Compose(query, results, external) })
}

// ComposeChatSafe is ComposeChat with the same failure handling as ComposeSafe
func (c *Composer) ComposeChatSafe(cat *catalog.Catalog, query string, results, external []models.SearchResult, reply models.AssistantReply) (text string, fallback bool) {
	return c.safe(cat, query, func() string { return c.ComposeChat(query, results, external, reply) })
}

func (c *Composer) safe(cat *catalog.Catalog, query string, compose func() string) (text string, fallback bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: compose failed for %q: %v", query, r)
			text, fallback = c.Fallback(cat, query), true
		}
	}()
	return compose(), false
}

// Fallback renders the apology followed by a direct search of the catalog
func (c *Composer) Fallback(cat *catalog.Catalog, query string) string {
	sections := []string{ApologyText}

	var lines []string
	for _, r := range Match(cat, query) {
		lines = append(lines, "• "+r.Title+" - "+r.Content)
	}
	if len(lines) > 0 {
		sections = append(sections, strings.Join(lines, "\n"))
	}

	sections = append(sections, c.ContactLine())
	return strings.Join(sections, "\n\n")
}

func externalLine(r models.SearchResult) string {
	if d, ok := r.Detail.(models.ExternalDetail); ok {
		return fmt.Sprintf("%s - %s (%s)", r.Title, FormatBWP(d.Price), d.Provider)
	}
	return fmt.Sprintf("%s - %s (%s)", r.Title, r.Content, r.Source)
}

func hasCategory(list []models.Category, c models.Category) bool {
	for _, item := range list {
		if item == c {
			return true
		}
	}
	return false
}

func head(results []models.SearchResult, n int) []models.SearchResult {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}
