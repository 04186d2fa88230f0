package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"raksproperties/models"
)

// AssistantContext describes the business the canned assistant speaks for
type AssistantContext struct {
	Company       string
	Country       string
	Services      []string
	Locations     []string
	PropertyTypes []string
}

var DefaultAssistantContext = AssistantContext{
	Company:       "Raks Properties",
	Country:       "Botswana",
	Services:      []string{"Property Sales", "Location Services", "Property Development", "Affiliates"},
	Locations:     []string{"Francistown", "Gaborone", "Maun"},
	PropertyTypes: []string{"House", "Villa", "Lodge", "Commercial", "Land"},
}

// A reply mentioning any of these counts as on-topic.
var relevanceKeywords = []string{
	"property", "real estate", "house", "villa", "land",
	"botswana", "francistown", "gaborone", "maun",
	"buy", "sell", "rent", "investment", "development",
	"location", "market", "price", "bwp",
}

const (
	confidenceFiltered   = 0.9
	confidenceUnfiltered = 0.5
	confidenceFallback   = 0.8
)

var cannedReplies = []struct {
	keywords []string
	text     string
}{
	{
		[]string{"property", "house"},
		"Based on Raks Properties' portfolio in Botswana, I can help you with property information. We have excellent properties in Francistown, Gaborone, and Maun. Our current listings include modern family homes, luxury villas, and safari lodges. Prices range from BWP 500K to BWP 5M depending on location and property type. Would you like specific information about any particular area or property type?",
	},
	{
		[]string{"location", "market"},
		"Raks Properties operates in three main locations in Botswana: Francistown (average BWP 1.2M, +12% growth), Gaborone (average BWP 2.1M, +8% growth), and Maun (average BWP 1.8M, +15% growth). Each location offers unique opportunities for buyers and investors. Which location interests you most?",
	},
	{
		[]string{"price", "cost"},
		"Property prices with Raks Properties vary by location: Francistown: BWP 500K-2.5M, Gaborone: BWP 800K-5M, Maun: BWP 600K-3M. Prices depend on property type, size, and specific location. We offer competitive pricing and flexible payment options. Would you like a detailed price analysis for a specific area?",
	},
	{
		[]string{"service"},
		"Raks Properties offers comprehensive real estate services: Property Sales (residential & commercial), Location Services (market analysis), Property Development (custom projects), and our Affiliate Program. Each service is designed to meet your specific real estate needs in Botswana. Which service interests you?",
	},
}

const defaultReply = "I'm specialized in helping with real estate matters for Raks Properties in Botswana. I can assist with property searches, market information, pricing, and our services. How can I help you with your real estate needs today?"

const fallbackReply = "I'm here to help with Raks Properties real estate services in Botswana. We specialize in property sales, location services, and development projects across Francistown, Gaborone, and Maun. How can I assist you with your property needs?"

// AssistantService produces the rule-based "AI Direct" replies
type AssistantService struct {
	context AssistantContext
	delay   Delayer
	latency time.Duration
}

func NewAssistantService(ctxInfo AssistantContext, delay Delayer, latency time.Duration) *AssistantService {
	if delay == nil {
		delay = NoDelay{}
	}
	return &AssistantService{context: ctxInfo, delay: delay, latency: latency}
}

// Prompt builds the context prompt that frames message. Replies are not
// derived from it; it is exposed for display and debugging.
func (s *AssistantService) Prompt(message string) string {
	c := s.context
	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI assistant for %s, a real estate company in %s.\n", c.Company, c.Country)
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Company: %s\n", c.Company)
	fmt.Fprintf(&b, "- Location: %s\n", c.Country)
	fmt.Fprintf(&b, "- Services: %s\n", strings.Join(c.Services, ", "))
	fmt.Fprintf(&b, "- Main locations: %s\n", strings.Join(c.Locations, ", "))
	fmt.Fprintf(&b, "- Property types: %s\n\n", strings.Join(c.PropertyTypes, ", "))
	fmt.Fprintf(&b, "Please provide responses that are relevant to real estate in %s and %s services.\n", c.Country, c.Company)
	b.WriteString("If the question is not related to real estate, politely redirect to property-related topics.\n\n")
	fmt.Fprintf(&b, "User question: %s", message)
	return b.String()
}

// Reply answers message with a canned reply. It never fails: if the reply
// cannot be produced the generic company reply is returned instead.
func (s *AssistantService) Reply(ctx context.Context, message string) models.AssistantReply {
	reply, err := s.TryReply(ctx, message)
	if err != nil {
		log.Printf("Warning: assistant reply failed: %v", err)
		return FallbackReply()
	}
	return reply
}

// TryReply is Reply for callers that handle the failure themselves
func (s *AssistantService) TryReply(ctx context.Context, message string) (models.AssistantReply, error) {
	if err := s.delay.Wait(ctx, s.latency); err != nil {
		return models.AssistantReply{}, fmt.Errorf("generate reply: %w", err)
	}

	text := CannedReply(message)
	filtered := IsRelevant(text)
	confidence := confidenceUnfiltered
	if filtered {
		confidence = confidenceFiltered
	}
	return models.AssistantReply{
		Text:       text,
		Filtered:   filtered,
		Source:     models.ReplySourceAssistant,
		Confidence: confidence,
	}, nil
}

// CannedReply picks the reply text for message. Precedence: property/house,
// location/market, price/cost, service, then the default reply.
func CannedReply(message string) string {
	q := NormalizeQuery(message)
	for _, r := range cannedReplies {
		if containsAny(q, r.keywords...) {
			return r.text
		}
	}
	return defaultReply
}

// FallbackReply is returned when the assistant cannot produce an answer
func FallbackReply() models.AssistantReply {
	return models.AssistantReply{
		Text:       fallbackReply,
		Filtered:   true,
		Source:     models.ReplySourceRaksData,
		Confidence: confidenceFallback,
	}
}

// IsRelevant reports whether text mentions any real-estate keyword
func IsRelevant(text string) bool {
	return containsAny(strings.ToLower(text), relevanceKeywords...)
}

// Suggestions offers follow-up questions for query
func Suggestions(query string) []string {
	q := NormalizeQuery(query)
	var out []string

	if containsAny(q, "property", "house") {
		out = append(out, "Show me properties in Francistown", "What types of properties do you have?", "Property prices in Gaborone")
	}
	if strings.Contains(q, "location") {
		out = append(out, "Market trends in Maun", "Best locations for investment", "Location comparison")
	}
	if strings.Contains(q, "price") {
		out = append(out, "Property pricing guide", "Compare prices by location", "Investment opportunities")
	}
	if len(out) == 0 {
		out = append(out, "Browse available properties", "Learn about our services", "Contact our team")
	}
	return out
}
