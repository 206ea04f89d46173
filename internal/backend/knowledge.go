package backend

import (
	"encoding/json"
	"net/http"
	"strings"
)

// FallbackAnswer is returned when no policy matches a query.
const FallbackAnswer = "I don't have specific information about that topic. Please contact our customer support at 1800-COURIER (1800-268-7437) or email support@courier.com for detailed assistance."

type policy struct {
	topic    string
	text     string
	keywords []string
}

// policies are matched in order; the first hit wins.
var policies = []policy{
	{
		topic:    "damaged packages",
		text:     "If your package arrives damaged, we offer full replacement within 48 hours. Photo evidence required for claims over $100. Contact customer service with your tracking number and photos of the damage.",
		keywords: []string{"damage", "broken", "destroyed", "crushed"},
	},
	{
		topic:    "delivery times",
		text:     "Standard delivery: 3-5 business days within India. Express delivery: 1-2 business days. Same-day delivery available in major cities (Mumbai, Delhi, Bangalore, Chennai, Hyderabad). International deliveries take 7-14 business days.",
		keywords: []string{"how long", "delivery time", "when will", "how fast", "speed"},
	},
	{
		topic:    "international shipping",
		text:     "International deliveries take 7-14 business days. Additional customs fees may apply. Prohibited items include batteries, liquids, perishables, and hazardous materials. Maximum package weight is 30kg for international shipments.",
		keywords: []string{"international", "overseas", "abroad", "foreign"},
	},
	{
		topic:    "lost packages",
		text:     "Lost packages are investigated within 24 hours. Full refund or replacement provided after 7-day investigation period. Track your claim through our customer portal or contact support with your tracking number.",
		keywords: []string{"lost", "missing", "can't find", "disappeared"},
	},
	{
		topic:    "shipping costs",
		text:     "Shipping costs depend on weight, distance, and delivery speed. Standard rates start at ₹50 for local delivery, ₹120 for interstate delivery. Express delivery adds 50% to standard rates. Same-day delivery available for ₹200 extra.",
		keywords: []string{"cost", "price", "charges", "fees", "rates", "how much"},
	},
	{
		topic:    "package tracking",
		text:     "You can track your package 24/7 using your tracking number on our website or mobile app. Real-time updates are provided at each checkpoint. SMS notifications are sent for major status changes.",
		keywords: []string{"track", "status", "where is", "location"},
	},
	{
		topic:    "pickup services",
		text:     "Free pickup available for packages over ₹500 value. Schedule pickup online or call customer service. Pickup available Monday-Saturday, 9 AM to 6 PM. Same-day pickup available in major cities.",
		keywords: []string{"pickup", "collection", "collect"},
	},
	{
		topic:    "insurance claims",
		text:     "Package insurance covers up to declared value (maximum ₹50,000). Claims must be filed within 30 days of delivery. Required documents: tracking number, photos of damage, purchase receipts, and insurance claim form.",
		keywords: []string{"insurance", "claim", "compensation"},
	},
	{
		topic:    "return policy",
		text:     "Packages can be returned to sender if undelivered after 3 attempts. Return-to-sender charges apply. Customer can also request package hold at nearest hub for 7 days before return.",
		keywords: []string{"return", "send back"},
	},
	{
		topic:    "prohibited items",
		text:     "Prohibited items include: hazardous materials, flammable liquids, batteries (certain types), perishable food items, live animals, illegal substances, and items over 50kg. Contact support for specific item queries.",
		keywords: []string{"prohibited", "restricted", "not allowed", "banned"},
	},
	{
		topic:    "customer support",
		text:     "Customer support available 24/7. Phone: 1800-COURIER (1800-268-7437). Email: support@courier.com. Live chat available on website and mobile app. Average response time: 2 hours.",
		keywords: []string{"support", "help", "contact", "phone", "email"},
	},
	{
		topic:    "holiday delivery",
		text:     "Limited delivery services during national holidays. Express and same-day services may not be available. Standard delivery may be delayed by 1-2 days during festival seasons. Check holiday schedule on our website.",
		keywords: []string{"holiday", "festival", "christmas", "diwali"},
	},
}

// KnowledgeResult is the knowledge base response.
type KnowledgeResult struct {
	Query        string   `json:"query"`
	RelevantDocs []string `json:"relevant_docs"`
	Category     string   `json:"category"`
	Source       string   `json:"source"`
}

// Lookup finds the policy for query. Topics are matched first, by
// containment in either direction, then keywords. Unmatched queries get
// FallbackAnswer under the "general" category.
func Lookup(query string) KnowledgeResult {
	q := strings.ToLower(query)
	result := KnowledgeResult{
		Query:        query,
		RelevantDocs: []string{FallbackAnswer},
		Category:     "general",
		Source:       "company_policies",
	}

	for _, p := range policies {
		if strings.Contains(q, p.topic) || strings.Contains(p.topic, q) {
			result.RelevantDocs = []string{p.text}
			result.Category = p.topic
			return result
		}
	}
	for _, p := range policies {
		for _, kw := range p.keywords {
			if strings.Contains(q, kw) {
				result.RelevantDocs = []string{p.text}
				result.Category = p.topic
				return result
			}
		}
	}
	return result
}

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Query) == "" {
		writeError(w, http.StatusBadRequest, "Missing query parameter")
		return
	}

	result := Lookup(body.Query)
	s.logger.Info("backend.knowledge", "category", result.Category)
	writeJSON(w, http.StatusOK, result)
}
