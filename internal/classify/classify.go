// Package classify assigns categories and suggested tags to transactions
// based on merchant names and free-text notes.
package classify

import "strings"

// rule maps a category to the keywords that select it. Rules are evaluated
// in order and the first match wins, so more specific categories sit first.
type rule struct {
	Category string
	Keywords []string
}

var rules = []rule{
	{"Food & Dining", []string{"zomato", "swiggy", "restaurant", "cafe", "dominos", "pizza", "mcdonald", "kfc", "starbucks", "dunkin", "food"}},
	{"Groceries", []string{"bigbasket", "blinkit", "zepto", "grofers", "dmart", "grocery", "supermarket", "mart"}},
	{"Transport", []string{"uber", "ola", "rapido", "metro", "fuel", "petrol", "diesel", "parking", "toll", "irctc"}},
	{"Shopping", []string{"amazon", "flipkart", "myntra", "ajio", "nykaa", "mall", "store"}},
	{"Entertainment", []string{"netflix", "spotify", "hotstar", "prime", "bookmyshow", "movie", "cinema", "game"}},
	{"Utilities", []string{"electricity", "water", "gas", "broadband", "internet", "mobile", "recharge", "airtel", "jio", "vodafone", "bill"}},
	{"Health", []string{"pharmacy", "hospital", "clinic", "doctor", "apollo", "medplus", "gym", "fitness"}},
	{"Rent", []string{"rent", "landlord", "lease"}},
	{"Travel", []string{"makemytrip", "goibibo", "airbnb", "oyo", "hotel", "flight", "airline", "indigo", "vistara"}},
	{"Education", []string{"udemy", "coursera", "school", "college", "tuition", "course", "books"}},
}

// DefaultCategory is assigned when no keyword matches.
const DefaultCategory = "Others"

// Categorize returns the category for a transaction given its merchant and
// notes. Matching is case-insensitive substring search; the earliest rule
// with any matching keyword wins.
func Categorize(merchant, notes string) string {
	haystack := strings.ToLower(merchant + " " + notes)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(haystack, kw) {
				return r.Category
			}
		}
	}
	return DefaultCategory
}

// SuggestTags produces deduplicated tag suggestions for a transaction:
// the lowercased category, a sanitized merchant token, and any matching
// well-known keywords, in insertion order.
func SuggestTags(category, merchant, notes string) []string {
	var tags []string
	seen := make(map[string]bool)

	add := func(t string) {
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		tags = append(tags, t)
	}

	add(strings.ToLower(category))

	if token := sanitizeToken(merchant); token != "" {
		add(token)
	}

	haystack := strings.ToLower(merchant + " " + notes)
	for _, kw := range []string{"subscription", "emi", "refund", "cashback", "salary", "bonus", "insurance", "investment"} {
		if strings.Contains(haystack, kw) {
			add(kw)
		}
	}

	return tags
}

// sanitizeToken lowercases a merchant name and strips everything but
// letters and digits, keeping at most the first word.
func sanitizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
