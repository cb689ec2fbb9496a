// Package intent classifies free-text queries into retrieval intents.
//
// The classifier is deliberately coarse: keyword counting only, no I/O.
// It only picks a default retrieval target and is never trusted for
// authorization decisions.
package intent

import "strings"

// Intent is a retrieval intent.
type Intent string

const (
	// Diagnose indicates a troubleshooting question.
	Diagnose Intent = "diagnose"
	// Manual indicates a how-to / documentation question.
	Manual Intent = "manual"
	// Parts indicates a parts lookup.
	Parts Intent = "parts"
	// General is the fallback when no signal keywords match.
	General Intent = "general"
)

var diagnoseKeywords = []string{
	"won't", "doesn't", "not working", "broken", "stuck",
	"error", "fault", "issue", "problem", "why",
	"slow", "fast", "noise", "beeping", "flashing",
}

var manualKeywords = []string{
	"how to", "how do", "steps", "procedure", "instructions",
	"program", "configure", "set up", "install", "adjust",
	"manual", "documentation",
}

var partsKeywords = []string{
	"part number", "part #", "p/n", "sku",
	"replacement", "order", "need a", "where to get",
	"compatible", "fits",
}

// Classify scores the query against the keyword lists and picks the
// winning intent. Diagnose wins only when strictly greater than both
// others; otherwise manual beats parts; parts needs at least one hit.
func Classify(query string) Intent {
	q := strings.ToLower(query)

	diagnoseScore := countHits(q, diagnoseKeywords)
	manualScore := countHits(q, manualKeywords)
	partsScore := countHits(q, partsKeywords)

	switch {
	case diagnoseScore > manualScore && diagnoseScore > partsScore:
		return Diagnose
	case manualScore > partsScore:
		return Manual
	case partsScore > 0:
		return Parts
	default:
		return General
	}
}

func countHits(query string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			n++
		}
	}
	return n
}
