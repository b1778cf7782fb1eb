// Package answer renders ranked evidence into the final response text.
// Which renderer runs depends on where the evidence came from: an uploaded
// document, scraped web sources, or the stored knowledge base.
package answer

import (
	"fmt"
	"strings"

	"github.com/policy-agent/backend/internal/conditions"
	"github.com/policy-agent/backend/internal/nlp"
	"github.com/policy-agent/backend/internal/rank"
	"github.com/policy-agent/backend/internal/scraper"
	"github.com/policy-agent/backend/internal/taxonomy"
)

const (
	fileBucketCap  = 5
	fallbackCap    = 10
	fileHeader     = "\U0001F4C4 **Information from uploaded file about %s:**\n\n"
	webHeader      = "\U0001F4CE **Information from websites about %s:**\n\n"
	kbHeader       = "**Here's what I found about %s (organized):**\n\n"
	notFoundFormat = "No specific information found about %s for %s."
)

var sourceDivider = strings.Repeat("─", 50)

// fileBucketOrder is the rendering order for document answers. The web
// renderer appends the general bucket at the end.
var fileBucketOrder = []conditions.Bucket{
	conditions.Requirements,
	conditions.Procedures,
	conditions.Restrictions,
	conditions.Timeframes,
	conditions.Fees,
}

var webBucketOrder = append(fileBucketOrder[:5:5], conditions.General)

// RenderFile builds the answer for an uploaded document. Buckets render in
// a fixed order with at most five items each; when every bucket is empty
// the raw ranked sentences appear under a generic heading instead.
func RenderFile(category taxonomy.Category, buckets map[conditions.Bucket][]string, ranked []rank.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, fileHeader, category)

	for _, bucket := range fileBucketOrder {
		items := buckets[bucket]
		if len(items) == 0 {
			continue
		}
		if len(items) > fileBucketCap {
			items = items[:fileBucketCap]
		}
		writeNumbered(&b, bucket.Label(), items)
	}

	// The general bucket is never rendered here, but finding conditions at
	// all still counts: the fallback only covers documents where extraction
	// came up empty.
	found := false
	for _, items := range buckets {
		if len(items) > 0 {
			found = true
			break
		}
	}

	if !found && len(ranked) > 0 {
		b.WriteString("**Key Information:**\n")
		for i, item := range ranked {
			if i == fallbackCap {
				break
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, item.Sentence)
		}
	}
	return b.String()
}

// RenderWeb builds the answer from scraped sources. Each successful source
// gets its own block; failed sources are omitted here and only surface in
// the response metadata.
func RenderWeb(category taxonomy.Category, sources []scraper.SourceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, webHeader, category)

	for _, src := range sources {
		if !src.Succeeded() {
			continue
		}
		fmt.Fprintf(&b, "**From: %s**\n", src.Title)
		fmt.Fprintf(&b, "**URL:** %s\n\n", src.URL)
		for _, bucket := range webBucketOrder {
			items := src.Conditions[bucket]
			if len(items) == 0 {
				continue
			}
			writeNumbered(&b, bucket.Label(), items)
		}
		b.WriteString(sourceDivider + "\n\n")
	}
	return b.String()
}

// displayGroups are the knowledge-base presentation groups, checked in
// order. They are distinct from the condition buckets.
var displayGroups = []struct {
	name     string
	keywords []string
}{
	{"Refundability", []string{"refundable", "refund"}},
	{"Processing", []string{"process", "time", "day"}},
	{"Requirements", []string{"require", "condition", "eligible"}},
}

// RenderKnowledgeBase builds the default answer from stored evidence.
// Sentences are deduplicated and re-checked against the boilerplate filter
// before grouping.
func RenderKnowledgeBase(question string, category taxonomy.Category, items []rank.Item) string {
	if len(items) == 0 {
		return fmt.Sprintf(notFoundFormat, strings.ToLower(question), category)
	}

	cleaned := dedupAndClean(items)
	if len(cleaned) == 0 {
		return fmt.Sprintf(notFoundFormat, strings.ToLower(question), category)
	}

	grouped := make(map[string][]string)
	order := make([]string, 0, len(displayGroups)+1)
	for _, g := range displayGroups {
		order = append(order, g.name)
	}
	order = append(order, "Other")

	for _, s := range cleaned {
		name := displayGroup(s)
		grouped[name] = append(grouped[name], s)
	}

	var b strings.Builder
	fmt.Fprintf(&b, kbHeader, category)
	for _, name := range order {
		if len(grouped[name]) == 0 {
			continue
		}
		writeNumbered(&b, name, grouped[name])
	}
	return strings.TrimSpace(b.String())
}

func displayGroup(sentence string) string {
	lower := strings.ToLower(sentence)
	for _, g := range displayGroups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return g.name
			}
		}
	}
	return "Other"
}

func dedupAndClean(items []rank.Item) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		s := strings.TrimSpace(item.Sentence)
		if s == "" || nlp.IsBoilerplateHeader(s) || len(strings.Fields(s)) < 4 {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func writeNumbered(b *strings.Builder, heading string, items []string) {
	fmt.Fprintf(b, "**%s:**\n", heading)
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
	b.WriteString("\n")
}
