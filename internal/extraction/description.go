package extraction

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

const (
	minPanelChars     = 20
	maxPanelChars     = 300
	maxDescription    = 800
	dedupPrefixChars  = 40
	fragmentDelimiter = " | "
)

// Header keywords that mark an expandable section as description-bearing.
var accordionKeywords = []string{
	"description", "fit", "material", "fabric", "composition",
	"details", "product info", "about", "specifications",
}

// Known description containers, generic patterns first.
var descriptionSelectors = []string{
	"[itemprop='description']",
	".product-description",
	"#product-description",
	".product-details__description",
	".pdp-description",
	".product-single__description",
	"[data-testid='product-description']",
	".description",
}

var noisePhrases = regexp.MustCompile(`(?i)\b(read more|show more|view details|expand|collapse)\b`)

// Fragments that are nothing but an article number or a fabric percentage
// breakdown carry no descriptive value.
var (
	skuOnlyFragment        = regexp.MustCompile(`(?i)^(sku|item|style|art(?:icle)?\.?\s*(?:no|nr|number)?)[.:#]?\s*[A-Za-z0-9/-]+$`)
	percentageOnlyFragment = regexp.MustCompile(`^\d{1,3}%[\s\p{L}\d,%.]*$`)
)

// assembleDescription walks the heuristic sources in a fixed order and folds
// their fragments into one capped text blob.
func assembleDescription(doc *goquery.Document) string {
	var c collector

	if heading := normalizeText(doc.Find("h1").First().Text()); heading != "" {
		c.add(heading)
	}
	for _, fragment := range productJSONLD(doc) {
		c.add(fragment)
	}
	collectAccordionPanels(doc, &c)

	for _, selector := range descriptionSelectors {
		text := normalizeText(doc.Find(selector).First().Text())
		if len(text) > minPanelChars {
			c.add(truncate(text, maxPanelChars))
			break
		}
	}

	if len(c.fragments) == 0 {
		if meta, ok := doc.Find("meta[name='description']").Attr("content"); ok {
			c.add(normalizeText(meta))
		}
	}
	if og, ok := doc.Find("meta[property='og:description']").Attr("content"); ok {
		c.add(normalizeText(og))
	}

	joined := truncate(strings.Join(c.fragments, fragmentDelimiter), maxDescription)
	joined = noisePhrases.ReplaceAllString(joined, "")
	return normalizeText(joined)
}

// collector accumulates fragments with approximate duplicate suppression.
// A fragment whose leading characters already appear in the accumulated
// text is dropped; exact comparison would miss trivially restated copy.
type collector struct {
	fragments []string
	combined  strings.Builder
}

func (c *collector) add(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if len(fragment) < 3 {
		return
	}
	if skuOnlyFragment.MatchString(fragment) || percentageOnlyFragment.MatchString(fragment) {
		return
	}
	prefix := strings.ToLower(truncate(fragment, dedupPrefixChars))
	if strings.Contains(strings.ToLower(c.combined.String()), prefix) {
		return
	}
	c.fragments = append(c.fragments, fragment)
	c.combined.WriteString(fragment)
	c.combined.WriteString(fragmentDelimiter)
}

// productJSONLD scans linked-data script blocks for a product record and
// returns its description, material, and color as labeled fragments.
func productJSONLD(doc *goquery.Document) []string {
	var fragments []string
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
			return true
		}
		if list, ok := payload.([]any); ok && len(list) == 1 {
			payload = list[0]
		}
		record, ok := payload.(map[string]any)
		if !ok || !isProductRecord(record) {
			return true
		}
		if v := stringField(record, "description"); v != "" {
			fragments = append(fragments, truncate(v, maxPanelChars))
		}
		if v := stringField(record, "material"); v != "" {
			fragments = append(fragments, "Material: "+v)
		}
		if v := stringField(record, "color"); v != "" {
			fragments = append(fragments, "Color: "+v)
		}
		return len(fragments) == 0
	})
	return fragments
}

func isProductRecord(record map[string]any) bool {
	switch t := record["@type"].(type) {
	case string:
		return strings.EqualFold(t, "Product")
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && strings.EqualFold(s, "Product") {
				return true
			}
		}
	}
	_, hasDescription := record["description"]
	_, hasOffers := record["offers"]
	return hasDescription && hasOffers
}

func stringField(record map[string]any, key string) string {
	if v, ok := record[key].(string); ok {
		return normalizeText(v)
	}
	return ""
}

// collectAccordionPanels finds disclosure headers whose text matches the
// keyword vocabulary and pulls the first sufficiently long panel each one
// controls.
func collectAccordionPanels(doc *goquery.Document, c *collector) {
	doc.Find("button, summary, [role='button'], h2, h3, h4, .accordion-header, .accordion-title").Each(func(_ int, header *goquery.Selection) {
		label := strings.ToLower(normalizeText(header.Text()))
		if label == "" || len(label) > 60 {
			return
		}
		matched := false
		for _, keyword := range accordionKeywords {
			if strings.Contains(label, keyword) {
				matched = true
				break
			}
		}
		if !matched {
			return
		}
		if panel := panelText(doc, header); panel != "" {
			c.add(panel)
		}
	})
}

// panelText tries the structural heuristics in priority order and returns
// the first panel longer than the minimum, normalized and capped.
func panelText(doc *goquery.Document, header *goquery.Selection) string {
	candidates := []*goquery.Selection{
		header.Next(),
		header.Siblings().FilterFunction(hasContentClass).First(),
	}
	if controls, ok := header.Attr("aria-controls"); ok && controls != "" {
		candidates = append(candidates, doc.Find("#"+controls))
	}
	if container := header.Closest("[class*='accordion']"); container.Length() > 0 {
		candidates = append(candidates, container.Find("[class*='content'], [class*='panel'], [class*='body']").First())
	}
	for _, candidate := range candidates {
		if candidate == nil || candidate.Length() == 0 {
			continue
		}
		text := normalizeText(candidate.Text())
		if len(text) > minPanelChars {
			return truncate(text, maxPanelChars)
		}
	}
	return ""
}

func hasContentClass(_ int, sel *goquery.Selection) bool {
	class, _ := sel.Attr("class")
	class = strings.ToLower(class)
	return strings.Contains(class, "content") ||
		strings.Contains(class, "panel") ||
		strings.Contains(class, "body")
}

// normalizeText collapses whitespace and applies canonical composition so
// visually identical fragments from different sites compare equal.
func normalizeText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	// Do not split a multi-byte rune at the boundary.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return strings.TrimSpace(cut)
}
