package extraction

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const minImageDimension = 100

// URL substrings that mark chrome rather than product photography.
// Matching is case-sensitive on purpose; retailer CDNs keep these lowercase.
var nonProductTokens = []string{"logo", "icon", "sprite"}

// Lazy-load attributes checked when src itself is absent.
var lazyAttrs = []string{"data-src", "data-lazy-src", "data-original", "data-image"}

func collectImages(doc *goquery.Document, base *url.URL) []string {
	var (
		ordered []string
		seen    = make(map[string]struct{})
	)
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		raw := bestSourceURL(sel)
		if raw == "" {
			return
		}
		if !passesDimensionFilter(sel) {
			return
		}
		resolved := resolveURL(raw, base)
		if resolved == "" {
			return
		}
		for _, token := range nonProductTokens {
			if strings.Contains(resolved, token) {
				return
			}
		}
		key := stripQuery(resolved)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		ordered = append(ordered, resolved)
	})
	return ordered
}

// bestSourceURL picks the highest-resolution URL an image element offers.
// The last srcset candidate is conventionally the largest, so it wins over
// the plain src; lazy-load data attributes are the fallback of last resort.
func bestSourceURL(sel *goquery.Selection) string {
	if srcset, ok := sel.Attr("srcset"); ok {
		if u := lastSrcsetURL(srcset); u != "" {
			return u
		}
	}
	if src, ok := sel.Attr("src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	for _, attr := range lazyAttrs {
		if v, ok := sel.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if srcset, ok := sel.Attr("data-srcset"); ok {
		return lastSrcsetURL(srcset)
	}
	return ""
}

func lastSrcsetURL(srcset string) string {
	candidates := strings.Split(srcset, ",")
	for i := len(candidates) - 1; i >= 0; i-- {
		fields := strings.Fields(strings.TrimSpace(candidates[i]))
		if len(fields) > 0 && fields[0] != "" {
			return fields[0]
		}
	}
	return ""
}

// passesDimensionFilter drops declared icon-sized images. Elements that do
// not declare a dimension pass; sizing is unknowable without layout.
func passesDimensionFilter(sel *goquery.Selection) bool {
	for _, attr := range []string{"width", "height"} {
		raw, ok := sel.Attr(attr)
		if !ok {
			continue
		}
		value, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), "px"))
		if err != nil {
			continue
		}
		if value < minImageDimension {
			return false
		}
	}
	return true
}

func resolveURL(raw string, base *url.URL) string {
	if strings.HasPrefix(raw, "data:") {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}
