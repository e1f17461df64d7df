package extraction_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tryon/internal/extraction"
)

func extract(t *testing.T, html, base string) extraction.Result {
	t.Helper()
	var baseURL *url.URL
	if base != "" {
		parsed, err := url.Parse(base)
		if err != nil {
			t.Fatalf("parse base url: %v", err)
		}
		baseURL = parsed
	}
	result, err := extraction.Extract(strings.NewReader(html), baseURL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return result
}

func TestImagesDedupedByURLWithoutQuery(t *testing.T) {
	result := extract(t, `<html><body>
		<img src="https://cdn.example/dress.jpg?size=small" width="400" height="600">
		<img src="https://cdn.example/dress.jpg?size=large" width="800" height="1200">
	</body></html>`, "")

	if len(result.Images) != 1 {
		t.Fatalf("expected one deduplicated image, got %v", result.Images)
	}
	if result.Images[0] != "https://cdn.example/dress.jpg?size=small" {
		t.Fatalf("first-seen candidate should win, got %q", result.Images[0])
	}
}

func TestImagesSrcsetLastCandidatePreferred(t *testing.T) {
	result := extract(t, `<html><body>
		<img src="/small.jpg" srcset="/w200.jpg 200w, /w800.jpg 800w, /w1600.jpg 1600w" width="400">
	</body></html>`, "https://shop.example/p/1")

	if len(result.Images) != 1 || result.Images[0] != "https://shop.example/w1600.jpg" {
		t.Fatalf("expected last srcset candidate resolved against page, got %v", result.Images)
	}
}

func TestImagesLazyLoadFallback(t *testing.T) {
	result := extract(t, `<html><body>
		<img data-src="https://cdn.example/lazy-dress.jpg" width="500" height="700">
	</body></html>`, "")

	if len(result.Images) != 1 || result.Images[0] != "https://cdn.example/lazy-dress.jpg" {
		t.Fatalf("expected lazy-load attribute fallback, got %v", result.Images)
	}
}

func TestImagesLogoExcludedRegardlessOfSize(t *testing.T) {
	result := extract(t, `<html><body>
		<img src="https://cdn.example/logo-small.png" width="150" height="150">
		<img src="https://cdn.example/dress.jpg" width="150" height="150">
	</body></html>`, "")

	if len(result.Images) != 1 || result.Images[0] != "https://cdn.example/dress.jpg" {
		t.Fatalf("logo URL should be filtered, got %v", result.Images)
	}
}

func TestImagesSmallDimensionsExcluded(t *testing.T) {
	result := extract(t, `<html><body>
		<img src="https://cdn.example/badge.png" width="32" height="32">
		<img src="https://cdn.example/undeclared.jpg">
	</body></html>`, "")

	if len(result.Images) != 1 || result.Images[0] != "https://cdn.example/undeclared.jpg" {
		t.Fatalf("undeclared dimensions pass, small ones do not: %v", result.Images)
	}
}

func TestDescriptionMetaTagOnlyPage(t *testing.T) {
	result := extract(t, `<html><head>
		<meta name="description" content="Relaxed linen shirt in natural white.">
	</head><body><p>nav</p></body></html>`, "")

	if result.Description != "Relaxed linen shirt in natural white." {
		t.Fatalf("expected meta description verbatim, got %q", result.Description)
	}
}

func TestDescriptionMetaSkippedWhenHeadingPresent(t *testing.T) {
	result := extract(t, `<html><head>
		<meta name="description" content="Generic storefront tagline for every page.">
	</head><body><h1>Wool Overcoat</h1></body></html>`, "")

	if result.Description != "Wool Overcoat" {
		t.Fatalf("meta must not be used once another source matched, got %q", result.Description)
	}
}

func TestDescriptionWaterfallOrderAndJSONLD(t *testing.T) {
	result := extract(t, `<html><head>
		<script type="application/ld+json">
		[{"@type":"Product","name":"Coat","description":"Double-breasted overcoat with notch lapels.","material":"Wool blend","color":"Camel"}]
		</script>
	</head><body><h1>Camel Overcoat</h1></body></html>`, "")

	parts := strings.Split(result.Description, " | ")
	if len(parts) != 4 {
		t.Fatalf("expected heading plus three labeled fragments, got %q", result.Description)
	}
	if parts[0] != "Camel Overcoat" {
		t.Fatalf("heading must come first, got %q", parts[0])
	}
	if parts[2] != "Material: Wool blend" || parts[3] != "Color: Camel" {
		t.Fatalf("labeled fragments missing: %q", result.Description)
	}
}

func TestDescriptionAccordionPanel(t *testing.T) {
	result := extract(t, `<html><body>
		<div class="accordion">
			<button aria-controls="panel-fit">Fit and materials</button>
			<div id="panel-fit">Regular fit with a straight hem, cut from organic cotton twill.</div>
		</div>
	</body></html>`, "")

	if !strings.Contains(result.Description, "organic cotton twill") {
		t.Fatalf("accordion panel not collected: %q", result.Description)
	}
}

func TestDescriptionDuplicateFragmentsSuppressed(t *testing.T) {
	result := extract(t, `<html><head>
		<meta property="og:description" content="Silk slip dress with adjustable straps and a bias cut for fluid drape.">
	</head><body>
		<h1>Slip Dress</h1>
		<div class="product-description">Silk slip dress with adjustable straps and a bias cut for fluid drape.</div>
	</body></html>`, "")

	if strings.Count(result.Description, "Silk slip dress") != 1 {
		t.Fatalf("near-duplicate fragment should be dropped: %q", result.Description)
	}
}

func TestDescriptionNoiseStrippedAndCapped(t *testing.T) {
	long := strings.Repeat("Soft brushed fleece with a relaxed drop shoulder. ", 30)
	result := extract(t, `<html><body>
		<h1>Fleece Hoodie</h1>
		<div class="product-description">Read more `+long+`</div>
	</body></html>`, "")

	if strings.Contains(strings.ToLower(result.Description), "read more") {
		t.Fatalf("noise phrase survived: %q", result.Description)
	}
	if len(result.Description) > 800 {
		t.Fatalf("description over cap: %d bytes", len(result.Description))
	}
}

func TestFetchAndExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("user agent not applied: %q", got)
		}
		w.Write([]byte(`<html><body><img src="/dress.jpg" width="500"><h1>Dress</h1></body></html>`))
	}))
	t.Cleanup(srv.Close)

	fetcher := extraction.NewFetcher(srv.Client(), "test-agent", 0)
	result, err := fetcher.FetchAndExtract(context.Background(), srv.URL+"/product")
	if err != nil {
		t.Fatalf("FetchAndExtract: %v", err)
	}
	if len(result.Images) != 1 || !strings.HasSuffix(result.Images[0], "/dress.jpg") {
		t.Fatalf("unexpected images: %v", result.Images)
	}
}

func TestFetchAndExtractNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Nothing but text.</p></body></html>`))
	}))
	t.Cleanup(srv.Close)

	fetcher := extraction.NewFetcher(srv.Client(), "", 0)
	_, err := fetcher.FetchAndExtract(context.Background(), srv.URL)
	if !errors.Is(err, extraction.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestDescriptionDropsSKUAndCompositionOnlyFragments(t *testing.T) {
	result := extract(t, `<html><body>
		<h1>Wool Coat</h1>
		<div class="product-description">SKU: ABC1234567890123456</div>
		<h3>Composition</h3>
		<div>80% wool, 18% polyamide, 2% elastane</div>
	</body></html>`, "")

	if result.Description != "Wool Coat" {
		t.Fatalf("article numbers and bare percentages must be dropped, got %q", result.Description)
	}
}
