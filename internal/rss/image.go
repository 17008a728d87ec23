package rss

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/newsdigest/internal/normalize"
)

const placeholderBase = "/placeholder.svg?height=400&width=600&text="

var placeholderLabels = map[string]string{
	"technology":    "Technology+News",
	"business":      "Business+News",
	"sports":        "Sports+News",
	"entertainment": "Entertainment+News",
	"politics":      "Politics+News",
	"health":        "Health+News",
	"education":     "Education+News",
	"lifestyle":     "Lifestyle+News",
	"auto":          "Auto+News",
	"india":         "India+News",
	"world":         "World+News",
	"viral":         "Viral+News",
	"explainers":    "Explainer",
}

// PlaceholderImage returns the deterministic image URL for a category.
func PlaceholderImage(category string) string {
	if label, ok := placeholderLabels[category]; ok {
		return placeholderBase + label
	}
	return placeholderBase + "News+Article"
}

var (
	imageExtRe   = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|bmp)(\?.*)?$`)
	enclosureRe  = regexp.MustCompile(`(?is)<enclosure\b[^>]*>`)
	mediaRe      = regexp.MustCompile(`(?is)<media:content\b[^>]*>`)
	thumbnailRe  = regexp.MustCompile(`(?is)<media:thumbnail\b[^>]*>`)
	imgTagRe     = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	bareImageRe  = regexp.MustCompile(`(?i)https?://[^\s"'<>]+?\.(?:jpg|jpeg|png|gif|webp|bmp)(?:\?[^\s"'<>]*)?`)
	typeAttrRe   = regexp.MustCompile(`(?i)\btype\s*=\s*["']([^"']*)["']`)
	urlAttrRe    = regexp.MustCompile(`(?i)\burl\s*=\s*["']([^"']+)["']`)
	srcAttrRe    = regexp.MustCompile(`(?i)\bsrc\s*=\s*["']([^"']+)["']`)
	rejectSchema = []string{"javascript:", "data:"}
)

// IsValidImageURL accepts absolute http(s) URLs ending in a known image
// extension, optionally followed by a query string.
func IsValidImageURL(u string) bool {
	u = strings.TrimSpace(u)
	if !strings.HasPrefix(u, "http") {
		return false
	}
	lower := strings.ToLower(u)
	for _, s := range rejectSchema {
		if strings.Contains(lower, s) {
			return false
		}
	}
	return imageExtRe.MatchString(u)
}

// imageStep yields candidate URLs from one kind of image markup. Steps run in
// precedence order and extraction stops at the first candidate that validates.
type imageStep func(fragment string, ex FieldExtractor) []string

var imageSteps = []imageStep{
	enclosureImages,
	attrImages(mediaRe, urlAttrRe),
	attrImages(thumbnailRe, urlAttrRe),
	attrImages(imgTagRe, srcAttrRe),
	embeddedImages("content:encoded"),
	embeddedImages("description"),
	bareImages,
}

// ExtractImage returns the first valid image URL in the fragment, or the
// placeholder for category when none validates.
func ExtractImage(fragment, category string, ex FieldExtractor) (img string) {
	defer func() {
		if r := recover(); r != nil {
			img = PlaceholderImage(category)
		}
	}()

	for _, step := range imageSteps {
		for _, c := range step(fragment, ex) {
			c = strings.TrimSpace(normalize.DecodeEntities(c))
			if IsValidImageURL(c) {
				return c
			}
		}
	}
	return PlaceholderImage(category)
}

func enclosureImages(fragment string, _ FieldExtractor) []string {
	var out []string
	for _, tag := range enclosureRe.FindAllString(fragment, -1) {
		t := typeAttrRe.FindStringSubmatch(tag)
		if t == nil || !strings.HasPrefix(strings.ToLower(t[1]), "image") {
			continue
		}
		if u := urlAttrRe.FindStringSubmatch(tag); u != nil {
			out = append(out, u[1])
		}
	}
	return out
}

func attrImages(tagRe, attrRe *regexp.Regexp) imageStep {
	return func(fragment string, _ FieldExtractor) []string {
		var out []string
		for _, tag := range tagRe.FindAllString(fragment, -1) {
			if a := attrRe.FindStringSubmatch(tag); a != nil {
				out = append(out, a[1])
			}
		}
		return out
	}
}

// embeddedImages looks for <img> inside a field whose body is HTML, either
// wrapped in CDATA or entity-escaped.
func embeddedImages(field string) imageStep {
	return func(fragment string, ex FieldExtractor) []string {
		body, ok := ex.Extract(fragment, field)
		if !ok {
			return nil
		}
		return htmlImages(normalize.DecodeEntities(body))
	}
}

// htmlImages returns the src of every <img> in an HTML body.
func htmlImages(body string) []string {
	if !strings.Contains(strings.ToLower(body), "<img") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			out = append(out, src)
		}
	})
	return out
}

func bareImages(fragment string, _ FieldExtractor) []string {
	return bareImageRe.FindAllString(fragment, -1)
}
