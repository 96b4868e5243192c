package layout

import (
	"regexp"
	"strings"

	"github.com/seoflow/seoflow/pkg/content"
)

// Engine computes insertion offsets for visual elements inside HTML content.
//
// The only implementation in this package matches headings textually with
// regular expressions. That is a deliberate choice: content is always
// agent-generated, well-formed HTML, so full DOM construction buys nothing.
// The interface exists so a stricter parser can be swapped in if content
// ever comes from a less trustworthy source.
type Engine interface {
	// FindPosition returns the offset in htmlContent where an element of the
	// given kind should be inserted, following the natural-language placement
	// instruction. It always returns a valid offset in [0, len(htmlContent)].
	FindPosition(htmlContent, placement string, kind content.VisualType) int
}

// TextEngine is the regex-based Engine implementation.
type TextEngine struct{}

// NewTextEngine returns a ready-to-use text matching engine.
func NewTextEngine() *TextEngine {
	return &TextEngine{}
}

var _ Engine = (*TextEngine)(nil)

var (
	h1CloseRE     = regexp.MustCompile(`(?i)</h1>`)
	h2TagRE       = regexp.MustCompile(`(?is)<h2[^>]*>.*?</h2>`)
	h3TagRE       = regexp.MustCompile(`(?is)<h3[^>]*>.*?</h3>`)
	nextHeadingRE = regexp.MustCompile(`(?i)<h[2-4]`)

	// headingRefRE extracts the referenced heading text from instructions
	// like "after H2: How to Cook" or "within section: Brewing Methods".
	headingRefRE = regexp.MustCompile(`(?i)(?:h\d+|section)[:\s]+(.+?)(?:,|\.|$)`)

	// levelRefRE extracts a bare heading level like "h2" from an instruction.
	levelRefRE = regexp.MustCompile(`h(\d)`)
)

// FindPosition implements Engine. Placement rules are tried in priority
// order, first match wins:
//
//  1. Infographics always go early: after the first H2 following the H1,
//     after the H1 if there is no H2, or at the top of the document.
//  2. "beginning"/"start" places right after the closing H1.
//  3. "after <heading>" matches the referenced heading text in H2-H4 tags,
//     falling back to shorter word prefixes, then to heuristics.
//  4. "before <heading>" places at the start of the matched heading tag.
//  5. "within <heading>" places 70% into the heading's section.
//  6. Otherwise a kind-specific default keeps elements away from the
//     very start and very end of the document.
func (e *TextEngine) FindPosition(htmlContent, placement string, kind content.VisualType) int {
	lower := strings.ToLower(placement)

	if kind == content.VisualInfographic {
		return infographicPosition(htmlContent)
	}

	if strings.Contains(lower, "beginning") || strings.Contains(lower, "start") {
		if loc := h1CloseRE.FindStringIndex(htmlContent); loc != nil {
			return loc[1]
		}
		return 0
	}

	if strings.Contains(lower, "after") {
		if pos, ok := afterPosition(htmlContent, placement, lower, kind); ok {
			return pos
		}
	}

	if strings.Contains(lower, "before") {
		if pos, ok := beforePosition(htmlContent, placement); ok {
			return pos
		}
	}

	if strings.Contains(lower, "within") {
		if pos, ok := withinPosition(htmlContent, placement); ok {
			return pos
		}
	}

	return defaultPosition(htmlContent, kind)
}

// infographicPosition places infographics in the first or second fold,
// regardless of the placement instruction.
func infographicPosition(htmlContent string) int {
	h1 := h1CloseRE.FindStringIndex(htmlContent)
	if h1 == nil {
		return 0
	}
	if h2 := h2TagRE.FindStringIndex(htmlContent[h1[1]:]); h2 != nil {
		return h1[1] + h2[1]
	}
	return h1[1]
}

// afterPosition resolves "after ..." instructions. It tries, in order:
// exact heading-text match, progressively shorter word-prefix matches,
// the "describing"/"each" subsection heuristic, and finally an explicit
// heading level named in the instruction.
func afterPosition(htmlContent, placement, lower string, kind content.VisualType) (int, bool) {
	if text := headingRef(placement); text != "" {
		if loc := matchHeading(htmlContent, text); loc != nil {
			return loc[1], true
		}

		// Progressively shorter prefixes of the referenced text
		words := strings.Fields(text)
		for n := len(words) - 1; n > 0; n-- {
			partial := strings.Join(words[:n], " ")
			if loc := matchHeading(htmlContent, partial); loc != nil {
				return loc[1], true
			}
		}
	}

	// Descriptive instructions like "after describing each breed" usually
	// refer to a run of subsections; place after the first H3.
	if strings.Contains(lower, "describing") || strings.Contains(lower, "each") {
		if loc := h3TagRE.FindStringIndex(htmlContent); loc != nil {
			return loc[1], true
		}
	}

	// Explicit level, e.g. "after an H2". Last heading of that level wins,
	// except for images where the first is more contextually relevant.
	if m := levelRefRE.FindStringSubmatch(lower); m != nil {
		re := regexp.MustCompile(`(?is)<h` + m[1] + `[^>]*>.*?</h` + m[1] + `>`)
		locs := re.FindAllStringIndex(htmlContent, -1)
		if len(locs) > 0 {
			if kind == content.VisualImage && len(locs) > 1 {
				return locs[0][1], true
			}
			return locs[len(locs)-1][1], true
		}
	}

	return 0, false
}

// beforePosition resolves "before <heading>" to the start of the matched
// heading tag.
func beforePosition(htmlContent, placement string) (int, bool) {
	text := headingRef(placement)
	if text == "" {
		return 0, false
	}
	if loc := matchHeading(htmlContent, text); loc != nil {
		return loc[0], true
	}
	return 0, false
}

// withinPosition resolves "within <heading>" to a point 70% through the
// heading's section (its end to the next H2-H4), or 80% of the remaining
// content when the section runs to the end of the document. Both factors
// deliberately avoid the very end of the section.
func withinPosition(htmlContent, placement string) (int, bool) {
	text := headingRef(placement)
	if text == "" {
		return 0, false
	}
	loc := matchHeading(htmlContent, text)
	if loc == nil {
		return 0, false
	}

	sectionStart := loc[1]
	if next := nextHeadingRE.FindStringIndex(htmlContent[sectionStart:]); next != nil {
		sectionEnd := sectionStart + next[0]
		return sectionStart + int(float64(sectionEnd-sectionStart)*0.7), true
	}

	remaining := len(htmlContent) - sectionStart
	return sectionStart + int(float64(remaining)*0.8), true
}

// defaultPosition picks a fallback offset when no instruction pattern
// matched. The fallbacks avoid inserting at offset 0 or the literal end of
// the document, which would look broken.
func defaultPosition(htmlContent string, kind content.VisualType) int {
	switch kind {
	case content.VisualTable:
		return int(float64(len(htmlContent)) * 0.75)
	case content.VisualImage:
		if h1 := h1CloseRE.FindStringIndex(htmlContent); h1 != nil {
			if h2 := h2TagRE.FindStringIndex(htmlContent[h1[1]:]); h2 != nil {
				return h1[1] + h2[1]
			}
		}
		return int(float64(len(htmlContent)) * 0.5)
	default:
		return int(float64(len(htmlContent)) * 0.6)
	}
}

// headingRef extracts the heading text referenced by a placement
// instruction, e.g. "How to Cook" from "after H2: How to Cook".
func headingRef(placement string) string {
	m := headingRefRE.FindStringSubmatch(placement)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// matchHeading returns the location of the first H2-H4 tag whose body
// contains text, or nil. Matching is case-insensitive and tolerates
// attributes in the opening tag.
func matchHeading(htmlContent, text string) []int {
	re := regexp.MustCompile(`(?is)<h[2-4][^>]*>.*?` + regexp.QuoteMeta(text) + `.*?</h[2-4]>`)
	return re.FindStringIndex(htmlContent)
}
