package seo

import (
	"regexp"
	"strings"

	"github.com/seoflow/seoflow/pkg/content"
)

const maxFAQs = 10

var (
	// Marker-based Q/A blocks in running text. The colon is required: a
	// whitespace-only separator would let every bare article "a" in the
	// question text pass as an answer marker.
	questionMarkerRE = regexp.MustCompile(`(?i)\b(?:question|q)\s*:\s*`)
	answerMarkerRE   = regexp.MustCompile(`(?i)\b(?:answer|a)\s*:\s*`)

	faqHeadingRE  = regexp.MustCompile(`(?is)<h[34][^>]*>(.+?\?)</h[34]>`)
	headingOpenRE = regexp.MustCompile(`(?i)<h[1-4]`)
)

// ExtractFAQs mines question/answer pairs from article HTML. Two shapes are
// recognized: explicit "Q:"/"A:" blocks in the text, and H3/H4 headings
// phrased as questions paired with the text that follows them, up to the
// next heading. At most ten pairs are returned.
func ExtractFAQs(htmlContent string) []content.FAQ {
	faqs := markerFAQs(content.StripTags(htmlContent))
	faqs = append(faqs, headingFAQs(htmlContent)...)
	if len(faqs) > maxFAQs {
		faqs = faqs[:maxFAQs]
	}
	return faqs
}

func markerFAQs(text string) []content.FAQ {
	qLocs := questionMarkerRE.FindAllStringIndex(text, -1)
	var faqs []content.FAQ
	for i, loc := range qLocs {
		end := len(text)
		if i+1 < len(qLocs) {
			end = qLocs[i+1][0]
		}
		segment := text[loc[1]:end]

		aLoc := answerMarkerRE.FindStringIndex(segment)
		if aLoc == nil {
			continue
		}
		question := strings.TrimSpace(segment[:aLoc[0]])
		answer := strings.TrimSpace(segment[aLoc[1]:])
		if len(question) <= 10 || answer == "" {
			continue
		}
		faqs = append(faqs, content.FAQ{
			Question: content.Clamp(question, 200),
			Answer:   content.Clamp(answer, 500),
		})
	}
	return faqs
}

func headingFAQs(htmlContent string) []content.FAQ {
	var faqs []content.FAQ
	for _, m := range faqHeadingRE.FindAllStringSubmatchIndex(htmlContent, -1) {
		question := content.StripTags(htmlContent[m[2]:m[3]])

		rest := htmlContent[m[1]:]
		if next := headingOpenRE.FindStringIndex(rest); next != nil {
			rest = rest[:next[0]]
		}
		answer := content.StripTags(rest)
		if len(answer) <= 20 {
			continue
		}
		faqs = append(faqs, content.FAQ{
			Question: question,
			Answer:   content.Clamp(answer, 500),
		})
	}
	return faqs
}
