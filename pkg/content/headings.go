package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// headingTagRE matches H1-H4 tags, tolerating attributes inside the opening
// tag and newlines inside the heading body. Content is agent-generated HTML,
// so regex matching is sufficient here.
var headingTagRE = regexp.MustCompile(`(?is)<h([1-4])[^>]*>(.*?)</h[1-4]>`)

// HeadingTag is one H1-H4 occurrence found in rendered HTML content.
type HeadingTag struct {
	Level int
	Text  string
}

// ExtractHeadings returns all H1-H4 headings in content, in document order.
func ExtractHeadings(htmlContent string) []HeadingTag {
	matches := headingTagRE.FindAllStringSubmatch(htmlContent, -1)
	if len(matches) == 0 {
		return nil
	}

	headings := make([]HeadingTag, 0, len(matches))
	for _, m := range matches {
		level, _ := strconv.Atoi(m[1])
		headings = append(headings, HeadingTag{Level: level, Text: m[2]})
	}
	return headings
}

// HeadingsPreserved reports whether edited keeps the exact heading structure
// of original: same number of H1-H4 tags, same levels, same order. Heading
// text is allowed to change (the editor may rephrase headings); only the
// structural skeleton is compared.
func HeadingsPreserved(original, edited string) bool {
	origHeadings := ExtractHeadings(original)
	editHeadings := ExtractHeadings(edited)

	if len(origHeadings) != len(editHeadings) {
		return false
	}

	for i := range origHeadings {
		if origHeadings[i].Level != editHeadings[i].Level {
			return false
		}
	}

	return true
}

// NormalizeHeadingStructure repairs the brief's heading outline so it honors
// the H1 invariant: exactly one H1, first in the outline, titled with the
// brief's recommended title. fallbackTitle is used when the brief has no
// recommended title of its own (typically the joined keyword string).
func (b *Brief) NormalizeHeadingStructure(fallbackTitle string) {
	structure := b.HeadingStructure

	var h1s []Heading
	var rest []Heading
	for _, h := range structure {
		if strings.EqualFold(h.Level, "H1") {
			h1s = append(h1s, h)
		} else {
			rest = append(rest, h)
		}
	}

	switch {
	case len(h1s) == 0:
		title := b.RecommendedTitle
		if title == "" {
			title = titleCase(fallbackTitle)
			b.RecommendedTitle = title
		}
		h1 := Heading{Level: "H1", Title: title, Description: "Main heading for the article"}
		b.HeadingStructure = append([]Heading{h1}, structure...)
	case len(h1s) > 1:
		// Keep the first H1, demote the duplicates by dropping them.
		b.HeadingStructure = append([]Heading{h1s[0]}, rest...)
	default:
		b.HeadingStructure = append([]Heading{h1s[0]}, rest...)
	}

	if b.RecommendedTitle != "" {
		b.HeadingStructure[0].Title = b.RecommendedTitle
		b.HeadingStructure[0].Level = "H1"
	}
	b.H1Count = 1
}

// ValidateHeadingStructure checks the H1 invariant without repairing it:
// exactly one H1, first in the outline, titled with the recommended title.
func (b *Brief) ValidateHeadingStructure() error {
	if len(b.HeadingStructure) == 0 {
		return fmt.Errorf("heading structure is empty")
	}

	h1Count := 0
	for _, h := range b.HeadingStructure {
		if strings.EqualFold(h.Level, "H1") {
			h1Count++
		}
	}
	if h1Count != 1 {
		return fmt.Errorf("heading structure must contain exactly one H1, found %d", h1Count)
	}

	first := b.HeadingStructure[0]
	if !strings.EqualFold(first.Level, "H1") {
		return fmt.Errorf("first heading must be H1, found %s", first.Level)
	}
	if b.RecommendedTitle != "" && first.Title != b.RecommendedTitle {
		return fmt.Errorf("H1 title %q does not match recommended title %q", first.Title, b.RecommendedTitle)
	}

	return nil
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
