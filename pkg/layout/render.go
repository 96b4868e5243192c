package layout

import (
	"html"
	"regexp"
	"strings"

	"github.com/seoflow/seoflow/pkg/content"
)

var tableOpenRE = regexp.MustCompile(`(?i)<table[^>]*>`)

// insertElement renders el and splices it into htmlContent at the offset
// chosen by engine. Elements that render to nothing (no media URL, no
// placeholder description, empty table markup) leave the content unchanged.
func insertElement(htmlContent string, el content.VisualElement, engine Engine) string {
	var fragment string
	switch el.Type {
	case content.VisualImage:
		fragment = renderFigure(el, "content-image", "img-responsive", "Image Placeholder")
	case content.VisualInfographic:
		fragment = renderFigure(el, "content-infographic", "img-responsive infographic", "Infographic Placeholder")
	case content.VisualTable:
		fragment = renderTable(el)
	}
	if fragment == "" {
		return htmlContent
	}

	pos := engine.FindPosition(htmlContent, el.Placement, el.Type)
	if pos < 0 {
		pos = 0
	}
	if pos > len(htmlContent) {
		pos = len(htmlContent)
	}
	return htmlContent[:pos] + fragment + htmlContent[pos:]
}

// renderFigure builds the <figure> markup for an image or infographic.
// When no media URL was produced, a placeholder block carrying the textual
// description is rendered instead so the element degrades visibly rather
// than vanishing.
func renderFigure(el content.VisualElement, figureClass, imgClass, placeholderLabel string) string {
	if el.ImageURL == "" {
		if el.IsPlaceholder && el.Description != "" {
			return renderPlaceholder(el.Description, figureClass, placeholderLabel)
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(`<figure class="` + figureClass + "\">\n")
	b.WriteString(`    <img src="` + el.ImageURL + `" alt="` + html.EscapeString(el.AltText) + `" class="` + imgClass + "\" />\n")
	if el.Caption != "" {
		b.WriteString("    <figcaption>" + html.EscapeString(el.Caption) + "</figcaption>\n")
	}
	b.WriteString("</figure>\n\n")
	return b.String()
}

func renderPlaceholder(description, figureClass, label string) string {
	var b strings.Builder
	b.WriteString(`<figure class="` + figureClass + ` media-placeholder" style="border: 2px dashed #ccc; padding: 20px; text-align: center;">` + "\n")
	b.WriteString("    <p>" + description + "</p>\n")
	b.WriteString(`    <p class="placeholder-label">` + label + "</p>\n")
	b.WriteString("</figure>\n\n")
	return b.String()
}

// renderTable passes the pre-rendered table markup through, injecting a
// <caption> right after the opening tag when one was provided and the
// markup does not already carry one.
func renderTable(el content.VisualElement) string {
	tableHTML := el.HTML
	if strings.TrimSpace(tableHTML) == "" {
		return ""
	}
	if el.Caption != "" && !strings.Contains(tableHTML, "<caption>") {
		if loc := tableOpenRE.FindStringIndex(tableHTML); loc != nil {
			tableHTML = tableHTML[:loc[1]] + "<caption>" + el.Caption + "</caption>" + tableHTML[loc[1]:]
		}
	}
	return tableHTML + "\n\n"
}
