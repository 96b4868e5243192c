package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/integrations/openrouter"
	"github.com/seoflow/seoflow/pkg/layout"
)

// MediaClient generates images and infographics from prompts. It is
// satisfied by *openrouter.ImageClient.
type MediaClient interface {
	Generate(ctx context.Context, model, prompt string) (*openrouter.ImageResult, error)
	GenerateInfographic(ctx context.Context, model, prompt string) (*openrouter.ImageResult, error)
}

const tableSystemPrompt = "You are an expert at creating well-structured HTML tables. Generate clean, accessible, and properly formatted HTML table code."

const tablePromptFormat = `Create a beautifully styled HTML table based on this detailed prompt:

%s

Requirements:
1. Generate valid, well-structured HTML table code with proper semantic structure
2. Include proper table headers (<thead> and <th>)
3. Ensure accessibility with proper scope attributes on headers
4. Include a <style> block with comprehensive CSS styling that includes:
   - Proper padding: 12px 16px for cells (td, th)
   - Clean borders: 1px solid #e1e5e9 for all borders
   - Alternating row shading: #f8f9fa for even rows, #ffffff for odd rows
   - Header styling: background color #667eea, white text, bold font
   - Hover effects: #f0f4ff background on row hover
   - Border radius: 8px on the table container
   - Box shadow: subtle shadow for depth
   - Responsive design: table should scroll horizontally on mobile
5. Wrap the table in a <div class="table-responsive"> container
6. Include a caption if appropriate
7. Make the table visually appealing with modern, professional styling

Return a JSON object with this structure:
{
    "html": "string (complete HTML code including <style> block, <div class='table-responsive'>, <table>, and all content)",
    "caption": "string (optional table caption)"
}

The HTML should include:
- A <style> block with all CSS rules
- A <div class="table-responsive"> wrapper
- A properly structured <table> with <thead>, <tbody>, <th>, <td> elements
- All styling should be inline in the style block, not external

Return ONLY valid JSON, no other text.`

// defaultTableStyle is prepended to generated tables that arrive without
// their own <style> block.
const defaultTableStyle = `
<style>
.table-responsive {
    overflow-x: auto;
    margin: 20px 0;
    border-radius: 8px;
    box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
}
.content-table {
    width: 100%;
    border-collapse: collapse;
    background: white;
    border-radius: 8px;
    overflow: hidden;
}
.content-table thead {
    background: #667eea;
    color: white;
}
.content-table th {
    padding: 12px 16px;
    text-align: left;
    font-weight: 600;
    font-size: 14px;
    border-bottom: 2px solid #5568d3;
}
.content-table tbody tr {
    border-bottom: 1px solid #e1e5e9;
    transition: background-color 0.2s ease;
}
.content-table tbody tr:nth-child(even) {
    background-color: #f8f9fa;
}
.content-table tbody tr:nth-child(odd) {
    background-color: #ffffff;
}
.content-table tbody tr:hover {
    background-color: #f0f4ff;
}
.content-table td {
    padding: 12px 16px;
    font-size: 14px;
    color: #333;
    border-right: 1px solid #e1e5e9;
}
.content-table td:last-child,
.content-table th:last-child {
    border-right: none;
}
.content-table caption {
    padding: 12px;
    font-weight: 600;
    font-size: 16px;
    color: #333;
    text-align: left;
    background: #f8f9fa;
    border-bottom: 2px solid #e1e5e9;
}
@media (max-width: 768px) {
    .content-table {
        font-size: 12px;
    }
    .content-table th,
    .content-table td {
        padding: 8px 12px;
    }
}
</style>
`

// ImageGenerator produces article photos for image requirements. It
// implements layout.Generator; generation failures come back as
// error-status elements rather than errors so the composer can report them
// alongside the successes.
type ImageGenerator struct {
	Client MediaClient
	Model  string
}

// NewImageGenerator returns an ImageGenerator using the given model, or the
// default image model when empty.
func NewImageGenerator(client MediaClient, model string) *ImageGenerator {
	if model == "" {
		model = defaultImageModel
	}
	return &ImageGenerator{Client: client, Model: model}
}

// Generate renders the requirement's prompt into an image element.
func (g *ImageGenerator) Generate(ctx context.Context, req content.VisualRequirement, _ string) (content.VisualElement, error) {
	el, ok := checkRequirement(req, content.VisualImage)
	if !ok {
		return el, nil
	}
	res, err := g.Client.Generate(ctx, g.Model, req.Prompt)
	if err != nil {
		el.Status = content.StatusError
		el.Error = fmt.Sprintf("Image generation failed: %v", err)
		return el, nil
	}
	return mediaSuccess(el, res), nil
}

// InfographicGenerator produces portrait infographics for infographic
// requirements. It implements layout.Generator.
type InfographicGenerator struct {
	Client MediaClient
	Model  string
}

// NewInfographicGenerator returns an InfographicGenerator using the given
// model, or the default infographic model when empty.
func NewInfographicGenerator(client MediaClient, model string) *InfographicGenerator {
	if model == "" {
		model = defaultInfographicModel
	}
	return &InfographicGenerator{Client: client, Model: model}
}

// Generate renders the requirement's prompt into an infographic element.
func (g *InfographicGenerator) Generate(ctx context.Context, req content.VisualRequirement, _ string) (content.VisualElement, error) {
	el, ok := checkRequirement(req, content.VisualInfographic)
	if !ok {
		return el, nil
	}
	res, err := g.Client.GenerateInfographic(ctx, g.Model, req.Prompt)
	if err != nil {
		el.Status = content.StatusError
		el.Error = fmt.Sprintf("Infographic generation failed: %v", err)
		return el, nil
	}
	return mediaSuccess(el, res), nil
}

// TableGenerator produces styled HTML tables for table requirements. It
// implements layout.Generator.
type TableGenerator struct {
	LLM     Completer
	Model   string
	Refresh bool
}

// NewTableGenerator returns a TableGenerator using the given model, or the
// default JSON model when empty.
func NewTableGenerator(llm Completer, model string) *TableGenerator {
	if model == "" {
		model = defaultJSONModel
	}
	return &TableGenerator{LLM: llm, Model: model}
}

// Generate asks the model for table HTML and guarantees the result carries
// the standard styling.
func (g *TableGenerator) Generate(ctx context.Context, req content.VisualRequirement, _ string) (content.VisualElement, error) {
	el, ok := checkRequirement(req, content.VisualTable)
	if !ok {
		return el, nil
	}

	raw, err := g.LLM.CompleteJSON(ctx, g.Model, tableSystemPrompt, fmt.Sprintf(tablePromptFormat, req.Prompt), g.Refresh)
	if err != nil {
		el.Status = content.StatusError
		el.Error = fmt.Sprintf("Table generation failed: %v", err)
		return el, nil
	}

	var reply struct {
		HTML    string `json:"html"`
		Caption string `json:"caption"`
	}
	if err := decodeJSON(raw, &reply); err != nil {
		el.Status = content.StatusError
		el.Error = fmt.Sprintf("Table generation failed: %v", err)
		return el, nil
	}

	el.Status = content.StatusSuccess
	el.HTML = ensureTableStyling(reply.HTML)
	el.Caption = reply.Caption
	return el, nil
}

// NewGenerators wires the standard generator set for the layout composer:
// images and infographics through the media client, tables through the
// completion client.
func NewGenerators(llm Completer, media MediaClient, jsonModel, imageModel, infographicModel string, refresh bool) map[content.VisualType]layout.Generator {
	table := NewTableGenerator(llm, jsonModel)
	table.Refresh = refresh
	return map[content.VisualType]layout.Generator{
		content.VisualImage:       NewImageGenerator(media, imageModel),
		content.VisualInfographic: NewInfographicGenerator(media, infographicModel),
		content.VisualTable:       table,
	}
}

// checkRequirement validates the requirement kind and prompt, returning a
// pre-filled element and whether generation should proceed.
func checkRequirement(req content.VisualRequirement, kind content.VisualType) (content.VisualElement, bool) {
	el := content.VisualElement{Type: kind, Placement: req.Placement, Priority: req.Priority}
	if req.Type != kind {
		el.Status = content.StatusError
		el.Error = fmt.Sprintf("Requirement type is not %q", kind)
		return el, false
	}
	if strings.TrimSpace(req.Prompt) == "" {
		el.Status = content.StatusError
		el.Error = "No prompt provided in requirement"
		return el, false
	}
	return el, true
}

// mediaSuccess copies a media result onto the element.
func mediaSuccess(el content.VisualElement, res *openrouter.ImageResult) content.VisualElement {
	el.Status = content.StatusSuccess
	el.ImageURL = res.URL
	el.AltText = res.AltText
	el.Caption = res.Caption
	el.Description = res.Description
	el.IsPlaceholder = res.Placeholder
	return el
}

// ensureTableStyling guarantees generated table HTML ships with styling:
// tables that already include a <style> block pass through untouched,
// anything else gets the responsive wrapper, the default style block, and
// the content-table class on its first table tag.
func ensureTableStyling(html string) string {
	if html == "" || strings.Contains(strings.ToLower(html), "<style>") {
		return html
	}
	if !strings.Contains(strings.ToLower(html), `<div class="table-responsive">`) {
		html = `<div class="table-responsive">` + html + `</div>`
	}
	html = defaultTableStyle + html
	if !strings.Contains(html, `class="content-table"`) && !strings.Contains(html, `class='content-table'`) {
		html = strings.Replace(html, "<table", `<table class="content-table"`, 1)
	}
	return html
}
