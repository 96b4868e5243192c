package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/errors"
	"github.com/seoflow/seoflow/pkg/layout"
)

// presenterPreviewLimit caps how much article text is sent for analysis.
const presenterPreviewLimit = 5000

const presenterSystemPrompt = "You are an expert content manager with deep expertise in content strategy, visual design, and user experience. Analyze content and determine optimal visual elements to enhance reader engagement and understanding."

const presenterPromptFormat = `Analyze the following blog post content and determine what visual elements should be added to enhance the article.

Title: %s

Content:
%s

As an expert content manager, analyze the content and determine what visual elements would enhance the reader experience:

1. **Images**: Use ONLY for photos and pictures
   - Use for: Real photos, product images, location photos, screenshots, actual pictures of things
   - DO NOT use for: Diagrams, charts, flowcharts, text-based visuals, illustrations with text labels, or any visual that requires text annotations
   - Images are cost-effective and should be used for actual photographs and pictures
   - Zero images if the content has no actual photos or pictures to show

2. **Infographics**: Use for diagrams, charts, and visuals with text
   - CRITICAL: Infographics are 5x more expensive than images. Use them EXTREMELY judiciously.
   - MAXIMUM: Only 1 infographic per article, and ONLY if absolutely necessary
   - Use for: Complex multi-step processes that CANNOT be explained with images alone, intricate system architectures that require text labels, or critical data visualizations that MUST have annotations
   - AVOID if: The concept can be explained with images and text descriptions, or if the visual complexity doesn't justify the 5x cost
   - DO NOT use for: Simple photos or pictures (use images instead)
   - When a visual requires text, labels, or annotations, consider if an image with a caption would suffice before choosing an infographic
   - RULE: If you can explain it with images and text, use images. Only use infographics for concepts that are IMPOSSIBLE to convey without a diagram with text labels

3. **Tables**: Determine if tables would improve clarity
   - Consider: comparisons, specifications, data sets, step-by-step instructions, pricing
   - Use when structured data presentation is clearer than paragraphs
   - Zero tables if content doesn't contain tabular data

Guidelines:
- IMAGES = Photos/Pictures only: Use images for actual photographs, product images, location photos, screenshots
- INFOGRAPHICS = Last resort for complex diagrams: Use infographics ONLY when a concept is IMPOSSIBLE to explain without a diagram with text labels
- CRITICAL RULE: Maximum 1 infographic per article. Only use if absolutely necessary and cannot be replaced by images with captions
- Cost consideration: 5 images ≈ 1 infographic in cost. Prefer multiple images over 1 infographic when possible
- AVOID infographics unless: The visual complexity and text requirements make it the ONLY viable option
- Be strategic: Only suggest visual elements that genuinely enhance understanding
- Quality over quantity: Better to have fewer, well-placed visuals than many unnecessary ones
- Each requirement should have a clear purpose
- INFographic constraint: If you suggest an infographic, ensure it's the single most critical visual element that cannot be replaced

Return a JSON object with this structure:
{
    "requirements": [
        {
            "type": "image" | "infographic" | "table",
            "prompt": "Detailed prompt describing what should be created, including specific details, style, purpose, and placement context",
            "placement": "string (e.g., 'after H2: How to Cook', 'beginning of article', 'comparison section')",
            "priority": "high" | "medium" | "low"
        }
    ],
    "analysis_summary": "Brief explanation of why these visual elements were chosen"
}

Return ONLY valid JSON, no other text.`

// Presenter decides which visual elements an article needs. It reads the
// post text, asks the model for typed requirements (images, at most one
// infographic, tables), and attaches them to the post for the layout stage.
type Presenter struct {
	LLM     Completer
	Model   string
	Logger  *log.Logger
	Refresh bool
}

// NewPresenter returns a Presenter with defaults applied for any zero fields.
func NewPresenter(llm Completer, model string, logger *log.Logger) *Presenter {
	if model == "" {
		model = defaultJSONModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Presenter{LLM: llm, Model: model, Logger: logger}
}

// Run analyzes the post and returns it with VisualRequirements and
// VisualSummary populated. The single-infographic rule is enforced before
// the requirements are attached.
func (p *Presenter) Run(ctx context.Context, post content.BlogPost) (content.BlogPost, error) {
	if strings.TrimSpace(post.Content) == "" {
		return content.BlogPost{}, errors.New(errors.ErrCodePresenterFailed, "no content found in blog post to analyze")
	}

	preview := content.Clamp(content.StripTags(post.Content), presenterPreviewLimit)
	p.Logger.Info("analyzing content for visual requirements", "model", p.Model, "preview_chars", len(preview))

	raw, err := p.LLM.CompleteJSON(ctx, p.Model, presenterSystemPrompt, fmt.Sprintf(presenterPromptFormat, post.Title, preview), p.Refresh)
	if err != nil {
		return content.BlogPost{}, errors.Wrap(errors.ErrCodePresenterFailed, err, "analyze visual requirements")
	}

	var reply struct {
		Requirements    []content.VisualRequirement `json:"requirements"`
		AnalysisSummary string                      `json:"analysis_summary"`
	}
	if err := decodeJSON(raw, &reply); err != nil {
		return content.BlogPost{}, errors.Wrap(errors.ErrCodePresenterFailed, err, "decode visual requirements")
	}

	reqs := layout.PruneInfographics(reply.Requirements)
	if len(reqs) < len(reply.Requirements) {
		for _, r := range reqs {
			if r.Type == content.VisualInfographic {
				p.Logger.Info("limited infographics to one", "kept_priority", r.Priority)
				break
			}
		}
	}

	post.VisualRequirements = reqs
	post.VisualSummary = reply.AnalysisSummary
	return post, nil
}
