package openrouter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/integrations"
)

// imageTimeout is generous because image models return megabytes of
// base64 in the response body.
const imageTimeout = 120 * time.Second

// visualProfile captures how one visual kind prompts the model and what
// it falls back to when the reply carries no usable alt text.
type visualProfile struct {
	system     string
	userFormat string
	// altFromPrompt caps alt text derived from the generation prompt.
	altFromPrompt int
	defaultAlt    string
	// pendingNote describes a reply that contained no image data.
	pendingNote string
}

var imageProfile = visualProfile{
	system: `You are an expert image generation AI. Generate high-quality images optimized for web publishing. Always generate images with dimensions 1200x800 pixels (16:10 aspect ratio) for optimal web display. Return the generated image as a base64 data URL, and provide alt text and a caption in your response.`,
	userFormat: `Generate an image based on this detailed prompt:

%s

CRITICAL REQUIREMENTS:
1. Image dimensions: 1200x800 pixels (16:10 aspect ratio) - optimized for web publishing
2. Format: high-quality, web-optimized image suitable for blog posts and articles
3. Provide alt text: a clear, descriptive alt text (100-150 characters) for accessibility
4. Provide caption: an optional caption describing the image (if relevant)

Generate the image with the specified dimensions and return it as a base64 data URL. Format your response as:
Alt Text: [descriptive alt text here]
Caption: [optional caption here]
[base64 image data URL]`,
	altFromPrompt: 150,
	defaultAlt:    "Generated image",
	pendingNote:   "Image generation in progress",
}

var infographicProfile = visualProfile{
	system: `You are an expert infographic designer. Create informative, visually appealing infographics optimized for web publishing. Always generate infographics with dimensions 1200x1800 pixels (2:3 portrait aspect ratio) for optimal web display. Return the generated infographic as a base64 data URL, and provide alt text and caption in your response.`,
	userFormat: `Generate an infographic based on this detailed prompt:

%s

CRITICAL REQUIREMENTS:
1. Infographic dimensions: 1200x1800 pixels (2:3 portrait aspect ratio) - optimized for web publishing
2. Format: High-quality, web-optimized infographic suitable for blog posts and articles
3. Provide alt text: A clear, descriptive alt text (100-200 characters) explaining what the infographic shows
4. Provide caption: A caption explaining the infographic content (if relevant)

Please generate the infographic with the specified dimensions and return it as a base64 data URL. Format your response as:
Alt Text: [descriptive alt text here]
Caption: [optional caption here]
[base64 image data URL]`,
	altFromPrompt: 200,
	defaultAlt:    "Generated infographic",
	pendingNote:   "Infographic generation in progress",
}

var (
	altTextRE = regexp.MustCompile(`(?i)alt\s*text\s*:?\s*(.+?)(?:\n|caption|$)`)
	captionRE = regexp.MustCompile(`(?i)caption\s*:?\s*(.+?)(?:\n|alt|$)`)

	urlCleaner = strings.NewReplacer("\n", "", "\r", "", " ", "")
)

// ImageResult is a generated image with its accessibility metadata. When
// the model answers with a text description instead of image data, URL is
// empty, Placeholder is set, and Description carries the model's reply.
type ImageResult struct {
	URL         string
	AltText     string
	Caption     string
	Description string
	Placeholder bool
}

// ImageClient generates images and infographics through OpenRouter's
// multimodal chat completions. Generated images come back base64-encoded
// in an images array on the assistant message, an OpenRouter extension
// the standard chat SDK does not model, so this client posts the payload
// itself.
type ImageClient struct {
	*integrations.Client
	baseURL string
}

// NewImageClient creates an image generation client. An empty baseURL
// selects OpenRouter. Results are not cached: data URLs run to megabytes
// and every generation request is intentionally fresh.
func NewImageClient(apiKey, baseURL string) *ImageClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &ImageClient{
		Client: integrations.NewClient(nil, "openrouter:", 0, map[string]string{
			"Authorization": "Bearer " + apiKey,
			"X-Title":       "seoflow",
		}),
		baseURL: baseURL,
	}
	c.SetTimeout(imageTimeout)
	return c
}

type imageRequest struct {
	Model      string         `json:"model"`
	Modalities []string       `json:"modalities"`
	Messages   []imageMessage `json:"messages"`
}

type imageMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type imageResponse struct {
	Choices []struct {
		Message imageChoiceMessage `json:"message"`
	} `json:"choices"`
}

type imageChoiceMessage struct {
	Content string `json:"content"`
	Images  []struct {
		URL      string `json:"url"`
		ImageURL struct {
			URL string `json:"url"`
		} `json:"image_url"`
	} `json:"images"`
}

// Generate renders prompt into a 16:10 article image and returns its data
// URL with alt text and caption extracted from the model's accompanying
// text.
func (c *ImageClient) Generate(ctx context.Context, model, prompt string) (*ImageResult, error) {
	return c.generate(ctx, model, prompt, imageProfile)
}

// GenerateInfographic renders prompt into a 2:3 portrait infographic.
// The reply is parsed the same way as Generate, with infographic wording
// in the fallbacks.
func (c *ImageClient) GenerateInfographic(ctx context.Context, model, prompt string) (*ImageResult, error) {
	return c.generate(ctx, model, prompt, infographicProfile)
}

func (c *ImageClient) generate(ctx context.Context, model, prompt string, profile visualProfile) (*ImageResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("no prompt provided")
	}

	payload := imageRequest{
		Model:      model,
		Modalities: []string{"image", "text"},
		Messages: []imageMessage{
			{Role: "system", Content: profile.system},
			{Role: "user", Content: fmt.Sprintf(profile.userFormat, prompt)},
		},
	}

	var resp imageResponse
	if err := c.Post(ctx, c.baseURL+"/chat/completions", payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	msg := resp.Choices[0].Message
	var imageURL string
	if len(msg.Images) > 0 {
		imageURL = msg.Images[0].ImageURL.URL
		if imageURL == "" {
			imageURL = msg.Images[0].URL
		}
	}
	// Models occasionally wrap long data URLs across lines
	imageURL = urlCleaner.Replace(imageURL)

	text := strings.TrimSpace(msg.Content)
	alt, caption := parseVisualText(text, prompt, profile)

	if imageURL == "" {
		description := text
		if description == "" {
			description = profile.pendingNote
		}
		if alt == "" {
			alt = content.Clamp(description, 100)
		}
		return &ImageResult{AltText: alt, Caption: caption, Description: description, Placeholder: true}, nil
	}

	if alt == "" {
		alt = profile.defaultAlt
	}
	return &ImageResult{URL: imageURL, AltText: alt, Caption: caption}, nil
}

// parseVisualText pulls alt text and caption out of the model's reply,
// falling back to the first text line and finally the prompt itself so
// the result always has usable alt text.
func parseVisualText(text, prompt string, profile visualProfile) (alt, caption string) {
	if text == "" {
		return "", ""
	}

	if m := altTextRE.FindStringSubmatch(text); m != nil {
		alt = content.Clamp(strings.TrimSpace(m[1]), 200)
	} else if lines := textLines(text); len(lines) > 0 {
		alt = content.Clamp(lines[0], 200)
	} else {
		alt = content.Clamp(text, 200)
	}

	if m := captionRE.FindStringSubmatch(text); m != nil {
		caption = content.Clamp(strings.TrimSpace(m[1]), 500)
	} else if len(text) > 200 {
		if lines := textLines(text); len(lines) > 1 {
			caption = content.Clamp(strings.Join(lines[1:], " "), 500)
		}
	}

	if len(alt) < 10 {
		if prompt != "" {
			alt = content.Clamp(prompt, profile.altFromPrompt)
		} else {
			alt = profile.defaultAlt
		}
	}
	return alt, caption
}

// textLines returns the non-empty lines of text, skipping inline data URLs.
func textLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "data:image") {
			lines = append(lines, line)
		}
	}
	return lines
}
