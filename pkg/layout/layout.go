// Package layout assembles visual elements into finished article HTML.
//
// The entry point is the Composer, which takes the article content and the
// visual requirements produced upstream, invokes a generator per element
// kind, and splices the rendered markup into the content at positions chosen
// by a placement Engine.
//
// # Ordering
//
// Requirements are generated in a deterministic order (infographics before
// images before tables, high priority before low within a kind) and inserted
// in the reverse of that order. Reversed insertion means elements destined
// for late offsets land first, so each subsequent insertion works against
// content whose earlier region is still undisturbed.
package layout

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/errors"
)

// Generator produces a visual element for a single requirement. The article
// content is passed through so generators that derive data from the text
// (tables, infographics) can read it.
type Generator interface {
	Generate(ctx context.Context, req content.VisualRequirement, htmlContent string) (content.VisualElement, error)
}

// Result is the outcome of a Compose call.
type Result struct {
	// Content is the input content with all successful elements spliced in.
	Content string
	// Generated holds every element in generation order, failures included,
	// so callers can report full provenance.
	Generated []content.VisualElement
	// Errors collects one message per failed generation.
	Errors []string
}

// Composer coordinates generation and insertion of visual elements.
// It is stateless apart from its collaborators, so one Composer can serve
// multiple workflows.
type Composer struct {
	Engine     Engine
	Generators map[content.VisualType]Generator
	Logger     *log.Logger
}

// NewComposer creates a composer with the given placement engine and
// per-kind generators.
// If engine is nil, a TextEngine is used.
// If logger is nil, the default logger is used.
func NewComposer(engine Engine, generators map[content.VisualType]Generator, logger *log.Logger) *Composer {
	if engine == nil {
		engine = NewTextEngine()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Composer{Engine: engine, Generators: generators, Logger: logger}
}

// Compose generates every requested visual element and splices the
// successful ones into htmlContent. Failed generations are skipped at
// insertion but still appear in Result.Generated with an error status.
//
// An empty requirement list returns the content unchanged. Empty content is
// an error: there is nothing to place elements into.
func (c *Composer) Compose(ctx context.Context, htmlContent string, reqs []content.VisualRequirement) (*Result, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return nil, errors.New(errors.ErrCodeLayoutFailed, "no content provided")
	}
	if len(reqs) == 0 {
		return &Result{Content: htmlContent}, nil
	}

	reqs = PruneInfographics(reqs)
	sorted := sortRequirements(reqs)

	result := &Result{Generated: make([]content.VisualElement, 0, len(sorted))}
	insertable := make([]bool, len(sorted))
	elements := make([]content.VisualElement, len(sorted))

	for i, req := range sorted {
		el := c.generate(ctx, req, htmlContent)
		elements[i] = el
		result.Generated = append(result.Generated, el)

		if el.Status == content.StatusSuccess {
			insertable[i] = true
			continue
		}
		msg := el.Error
		if msg == "" {
			msg = "unknown error"
		}
		c.Logger.Warn("visual element generation failed", "type", req.Type, "error", msg)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to generate %s: %s", req.Type, msg))
	}

	composed := htmlContent
	for i := len(sorted) - 1; i >= 0; i-- {
		if !insertable[i] {
			continue
		}
		composed = insertElement(composed, elements[i], c.Engine)
	}

	result.Content = composed
	return result, nil
}

// generate invokes the registered generator for the requirement's kind and
// normalizes every failure mode into an error-status element.
func (c *Composer) generate(ctx context.Context, req content.VisualRequirement, htmlContent string) content.VisualElement {
	errElement := func(msg string) content.VisualElement {
		return content.VisualElement{
			Type:      req.Type,
			Status:    content.StatusError,
			Placement: req.Placement,
			Priority:  req.Priority,
			Error:     msg,
		}
	}

	gen, ok := c.Generators[req.Type]
	if !ok {
		return errElement(fmt.Sprintf("no generator registered for type %q", req.Type))
	}

	el, err := gen.Generate(ctx, req, htmlContent)
	if err != nil {
		return errElement(err.Error())
	}
	if el.Type == "" {
		el.Type = req.Type
	}
	if el.Placement == "" {
		el.Placement = req.Placement
	}
	if el.Priority == "" {
		el.Priority = req.Priority
	}
	return el
}

// PruneInfographics enforces the single-infographic rule on a requirement
// set. When several infographics are requested, the highest-priority one
// survives in its original position and the rest are dropped; ties keep the
// first occurrence.
func PruneInfographics(reqs []content.VisualRequirement) []content.VisualRequirement {
	best := -1
	count := 0
	for i, r := range reqs {
		if r.Type != content.VisualInfographic {
			continue
		}
		count++
		if best == -1 || r.Priority.Rank() < reqs[best].Priority.Rank() {
			best = i
		}
	}
	if count <= 1 {
		return reqs
	}

	pruned := make([]content.VisualRequirement, 0, len(reqs)-count+1)
	for i, r := range reqs {
		if r.Type == content.VisualInfographic && i != best {
			continue
		}
		pruned = append(pruned, r)
	}
	return pruned
}

// sortRequirements orders requirements by kind (infographic, image, table)
// and then by declared priority. The sort is stable so equal requirements
// keep their authored order.
func sortRequirements(reqs []content.VisualRequirement) []content.VisualRequirement {
	sorted := make([]content.VisualRequirement, len(reqs))
	copy(sorted, reqs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type.Rank() != sorted[j].Type.Rank() {
			return sorted[i].Type.Rank() < sorted[j].Type.Rank()
		}
		return sorted[i].Priority.Rank() < sorted[j].Priority.Rank()
	})
	return sorted
}
