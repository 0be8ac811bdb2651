package extraction

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
)

// VisionPrompt is sent with every image.
const VisionPrompt = `Analyze this donation form image and extract:
1. Full Name of the donor
2. Donation Amount (number only, no currency symbols)

Return ONLY in this exact format:
Name: [extracted name]
Amount: [extracted number]`

// Extractor reads fields from a form image.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (Fields, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, image []byte) (Fields, error)

func (f ExtractorFunc) Extract(ctx context.Context, image []byte) (Fields, error) {
	return f(ctx, image)
}

// None returns empty fields; the editor types everything in by hand.
type None struct{}

func (None) Extract(context.Context, []byte) (Fields, error) { return Fields{}, nil }

// Normalizer post-processes extracted fields before they are stored.
type Normalizer struct {
	titleCase bool
	tag       language.Tag
}

// NewNormalizer builds a normalizer. With titleCase set, names such as
// "jane DOE" become "Jane Doe".
func NewNormalizer(titleCase bool, locale string) Normalizer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return Normalizer{titleCase: titleCase, tag: tag}
}

// Apply collapses whitespace in the name and title-cases it when enabled.
func (n Normalizer) Apply(f Fields) Fields {
	name := strings.Join(strings.Fields(f.Name), " ")
	if n.titleCase && name != "" {
		// Casers carry state, so each call gets its own.
		name = cases.Title(n.tag).String(name)
	}
	return Fields{Name: name, Amount: CleanAmount(f.Amount)}
}

// Pipeline runs an extractor and then the normalizer.
type Pipeline struct {
	extractor  Extractor
	normalizer Normalizer
}

// NewPipeline chains extractor and normalizer.
func NewPipeline(extractor Extractor, normalizer Normalizer) *Pipeline {
	if extractor == nil {
		extractor = None{}
	}
	return &Pipeline{extractor: extractor, normalizer: normalizer}
}

func (p *Pipeline) Extract(ctx context.Context, image []byte) (Fields, error) {
	f, err := p.extractor.Extract(ctx, image)
	if err != nil {
		return Fields{}, err
	}
	return p.normalizer.Apply(f), nil
}

// DetectMIME sniffs the image type for data URIs and inline parts.
func DetectMIME(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		return "image/jpeg"
	}
	return mime
}

func providerErr(provider, reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%s %s: %w", provider, reason, domain.ErrProviderFailure)
	}
	return fmt.Errorf("%s %s: %w: %w", provider, reason, domain.ErrProviderFailure, err)
}
