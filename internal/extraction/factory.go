package extraction

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sindhuth/donation-ocr-app/internal/infra"
)

// FromConfig builds the configured extractor wrapped in a normalizing pipeline.
// Without an API key for the chosen provider it falls back to None so uploads
// still work and the editor fills in the fields.
func FromConfig(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*Pipeline, error) {
	normalizer := NewNormalizer(cfg.Event.TitleCaseNames, cfg.Event.Locale)
	httpClient := &http.Client{Timeout: cfg.ExtractionTimeout}

	var (
		ex  Extractor
		err error
	)
	switch cfg.ExtractionProvider {
	case infra.ExtractionProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			logger.Warn().Msg("OPENAI_API_KEY missing; uploads will not be pre-filled")
			ex = None{}
			break
		}
		ex, err = NewOpenAIExtractor(OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			HTTPClient:   httpClient,
		})
	case infra.ExtractionProviderGemini:
		if cfg.GeminiAPIKey == "" {
			logger.Warn().Msg("GEMINI_API_KEY missing; uploads will not be pre-filled")
			ex = None{}
			break
		}
		ex, err = NewGeminiExtractor(ctx, GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			HTTPClient: httpClient,
		})
	case infra.ExtractionProviderNone:
		ex = None{}
	default:
		return nil, fmt.Errorf("unknown extraction provider %q", cfg.ExtractionProvider)
	}
	if err != nil {
		return nil, err
	}
	logger.Info().Str("provider", cfg.ExtractionProvider).Bool("title_case", cfg.Event.TitleCaseNames).Msg("extraction configured")
	return NewPipeline(ex, normalizer), nil
}
