package extraction

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	geminiProviderName  = "gemini"
	defaultGeminiModel  = "gemini-2.5-flash"
	geminiMaxOutputToks = 100
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiExtractor sends the form image inline to a Gemini model.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

func NewGeminiExtractor(ctx context.Context, opts GeminiOptions) (*GeminiExtractor, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	cfg := &genai.ClientConfig{
		APIKey:     strings.TrimSpace(opts.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, providerErr(geminiProviderName, "new_client", err)
	}
	return &GeminiExtractor{client: client, model: model}, nil
}

func (g *GeminiExtractor) Extract(ctx context.Context, image []byte) (Fields, error) {
	if len(image) == 0 {
		return Fields{}, providerErr(geminiProviderName, "empty_image", nil)
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(VisionPrompt),
			genai.NewPartFromBytes(image, DetectMIME(image)),
		}, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: geminiMaxOutputToks,
	})
	if err != nil {
		return Fields{}, providerErr(geminiProviderName, "generate_content", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return Fields{}, providerErr(geminiProviderName, "empty_response", nil)
	}
	return ParseFields(text), nil
}
