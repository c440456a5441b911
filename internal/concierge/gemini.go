package concierge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrMissingCredentials means no API key is configured.
var ErrMissingCredentials = errors.New("generative language api key is not configured")

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/"
	apiVersion     = "v1beta"
	defaultModel   = "gemini-3-flash-preview"
	temperature    = 0.7
)

// GeminiConfig configures the Gemini API client.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiClient generates replies through the Gemini API.
type GeminiClient struct {
	model  string
	client *genai.Client
	err    error
}

// NewGeminiClient builds a client. An empty key is accepted; every call then
// fails with ErrMissingCredentials.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	g := &GeminiClient{model: strings.TrimSpace(cfg.Model)}
	if g.model == "" {
		g.model = defaultModel
	}
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		g.err = ErrMissingCredentials
		return g
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    base,
			APIVersion: apiVersion,
		},
	})
	if err != nil {
		g.err = fmt.Errorf("build gemini client: %w", err)
		return g
	}
	g.client = client
	return g
}

// Complete sends the system prompt, history and new message, returning the
// text of the first candidate. An empty string is a valid result.
func (g *GeminiClient) Complete(ctx context.Context, system string, history []Message, message string) (string, error) {
	if g.err != nil {
		return "", g.err
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, genai.NewContentFromText(m.Text, genai.Role(m.Role.wire())))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](temperature),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
