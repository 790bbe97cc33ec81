package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

const (
	extractPrompt = `Extract only the location name (e.g., "City, State" or "Neighborhood, City") ` +
		`from the following disaster description. If no specific location is mentioned, return "Unknown". ` +
		`Description: "%s"`
	verifyPrompt = "Analyze this image for signs of manipulation or to verify if it depicts a real " +
		"disaster context. Provide a summary of your findings."

	// maxImageBytes bounds the image fetched for verification.
	maxImageBytes = 10 << 20
)

var errEmptyResponse = errors.New("empty response from model")

// Client calls the Gemini generateContent REST endpoint. It implements
// domain.LocationExtractor and domain.ImageVerifier.
type Client struct {
	apiKey      string
	model       string
	visionModel string
	httpClient  *http.Client
	baseURL     string
	logger      *slog.Logger
}

// NewClient creates a Gemini client for the given text and vision models.
func NewClient(apiKey, model, visionModel string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:      apiKey,
		model:       model,
		visionModel: visionModel,
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     "https://generativelanguage.googleapis.com/v1beta",
		logger:      logger,
	}
}

// ExtractLocation asks the model for the place named in text and returns its
// trimmed answer verbatim.
func (c *Client) ExtractLocation(ctx context.Context, text string) (string, error) {
	answer, err := c.generate(ctx, c.model, []part{{Text: fmt.Sprintf(extractPrompt, text)}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// VerifyImage downloads imageURL and asks the vision model whether it shows
// signs of manipulation.
func (c *Client) VerifyImage(ctx context.Context, imageURL string) (domain.Verification, error) {
	data, mimeType, err := c.fetchImage(ctx, imageURL)
	if err != nil {
		return domain.Verification{}, err
	}

	summary, err := c.generate(ctx, c.visionModel, []part{
		{Text: verifyPrompt},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
	})
	if err != nil {
		return domain.Verification{}, err
	}
	return domain.Verification{
		Verified: !strings.Contains(strings.ToLower(summary), "manipulated"),
		Reason:   summary,
	}, nil
}

func (c *Client) generate(ctx context.Context, model string, parts []part) (string, error) {
	body, err := json.Marshal(request{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?%s", c.baseURL, url.PathEscape(model), url.Values{"key": {c.apiKey}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini API error: status %d: %s", resp.StatusCode, msg)
	}

	var gr response
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	text := gr.text()
	if text == "" {
		return "", errEmptyResponse
	}
	c.logger.Debug("gemini answered", "model", model, "chars", len(text))
	return text, nil
}

func (c *Client) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create image request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

// Gemini API request/response types.

type request struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type response struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r response) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
