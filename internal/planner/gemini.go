// Package planner talks to the Gemini generative API for place
// recommendations and place search, and turns recommendations into event drafts.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	defaultModel    = "gemini-2.5-flash"
	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout  = 20 * time.Second

	maxPlaceResults   = 5
	minPlaceQueryLen  = 3
	maxResponseBytes  = 1 << 20
	searchAnchorLat   = 47.2184
	searchAnchorLng   = -1.5536
	unknownPlaceName  = "Lieu inconnu"
	unknownPlaceAddr  = "Nantes"
	unknownPlaceLabel = "Lieu"
)

var errEmptyResponse = errors.New("planner: empty model response")

// Recommendation is one suggested place.
type Recommendation struct {
	PlaceName   string `json:"placeName"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// Place is one place search suggestion.
type Place struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Category string `json:"category"`
}

// Config wires a Client.
type Config struct {
	APIKey     string
	Model      string
	Endpoint   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls the Gemini generateContent endpoint. Without an API key every
// call returns an empty result without touching the network.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      strings.TrimSpace(cfg.Model),
		endpoint:   strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if client.model == "" {
		client.model = defaultModel
	}
	if client.endpoint == "" {
		client.endpoint = defaultEndpoint
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if client.logger == nil {
		client.logger = zap.NewNop()
	}
	return client
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Recommend asks for places in city matching interests. Any failure yields an
// empty list.
func (c *Client) Recommend(ctx context.Context, city string, interests []string) []Recommendation {
	if !c.Enabled() {
		return []Recommendation{}
	}
	prompt := fmt.Sprintf(`Je suis un voyageur solo / digital nomad à %s.
Mes centres d'intérêt sont : %s.
Suggère-moi 3 endroits ou activités spécifiques (restaurants, bars, co-working, visites)
qui favorisent les rencontres ou sont adaptés au travail à distance.`, city, strings.Join(interests, ", "))

	request := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   recommendationSchema,
		},
	}
	text, err := c.generate(ctx, request)
	if err != nil {
		c.logger.Warn("recommendation request failed", zap.String("city", city), zap.Error(err))
		return []Recommendation{}
	}
	var recommendations []Recommendation
	if err := json.Unmarshal([]byte(text), &recommendations); err != nil {
		c.logger.Warn("recommendation response unreadable", zap.Error(err))
		return []Recommendation{}
	}
	return recommendations
}

// SearchPlaces returns up to five real places near Nantes matching query.
// Queries shorter than three characters return nothing.
func (c *Client) SearchPlaces(ctx context.Context, query string) []Place {
	query = strings.TrimSpace(query)
	if !c.Enabled() || len([]rune(query)) < minPlaceQueryLen {
		return []Place{}
	}
	prompt := fmt.Sprintf(`Find 5 real places in Nantes matching %q using Google Maps.
Return the results as a strictly formatted JSON array of objects.
Each object must have these keys: "name", "address", "category".
Do not include any markdown formatting. Just return the raw JSON string.`, query)

	request := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		Tools:    []tool{{GoogleMaps: &struct{}{}}},
		ToolConfig: &toolConfig{RetrievalConfig: retrievalConfig{
			LatLng: latLng{Latitude: searchAnchorLat, Longitude: searchAnchorLng},
		}},
	}
	text, err := c.generate(ctx, request)
	if err != nil {
		c.logger.Warn("place search failed", zap.String("query", query), zap.Error(err))
		return []Place{}
	}
	var raw []Place
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		c.logger.Warn("place search response unreadable", zap.String("query", query), zap.Error(err))
		return []Place{}
	}
	places := lo.Map(raw, func(place Place, _ int) Place {
		return Place{
			Name:     lo.CoalesceOrEmpty(strings.TrimSpace(place.Name), unknownPlaceName),
			Address:  lo.CoalesceOrEmpty(strings.TrimSpace(place.Address), unknownPlaceAddr),
			Category: lo.CoalesceOrEmpty(strings.TrimSpace(place.Category), unknownPlaceLabel),
		}
	})
	if len(places) > maxPlaceResults {
		places = places[:maxPlaceResults]
	}
	return places
}

func (c *Client) generate(ctx context.Context, request generateRequest) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", err
	}
	target := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, url.PathEscape(c.model))
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("x-goog-api-key", c.apiKey)

	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}
	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("planner: generateContent returned status %d", response.StatusCode)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("planner: decode response: %w", err)
	}
	text := decoded.text()
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	Tools            []tool            `json:"tools,omitempty"`
	ToolConfig       *toolConfig       `json:"toolConfig,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleMaps *struct{} `json:"googleMaps,omitempty"`
}

type toolConfig struct {
	RetrievalConfig retrievalConfig `json:"retrievalConfig"`
}

type retrievalConfig struct {
	LatLng latLng `json:"latLng"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var builder strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		builder.WriteString(p.Text)
	}
	return builder.String()
}

var recommendationSchema = map[string]any{
	"type": "ARRAY",
	"items": map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"placeName":   map[string]any{"type": "STRING"},
			"category":    map[string]any{"type": "STRING"},
			"description": map[string]any{"type": "STRING"},
			"reason": map[string]any{
				"type":        "STRING",
				"description": "Pourquoi c'est bien pour un digital nomad ou voyageur solo",
			},
		},
		"required": []string{"placeName", "category", "description", "reason"},
	},
}
