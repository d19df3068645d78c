// Generative roast client
//
// Talks to a Gemini-style generateContent endpoint. The caller supplies a
// roasting projection of the cached bundle plus a persona and severity; the
// service assembles the prompt and returns the generated text.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
)

const defaultRoasterBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Severity levels for roast generation.
const (
	SeverityGentle = "gentle"
	SeverityFunny  = "funny"
	SeverityHarsh  = "harsh"
)

// personaPrompts maps persona ids to their voice instructions.
var personaPrompts = map[string]string{
	"mohanlal":   "You are a legendary Malayalam cinema star delivering a verdict on someone's music taste with iconic mass-dialogue timing and playful authority. Mix Malayalam and English naturally and end with a memorable one-liner.",
	"fahadh":     "You are a manic, unpredictable film character roasting someone's music taste: swing between savage mockery and half-philosophical rants about music and life, then land a chaotic quotable one-liner.",
	"suresh":     "You are an action-hero commissioner interrogating someone's music taste. Clipped, commanding sentences. Deliver the verdict cold and factual, then close with a warning-shaped one-liner.",
	"prithviraj": "You are a calm, calculating film star dismantling someone's music taste with quiet menace and surgical precision. Close with a short, controlled one-liner.",
	"suraj":      "You are a deadpan observational comedian turning someone's music taste into a quick-timing stand-up routine with sarcastic understatement and a punchy closing flip.",
}

var severityInstructions = map[string]string{
	SeverityGentle: "Be playful and gentle. Keep it funny but not harsh, with encouragement underneath the humor.",
	SeverityFunny:  "Deliver a balanced roast - sharp but entertaining, classic roasting style.",
	SeverityHarsh:  "Go full savage mode. Be ruthlessly funny and brutally honest, but keep it entertaining.",
}

// Personas returns the available persona ids in stable order.
func Personas() []string {
	return []string{"mohanlal", "fahadh", "suresh", "prithviraj", "suraj"}
}

// ValidSeverity reports whether s is a recognized severity level.
func ValidSeverity(s string) bool {
	_, ok := severityInstructions[s]
	return ok
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
	Role  string         `json:"role,omitempty"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateCandidate struct {
	Content generateContent `json:"content"`
}

type generateResponse struct {
	Candidates []generateCandidate `json:"candidates"`
	Error      *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// RoasterService implements [RoastGenerator] over an HTTP generateContent API.
type RoasterService struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewRoasterService creates a roast client for the given API key and model.
func NewRoasterService(apiKey, baseURL, model string) (*RoasterService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing roaster api_key", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = defaultRoasterBaseURL
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &RoasterService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SetHTTPClient overrides the HTTP client used for API requests.
func (r *RoasterService) SetHTTPClient(client *http.Client) {
	if client != nil {
		r.httpClient = client
	}
}

// Roast generates roast text for the given material, persona, and severity.
func (r *RoasterService) Roast(ctx context.Context, material *models.RoastingMaterial, persona, severity string) (string, error) {
	if material == nil {
		return "", fmt.Errorf("%w: no roasting material", shared.ErrNoData)
	}

	personaText, ok := personaPrompts[persona]
	if !ok {
		return "", fmt.Errorf("%w: unknown persona %q", shared.ErrInvalidArgument, persona)
	}

	severityText, ok := severityInstructions[severity]
	if !ok {
		severityText = severityInstructions[SeverityFunny]
	}

	prompt := BuildPrompt(material, personaText, severityText)

	payload := generateRequest{
		Contents: []generateContent{
			{Role: "user", Parts: []generatePart{{Text: prompt}}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", r.baseURL, r.model, r.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", shared.ErrProviderUnavailable, resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	if decoded.Error != nil {
		return "", fmt.Errorf("%w: %s", shared.ErrProviderUnavailable, decoded.Error.Message)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidate list", shared.ErrMalformedResponse)
	}

	text := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty roast text", shared.ErrMalformedResponse)
	}
	return text, nil
}

// BuildPrompt assembles the generation prompt from a roasting projection.
func BuildPrompt(material *models.RoastingMaterial, personaText, severityText string) string {
	var b strings.Builder

	b.WriteString(personaText)
	b.WriteString("\n\n")
	b.WriteString(severityText)
	b.WriteString("\n\nHere is the listener's profile:\n")

	if len(material.TopGenres) > 0 {
		b.WriteString(fmt.Sprintf("Top genres: %s\n", strings.Join(material.TopGenres, ", ")))
	}

	for i, track := range material.TopTracks {
		if i >= 10 {
			break
		}
		b.WriteString(fmt.Sprintf("Top track %d: %s by %s\n", i+1, track.Name, strings.Join(track.ArtistNames, ", ")))
	}

	for i, artist := range material.TopArtists {
		if i >= 10 {
			break
		}
		b.WriteString(fmt.Sprintf("Top artist %d: %s\n", i+1, artist.Name))
	}

	b.WriteString(fmt.Sprintf("Distinct artists: %d, distinct tracks: %d\n",
		material.Insights.ArtistDiversityCount, material.Insights.TrackDiversityCount))
	b.WriteString(fmt.Sprintf("Consistency score: %.0f/100, mainstream score: %.0f/100\n",
		material.Insights.ConsistencyScore, material.Insights.MainstreamScore))

	if len(material.RoastingFlags) > 0 {
		b.WriteString(fmt.Sprintf("Weak spots to target: %s\n", strings.Join(material.RoastingFlags, ", ")))
	}

	b.WriteString("\nRoast this person's music taste. Reply with the roast only.")
	return b.String()
}

// FallbackRoast returns a canned line for callers to use when generation fails.
func FallbackRoast() string {
	return "Your music taste broke the roast machine. That alone says plenty."
}
