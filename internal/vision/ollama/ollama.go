package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/movinv/movinv/internal/vision"
)

// Analyzer implements vision.Analyzer against a local Ollama instance running
// a multimodal model. Useful for development without an API key; accuracy is
// what the local model makes of it.
type Analyzer struct {
	host   string
	model  string
	client *http.Client
}

func New(host, model string) *Analyzer {
	return &Analyzer{
		host:   host,
		model:  model,
		client: &http.Client{},
	}
}

func (a *Analyzer) DetectRooms(ctx context.Context, images []vision.Image) (*vision.RoomDetection, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to classify")
	}

	encoded := make([]string, 0, len(images))
	for _, img := range images {
		encoded = append(encoded, base64.StdEncoding.EncodeToString(img.Data))
	}

	raw, err := a.generate(ctx, vision.RoomDetectionPrompt(len(images)), encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama for room detection: %w", err)
	}

	return vision.ParseRoomDetection(raw)
}

func (a *Analyzer) ExtractItems(ctx context.Context, img vision.Image, roomsForImage []string, alreadyFound []vision.DetectedItem) ([]vision.DetectedItem, error) {
	encoded := []string{base64.StdEncoding.EncodeToString(img.Data)}

	raw, err := a.generate(ctx, vision.ExtractionPrompt(img.Idx, roomsForImage, alreadyFound), encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama for item extraction: %w", err)
	}

	return vision.ParseItems(raw), nil
}

func (a *Analyzer) generate(ctx context.Context, prompt string, images []string) (string, error) {
	reqBody := map[string]any{
		"model":  a.model,
		"prompt": prompt,
		"images": images,
		"stream": false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &vision.StatusError{Op: "generate", StatusCode: resp.StatusCode}
	}

	var respBody struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return respBody.Response, nil
}
