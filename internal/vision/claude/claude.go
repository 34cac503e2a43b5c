package claude

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/movinv/movinv/internal/vision"
)

// maxTokens is sized for the largest expected response: an extraction pass on
// a cluttered room runs to a few dozen JSON item lines.
const maxTokens = 2048

// Analyzer implements vision.Analyzer against the Anthropic Messages API.
type Analyzer struct {
	client *anthropic.Client
	model  string
}

func New(apiKey, model string, opts ...anthropic.ClientOption) *Analyzer {
	return &Analyzer{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

// DetectRooms sends the whole batch in a single message so the model can
// compare photos against each other when judging room identity.
func (a *Analyzer) DetectRooms(ctx context.Context, images []vision.Image) (*vision.RoomDetection, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to classify")
	}

	content := make([]anthropic.MessageContent, 0, len(images)+1)
	for _, img := range images {
		content = append(content, imageContent(img))
	}
	content = append(content, anthropic.NewTextMessageContent(vision.RoomDetectionPrompt(len(images))))

	text, err := a.send(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to call claude for room detection: %w", err)
	}

	return vision.ParseRoomDetection(text)
}

func (a *Analyzer) ExtractItems(ctx context.Context, img vision.Image, roomsForImage []string, alreadyFound []vision.DetectedItem) ([]vision.DetectedItem, error) {
	content := []anthropic.MessageContent{
		imageContent(img),
		anthropic.NewTextMessageContent(vision.ExtractionPrompt(img.Idx, roomsForImage, alreadyFound)),
	}

	text, err := a.send(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to call claude for item extraction: %w", err)
	}

	return vision.ParseItems(text), nil
}

func (a *Analyzer) send(ctx context.Context, content []anthropic.MessageContent) (string, error) {
	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: content},
		},
	})
	if err != nil {
		return "", wrapStatus(err)
	}
	return resp.GetFirstContentText(), nil
}

// wrapStatus attaches a vision.StatusError carrying the HTTP status of a
// failed API call, so the retry layer can tell throttling and outages from
// hard failures. The anthropic error stays in the chain.
func wrapStatus(err error) error {
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: %w", &vision.StatusError{Op: "messages", StatusCode: reqErr.StatusCode}, err)
	}
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", &vision.StatusError{Op: "messages", StatusCode: apiErrorStatus(apiErr)}, err)
	}
	return err
}

// apiErrorStatus maps the typed API error back to the HTTP status the
// Anthropic API documents for it. Overloaded is 529, Anthropic's
// non-standard "overloaded" status.
func apiErrorStatus(e *anthropic.APIError) int {
	switch {
	case e.IsRateLimitErr():
		return http.StatusTooManyRequests
	case e.IsOverloadedErr():
		return 529
	case e.IsApiErr():
		return http.StatusInternalServerError
	case e.IsAuthenticationErr():
		return http.StatusUnauthorized
	case e.IsPermissionErr():
		return http.StatusForbidden
	case e.IsNotFoundErr():
		return http.StatusNotFound
	case e.IsTooLargeErr():
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

func imageContent(img vision.Image) anthropic.MessageContent {
	return anthropic.NewImageMessageContent(anthropic.MessageContentSource{
		Type:      anthropic.MessagesContentSourceTypeBase64,
		MediaType: normaliseMIME(img.MimeType),
		Data:      base64.StdEncoding.EncodeToString(img.Data),
	})
}

// normaliseMIME maps browser MIME types to the values the Anthropic API accepts.
// The API accepts only jpeg, png, gif, and webp. Unknown types are coerced to
// jpeg as the most universally supported lossy fallback; callers validate MIME
// types before reaching this layer.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
