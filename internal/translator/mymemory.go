package translator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/valpere/simtran/internal"
)

const defaultMyMemoryURL = "https://api.mymemory.translated.net"

// DetectFunc resolves the ISO 639-1 code of a text.
type DetectFunc func(text string) (string, bool)

// MyMemoryService needs an explicit source language; auto requests are
// resolved with detect and fall back to English.
type MyMemoryService struct {
	simultaneous
	email   string
	baseURL string
	detect  DetectFunc
	client  *http.Client
}

func NewMyMemoryService(email string, detect DetectFunc) *MyMemoryService {
	return &MyMemoryService{
		email:   email,
		baseURL: defaultMyMemoryURL,
		detect:  detect,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

func (s *MyMemoryService) sourceFor(req TranslateRequest) string {
	if req.SourceLang != "" && req.SourceLang != "auto" {
		return req.SourceLang
	}
	if s.detect != nil {
		if code, ok := s.detect(req.Text); ok {
			return code
		}
	}
	return "en"
}

func (s *MyMemoryService) Translate(ctx context.Context, req TranslateRequest) (*Translation, error) {
	start := time.Now()

	q := url.Values{}
	q.Set("q", req.Text)
	q.Set("langpair", fmt.Sprintf("%s|%s", s.sourceFor(req), req.TargetLang))
	if s.email != "" {
		q.Set("de", s.email)
	}

	var resp struct {
		ResponseData struct {
			TranslatedText string  `json:"translatedText"`
			Match          float64 `json:"match"`
		} `json:"responseData"`
		ResponseStatus  int    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}

	if err := doJSON(ctx, s.client, http.MethodGet, s.baseURL+"/get?"+q.Encode(), nil, nil, &resp); err != nil {
		return nil, &EngineError{Engine: s.Name(), Err: err}
	}
	if resp.ResponseStatus != http.StatusOK {
		return nil, engineError(s.Name(), "API error: %s (%d)", resp.ResponseDetails, resp.ResponseStatus)
	}

	return &Translation{
		EngineName:     s.Name(),
		TranslatedText: resp.ResponseData.TranslatedText,
		Confidence:     clamp01(resp.ResponseData.Match),
		Latency:        time.Since(start),
	}, nil
}

func (s *MyMemoryService) IsAvailable(ctx context.Context) error {
	return nil
}

func (s *MyMemoryService) SupportedLanguages(ctx context.Context) ([]internal.Language, error) {
	return languagesFromCodes([]string{
		"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh",
		"ar", "nl", "pl", "tr", "sv", "da", "no", "fi", "el", "he",
		"th", "vi", "id", "ms", "cs", "hu", "ro", "uk", "bg", "ca",
	}), nil
}
