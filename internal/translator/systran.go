package translator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/simtran/internal"
)

const (
	systranHost       = "api-systran-systran-translation-v1.p.rapidapi.com"
	defaultSystranURL = "https://" + systranHost
)

type SystranService struct {
	simultaneous
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSystranService(apiKey string) *SystranService {
	return &SystranService{
		apiKey:  apiKey,
		baseURL: defaultSystranURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SystranService) Name() string {
	return "systran"
}

func (s *SystranService) headers() map[string]string {
	return map[string]string{
		"X-RapidAPI-Key":  s.apiKey,
		"X-RapidAPI-Host": systranHost,
	}
}

func (s *SystranService) Translate(ctx context.Context, req TranslateRequest) (*Translation, error) {
	start := time.Now()

	if s.apiKey == "" {
		return nil, engineError(s.Name(), "Systran API key required")
	}

	body := map[string]any{
		"input":  []string{req.Text},
		"target": req.TargetLang,
		"format": "text",
	}
	if req.SourceLang != "" {
		body["source"] = req.SourceLang
	} else {
		body["source"] = "auto"
	}

	var resp struct {
		Outputs []struct {
			Output string `json:"output"`
		} `json:"outputs"`
	}
	if err := doJSON(ctx, s.client, http.MethodPost, s.baseURL+"/translation/text/translate", s.headers(), body, &resp); err != nil {
		return nil, &EngineError{Engine: s.Name(), Err: err}
	}
	if len(resp.Outputs) == 0 || resp.Outputs[0].Output == "" {
		return nil, engineError(s.Name(), "empty translation response")
	}

	return &Translation{
		EngineName:     s.Name(),
		TranslatedText: resp.Outputs[0].Output,
		Confidence:     1.0,
		Latency:        time.Since(start),
	}, nil
}

func (s *SystranService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("Systran API key not configured")
	}
	return nil
}

// SupportedLanguages queries the supported-languages endpoint and keeps the
// distinct target codes.
func (s *SystranService) SupportedLanguages(ctx context.Context) ([]internal.Language, error) {
	if s.apiKey == "" {
		return nil, engineError(s.Name(), "Systran API key required")
	}

	var resp struct {
		LanguagePairs []struct {
			Source string `json:"source"`
			Target string `json:"target"`
		} `json:"languagePairs"`
	}
	if err := doJSON(ctx, s.client, http.MethodGet, s.baseURL+"/translation/supportedLanguages", s.headers(), nil, &resp); err != nil {
		return nil, &EngineError{Engine: s.Name(), Err: err}
	}

	seen := make(map[string]struct{})
	var codes []string
	for _, p := range resp.LanguagePairs {
		if _, ok := seen[p.Target]; ok || p.Target == "" {
			continue
		}
		seen[p.Target] = struct{}{}
		codes = append(codes, p.Target)
	}
	return languagesFromCodes(codes), nil
}
