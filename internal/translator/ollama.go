package translator

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/valpere/simtran/internal"
	"github.com/valpere/simtran/internal/postprocess"
)

var DefaultOllamaModels = []string{
	"llama3.2",
	"gemma2:2b",
	"qwen2.5:3b",
	"mistral:7b",
}

type OllamaTranslator struct {
	simultaneous
	baseURL string
	models  []string
	client  *http.Client
}

func NewOllamaTranslator(baseURL string, models []string) *OllamaTranslator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if len(models) == 0 {
		models = DefaultOllamaModels
	}
	return &OllamaTranslator{
		baseURL: baseURL,
		models:  models,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OllamaTranslator) Name() string {
	return "ollama"
}

func (s *OllamaTranslator) pickModel() string {
	return s.models[rand.Intn(len(s.models))]
}

func ollamaPrompt(req TranslateRequest) string {
	source := req.SourceLang
	if source == "" || source == "auto" {
		source = "the detected language"
	}
	return fmt.Sprintf(`Translate the following text from %s to %s.
Only respond with the translation, nothing else.

Text: "%s"

Translation:`, source, req.TargetLang, req.Text)
}

func (s *OllamaTranslator) Translate(ctx context.Context, req TranslateRequest) (*Translation, error) {
	start := time.Now()
	model := s.pickModel()

	body := map[string]any{
		"model":  model,
		"prompt": ollamaPrompt(req),
		"stream": false,
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := doJSON(ctx, s.client, http.MethodPost, s.baseURL+"/api/generate", nil, body, &resp); err != nil {
		return nil, &EngineError{Engine: s.Name(), Err: err}
	}

	text := postprocess.Clean(resp.Response)
	if text == "" {
		return nil, engineError(s.Name(), "model %s returned an empty translation", model)
	}

	return &Translation{
		EngineName:     s.Name(),
		TranslatedText: text,
		Confidence:     0.7,
		Metadata:       map[string]string{"model": model},
		Latency:        time.Since(start),
	}, nil
}

func (s *OllamaTranslator) IsAvailable(ctx context.Context) error {
	if err := doJSON(ctx, s.client, http.MethodGet, s.baseURL+"/api/tags", nil, nil, nil); err != nil {
		return fmt.Errorf("Ollama not available: %w", err)
	}
	return nil
}

func (s *OllamaTranslator) SupportedLanguages(ctx context.Context) ([]internal.Language, error) {
	return languagesFromCodes([]string{"en", "es", "fr", "de", "it", "pt", "ru", "zh", "ja", "ko", "ar", "uk"}), nil
}
