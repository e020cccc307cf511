package translator

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/valpere/simtran/internal"
	"github.com/valpere/simtran/internal/postprocess"
)

var DefaultOpenRouterModels = []string{
	"google/gemini-2.0-flash-exp:free",
	"qwen/qwen2.5-72b-instruct:free",
	"mistralai/mistral-nemo:free",
	"meta-llama/llama-3.1-8b-instruct:free",
}

type OpenRouterService struct {
	simultaneous
	apiKey  string
	baseURL string
	models  []string
	client  *http.Client
}

func NewOpenRouterService(apiKey string, baseURL string, models []string) *OpenRouterService {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if len(models) == 0 {
		models = DefaultOpenRouterModels
	}
	return &OpenRouterService{
		apiKey:  apiKey,
		baseURL: baseURL,
		models:  models,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OpenRouterService) Name() string {
	return "openrouter"
}

func openRouterSystemPrompt(sourceLang, targetLang string) string {
	if sourceLang == "" || sourceLang == "auto" {
		sourceLang = "the detected language"
	}
	return fmt.Sprintf("You are a professional translator. Translate the user's text from %s to %s.\n"+
		"Only respond with the translation, nothing else. No explanations, no quotes.", sourceLang, targetLang)
}

func (s *OpenRouterService) Translate(ctx context.Context, req TranslateRequest) (*Translation, error) {
	start := time.Now()

	if s.apiKey == "" {
		return nil, engineError(s.Name(), "OpenRouter API key required")
	}

	model := s.models[rand.Intn(len(s.models))]
	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": openRouterSystemPrompt(req.SourceLang, req.TargetLang)},
			{"role": "user", "content": req.Text},
		},
		"max_tokens": 4096,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + s.apiKey,
		"HTTP-Referer":  "https://simtran.local",
		"X-Title":       "simtran",
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := doJSON(ctx, s.client, http.MethodPost, s.baseURL+"/chat/completions", headers, body, &resp); err != nil {
		return nil, &EngineError{Engine: s.Name(), Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, engineError(s.Name(), "empty response from API")
	}

	return &Translation{
		EngineName:     s.Name(),
		TranslatedText: postprocess.Clean(resp.Choices[0].Message.Content),
		Confidence:     0.7,
		Metadata: map[string]string{
			"model":             model,
			"prompt_tokens":     strconv.Itoa(resp.Usage.PromptTokens),
			"completion_tokens": strconv.Itoa(resp.Usage.CompletionTokens),
		},
		Latency: time.Since(start),
	}, nil
}

func (s *OpenRouterService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("OpenRouter API key not configured")
	}
	return nil
}

func (s *OpenRouterService) SupportedLanguages(ctx context.Context) ([]internal.Language, error) {
	return languagesFromCodes([]string{"en", "es", "fr", "de", "it", "pt", "ru", "zh", "ja", "ko", "ar", "uk"}), nil
}
