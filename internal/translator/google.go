package translator

import (
	"context"
	"fmt"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/valpere/simtran/internal"
)

// GoogleService talks to Google Cloud Translation v2. A fresh client is
// created per call; credentials come from the constructor or the ambient
// application-default credentials.
type GoogleService struct {
	simultaneous
	credentials string
	displayLang string
}

func NewGoogleService(credentials string) *GoogleService {
	return &GoogleService{credentials: credentials, displayLang: "en"}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) client(ctx context.Context) (*translate.Client, error) {
	var opts []option.ClientOption
	if s.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentials))
	}
	return translate.NewClient(ctx, opts...)
}

func (s *GoogleService) Translate(ctx context.Context, req TranslateRequest) (*Translation, error) {
	start := time.Now()

	target, err := language.Parse(req.TargetLang)
	if err != nil {
		return nil, engineError(s.Name(), "invalid target language %q: %w", req.TargetLang, err)
	}

	var opts *translate.Options
	if req.SourceLang != "" && req.SourceLang != "auto" {
		source, err := language.Parse(req.SourceLang)
		if err != nil {
			return nil, engineError(s.Name(), "invalid source language %q: %w", req.SourceLang, err)
		}
		opts = &translate.Options{Source: source, Format: translate.Text}
	}

	client, err := s.client(ctx)
	if err != nil {
		return nil, engineError(s.Name(), "failed to create client: %w", err)
	}
	defer client.Close()

	out, err := client.Translate(ctx, []string{req.Text}, target, opts)
	if err != nil {
		return nil, engineError(s.Name(), "translation failed: %w", err)
	}
	if len(out) == 0 {
		return nil, engineError(s.Name(), "no translation returned")
	}

	result := &Translation{
		EngineName:     s.Name(),
		TranslatedText: out[0].Text,
		Confidence:     1.0,
		Latency:        time.Since(start),
	}
	if out[0].Source != language.Und {
		result.Metadata = map[string]string{"detected_source": out[0].Source.String()}
	}
	return result, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	client, err := s.client(ctx)
	if err != nil {
		return fmt.Errorf("google translate not available: %w", err)
	}
	return client.Close()
}

// SupportedLanguages asks the API for its language list, localized to
// English display names.
func (s *GoogleService) SupportedLanguages(ctx context.Context) ([]internal.Language, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, engineError(s.Name(), "failed to create client: %w", err)
	}
	defer client.Close()

	langs, err := client.SupportedLanguages(ctx, language.Make(s.displayLang))
	if err != nil {
		return nil, engineError(s.Name(), "failed to list languages: %w", err)
	}

	result := make([]internal.Language, 0, len(langs))
	for _, l := range langs {
		result = append(result, internal.Language{Code: l.Tag.String(), Name: l.Name})
	}
	return result, nil
}
