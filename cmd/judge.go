package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/megharajeev28/resume-matcher/internal/ai"
	"github.com/megharajeev28/resume-matcher/internal/ai/gemini"
	"github.com/megharajeev28/resume-matcher/internal/ai/openai"
	"github.com/megharajeev28/resume-matcher/internal/config"
	"github.com/megharajeev28/resume-matcher/internal/logger"
	"github.com/megharajeev28/resume-matcher/internal/secrets"
	"github.com/megharajeev28/resume-matcher/internal/semantic"
)

// newJudge builds the semantic stage for the configured provider. A provider
// that cannot be built degrades the stage instead of stopping the command.
func newJudge(ctx context.Context, cfg *config.Config, log *zap.Logger) *semantic.Judge {
	judgeCfg := semantic.Config{
		Timeout:  cfg.AI.Timeout,
		MaxChars: cfg.AI.MaxChars,
	}

	if cfg.AI.Provider == config.ProviderNone {
		log.Info("semantic stage disabled", zap.String("provider", cfg.AI.Provider))
		return semantic.New(nil, judgeCfg, log)
	}

	assessor, err := newAssessor(ctx, cfg, log)
	if err != nil {
		log.Warn("semantic stage unavailable", zap.String("provider", cfg.AI.Provider), zap.Error(err))
		return semantic.Unavailable(err, log)
	}

	return semantic.New(assessor, judgeCfg, log)
}

func newAssessor(ctx context.Context, cfg *config.Config, log *zap.Logger) (ai.Assessor, error) {
	switch cfg.AI.Provider {
	case config.ProviderOpenAI:
		c := cfg.AI.OpenAI
		apiKey, err := loadCredential("openai api key", c.APIKey, c.APIKeyFile, "set OPENAI_API_KEY or ai.openai.api-key-file")
		if err != nil {
			return nil, err
		}

		assessor, err := openai.NewAssessor(openai.Config{
			APIKey:       apiKey,
			Model:        c.Model,
			BaseURL:      c.BaseURL,
			MaxRetries:   c.MaxRetries,
			MaxLogLength: cfg.AI.MaxLogLength,
		}, logger.WithCommonFields(log, config.ProviderOpenAI, c.Model))
		if err != nil {
			return nil, fmt.Errorf("building openai assessor: %w", err)
		}
		return assessor, nil

	default:
		c := cfg.AI.Gemini
		apiKey, err := loadCredential("gemini api key", c.APIKey, c.APIKeyFile, "set GEMINI_API_KEY or ai.gemini.api-key-file")
		if err != nil {
			return nil, err
		}

		genLogger := logger.WithCommonFields(log, config.ProviderGemini, c.Model).
			With(zap.Int("ai_retry_attempts", c.MaxRetries))

		generator, err := gemini.NewGenerator(ctx, apiKey, c.Model, c.MaxRetries, genLogger)
		if err != nil {
			return nil, fmt.Errorf("building gemini generator: %w", err)
		}
		return gemini.NewAssessor(generator, cfg.AI.MaxLogLength, genLogger), nil
	}
}

// loadCredential resolves an API key; every failure counts as a missing credential.
func loadCredential(name, value, file, hint string) (string, error) {
	secret, err := secrets.Load(secrets.Source{Name: name, Value: value, File: file})
	if err != nil {
		return "", fmt.Errorf("%w: %w (%s)", ai.ErrCredentialMissing, err, hint)
	}
	return secret, nil
}
