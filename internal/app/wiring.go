package app

import (
	"github.com/rs/zerolog"

	"github.com/Rorical/PocketDoc/internal/config"
	"github.com/Rorical/PocketDoc/internal/core"
	"github.com/Rorical/PocketDoc/internal/device"
	"github.com/Rorical/PocketDoc/internal/llm"
)

// NewProvider returns the fixture provider when one is configured and the
// host provider otherwise.
func NewProvider(cfg *config.Config, logger zerolog.Logger) (device.Provider, error) {
	if cfg.Device.Fixture != "" {
		logger.Info().Str("fixture", cfg.Device.Fixture).Msg("using device fixture")
		fixture, err := device.LoadFixture(cfg.Device.Fixture)
		if err != nil {
			return nil, err
		}
		return fixture, nil
	}
	return device.NewHostProvider(cfg.Device.StoragePath, logger), nil
}

// NewRemote returns nil when the active profile cannot reach the endpoint;
// online requests then report a connectivity problem.
func NewRemote(cfg *config.Config, logger zerolog.Logger) core.RemoteInference {
	if !cfg.IsValid() {
		return nil
	}
	return llm.NewRemoteClient(llm.RemoteConfig{
		APIKey:    cfg.GetAPIKey(),
		BaseURL:   cfg.GetBaseURL(),
		Model:     cfg.GetModel(),
		MaxTokens: cfg.GetMaxTokens(),
	}, logger)
}

func NewLocal(cfg *config.Config, logger zerolog.Logger) *llm.LocalModel {
	return llm.NewLocalModel(llm.LocalConfig{
		BaseURL:   cfg.Local.BaseURL,
		Model:     cfg.Local.Model,
		MaxTokens: cfg.Local.MaxTokens,
	}, logger)
}
