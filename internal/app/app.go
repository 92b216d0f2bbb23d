// Package app wires the storage adapter and its collaborators from config.
// Both the API server and assetctl build on it.
package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/radif/assetstore/internal/config"
	"github.com/radif/assetstore/internal/localstore"
	"github.com/radif/assetstore/internal/storage"
	"github.com/radif/assetstore/internal/theme"
)

// App holds the assembled components.
type App struct {
	Config  *config.Config
	Storage *storage.Storage
	Local   *localstore.Store
	Themes  *theme.Registry
}

// New assembles the storage adapter. A missing themes directory or active
// theme is not an error; uploads then get no derivatives.
func New(cfg *config.Config) (*App, error) {
	opts, err := cfg.StorageOptions()
	if err != nil {
		return nil, fmt.Errorf("storage options: %w", err)
	}
	storageCfg := storage.NewConfig(opts, nil)

	themes := theme.NewRegistry(cfg.ThemesPath, cfg.ActiveTheme)
	if err := themes.Load(); err != nil {
		log.Warn().Err(err).Str("dir", cfg.ThemesPath).Msg("themes not loaded")
	} else if err := themes.Activate(cfg.ActiveTheme); err != nil {
		log.Warn().Err(err).Msg("no derivatives will be generated")
	}

	local := localstore.New(cfg.LocalStoragePath, cfg.LocalURLPrefix)
	store := storage.New(storageCfg, storage.Deps{
		Namer:    localstore.NewNamer(),
		Fallback: local,
		Sizes:    themes,
	})

	log.Info().
		Str("driver", storageCfg.Driver).
		Str("bucket", storageCfg.Bucket).
		Str("region", storageCfg.Region).
		Str("asset_host", storageCfg.AssetHost).
		Str("path_prefix", storageCfg.PathPrefix).
		Str("theme", cfg.ActiveTheme).
		Msg("storage configured")

	return &App{
		Config:  cfg,
		Storage: store,
		Local:   local,
		Themes:  themes,
	}, nil
}
