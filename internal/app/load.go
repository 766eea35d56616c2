package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/scriptbridge/internal/config"
	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
	"github.com/specialistvlad/scriptbridge/internal/fsutil"
	"github.com/specialistvlad/scriptbridge/internal/hcl"
	"github.com/specialistvlad/scriptbridge/internal/toml"
)

// ErrNoConfiguration is returned when none of the paths holds a config file.
var ErrNoConfiguration = errors.New("no configuration files found")

// selectLoader picks the loader by the extension of the files under paths.
// Mixing formats is rejected so precedence between them never matters.
func selectLoader(paths []string) (config.Loader, error) {
	hclFiles, err := fsutil.CollectFiles(paths, hcl.Extension)
	if err != nil {
		return nil, err
	}
	tomlFiles, err := fsutil.CollectFiles(paths, toml.Extension)
	if err != nil {
		return nil, err
	}
	switch {
	case len(hclFiles) > 0 && len(tomlFiles) > 0:
		return nil, fmt.Errorf("configuration mixes %s and %s files", hcl.Extension, toml.Extension)
	case len(hclFiles) > 0:
		return hcl.NewLoader(), nil
	case len(tomlFiles) > 0:
		return toml.NewLoader(), nil
	default:
		return nil, fmt.Errorf("%w in %v", ErrNoConfiguration, paths)
	}
}

// loadModel loads and validates the configuration model.
func loadModel(ctx context.Context, loader config.Loader, paths []string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	if loader == nil {
		var err error
		if loader, err = selectLoader(paths); err != nil {
			return nil, err
		}
	}
	logger.Debug("Loading configuration.", "loader", fmt.Sprintf("%T", loader), "paths", paths)

	model, err := loader.Load(ctx, paths...)
	if err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded and validated.")
	return model, nil
}
