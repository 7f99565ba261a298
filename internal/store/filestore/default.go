package filestore

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/portal/internal/domain"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	defaultOnce sync.Once
	defaultCfg  *domain.Config
	defaultErr  error
)

// Default returns a fresh copy of the built-in portal document.
func Default() *domain.Config {
	defaultOnce.Do(func() {
		defaultCfg, defaultErr = parseDefault(defaultYAML)
	})
	if defaultErr != nil {
		// The document is compiled in; failing here is a build defect.
		panic(defaultErr)
	}
	return defaultCfg.Clone()
}

func parseDefault(data []byte) (*domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse built-in default: %w", err)
	}
	if len(cfg.Departments) == 0 {
		return nil, fmt.Errorf("built-in default has no departments")
	}
	return &cfg, nil
}
