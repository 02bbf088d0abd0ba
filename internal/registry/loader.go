// Package registry turns config model definitions into runner instances
// ready to register with the engine.
package registry

import (
	"fmt"
	"time"

	"inferd/internal/config"
	"inferd/internal/models"
	"inferd/pkg/types"
)

// Entry pairs a constructed runner with its engine configuration.
type Entry struct {
	ID     string
	Runner *models.Runner
	Config types.ModelConfig
}

// Build constructs runner entries from config definitions. Duplicate ids are
// left to the engine to reject; unknown kinds fail here.
func Build(defs []config.ModelDef) ([]Entry, error) {
	out := make([]Entry, 0, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("model definition missing id (kind %q)", def.Kind)
		}
		r, err := models.New(def.Kind, time.Duration(def.LatencyMs)*time.Millisecond)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", def.ID, err)
		}
		out = append(out, Entry{ID: def.ID, Runner: r, Config: def.Config})
	}
	return out, nil
}
