package processor

import (
	"github.com/nguyentantai21042004/video-digest/internal/config"
)

type implProcessor struct {
	cfg  *config.Config
	deps Deps
}

// New creates a Processor. cfg must already be validated.
func New(cfg *config.Config, deps Deps) Processor {
	return &implProcessor{
		cfg:  cfg,
		deps: deps,
	}
}
