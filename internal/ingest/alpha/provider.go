package alpha

import (
	"io"
	"time"

	"github.com/claude/liftlog/internal/workout"
)

// Source names Alpha Progression imports in logs and metrics.
const Source = "alpha"

// Provider is the ingest.Provider for Alpha Progression CSV exports.
type Provider struct {
	loc *time.Location
}

// NewProvider creates a provider that reads start times in loc.
func NewProvider(loc *time.Location) *Provider {
	return &Provider{loc: loc}
}

func (p *Provider) Name() string { return Source }

func (p *Provider) Parse(r io.Reader) ([]workout.Session, error) {
	return Parse(r, p.loc)
}
