package classify

import (
	"context"
	"time"

	"github.com/caldwen/spellweave/pkg/spell"
)

// DefaultProviderTimeout bounds how long Resolve waits for an external
// provider before degrading to keyword classification.
const DefaultProviderTimeout = 30 * time.Second

// Provider is an external tagging collaborator. Implementations typically
// wrap a network service that tags spell batches; the core never depends on
// how the tags were produced.
type Provider interface {
	// Tags returns a map of spell ID to element tag. A partial map is fine:
	// missing IDs fall back to keyword classification. A nil map with a nil
	// error is an explicit "no result".
	Tags(ctx context.Context, spells []spell.Spell) (map[string]spell.Element, error)
}

// Outcome describes how an override resolution ended.
type Outcome int

const (
	// OutcomeOK means the provider returned tags (possibly partial).
	OutcomeOK Outcome = iota
	// OutcomeTimedOut means the provider did not answer within the timeout.
	OutcomeTimedOut
	// OutcomeUnavailable means no provider was configured or it failed.
	OutcomeUnavailable
)

// Resolution is the result of asking a provider for override tags. Overrides
// is nil unless Outcome is OutcomeOK.
type Resolution struct {
	Outcome   Outcome
	Overrides map[string]spell.Element
	Err       error
}

// Resolve asks the provider for override tags, bounded by timeout (or
// DefaultProviderTimeout when zero). It never returns an error: any failure
// mode resolves to a Resolution the caller can feed straight into New, since
// the build must proceed either way.
func Resolve(ctx context.Context, p Provider, spells []spell.Spell, timeout time.Duration) Resolution {
	if p == nil {
		return Resolution{Outcome: OutcomeUnavailable}
	}
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tags, err := p.Tags(ctx, spells)
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		return Resolution{Outcome: OutcomeTimedOut, Err: ctx.Err()}
	case err != nil:
		return Resolution{Outcome: OutcomeUnavailable, Err: err}
	case tags == nil:
		return Resolution{Outcome: OutcomeUnavailable}
	}
	return Resolution{Outcome: OutcomeOK, Overrides: tags}
}
