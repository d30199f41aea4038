package interpolation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/argcegar/internal/ctxlog"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/metrics"
	"github.com/specialistvlad/argcegar/internal/session"
	"github.com/specialistvlad/argcegar/internal/shutdown"
)

// Options configure a Manager.
type Options struct {
	Strategy Strategy
	// Verify checks every result against the sequence laws and the variable
	// scope condition.
	Verify bool
	// MaxPathLength rejects queries with more formulas. Zero means no limit.
	MaxPathLength int
}

// Manager orders interpolation queries for one prover.
type Manager[F any, I domain.Interpolant[I]] struct {
	prover Prover[F, I]
	opts   Options
}

// NewManager returns a manager over prover.
func NewManager[F any, I domain.Interpolant[I]](prover Prover[F, I], opts Options) *Manager[F, I] {
	return &Manager[F, I]{prover: prover, opts: opts}
}

// Options returns the manager's options.
func (m *Manager[F, I]) Options() Options { return m.opts }

// True returns the prover's trivial interpolant.
func (m *Manager[F, I]) True() I { return m.prover.True() }

// False returns the prover's contradiction.
func (m *Manager[F, I]) False() I { return m.prover.False() }

// Interpolate returns one interpolant per cut between consecutive formulas,
// so len(formulas)-1 of them. Satisfiable formulas yield a *SatError.
// Prover errors are wrapped in ErrInterpolationFailed, except interruption.
func (m *Manager[F, I]) Interpolate(ctx context.Context, sess *session.Session, initial I, formulas []F) ([]I, error) {
	logger := ctxlog.FromContext(ctx)
	if len(formulas) == 0 {
		return nil, fmt.Errorf("%w: no formulas", ErrInterpolationFailed)
	}
	if m.opts.MaxPathLength > 0 && len(formulas) > m.opts.MaxPathLength {
		return nil, fmt.Errorf("%w: %d formulas, limit is %d", ErrFormulaTooLarge, len(formulas), m.opts.MaxPathLength)
	}

	q := &queries[F, I]{prover: m.prover, sess: sess}
	sat, model, err := q.satisfiable(ctx, initial, formulas)
	if err != nil {
		return nil, wrapProverError(err)
	}
	if sat {
		return nil, &SatError{Model: model}
	}

	var itps []I
	switch m.opts.Strategy {
	case Sequential:
		itps, err = q.sequential(ctx, initial, formulas)
	case Nested:
		itps, err = q.nested(ctx, initial, formulas)
	default:
		itps, err = q.inductive(ctx, initial, formulas, m.prover.False())
	}
	if err != nil {
		return nil, wrapProverError(err)
	}

	if m.opts.Verify {
		if err := q.verify(ctx, initial, formulas, itps); err != nil {
			return nil, err
		}
	}

	nonTrivial := 0
	for _, itp := range itps {
		if !itp.IsTrivial() {
			nonTrivial++
		}
	}
	logger.Debug("Computed interpolants.",
		"strategy", m.opts.Strategy.String(),
		"formulas", len(formulas),
		"non_trivial", nonTrivial,
	)
	return itps, nil
}

func wrapProverError(err error) error {
	if errors.Is(err, shutdown.ErrInterrupted) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInterpolationFailed, err)
}

// queries issues prover calls through the session cache.
type queries[F any, I domain.Interpolant[I]] struct {
	prover Prover[F, I]
	sess   *session.Session
}

func (q *queries[F, I]) keys(fs []F) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = q.prover.Key(f)
	}
	return strings.Join(parts, ",")
}

func cached[T any](sess *session.Session, key uint64, compute func() (T, error)) (T, error) {
	if sess != nil {
		if v, ok := sess.Lookup(key); ok {
			metrics.SessionCacheHits.Inc()
			return v.(T), nil
		}
	}
	v, err := compute()
	if err == nil && sess != nil {
		sess.Store(key, v)
	}
	return v, err
}

type satAnswer struct {
	sat   bool
	model string
}

func (q *queries[F, I]) satisfiable(ctx context.Context, start I, formulas []F) (bool, string, error) {
	key := session.Key("sat", start.String(), q.keys(formulas))
	a, err := cached(q.sess, key, func() (satAnswer, error) {
		metrics.InterpolationQueries.WithLabelValues("sat").Inc()
		sat, model, err := q.prover.Satisfiable(ctx, start, formulas)
		return satAnswer{sat, model}, err
	})
	return a.sat, a.model, err
}

func (q *queries[F, I]) interpolate(ctx context.Context, start I, step, rest []F, goal I) (I, error) {
	key := session.Key("itp", start.String(), q.keys(step), q.keys(rest), goal.String())
	return cached(q.sess, key, func() (I, error) {
		metrics.InterpolationQueries.WithLabelValues("interpolate").Inc()
		return q.prover.Interpolate(ctx, start, step, rest, goal)
	})
}

func (q *queries[F, I]) implies(ctx context.Context, from I, step []F, to I) (bool, error) {
	key := session.Key("implies", from.String(), q.keys(step), to.String())
	return cached(q.sess, key, func() (bool, error) {
		metrics.InterpolationQueries.WithLabelValues("implies").Inc()
		return q.prover.Implies(ctx, from, step, to)
	})
}
