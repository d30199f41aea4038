package cegar

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/argcegar/internal/argpath"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/specialistvlad/argcegar/internal/ctxlog"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/explore"
	"github.com/specialistvlad/argcegar/internal/inmemoryarg"
	"github.com/specialistvlad/argcegar/internal/inmemoryprecision"
	"github.com/specialistvlad/argcegar/internal/interpolation"
	"github.com/specialistvlad/argcegar/internal/itptree"
	"github.com/specialistvlad/argcegar/internal/metrics"
	"github.com/specialistvlad/argcegar/internal/reached"
	"github.com/specialistvlad/argcegar/internal/refine"
	"github.com/specialistvlad/argcegar/internal/value"
	"github.com/specialistvlad/argcegar/internal/waitlist"
)

// Analyzer verifies one program with the value domain.
type Analyzer struct {
	program *cfa.Program
	opts    config.Analysis

	order    itptree.Order
	strategy interpolation.Strategy
	restart  refine.Restart
	waitlist waitlist.Order
}

// New validates opts and returns an analyzer for program.
func New(program *cfa.Program, opts *config.Analysis) (*Analyzer, error) {
	if opts == nil {
		opts = config.DefaultAnalysis()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	a := &Analyzer{program: program, opts: *opts}

	var err error
	if a.order, err = itptree.ParseOrder(opts.InterpolationOrder); err != nil {
		return nil, err
	}
	if a.strategy, err = interpolation.ParseStrategy(opts.InterpolationStrategy); err != nil {
		return nil, err
	}
	if a.restart, err = refine.ParseRestart(opts.RestartStrategy); err != nil {
		return nil, err
	}
	if a.waitlist, err = waitlist.ParseOrder(opts.WaitlistOrder); err != nil {
		return nil, err
	}
	return a, nil
}

// Run explores and refines until a verdict is reached. Contract violations,
// refinement that stops making progress and interruption are returned as
// errors. Prover failures end the run with UNKNOWN.
func (a *Analyzer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	ctx = ctxlog.With(ctx, "program", a.program.Name)
	logger := ctxlog.FromContext(ctx)

	r := reached.New(inmemoryarg.New(), inmemoryprecision.New(), a.waitlist)
	explorer := explore.New(r, value.NewDomain(a.opts.PrecisionScope))
	prover := value.NewProver(value.ProverOptions{
		IgnoreLoopExitAssumes: a.opts.IgnoreLoopExitAssumes,
		UseDefPruning:         a.opts.UseDefPruning,
	})
	manager := interpolation.NewManager[*cfa.Edge, value.Interpolant](prover, interpolation.Options{
		Strategy:      a.strategy,
		Verify:        a.opts.VerifyInterpolants,
		MaxPathLength: a.opts.MaxPathLength,
	})
	refiner := refine.New(r, value.NewChecker(), manager, argpath.Path.Edges, refine.Options{
		Order:        a.order,
		Restart:      a.restart,
		RoundTimeout: a.opts.RoundTimeout,
		Tag:          value.Tag,
	})

	if _, err := explorer.Start(a.program.Main.Entry); err != nil {
		return nil, err
	}

	logger.Info("Starting verification.",
		"order", a.order.String(),
		"strategy", a.strategy.String(),
		"restart", a.restart.String(),
		"waitlist", a.waitlist.String(),
	)

	res, err := a.loop(ctx, r, explorer, refiner)
	if err != nil {
		return nil, err
	}
	res.Rounds = refiner.Rounds()
	res.Nodes = r.Size()
	res.Duration = time.Since(start)
	metrics.Verdicts.WithLabelValues(string(res.Verdict)).Inc()

	logger.Info("Verification finished.",
		"verdict", string(res.Verdict),
		"rounds", res.Rounds,
		"nodes", res.Nodes,
		"duration", res.Duration,
	)
	return res, nil
}

func (a *Analyzer) loop(ctx context.Context, r *reached.Reached, explorer *explore.Explorer, refiner *refine.Refiner[*cfa.Edge, value.Interpolant]) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	var precision domain.Precision

	for {
		found, err := explorer.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("exploration: %w", err)
		}
		if !found.Found() {
			return &Result{Verdict: Safe, Precision: precision}, nil
		}

		if a.opts.MaxRefinements > 0 && refiner.Rounds() >= a.opts.MaxRefinements {
			return &Result{
				Verdict: Unknown,
				Reason:  fmt.Sprintf("refinement limit of %d rounds reached", a.opts.MaxRefinements),
			}, nil
		}

		round, err := refiner.Refine(ctx)
		switch refine.Classify(err) {
		case refine.ClassNone:
		case refine.ClassProver:
			logger.Warn("Prover failed; the verdict is unknown.", "error", err)
			return &Result{Verdict: Unknown, Reason: err.Error()}, nil
		default:
			return nil, fmt.Errorf("refinement failed: %w", err)
		}

		if round.Feasible {
			if round.Unreliable {
				logger.Warn("Counterexample is imprecise.", "length", len(round.Counterexample))
			}
			return &Result{
				Verdict:        Unsafe,
				Counterexample: round.Counterexample,
				Model:          round.Feasibility.Model,
				Unreliable:     round.Unreliable,
			}, nil
		}
		if round.Precision != nil {
			precision = round.Precision
		}
		logger.Debug("Refined.", "round", round.Round, "nodes", r.Size(), "precision", precision)
	}
}
