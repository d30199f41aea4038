package refine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/specialistvlad/argcegar/internal/argpath"
	"github.com/specialistvlad/argcegar/internal/argstore"
	"github.com/specialistvlad/argcegar/internal/ctxlog"
	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/interpolation"
	"github.com/specialistvlad/argcegar/internal/itptree"
	"github.com/specialistvlad/argcegar/internal/metrics"
	"github.com/specialistvlad/argcegar/internal/nodeid"
	"github.com/specialistvlad/argcegar/internal/reached"
	"github.com/specialistvlad/argcegar/internal/session"
	"github.com/specialistvlad/argcegar/internal/shutdown"
)

// FeasibilityChecker decides whether an error path is feasible under full
// precision.
type FeasibilityChecker interface {
	Check(ctx context.Context, path argpath.Path) (domain.Feasibility, error)
}

// Result describes one refinement round.
type Result struct {
	Round int
	// Feasible is set when a target is really reachable.
	Feasible       bool
	Counterexample argpath.Path
	Feasibility    domain.Feasibility
	// Unreliable marks a counterexample that could not be replayed from the
	// checker's branch directions.
	Unreliable bool

	RefinementRoots []nodeid.Ref
	CutoffRoots     []nodeid.Ref
	// Precision is the refined precision accumulated so far.
	Precision domain.Precision
	// Removed counts the nodes dropped from the graph.
	Removed int
}

// Refiner runs refinement rounds over a reached set. F is the prover's
// formula type and I its interpolant type.
type Refiner[F any, I domain.Interpolant[I]] struct {
	reached  *reached.Reached
	checker  FeasibilityChecker
	manager  *interpolation.Manager[F, I]
	formulas func(argpath.Path) []F
	opts     Options

	round       int
	accumulated domain.Refinable
	lastHash    uint64
	lastPrec    string
}

// New returns a refiner. formulas turns a path into the formulas handed to
// the interpolation manager.
func New[F any, I domain.Interpolant[I]](
	r *reached.Reached,
	checker FeasibilityChecker,
	manager *interpolation.Manager[F, I],
	formulas func(argpath.Path) []F,
	opts Options,
) *Refiner[F, I] {
	return &Refiner[F, I]{reached: r, checker: checker, manager: manager, formulas: formulas, opts: opts}
}

// Rounds returns the number of rounds run so far.
func (r *Refiner[F, I]) Rounds() int { return r.round }

// Refine runs one round.
func (r *Refiner[F, I]) Refine(ctx context.Context) (*Result, error) {
	r.round++
	start := time.Now()
	ctx = ctxlog.With(ctx, "round", r.round)

	res, err := r.refine(ctx)

	metrics.RoundDuration.Observe(time.Since(start).Seconds())
	outcome := Classify(err).String()
	switch {
	case err != nil:
	case res.Feasible:
		outcome = "feasible"
	default:
		outcome = "refined"
	}
	metrics.Refinements.WithLabelValues(outcome).Inc()
	return res, err
}

func (r *Refiner[F, I]) refine(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	arg := r.reached.ARG()

	targets := r.reached.Targets()
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: refinement without targets", ErrContractViolation)
	}
	metrics.TargetsFound.Add(float64(len(targets)))

	paths, err := r.errorPaths(arg, targets)
	if err != nil {
		return nil, err
	}
	if res, err := r.checkAnyFeasible(ctx, paths); res != nil || err != nil {
		return res, err
	}

	sess := session.New(ctx, r.round)
	defer func() { _ = sess.Close(ctx) }()

	tree, err := itptree.New(ctx, arg, targets, r.opts.Order, r.manager.True(), r.manager.False())
	if err != nil {
		return nil, contract(err)
	}

	err = interpolation.RunWithTimeout(ctx, r.opts.RoundTimeout, func(ctx context.Context) error {
		return r.interpolate(ctx, sess, tree)
	})
	if err != nil {
		if Classify(err) == ClassProver {
			return r.recover(ctx, paths, err)
		}
		return nil, err
	}

	roots := tree.RefinementRoots()
	cutoffs := tree.CutoffRoots()
	if len(roots) == 0 && len(cutoffs) == 0 {
		return nil, fmt.Errorf("%w: round %d found no refinement or cut-off root", ErrEmptyIncrement, r.round)
	}

	perRoot := make(map[nodeid.Ref]domain.Refinable, len(roots))
	refined := r.accumulated
	for _, root := range roots {
		p, err := r.refinementPrecision(tree, root)
		if err != nil {
			return nil, err
		}
		perRoot[root] = p
		refined = join(refined, p)
	}

	hash := paths[0].Hash()
	precKey := ""
	if refined != nil {
		precKey = refined.String()
	}
	if r.round > 1 && hash == r.lastHash && precKey == r.lastPrec {
		return nil, fmt.Errorf("%w: error path %x, precision %s", ErrRepeatedCounterexample, hash, precKey)
	}
	r.lastHash, r.lastPrec = hash, precKey
	r.accumulated = refined

	sizeBefore := r.reached.Size()
	switch r.opts.Restart {
	case RestartStrengthen:
		err = r.strengthen(ctx, tree, cutoffs, refined)
	default:
		err = r.restartAtRoots(ctx, roots, cutoffs, perRoot)
	}
	if err != nil {
		return nil, err
	}
	removed := sizeBefore - r.reached.Size()
	metrics.RemovedNodes.Add(float64(max(removed, 0)))

	logger.Debug("Refinement round complete.",
		"targets", len(targets),
		"tree_nodes", tree.Size(),
		"roots", len(roots),
		"cutoffs", len(cutoffs),
		"removed", removed,
	)
	if logger.Enabled(ctx, slog.LevelDebug) {
		if err := argstore.Check(arg); err != nil {
			return nil, contract(err)
		}
	}

	return &Result{
		Round:           r.round,
		RefinementRoots: roots,
		CutoffRoots:     cutoffs,
		Precision:       refined,
		Removed:         removed,
	}, nil
}

// errorPaths returns one path per target, shortest first.
func (r *Refiner[F, I]) errorPaths(arg argstore.Reader, targets []nodeid.Ref) ([]argpath.Path, error) {
	paths := make([]argpath.Path, 0, len(targets))
	for _, t := range targets {
		p, err := argpath.OnePathTo(arg, t)
		if err != nil {
			return nil, contract(err)
		}
		paths = append(paths, p)
	}
	sort.SliceStable(paths, func(i, j int) bool { return len(paths[i]) < len(paths[j]) })
	return paths, nil
}

// checkAnyFeasible returns a result for the first feasible path, or nil when
// every path is infeasible.
func (r *Refiner[F, I]) checkAnyFeasible(ctx context.Context, paths []argpath.Path) (*Result, error) {
	for _, p := range paths {
		if err := shutdown.Check(ctx); err != nil {
			return nil, err
		}
		feas, err := r.checker.Check(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("checking error path to %s: %w", p.Last().Node, err)
		}
		if feas.Feasible {
			return r.witness(ctx, p, feas)
		}
	}
	return nil, nil
}

// witness rebuilds the feasible path from the checker's branch directions and
// drops every other target. When replay fails the extracted path is used
// instead and the result is marked unreliable.
func (r *Refiner[F, I]) witness(ctx context.Context, path argpath.Path, feas domain.Feasibility) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	arg := r.reached.ARG()
	target := path.Last().Node

	candidates, err := argpath.AllNodesOnPathsTo(ctx, arg, target)
	if err != nil {
		return nil, err
	}
	res := &Result{Round: r.round, Feasible: true, Feasibility: feas}
	cex, err := argpath.PathFromBranchingInformation(arg, arg.Root(), candidates, feas.Directions, target)
	switch {
	case err == nil:
		res.Counterexample = cex
	case Classify(err) == ClassPath:
		logger.Warn("Could not replay the counterexample from branch directions; using an imprecise path.",
			"target", target.String(), "error", err)
		res.Counterexample = path
		res.Unreliable = true
	default:
		return nil, err
	}

	before := r.reached.Size()
	for _, t := range r.reached.Targets() {
		if t == target || !arg.Contains(t) {
			continue
		}
		if _, err := r.reached.CutOffSubtree(ctx, t); err != nil {
			return nil, contract(err)
		}
	}
	res.Removed = before - r.reached.Size()
	logger.Debug("Found feasible counterexample.", "target", target.String(), "length", len(res.Counterexample))
	return res, nil
}

// interpolate computes interpolants for every path of tree. A path that is
// satisfiable from its initial interpolant is redone from the tree root.
func (r *Refiner[F, I]) interpolate(ctx context.Context, sess *session.Session, tree *itptree.Tree[I]) error {
	logger := ctxlog.FromContext(ctx)
	queried, skipped := 0, 0
	for tree.HasNext() {
		if err := shutdown.Check(ctx); err != nil {
			return err
		}
		path, initial := tree.Next()
		if len(path) == 0 {
			skipped++
			continue
		}

		itps, err := r.manager.Interpolate(ctx, sess, initial, r.formulas(path))
		var sat *interpolation.SatError
		if errors.As(err, &sat) && path.First().Node != tree.Root() {
			logger.Debug("Initial interpolant too weak; interpolating from the root.",
				"start", path.First().Node.String(), "initial", initial.String())
			path = tree.PathFromRoot(path.Last().Node)
			itps, err = r.manager.Interpolate(ctx, sess, r.manager.True(), r.formulas(path))
		}
		if err != nil {
			return err
		}
		if err := tree.Update(path, itps); err != nil {
			return contract(err)
		}
		queried++
	}
	logger.Debug("Interpolated tree paths.",
		"strategy", r.manager.Options().Strategy.String(),
		"paths", queried,
		"skipped", skipped,
	)
	return nil
}

// recover handles a prover failure by re-checking the error paths without
// interpolation. A feasible path still yields a counterexample; otherwise
// the failure is returned.
func (r *Refiner[F, I]) recover(ctx context.Context, paths []argpath.Path, cause error) (*Result, error) {
	ctxlog.FromContext(ctx).Warn("Interpolation failed; checking error paths without interpolants.", "error", cause)
	res, err := r.checkAnyFeasible(ctx, paths)
	if err != nil {
		return nil, errors.Join(cause, err)
	}
	if res != nil {
		return res, nil
	}
	return nil, fmt.Errorf("all %d error paths are infeasible, but no interpolants were found: %w", len(paths), cause)
}

// refinementPrecision joins the precisions of the targets below root, adds
// the root's increment and joins the precision accumulated so far.
func (r *Refiner[F, I]) refinementPrecision(tree *itptree.Tree[I], root nodeid.Ref) (domain.Refinable, error) {
	var prec domain.Refinable
	for _, t := range tree.TargetsInSubtree(root) {
		p, ok := domain.MatchingSubcomponent(r.reached.Precision(t), r.opts.Tag).(domain.Refinable)
		if !ok {
			continue
		}
		prec = join(prec, p)
	}
	if prec == nil {
		return nil, fmt.Errorf("%w: no refinable %q precision below %s", ErrContractViolation, r.opts.Tag, root)
	}

	out, ok := prec.WithIncrement(tree.PrecisionIncrement(root)).(domain.Refinable)
	if !ok {
		return nil, fmt.Errorf("%w: precision %s lost refinability", ErrContractViolation, prec)
	}
	return join(out, r.accumulated), nil
}

func join(a, b domain.Refinable) domain.Refinable {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	if j, ok := a.Join(b).(domain.Refinable); ok {
		return j
	}
	return a
}

// restartAtRoots removes each refinement root's subtree, re-seeding its
// parents with the refined precision, and cuts off every cut-off root.
// Roots already removed earlier in the round are skipped.
func (r *Refiner[F, I]) restartAtRoots(ctx context.Context, roots, cutoffs []nodeid.Ref, precs map[nodeid.Ref]domain.Refinable) error {
	logger := ctxlog.FromContext(ctx)
	arg := r.reached.ARG()
	for _, root := range roots {
		if !arg.Contains(root) {
			logger.Debug("Skipping refinement root removed earlier in the round.", "root", root.String())
			continue
		}
		if _, err := r.reached.RemoveSubtreeWithPrecision(ctx, root, precs[root]); err != nil {
			return contract(err)
		}
	}
	return r.cutOff(ctx, cutoffs)
}

func (r *Refiner[F, I]) cutOff(ctx context.Context, cutoffs []nodeid.Ref) error {
	arg := r.reached.ARG()
	for _, c := range cutoffs {
		if !arg.Contains(c) {
			ctxlog.FromContext(ctx).Debug("Skipping cut-off root removed earlier in the round.", "root", c.String())
			continue
		}
		if _, err := r.reached.CutOffSubtree(ctx, c); err != nil {
			return contract(err)
		}
	}
	return nil
}

// strengthen keeps the graph: cut-off roots are removed, every precision is
// replaced by refined, and states carrying a non-trivial interpolant are
// conjoined with it. Their covered nodes are uncovered. States that become
// bottom are cut off, and the targets are removed so their parents are
// expanded again.
func (r *Refiner[F, I]) strengthen(ctx context.Context, tree *itptree.Tree[I], cutoffs []nodeid.Ref, refined domain.Refinable) error {
	logger := ctxlog.FromContext(ctx)
	arg := r.reached.ARG()
	if err := r.cutOff(ctx, cutoffs); err != nil {
		return err
	}
	if refined != nil {
		r.reached.ReplacePrecisionEverywhere(refined)
	}

	itps := tree.Interpolants()
	refs := make([]nodeid.Ref, 0, len(itps))
	for ref := range itps {
		refs = append(refs, ref)
	}
	nodeid.Sort(refs)

	strengthened := 0
	for _, ref := range refs {
		itp := itps[ref]
		if !arg.Contains(ref) || arg.IsTarget(ref) || itp.IsTrivial() || itp.IsFalse() {
			continue
		}
		st, ok := arg.State(ref).(domain.Strengthener[I])
		if !ok {
			return fmt.Errorf("%w: state %T of %s cannot be strengthened", ErrContractViolation, arg.State(ref), ref)
		}
		next, ok := st.Strengthen(itp)
		if !ok {
			if _, err := r.reached.CutOffSubtree(ctx, ref); err != nil {
				return contract(err)
			}
			continue
		}
		if err := r.reached.ReplaceState(ref, next); err != nil {
			return contract(err)
		}
		if err := r.reached.RemoveCoverageOf(ctx, ref); err != nil {
			return contract(err)
		}
		strengthened++
	}

	for _, t := range tree.Targets() {
		if !arg.Contains(t) {
			continue
		}
		if _, err := r.reached.RemoveSubtree(ctx, t); err != nil {
			return contract(err)
		}
	}
	logger.Debug("Strengthened states.", "strengthened", strengthened)
	return nil
}
