package sumsquares

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/chemandante/sum-squares/internal/sum-squares/core"
	"github.com/chemandante/sum-squares/internal/sum-squares/factor"
	"github.com/chemandante/sum-squares/internal/sum-squares/metrics"
	"github.com/chemandante/sum-squares/internal/sum-squares/utils"
)

// Factorizer supplies complete prime factorizations to the engine
type Factorizer = core.Factorizer

// PrimePower is one p^e term of a factorization
type PrimePower = factor.PrimePower

// Engine answers decomposition queries. One Engine owns one infeasibility
// cache, so repeated queries get faster over its lifetime. Safe for
// concurrent use.
type Engine struct {
	config     *Config
	factorizer Factorizer
	decomposer *core.Decomposer
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

type engineOptions struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
	factorizer Factorizer
}

// Option configures an Engine
type Option func(*engineOptions)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithRegisterer registers the engine metrics on reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *engineOptions) {
		o.registerer = reg
	}
}

// WithFactorizer replaces the built-in factorization oracle
func WithFactorizer(f Factorizer) Option {
	return func(o *engineOptions) {
		o.factorizer = f
	}
}

// NewEngine creates a new decomposition engine with the given configuration.
// A nil config means DefaultConfig.
func NewEngine(config *Config, opts ...Option) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, &SquaresError{
			Code:    ErrInvalidConfig,
			Message: "invalid configuration",
			Cause:   err,
		}
	}

	o := engineOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.factorizer == nil {
		o.factorizer = factor.New(o.logger.Named("factor"))
	}

	var cache *core.InfeasibilityCache
	if config.Cache.Enabled {
		cache = core.NewInfeasibilityCache()
	}

	m := metrics.New(o.registerer)
	return &Engine{
		config:     config.Clone(),
		factorizer: o.factorizer,
		decomposer: core.NewDecomposer(o.factorizer, cache,
			core.WithRecorder(m),
			core.WithLogger(o.logger.Named("decomposer")),
		),
		metrics: m,
		logger:  o.logger,
	}, nil
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Decompose finds every decomposition of n into arity squares. n must be
// a natural number. An infeasible n is not an error: the Result reports
// Feasible == false and the theorem that ruled it out.
//
// With verify.completeness enabled, a four-square result that fails the
// Jacobi check comes back together with an ErrIncomplete error.
//
// The search itself is not interruptible; ctx is checked before it starts.
func (e *Engine) Decompose(ctx context.Context, n *big.Int, arity Arity) (*Result, error) {
	if n == nil || n.Sign() < 1 {
		return nil, &SquaresError{
			Code:    ErrInvalidInput,
			Message: "number must be natural, i.e. N >= 1",
		}
	}
	if !arity.Valid() {
		return nil, &SquaresError{
			Code:    ErrInvalidArity,
			Message: "arity must be 2, 3 or 4, got " + strconv.Itoa(int(arity)),
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	num := new(big.Int).Set(n)
	start := time.Now()

	var (
		set DecompositionSet
		err error
	)
	switch arity {
	case TwoSquares:
		set, err = e.decomposer.Decompose2(num, nil)
	case ThreeSquares:
		set, err = e.decomposer.Decompose3(num, nil)
	case FourSquares:
		set, err = e.decomposer.Decompose4(num, nil)
	}
	elapsed := time.Since(start)

	if err != nil {
		e.metrics.RecordQuery(int(arity), metrics.ResultError, 0, elapsed)
		e.logger.Warn("decomposition failed",
			zap.String("n", num.String()),
			zap.Int("arity", int(arity)),
			zap.Error(err))
		return nil, &SquaresError{
			Code:    ErrFactorization,
			Message: "factorization failed",
			Cause:   err,
		}
	}

	result := &Result{
		Number:         num,
		Arity:          arity,
		Decompositions: set,
		Feasible:       len(set) > 0,
	}
	outcome := metrics.ResultFeasible
	if !result.Feasible {
		outcome = metrics.ResultInfeasible
		result.Reason = infeasibleReason(arity)
	}
	e.metrics.RecordQuery(int(arity), outcome, len(set), elapsed)
	e.logger.Debug("decomposition finished",
		zap.String("n", num.String()),
		zap.Int("arity", int(arity)),
		zap.Int("count", len(set)),
		zap.Duration("elapsed", elapsed))

	if arity == FourSquares && e.config.Verify.Completeness {
		v, err := e.Verify(num, set)
		if err != nil {
			return nil, err
		}
		if !v.Complete || !v.Sound {
			return result, &SquaresError{
				Code:    ErrIncomplete,
				Message: "expected " + v.Expected.String() + " signed representations, found " + v.Actual.String(),
			}
		}
	}

	return result, nil
}

// DecomposeTwo returns every n = a² + b² with a >= b >= 0
func (e *Engine) DecomposeTwo(ctx context.Context, n *big.Int) (*Result, error) {
	return e.Decompose(ctx, n, TwoSquares)
}

// DecomposeThree returns every n = a² + b² + c² with a >= b >= c >= 0
func (e *Engine) DecomposeThree(ctx context.Context, n *big.Int) (*Result, error) {
	return e.Decompose(ctx, n, ThreeSquares)
}

// DecomposeFour returns every n = a² + b² + c² + d² with a >= b >= c >= d >= 0
func (e *Engine) DecomposeFour(ctx context.Context, n *big.Int) (*Result, error) {
	return e.Decompose(ctx, n, FourSquares)
}

// Verify checks a four-square set for n: every entry must sum to n, and the
// signed, ordered representations the set stands for must number r4(n).
func (e *Engine) Verify(n *big.Int, set DecompositionSet) (*Verification, error) {
	if n == nil || n.Sign() < 1 {
		return nil, &SquaresError{
			Code:    ErrInvalidInput,
			Message: "number must be natural, i.e. N >= 1",
		}
	}

	expected, err := core.JacobiCount(n, e.factorizer)
	if err != nil {
		return nil, &SquaresError{
			Code:    ErrFactorization,
			Message: "jacobi count failed",
			Cause:   err,
		}
	}

	v := &Verification{
		Expected: expected,
		Sound:    true,
	}
	for _, d := range set {
		if len(d) > int(FourSquares) || d.SumOfSquares().Cmp(n) != 0 {
			v.Sound = false
			v.Problems = append(v.Problems, d)
		}
	}
	if v.Sound {
		v.Actual = core.ExpandedCount(set)
	} else {
		v.Actual = new(big.Int)
	}
	v.Complete = v.Sound && v.Actual.Cmp(expected) == 0
	return v, nil
}

// Digest fingerprints a result with the configured hash function. Equal
// results give equal digests.
func (e *Engine) Digest(r *Result) string {
	t := utils.NewTranscript(e.config.Digest.Function)
	t.Absorb("n", r.Number)
	label := strconv.Itoa(int(r.Arity))
	for _, d := range r.Decompositions {
		t.Absorb(label, d...)
	}
	return t.Digest()
}

// DigestFunction returns the configured digest hash name
func (e *Engine) DigestFunction() string {
	return e.config.Digest.Function
}

// CacheSize returns how many values the infeasibility cache holds
func (e *Engine) CacheSize() int {
	return e.decomposer.Cache().Len()
}

func infeasibleReason(arity Arity) string {
	switch arity {
	case TwoSquares:
		return ReasonFermat
	case ThreeSquares:
		return ReasonLegendre
	}
	return ""
}
