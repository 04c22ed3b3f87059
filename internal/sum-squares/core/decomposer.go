package core

import (
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"

	"github.com/chemandante/sum-squares/internal/sum-squares/factor"
)

// Decomposition holds the nonzero square roots of one representation,
// sorted non-ascending. Zero summands are implied by a length shorter than
// the arity; the empty Decomposition represents 0. Elements are shared
// between decompositions and must not be modified.
type Decomposition []*big.Int

// DecompositionSet lists every Decomposition found for one query, ordered
// by descending leading term.
type DecompositionSet []Decomposition

// SumOfSquares returns the sum of the squares of d's elements.
func (d Decomposition) SumOfSquares() *big.Int {
	sum := new(big.Int)
	sq := new(big.Int)
	for _, x := range d {
		sum.Add(sum, sq.Mul(x, x))
	}
	return sum
}

// String renders d as "a²+b²+c²". The empty decomposition renders as "0²".
func (d Decomposition) String() string {
	if len(d) == 0 {
		return "0²"
	}
	parts := make([]string, len(d))
	for i, x := range d {
		parts[i] = x.String() + "²"
	}
	return strings.Join(parts, "+")
}

// Tuple renders d as "(a, b, c)".
func (d Decomposition) Tuple() string {
	parts := make([]string, len(d))
	for i, x := range d {
		parts[i] = x.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Factorizer supplies complete prime factorizations. It is consumed only
// by the two-square feasibility filter and by JacobiCount.
type Factorizer interface {
	Factorize(n *big.Int) ([]factor.PrimePower, error)
}

// Decomposer enumerates representations as sums of two, three and four
// squares. The three layers call each other top-down (4 -> 3 -> 2) and
// each one prepends its leading term to what the layer below returns.
type Decomposer struct {
	factorizer Factorizer
	cache      *InfeasibilityCache
	recorder   Recorder
	logger     *zap.Logger
}

// DecomposerOption configures a Decomposer.
type DecomposerOption func(*Decomposer)

// WithRecorder attaches a search observer.
func WithRecorder(r Recorder) DecomposerOption {
	return func(d *Decomposer) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) DecomposerOption {
	return func(d *Decomposer) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDecomposer creates a Decomposer. cache may be nil, which disables
// memoization without changing any result.
func NewDecomposer(f Factorizer, cache *InfeasibilityCache, opts ...DecomposerOption) *Decomposer {
	d := &Decomposer{
		factorizer: f,
		cache:      cache,
		recorder:   nopRecorder{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Cache returns the infeasibility cache, possibly nil.
func (d *Decomposer) Cache() *InfeasibilityCache {
	return d.cache
}

// Decompose2 returns every num = a² + b² with upperBound >= a >= b >= 0.
// A nil upperBound means unbounded. num must be >= 0.
func (d *Decomposer) Decompose2(num, upperBound *big.Int) (DecompositionSet, error) {
	if !TwoSquareResidueFeasible(num) {
		d.recorder.ObserveRejection(2, RejectResidue)
		return nil, nil
	}
	if d.cache.Contains(num) {
		d.recorder.ObserveRejection(2, RejectCached)
		return nil, nil
	}
	switch num.Cmp(bigOne) {
	case -1:
		return DecompositionSet{Decomposition{}}, nil
	case 0:
		return DecompositionSet{Decomposition{big.NewInt(1)}}, nil
	}

	ok, err := d.twoSquareFeasible(num)
	if err != nil {
		return nil, err
	}
	if !ok {
		d.recorder.ObserveRejection(2, RejectFermat)
		if d.cache.Add(num) {
			d.recorder.ObserveCacheInsert()
			d.logger.Debug("recorded two-square infeasible value", zap.String("n", num.String()))
		}
		return nil, nil
	}

	hi, lo := SearchBounds(num, upperBound, 2)
	var res DecompositionSet
	tried := 0
	for i := hi; i.Cmp(lo) >= 0; i = new(big.Int).Sub(i, bigOne) {
		tried++
		n := new(big.Int).Mul(i, i)
		n.Sub(num, n)
		if n.Sign() == 0 {
			res = append(res, Decomposition{i})
			continue
		}
		if s, ok := SquareRoot(n); ok {
			res = append(res, Decomposition{i, s})
		}
	}
	d.recorder.ObserveSearch(2, tried)
	return res, nil
}

// Decompose3 returns every num = a² + b² + c² with
// upperBound >= a >= b >= c >= 0. num must be >= 0.
func (d *Decomposer) Decompose3(num, upperBound *big.Int) (DecompositionSet, error) {
	if num.Sign() == 0 {
		return DecompositionSet{Decomposition{}}, nil
	}
	if !ThreeSquareFeasible(num) {
		d.recorder.ObserveRejection(3, RejectLegendre)
		return nil, nil
	}

	hi, lo := SearchBounds(num, upperBound, 3)
	var res DecompositionSet
	tried := 0
	for i := hi; i.Cmp(lo) >= 0; i = new(big.Int).Sub(i, bigOne) {
		tried++
		rest := new(big.Int).Mul(i, i)
		rest.Sub(num, rest)
		pairs, err := d.Decompose2(rest, i)
		if err != nil {
			return nil, err
		}
		for _, s := range pairs {
			res = append(res, prepend(i, s))
		}
	}
	d.recorder.ObserveSearch(3, tried)
	return res, nil
}

// Decompose4 returns every num = a² + b² + c² + d² with
// upperBound >= a >= b >= c >= d >= 0. The result is never empty for
// num >= 1; for num = 0 it is empty.
func (d *Decomposer) Decompose4(num, upperBound *big.Int) (DecompositionSet, error) {
	hi, lo := SearchBounds(num, upperBound, 4)
	var res DecompositionSet
	tried := 0
	for i := hi; i.Cmp(lo) >= 0; i = new(big.Int).Sub(i, bigOne) {
		tried++
		rest := new(big.Int).Mul(i, i)
		rest.Sub(num, rest)
		triples, err := d.Decompose3(rest, i)
		if err != nil {
			return nil, err
		}
		for _, s := range triples {
			res = append(res, prepend(i, s))
		}
	}
	d.recorder.ObserveSearch(4, tried)
	return res, nil
}

// twoSquareFeasible applies the sum of two squares theorem: n > 1 is a sum
// of two squares iff every prime p = 3 (mod 4) divides it to an even power.
func (d *Decomposer) twoSquareFeasible(n *big.Int) (bool, error) {
	factors, err := d.factorizer.Factorize(n)
	if err != nil {
		return false, fmt.Errorf("two-square filter: %w", err)
	}
	for _, pp := range factors {
		if mod4(pp.Prime) == 3 && pp.Exp%2 == 1 {
			return false, nil
		}
	}
	return true, nil
}

// ThreeSquareFeasible applies Legendre's three-square theorem: n >= 0 is a
// sum of three squares iff it is not of the form 4^a(8b+7).
func ThreeSquareFeasible(n *big.Int) bool {
	return mod8(StripFactorFour(n)) != 7
}

// TwoSquareResidueFeasible is the cheap necessary condition n != 3 (mod 4).
func TwoSquareResidueFeasible(n *big.Int) bool {
	return mod4(n) != 3
}

func prepend(head *big.Int, tail Decomposition) Decomposition {
	out := make(Decomposition, 0, len(tail)+1)
	out = append(out, head)
	return append(out, tail...)
}
