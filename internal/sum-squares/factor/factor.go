package factor

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"go.uber.org/zap"
)

var (
	// ErrNotPositive is returned when asked to factorize n < 1.
	ErrNotPositive = errors.New("factor: number must be positive")

	// ErrNoSplit is returned when Pollard-Brent could not split a composite
	// within the configured number of polynomial constants.
	ErrNoSplit = errors.New("factor: failed to split composite")
)

const (
	// trialLimit bounds the small primes removed by trial division.
	trialLimit = 1000

	// millerRabinRounds is the number of Miller-Rabin rounds passed to
	// big.Int.ProbablyPrime (which also runs a Baillie-PSW test).
	millerRabinRounds = 20

	// brentBatch is the number of products accumulated before a gcd.
	brentBatch = 128

	defaultMaxAttempts = 64
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// PrimePower is a single term p^Exp of a prime factorization.
type PrimePower struct {
	Prime *big.Int
	Exp   int
}

// Factorizer computes complete prime factorizations of arbitrarily large
// integers: trial division by small primes, then recursive Pollard-Brent
// splitting with a probabilistic primality check on every cofactor.
type Factorizer struct {
	smallPrimes []int64
	maxAttempts int
	logger      *zap.Logger
}

// New creates a Factorizer. A nil logger disables logging.
func New(logger *zap.Logger) *Factorizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factorizer{
		smallPrimes: sieve(trialLimit),
		maxAttempts: defaultMaxAttempts,
		logger:      logger,
	}
}

// Factorize returns the prime factorization of n sorted by ascending prime.
// Factorize(1) is the empty factorization.
func (f *Factorizer) Factorize(n *big.Int) ([]PrimePower, error) {
	if n == nil || n.Sign() < 1 {
		return nil, ErrNotPositive
	}

	exps := make(map[string]*PrimePower)
	add := func(p *big.Int, k int) {
		key := p.String()
		if pp, ok := exps[key]; ok {
			pp.Exp += k
			return
		}
		exps[key] = &PrimePower{Prime: new(big.Int).Set(p), Exp: k}
	}

	m := new(big.Int).Set(n)
	q, r := new(big.Int), new(big.Int)
	for _, sp := range f.smallPrimes {
		p := big.NewInt(sp)
		if new(big.Int).Mul(p, p).Cmp(m) > 0 {
			break
		}
		k := 0
		for {
			q.QuoRem(m, p, r)
			if r.Sign() != 0 {
				break
			}
			m.Set(q)
			k++
		}
		if k > 0 {
			add(p, k)
		}
	}

	if m.Cmp(bigOne) > 0 {
		if err := f.split(m, 1, add); err != nil {
			return nil, fmt.Errorf("factorize %s: %w", n.String(), err)
		}
	}

	result := make([]PrimePower, 0, len(exps))
	for _, pp := range exps {
		result = append(result, *pp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Prime.Cmp(result[j].Prime) < 0
	})
	return result, nil
}

// split records the prime factors of m (m > 1, free of small primes),
// each with multiplicity k.
func (f *Factorizer) split(m *big.Int, k int, add func(*big.Int, int)) error {
	if m.ProbablyPrime(millerRabinRounds) {
		add(m, k)
		return nil
	}

	if root := new(big.Int).Sqrt(m); new(big.Int).Mul(root, root).Cmp(m) == 0 {
		return f.split(root, 2*k, add)
	}

	for c := int64(1); c <= int64(f.maxAttempts); c++ {
		d := brent(m, c)
		if d.Cmp(bigOne) == 0 || d.Cmp(m) == 0 {
			f.logger.Debug("pollard-brent attempt failed",
				zap.String("n", m.String()),
				zap.Int64("c", c))
			continue
		}
		if err := f.split(d, k, add); err != nil {
			return err
		}
		return f.split(new(big.Int).Quo(m, d), k, add)
	}
	return fmt.Errorf("%w: %s", ErrNoSplit, m.String())
}

// brent runs Brent's variant of Pollard's rho with f(y) = y^2 + c (mod n)
// and returns a divisor of n, possibly 1 or n itself on failure.
func brent(n *big.Int, c int64) *big.Int {
	if n.Bit(0) == 0 {
		return new(big.Int).Set(bigTwo)
	}

	cc := big.NewInt(c)
	step := func(y *big.Int) *big.Int {
		next := new(big.Int).Mul(y, y)
		next.Add(next, cc)
		return next.Mod(next, n)
	}

	y := new(big.Int).Set(bigTwo)
	x := new(big.Int)
	ys := new(big.Int)
	q := big.NewInt(1)
	g := big.NewInt(1)
	diff := new(big.Int)

	for r := 1; g.Cmp(bigOne) == 0; r *= 2 {
		x.Set(y)
		for i := 0; i < r; i++ {
			y = step(y)
		}
		for k := 0; k < r && g.Cmp(bigOne) == 0; k += brentBatch {
			ys.Set(y)
			limit := brentBatch
			if r-k < limit {
				limit = r - k
			}
			for i := 0; i < limit; i++ {
				y = step(y)
				diff.Sub(x, y)
				q.Mul(q, diff.Abs(diff))
				q.Mod(q, n)
			}
			g.GCD(nil, nil, q, n)
		}
	}

	if g.Cmp(n) == 0 {
		// The batch overshot; walk the last segment one step at a time.
		for {
			ys = step(ys)
			diff.Sub(x, ys)
			g.GCD(nil, nil, diff.Abs(diff), n)
			if g.Cmp(bigOne) > 0 {
				break
			}
		}
	}
	return g
}

// DivisorSum returns sigma(n), the sum of all positive divisors, computed
// from the factorization of n as the product of (p^(k+1) - 1) / (p - 1).
func DivisorSum(factors []PrimePower) *big.Int {
	sum := big.NewInt(1)
	for _, pp := range factors {
		num := new(big.Int).Exp(pp.Prime, big.NewInt(int64(pp.Exp+1)), nil)
		num.Sub(num, bigOne)
		den := new(big.Int).Sub(pp.Prime, bigOne)
		sum.Mul(sum, num.Quo(num, den))
	}
	return sum
}

// Product multiplies a factorization back out.
func Product(factors []PrimePower) *big.Int {
	n := big.NewInt(1)
	for _, pp := range factors {
		n.Mul(n, new(big.Int).Exp(pp.Prime, big.NewInt(int64(pp.Exp)), nil))
	}
	return n
}

func sieve(limit int) []int64 {
	composite := make([]bool, limit+1)
	primes := make([]int64, 0, limit/4)
	for i := 2; i <= limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, int64(i))
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}
	return primes
}
