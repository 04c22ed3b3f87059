package core

import (
	"fmt"
	"math/big"

	"github.com/chemandante/sum-squares/internal/sum-squares/factor"
)

// JacobiCount returns r4(n), the number of ordered, signed representations
// of n >= 1 as a sum of four squares: 8*sigma(n) for odd n and
// 24*sigma(odd part of n) for even n.
func JacobiCount(n *big.Int, f Factorizer) (*big.Int, error) {
	if n.Sign() < 1 {
		return nil, fmt.Errorf("jacobi count: n must be positive, got %s", n.String())
	}
	odd := new(big.Int).Rsh(n, n.TrailingZeroBits())
	factors, err := f.Factorize(odd)
	if err != nil {
		return nil, fmt.Errorf("jacobi count: %w", err)
	}
	sigma := factor.DivisorSum(factors)
	if n.Bit(0) == 1 {
		return sigma.Mul(sigma, big.NewInt(8)), nil
	}
	return sigma.Mul(sigma, big.NewInt(24)), nil
}

// Multiplicity returns how many ordered, signed 4-tuples the unordered
// decomposition d stands for: 2^L sign choices for its L nonzero entries
// times the 4!/(e1!*e2!*...*(4-L)!) distinct arrangements, where the e_i
// are the run lengths of equal entries. d must be sorted and hold at most
// four elements.
func Multiplicity(d Decomposition) *big.Int {
	const slots = 4
	arrangements := factorial(slots) / factorial(slots-len(d))
	run := 1
	for i := 1; i <= len(d); i++ {
		if i < len(d) && d[i].Cmp(d[i-1]) == 0 {
			run++
			continue
		}
		arrangements /= factorial(run)
		run = 1
	}
	m := big.NewInt(arrangements)
	return m.Lsh(m, uint(len(d)))
}

// ExpandedCount sums Multiplicity over a set of four-square decompositions.
func ExpandedCount(set DecompositionSet) *big.Int {
	total := new(big.Int)
	for _, d := range set {
		total.Add(total, Multiplicity(d))
	}
	return total
}

func factorial(n int) int64 {
	f := int64(1)
	for i := int64(2); i <= int64(n); i++ {
		f *= i
	}
	return f
}
