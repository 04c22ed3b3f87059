package core

import "math/big"

var bigOne = big.NewInt(1)

// Isqrt returns floor(sqrt(x)) for x >= 0. It is exact for integers of
// any size.
func Isqrt(x *big.Int) *big.Int {
	return new(big.Int).Sqrt(x)
}

// SquareRoot returns the exact square root of x and true if x is a perfect
// square, or nil and false otherwise.
func SquareRoot(x *big.Int) (*big.Int, bool) {
	if x.Sign() < 0 {
		return nil, false
	}
	s := Isqrt(x)
	if new(big.Int).Mul(s, s).Cmp(x) != 0 {
		return nil, false
	}
	return s, true
}

// CeilSqrtQuotient returns the smallest b >= 0 such that k*b^2 >= x, i.e.
// ceil(sqrt(x/k)) computed without leaving the integers.
func CeilSqrtQuotient(x *big.Int, k int64) *big.Int {
	kk := big.NewInt(k)
	b := Isqrt(new(big.Int).Quo(x, kk))
	lhs := new(big.Int).Mul(b, b)
	if lhs.Mul(lhs, kk).Cmp(x) < 0 {
		b.Add(b, bigOne)
	}
	return b
}

// SearchBounds returns the inclusive range [lo, hi] of candidate leading
// terms when splitting num into k squares: hi = min(isqrt(num), upperBound),
// lo = max(ceil(sqrt(num/k)), 1). A nil upperBound leaves hi unclamped.
// The range is empty when lo > hi.
func SearchBounds(num, upperBound *big.Int, k int64) (hi, lo *big.Int) {
	hi = Isqrt(num)
	if upperBound != nil && hi.Cmp(upperBound) > 0 {
		hi.Set(upperBound)
	}
	lo = CeilSqrtQuotient(num, k)
	if lo.Sign() == 0 {
		lo.Set(bigOne)
	}
	return hi, lo
}

// StripFactorFour divides x by 4 as long as it is divisible by 4.
func StripFactorFour(x *big.Int) *big.Int {
	m := new(big.Int).Set(x)
	for m.Sign() > 0 && m.Bit(0) == 0 && m.Bit(1) == 0 {
		m.Rsh(m, 2)
	}
	return m
}

// mod4 returns x mod 4 for x >= 0.
func mod4(x *big.Int) uint {
	return x.Bit(1)<<1 | x.Bit(0)
}

// mod8 returns x mod 8 for x >= 0.
func mod8(x *big.Int) uint {
	return x.Bit(2)<<2 | x.Bit(1)<<1 | x.Bit(0)
}
