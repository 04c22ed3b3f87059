package core

import (
	"fmt"
	"math/big"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemandante/sum-squares/internal/sum-squares/factor"
)

func newTestDecomposer(cache *InfeasibilityCache, opts ...DecomposerOption) *Decomposer {
	return NewDecomposer(factor.New(nil), cache, opts...)
}

func toInts(set DecompositionSet) [][]int64 {
	out := make([][]int64, len(set))
	for i, d := range set {
		out[i] = make([]int64, len(d))
		for j, x := range d {
			out[i][j] = x.Int64()
		}
	}
	return out
}

func decompose(t *testing.T, d *Decomposer, arity int, n int64) DecompositionSet {
	t.Helper()
	var (
		set DecompositionSet
		err error
	)
	switch arity {
	case 2:
		set, err = d.Decompose2(big.NewInt(n), nil)
	case 3:
		set, err = d.Decompose3(big.NewInt(n), nil)
	case 4:
		set, err = d.Decompose4(big.NewInt(n), nil)
	default:
		t.Fatalf("bad arity %d", arity)
	}
	require.NoError(t, err)
	return set
}

// bruteForce enumerates every non-ascending k-tuple of non-negative
// integers whose squares sum to n, with zeros stripped.
func bruteForce(n int64, k int) [][]int64 {
	var out [][]int64
	var rec func(rest int64, maxTerm int64, left int, acc []int64)
	rec = func(rest int64, maxTerm int64, left int, acc []int64) {
		if left == 0 {
			if rest == 0 {
				out = append(out, append([]int64(nil), acc...))
			}
			return
		}
		for a := maxTerm; a >= 0; a-- {
			if a*a > rest {
				continue
			}
			if int64(left)*a*a < rest {
				break
			}
			next := acc
			if a > 0 {
				next = append(append([]int64(nil), acc...), a)
			}
			rec(rest-a*a, a, left-1, next)
		}
	}
	root := int64(0)
	for (root+1)*(root+1) <= n {
		root++
	}
	rec(n, root, k, nil)
	return out
}

func canonical(tuples [][]int64) []string {
	out := make([]string, len(tuples))
	for i, tu := range tuples {
		out[i] = fmt.Sprint(tu)
	}
	sort.Strings(out)
	return out
}

func TestDecomposeBoundaryCases(t *testing.T) {
	d := newTestDecomposer(NewInfeasibilityCache())

	tests := []struct {
		name  string
		arity int
		n     int64
		want  [][]int64
	}{
		{"zero by two", 2, 0, [][]int64{{}}},
		{"zero by three", 3, 0, [][]int64{{}}},
		{"zero by four", 4, 0, [][]int64{}},
		{"one by two", 2, 1, [][]int64{{1}}},
		{"one by three", 3, 1, [][]int64{{1}}},
		{"one by four", 4, 1, [][]int64{{1}}},
		{"two by four", 4, 2, [][]int64{{1, 1}}},
		{"three by three", 3, 3, [][]int64{{1, 1, 1}}},
		{"seven by two", 2, 7, [][]int64{}},
		{"seven by three", 3, 7, [][]int64{}},
		{"seven by four", 4, 7, [][]int64{{2, 1, 1, 1}}},
		{"twenty-five by two", 2, 25, [][]int64{{5}, {4, 3}}},
		{"fifty by two", 2, 50, [][]int64{{7, 1}, {5, 5}}},
		{"2025 by two", 2, 2025, [][]int64{{45}, {36, 27}}},
		{"21 by two", 2, 21, [][]int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toInts(decompose(t, d, tt.arity, tt.n))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("decompose%d(%d) mismatch (-want +got):\n%s", tt.arity, tt.n, diff)
			}
		})
	}
}

func TestDecomposeMatchesBruteForce(t *testing.T) {
	d := newTestDecomposer(NewInfeasibilityCache())
	for _, arity := range []int{2, 3, 4} {
		start := int64(0)
		if arity == 4 {
			start = 1
		}
		for n := start; n <= 400; n++ {
			got := toInts(decompose(t, d, arity, n))
			want := bruteForce(n, arity)
			if diff := cmp.Diff(canonical(want), canonical(got)); diff != "" {
				t.Fatalf("decompose%d(%d) mismatch (-want +got):\n%s", arity, n, diff)
			}
		}
	}
}

func TestDecomposeInvariants(t *testing.T) {
	d := newTestDecomposer(NewInfeasibilityCache())
	for _, arity := range []int{2, 3, 4} {
		for n := int64(1); n <= 600; n++ {
			set := decompose(t, d, arity, n)
			seen := make(map[string]bool, len(set))
			for i, dec := range set {
				require.LessOrEqual(t, len(dec), arity)
				require.Zero(t, dec.SumOfSquares().Cmp(big.NewInt(n)), "sum of %s != %d", dec.Tuple(), n)
				for j := 1; j < len(dec); j++ {
					require.GreaterOrEqual(t, dec[j-1].Cmp(dec[j]), 0, "%s not sorted", dec.Tuple())
				}
				for _, x := range dec {
					require.Positive(t, x.Sign(), "zero summand stored in %s", dec.Tuple())
				}
				key := dec.Tuple()
				require.False(t, seen[key], "duplicate %s for n=%d", key, n)
				seen[key] = true
				if i > 0 {
					require.GreaterOrEqual(t, set[i-1][0].Cmp(dec[0]), 0, "leading terms must not increase")
				}
			}
		}
	}
}

func TestTwoSquareFeasibility(t *testing.T) {
	d := newTestDecomposer(NewInfeasibilityCache())
	f := factor.New(nil)
	for n := int64(2); n <= 1000; n++ {
		factors, err := f.Factorize(big.NewInt(n))
		require.NoError(t, err)
		expressible := true
		for _, pp := range factors {
			if pp.Prime.Int64()%4 == 3 && pp.Exp%2 == 1 {
				expressible = false
			}
		}
		set := decompose(t, d, 2, n)
		assert.Equal(t, expressible, len(set) > 0, "n=%d", n)
		if n%4 == 3 {
			assert.False(t, TwoSquareResidueFeasible(big.NewInt(n)), "n=%d", n)
		} else {
			assert.True(t, TwoSquareResidueFeasible(big.NewInt(n)), "n=%d", n)
		}
	}
}

func TestThreeSquareFeasibility(t *testing.T) {
	d := newTestDecomposer(NewInfeasibilityCache())
	excluded := make(map[int64]bool)
	for p := int64(1); p <= 1000; p *= 4 {
		for b := int64(0); p*(8*b+7) <= 1000; b++ {
			excluded[p*(8*b+7)] = true
		}
	}
	for n := int64(1); n <= 1000; n++ {
		set := decompose(t, d, 3, n)
		assert.Equal(t, !excluded[n], len(set) > 0, "n=%d", n)
		assert.Equal(t, !excluded[n], ThreeSquareFeasible(big.NewInt(n)), "n=%d", n)
	}
}

func TestDecomposeUpperBound(t *testing.T) {
	d := newTestDecomposer(nil)
	set, err := d.Decompose2(big.NewInt(2025), big.NewInt(40))
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{36, 27}}, toInts(set))

	set, err = d.Decompose2(big.NewInt(2025), big.NewInt(30))
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestCacheDoesNotChangeResults(t *testing.T) {
	cached := newTestDecomposer(NewInfeasibilityCache())
	uncached := newTestDecomposer(nil)
	for _, n := range []int64{10, 77, 300, 2023, 2025} {
		a := toInts(decompose(t, cached, 4, n))
		b := toInts(decompose(t, uncached, 4, n))
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("n=%d cached/uncached mismatch:\n%s", n, diff)
		}
	}
	assert.Positive(t, cached.Cache().Len())
	assert.Nil(t, uncached.Cache())
}

type countingRecorder struct {
	searches   map[int]int
	rejections map[string]int
	inserts    int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{searches: map[int]int{}, rejections: map[string]int{}}
}

func (r *countingRecorder) ObserveSearch(arity int, candidates int) { r.searches[arity] += candidates }
func (r *countingRecorder) ObserveRejection(_ int, reason string)    { r.rejections[reason]++ }
func (r *countingRecorder) ObserveCacheInsert()                      { r.inserts++ }

func TestRecorderSeesFiltersAndCache(t *testing.T) {
	rec := newCountingRecorder()
	d := newTestDecomposer(NewInfeasibilityCache(), WithRecorder(rec))

	// 21 = 3 * 7 is 1 mod 4 but fails the factorization filter.
	set, err := d.Decompose2(big.NewInt(21), nil)
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.Equal(t, 1, rec.rejections[RejectFermat])
	assert.Equal(t, 1, rec.inserts)

	_, err = d.Decompose2(big.NewInt(21), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.rejections[RejectCached])
	assert.Equal(t, 1, rec.inserts)

	_, err = d.Decompose2(big.NewInt(7), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.rejections[RejectResidue])

	_, err = d.Decompose3(big.NewInt(28), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.rejections[RejectLegendre])

	_, err = d.Decompose2(big.NewInt(2025), nil)
	require.NoError(t, err)
	assert.Equal(t, 14, rec.searches[2], "candidates 45 down to 32")
}

func TestDecomposeLargeNumbersUsesFilters(t *testing.T) {
	d := newTestDecomposer(NewInfeasibilityCache())

	p := big.NewInt(1000000007)
	// 21 * p^2 is 1 mod 4 yet not a sum of two squares; only the
	// factorization can tell.
	n := new(big.Int).Mul(p, p)
	n.Mul(n, big.NewInt(21))
	set, err := d.Decompose2(n, nil)
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.True(t, d.Cache().Contains(n))

	// 4^40 * 7 is far beyond float64 precision.
	m := new(big.Int).Lsh(big.NewInt(7), 80)
	set, err = d.Decompose3(m, nil)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestDecompositionString(t *testing.T) {
	assert.Equal(t, "0²", Decomposition{}.String())
	assert.Equal(t, "45²", Decomposition{big.NewInt(45)}.String())
	assert.Equal(t, "36²+27²", Decomposition{big.NewInt(36), big.NewInt(27)}.String())
	assert.Equal(t, "(36, 27)", Decomposition{big.NewInt(36), big.NewInt(27)}.Tuple())
	assert.Equal(t, "()", Decomposition{}.Tuple())
}

func BenchmarkDecompose4(b *testing.B) {
	d := newTestDecomposer(NewInfeasibilityCache())
	n := big.NewInt(2025)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.Decompose4(n, nil)
	}
}

func BenchmarkDecompose4NoCache(b *testing.B) {
	d := newTestDecomposer(nil)
	n := big.NewInt(2025)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.Decompose4(n, nil)
	}
}
