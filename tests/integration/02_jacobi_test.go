package integration_test

import (
	"context"
	"math/big"
	"testing"

	sumsquares "github.com/chemandante/sum-squares/pkg/sum-squares"
)

// Test02_JacobiCompleteness checks the four-square enumeration against
// Jacobi's r4(n) for every n up to 1000, with and without the cache
//
// Related example: examples/03_jacobi_census/main.go
func Test02_JacobiCompleteness(t *testing.T) {
	t.Log("=== Test 02: Four-square completeness via Jacobi's theorem ===")

	for _, cacheEnabled := range []bool{true, false} {
		engine, err := sumsquares.NewEngine(sumsquares.DefaultConfig().WithCache(cacheEnabled))
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}
		ctx := context.Background()

		for n := int64(1); n <= 1000; n++ {
			num := big.NewInt(n)
			result, err := engine.DecomposeFour(ctx, num)
			if err != nil {
				t.Fatalf("DecomposeFour(%d) failed: %v", n, err)
			}
			if !result.Feasible {
				t.Fatalf("n=%d: four squares must always be feasible", n)
			}

			v, err := engine.Verify(num, result.Decompositions)
			if err != nil {
				t.Fatalf("Verify(%d) failed: %v", n, err)
			}
			if !v.Complete {
				t.Errorf("n=%d cache=%v: expected %s signed representations, got %s",
					n, cacheEnabled, v.Expected, v.Actual)
			}
		}
		t.Logf("  ✓ cache=%v: r4(n) matches for n = 1..1000", cacheEnabled)
	}
}

// Test02_LargeFourSquare runs the completeness check on a number with many
// divisors
func Test02_LargeFourSquare(t *testing.T) {
	engine, err := sumsquares.NewEngine(sumsquares.DefaultConfig().WithCompletenessCheck(true))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	result, err := engine.DecomposeFour(context.Background(), big.NewInt(5040))
	if err != nil {
		t.Fatalf("DecomposeFour(5040) failed: %v", err)
	}
	t.Logf("  ✓ 5040 has %d unordered four-square decompositions", result.Count())
}
