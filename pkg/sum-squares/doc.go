// Package sumsquares enumerates the representations of a natural number as
// a sum of two, three or four squares of non-negative integers.
//
// Every decomposition is reported once, as a tuple sorted non-ascending,
// and zero summands are left out: for n = 25 and two squares the engine
// returns (5) and (4, 3). Numbers are arbitrary-precision *big.Int values.
//
// # Feasibility
//
// Before searching, the engine consults the classical theorems:
//
//   - n is a sum of two squares iff every prime p ≡ 3 (mod 4) divides n to
//     an even power. This needs the factorization of n, so values proven
//     infeasible are remembered for the lifetime of the Engine.
//   - n is a sum of three squares iff n is not of the form 4^a(8b+7)
//     (Legendre).
//   - every natural number is a sum of four squares (Lagrange).
//
// # Quick Start
//
//	engine, err := sumsquares.NewEngine(sumsquares.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := engine.DecomposeTwo(ctx, big.NewInt(2025))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, d := range result.Decompositions {
//		fmt.Println(d) // 45², 36²+27²
//	}
//
// # Verification
//
// Jacobi's four-square theorem gives the number of ordered, signed
// representations r4(n). Engine.Verify expands a four-square set by the
// multiplicity of each tuple and compares the total with r4(n):
//
//	result, _ := engine.DecomposeFour(ctx, n)
//	v, err := engine.Verify(n, result.Decompositions)
//	if err == nil && v.Complete {
//		fmt.Println("all", v.Expected, "representations accounted for")
//	}
//
// # Digests
//
// Engine.Digest fingerprints a Result with sha256, sha3 or a Poseidon
// sponge over the Goldilocks field, so result sets can be compared
// without shipping them around.
package sumsquares
