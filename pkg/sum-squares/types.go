package sumsquares

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/chemandante/sum-squares/internal/sum-squares/core"
	"github.com/chemandante/sum-squares/internal/sum-squares/utils"
)

// Decomposition is one representation: the nonzero square roots sorted
// non-ascending. Missing trailing entries are zeros.
type Decomposition = core.Decomposition

// DecompositionSet lists every Decomposition of one query
type DecompositionSet = core.DecompositionSet

// Config represents the engine configuration
type Config = utils.Config

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// LoadConfig reads a YAML configuration file and applies environment
// overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	return utils.LoadConfig(path)
}

// Arity is the number of squares in a decomposition
type Arity int

const (
	// TwoSquares selects n = a² + b²
	TwoSquares Arity = 2

	// ThreeSquares selects n = a² + b² + c²
	ThreeSquares Arity = 3

	// FourSquares selects n = a² + b² + c² + d²
	FourSquares Arity = 4
)

// ParseArity accepts "2", "-2", "two" and the same forms for 3 and 4
func ParseArity(s string) (Arity, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "-") {
	case "2", "two":
		return TwoSquares, nil
	case "3", "three":
		return ThreeSquares, nil
	case "4", "four":
		return FourSquares, nil
	}
	return 0, &SquaresError{
		Code:    ErrInvalidArity,
		Message: fmt.Sprintf("arity must be 2, 3 or 4, got %q", s),
	}
}

// Valid reports whether a is one of the supported arities
func (a Arity) Valid() bool {
	return a >= TwoSquares && a <= FourSquares
}

// String returns the arity in words
func (a Arity) String() string {
	switch a {
	case TwoSquares:
		return "two"
	case ThreeSquares:
		return "three"
	case FourSquares:
		return "four"
	}
	return fmt.Sprintf("Arity(%d)", int(a))
}

// Reasons a query can come back empty.
const (
	ReasonFermat   = "sum of two squares theorem"
	ReasonLegendre = "Legendre's three-square theorem"
)

// Result is the outcome of one decomposition query
type Result struct {
	// Number that was decomposed
	Number *big.Int

	// Arity requested
	Arity Arity

	// Decompositions found, in descending order of the leading term
	Decompositions DecompositionSet

	// Feasible is false when a theorem rules every decomposition out
	Feasible bool

	// Reason names the theorem when Feasible is false
	Reason string
}

// Count returns the number of decompositions
func (r *Result) Count() int {
	return len(r.Decompositions)
}

// Verification compares a four-square set against Jacobi's formula
type Verification struct {
	// Expected is r4(n)
	Expected *big.Int

	// Actual is the signed, ordered count the set stands for
	Actual *big.Int

	// Complete is true when Expected equals Actual
	Complete bool

	// Sound is true when every decomposition sums to n
	Sound bool

	// Problems lists the decompositions that failed the sum check
	Problems []Decomposition
}
