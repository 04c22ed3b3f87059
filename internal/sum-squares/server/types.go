package server

// DecompositionResponse is the response for GET /v1/decompositions/:arity/:n.
//
// Numbers travel as decimal strings because they are arbitrary precision.
type DecompositionResponse struct {
	// Number is the decomposed value.
	Number string `json:"number"`

	// Arity is the number of squares, 2 to 4.
	Arity int `json:"arity"`

	// Feasible is false when a theorem rules out every decomposition.
	Feasible bool `json:"feasible"`

	// Reason names the theorem when Feasible is false.
	Reason string `json:"reason,omitempty"`

	// Count is len(Decompositions).
	Count int `json:"count"`

	// Decompositions lists the nonzero roots of each decomposition,
	// non-ascending, ordered by descending leading term.
	Decompositions [][]string `json:"decompositions"`

	// Digest fingerprints the result with DigestFunction.
	Digest string `json:"digest"`

	// DigestFunction is sha256, sha3 or poseidon.
	DigestFunction string `json:"digest_function"`

	// Verification is present when ?verify=true was requested.
	Verification *VerificationResponse `json:"verification,omitempty"`
}

// VerificationResponse reports the Jacobi completeness check.
type VerificationResponse struct {
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Complete bool   `json:"complete"`
	Sound    bool   `json:"sound"`
}

// HealthResponse is the response for GET /v1/health.
type HealthResponse struct {
	// Status is always "healthy" while the server answers.
	Status string `json:"status"`

	// Version is the service version.
	Version string `json:"version"`

	// CacheSize is the number of values in the infeasibility cache.
	CacheSize int `json:"cache_size"`
}

// ErrorResponse is returned for all failed requests.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`
}
