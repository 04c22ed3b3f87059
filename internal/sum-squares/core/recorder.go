package core

// Rejection reasons reported to a Recorder.
const (
	RejectResidue  = "residue"  // n = 3 (mod 4), no factorization needed
	RejectCached   = "cached"   // n found in the InfeasibilityCache
	RejectFermat   = "fermat"   // a prime 3 (mod 4) divides n to an odd power
	RejectLegendre = "legendre" // n = 4^a(8b+7)
)

// Recorder observes the search. Implementations must be cheap; they are
// called on the hot path.
type Recorder interface {
	// ObserveSearch is called once per bounded search with the number of
	// candidate leading terms that were tried.
	ObserveSearch(arity int, candidates int)

	// ObserveRejection is called when a feasibility filter rules n out.
	ObserveRejection(arity int, reason string)

	// ObserveCacheInsert is called when a new value enters the cache.
	ObserveCacheInsert()
}

type nopRecorder struct{}

func (nopRecorder) ObserveSearch(int, int)       {}
func (nopRecorder) ObserveRejection(int, string) {}
func (nopRecorder) ObserveCacheInsert()          {}
