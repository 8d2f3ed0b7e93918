package testutil

// FixedTraceIDs returns the same trace ID every time.
//
// CLI responses carry a trace_id; pinning it makes JSON output byte-stable
// for golden comparison.
//
// Thread-safety: FixedTraceIDs is stateless and safe for concurrent use.
type FixedTraceIDs struct {
	id string
}

// NewFixedTraceIDs creates a generator. If id is empty, Generate returns
// "trace-test".
func NewFixedTraceIDs(id string) *FixedTraceIDs {
	if id == "" {
		id = "trace-test"
	}
	return &FixedTraceIDs{id: id}
}

// Generate returns the fixed trace ID.
func (g *FixedTraceIDs) Generate() string {
	return g.id
}
