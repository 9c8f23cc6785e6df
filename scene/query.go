package scene

// MaxThreads is the largest number of rasterizer threads a query keeps
// per-thread slots for.
const MaxThreads = 32

// QueryKind selects what a query measures.
type QueryKind uint8

const (
	// QueryOcclusionCounter counts samples written.
	QueryOcclusionCounter QueryKind = iota

	// QueryOcclusionPredicate reports whether any sample was written.
	QueryOcclusionPredicate

	// QueryPipelineStatistics counts fragment shader invocations.
	QueryPipelineStatistics

	// QueryTimeElapsed measures wall-clock nanoseconds between begin and end.
	QueryTimeElapsed

	// QueryTimestamp records the wall clock at end.
	QueryTimestamp

	// NumQueryKinds is the number of query kinds.
	NumQueryKinds
)

// String returns the kind's name.
func (k QueryKind) String() string {
	switch k {
	case QueryOcclusionCounter:
		return "occlusion-counter"
	case QueryOcclusionPredicate:
		return "occlusion-predicate"
	case QueryPipelineStatistics:
		return "pipeline-statistics"
	case QueryTimeElapsed:
		return "time-elapsed"
	case QueryTimestamp:
		return "timestamp"
	}
	return "unknown"
}

// UsesClock reports whether the kind samples the wall clock rather than a
// thread counter.
func (k QueryKind) UsesClock() bool {
	return k == QueryTimeElapsed || k == QueryTimestamp
}

// Query accumulates a measurement across rasterizer threads.
//
// Each thread only touches its own slot, so no locking is needed while a
// scene is rasterized. Result and Reset must only be called when no
// rasterization is in flight.
type Query struct {
	Kind QueryKind

	start [MaxThreads]uint64
	end   [MaxThreads]uint64
}

// NewQuery creates a query of the given kind.
func NewQuery(kind QueryKind) *Query {
	return &Query{Kind: kind}
}

// Begin records value, a counter or clock reading, in thread's slot.
func (q *Query) Begin(thread int, value uint64) {
	switch q.Kind {
	case QueryTimestamp:
		// Only the end time matters.
	case QueryTimeElapsed:
		if q.start[thread] == 0 || value < q.start[thread] {
			q.start[thread] = value
		}
	default:
		q.start[thread] = value
	}
}

// End closes thread's slot with value.
//
// Counting kinds accumulate the delta since Begin; clock kinds keep the
// latest reading.
func (q *Query) End(thread int, value uint64) {
	switch q.Kind {
	case QueryTimestamp, QueryTimeElapsed:
		if value > q.end[thread] {
			q.end[thread] = value
		}
	default:
		q.end[thread] += value - q.start[thread]
		q.start[thread] = 0
	}
}

// Result combines the per-thread slots.
//
// Counters and pipeline statistics are summed, the predicate is 1 if any
// sample passed, a timestamp is the latest end, and elapsed time spans the
// earliest begin to the latest end.
func (q *Query) Result() uint64 {
	var sum, latest, earliest uint64
	for i := range MaxThreads {
		sum += q.end[i]
		latest = max(latest, q.end[i])
		if s := q.start[i]; s != 0 && (earliest == 0 || s < earliest) {
			earliest = s
		}
	}

	switch q.Kind {
	case QueryOcclusionPredicate:
		if sum > 0 {
			return 1
		}
		return 0
	case QueryTimestamp:
		return latest
	case QueryTimeElapsed:
		if earliest == 0 || latest < earliest {
			return 0
		}
		return latest - earliest
	}
	return sum
}

// Slot returns thread's start and end values.
func (q *Query) Slot(thread int) (start, end uint64) {
	return q.start[thread], q.end[thread]
}

// Reset clears every slot.
func (q *Query) Reset() {
	q.start = [MaxThreads]uint64{}
	q.end = [MaxThreads]uint64{}
}
