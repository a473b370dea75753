package opts

import (
	"errors"
	"fmt"
)

// Option enum errors.
var (
	ErrBadDiscriminant = errors.New("invalid enum discriminant")
)

// CongestionControl selects the behavior when the network path is
// backpressured.
type CongestionControl uint8

const (
	// CongestionDrop drops the message under backpressure.
	CongestionDrop CongestionControl = 0

	// CongestionBlock blocks the caller until the path drains.
	CongestionBlock CongestionControl = 1
)

// String returns the policy name.
func (c CongestionControl) String() string {
	switch c {
	case CongestionDrop:
		return "drop"
	case CongestionBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Valid reports whether the discriminant is defined.
func (c CongestionControl) Valid() bool { return c <= CongestionBlock }

// ParseCongestionControl parses a policy name.
func ParseCongestionControl(s string) (CongestionControl, error) {
	switch s {
	case "drop":
		return CongestionDrop, nil
	case "block":
		return CongestionBlock, nil
	default:
		return 0, fmt.Errorf("%w: congestion control %q", ErrBadDiscriminant, s)
	}
}

// Priority is the relative scheduling weight of a publication.
// Lower values are scheduled first.
type Priority uint8

const (
	// PriorityRealTime is the highest priority.
	PriorityRealTime Priority = 1

	// PriorityInteractiveHigh is for latency-sensitive interactive data.
	PriorityInteractiveHigh Priority = 2

	// PriorityInteractiveLow is for interactive data.
	PriorityInteractiveLow Priority = 3

	// PriorityDataHigh is for important application data.
	PriorityDataHigh Priority = 4

	// PriorityData is the default priority.
	PriorityData Priority = 5

	// PriorityDataLow is for bulk application data.
	PriorityDataLow Priority = 6

	// PriorityBackground is the lowest priority.
	PriorityBackground Priority = 7
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityRealTime:
		return "real_time"
	case PriorityInteractiveHigh:
		return "interactive_high"
	case PriorityInteractiveLow:
		return "interactive_low"
	case PriorityDataHigh:
		return "data_high"
	case PriorityData:
		return "data"
	case PriorityDataLow:
		return "data_low"
	case PriorityBackground:
		return "background"
	default:
		return "unknown"
	}
}

// Valid reports whether the discriminant is defined.
func (p Priority) Valid() bool { return p >= PriorityRealTime && p <= PriorityBackground }

// ParsePriority parses a priority name.
func ParsePriority(s string) (Priority, error) {
	for p := PriorityRealTime; p <= PriorityBackground; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: priority %q", ErrBadDiscriminant, s)
}

// Reliability is the delivery expectation of a subscription.
type Reliability uint8

const (
	// ReliabilityBestEffort tolerates sample loss.
	ReliabilityBestEffort Reliability = 0

	// ReliabilityReliable expects reliable delivery.
	ReliabilityReliable Reliability = 1
)

// String returns the reliability name.
func (r Reliability) String() string {
	switch r {
	case ReliabilityBestEffort:
		return "best_effort"
	case ReliabilityReliable:
		return "reliable"
	default:
		return "unknown"
	}
}

// Valid reports whether the discriminant is defined.
func (r Reliability) Valid() bool { return r <= ReliabilityReliable }

// ParseReliability parses a reliability name.
func ParseReliability(s string) (Reliability, error) {
	switch s {
	case "best_effort":
		return ReliabilityBestEffort, nil
	case "reliable":
		return ReliabilityReliable, nil
	default:
		return 0, fmt.Errorf("%w: reliability %q", ErrBadDiscriminant, s)
	}
}

// QueryTarget selects which peers a query is routed to.
type QueryTarget uint8

const (
	// TargetBestMatching queries the best-matching peer for each key.
	TargetBestMatching QueryTarget = 0

	// TargetAll queries every matching peer.
	TargetAll QueryTarget = 1

	// TargetAllComplete queries every peer claiming a complete set.
	TargetAllComplete QueryTarget = 2
)

// String returns the target name.
func (t QueryTarget) String() string {
	switch t {
	case TargetBestMatching:
		return "best_matching"
	case TargetAll:
		return "all"
	case TargetAllComplete:
		return "all_complete"
	default:
		return "unknown"
	}
}

// Valid reports whether the discriminant is defined.
func (t QueryTarget) Valid() bool { return t <= TargetAllComplete }

// ParseQueryTarget parses a target name.
func ParseQueryTarget(s string) (QueryTarget, error) {
	switch s {
	case "best_matching":
		return TargetBestMatching, nil
	case "all":
		return TargetAll, nil
	case "all_complete":
		return TargetAllComplete, nil
	default:
		return 0, fmt.Errorf("%w: query target %q", ErrBadDiscriminant, s)
	}
}

// Consolidation is the policy for merging multiple replies to one
// query that carry the same key.
type Consolidation uint8

const (
	// ConsolidationNone forwards every reply.
	ConsolidationNone Consolidation = 0

	// ConsolidationMonotonic forwards replies whose timestamp is newer
	// than the last forwarded one for the same key.
	ConsolidationMonotonic Consolidation = 1

	// ConsolidationLatest forwards only the newest reply per key.
	ConsolidationLatest Consolidation = 2
)

// String returns the consolidation name.
func (c Consolidation) String() string {
	switch c {
	case ConsolidationNone:
		return "none"
	case ConsolidationMonotonic:
		return "monotonic"
	case ConsolidationLatest:
		return "latest"
	default:
		return "unknown"
	}
}

// Valid reports whether the discriminant is defined.
func (c Consolidation) Valid() bool { return c <= ConsolidationLatest }

// ParseConsolidation parses a consolidation name.
func ParseConsolidation(s string) (Consolidation, error) {
	switch s {
	case "none":
		return ConsolidationNone, nil
	case "monotonic":
		return ConsolidationMonotonic, nil
	case "latest":
		return ConsolidationLatest, nil
	default:
		return 0, fmt.Errorf("%w: consolidation %q", ErrBadDiscriminant, s)
	}
}
