package opts

import (
	"github.com/zlink-protocol/zlink-go/pkg/sample"
)

// Option names recognized across operations. A name carries the same
// meaning in every operation that recognizes it.
const (
	OptKind              = "kind"
	OptCongestionControl = "congestion_control"
	OptPriority          = "priority"
	OptLocalRouting      = "local_routing"
	OptConsolidation     = "consolidation"
	OptTarget            = "target"
	OptComplete          = "complete"
	OptLocal             = "local"
	OptReliability       = "reliability"
)

// WriteConfig configures a put or delete submission.
type WriteConfig struct {
	// Kind overrides the sample kind carried by the submission.
	Kind sample.Kind

	// CongestionControl selects block or drop under backpressure.
	CongestionControl CongestionControl

	// Priority is the relative scheduling weight.
	Priority Priority

	// LocalRouting also delivers to matching subscribers declared in
	// the same process.
	LocalRouting bool
}

// DefaultPutConfig returns the base configuration for put.
func DefaultPutConfig() WriteConfig {
	return WriteConfig{
		Kind:              sample.KindPut,
		CongestionControl: CongestionDrop,
		Priority:          PriorityData,
		LocalRouting:      true,
	}
}

// DefaultDeleteConfig returns the base configuration for delete.
func DefaultDeleteConfig() WriteConfig {
	c := DefaultPutConfig()
	c.Kind = sample.KindDelete
	return c
}

// Apply overlays recognized options onto the configuration, aborting
// on the first invalid value.
func (c *WriteConfig) Apply(o Options) error {
	if err := applyEnum(o, OptKind, &c.Kind, sample.ParseKind); err != nil {
		return err
	}
	if err := applyEnum(o, OptCongestionControl, &c.CongestionControl, ParseCongestionControl); err != nil {
		return err
	}
	if err := applyEnum(o, OptPriority, &c.Priority, ParsePriority); err != nil {
		return err
	}
	return applyBool(o, OptLocalRouting, &c.LocalRouting)
}

// GetConfig configures a distributed query.
type GetConfig struct {
	// LocalRouting also queries queryables declared in the same process.
	LocalRouting bool

	// Consolidation merges or deduplicates replies per key.
	Consolidation Consolidation

	// Target selects which peer roles are queried.
	Target QueryTarget
}

// DefaultGetConfig returns the base configuration for get.
func DefaultGetConfig() GetConfig {
	return GetConfig{
		LocalRouting:  true,
		Consolidation: ConsolidationLatest,
		Target:        TargetBestMatching,
	}
}

// Apply overlays recognized options onto the configuration, aborting
// on the first invalid value.
func (c *GetConfig) Apply(o Options) error {
	if err := applyBool(o, OptLocalRouting, &c.LocalRouting); err != nil {
		return err
	}
	if err := applyEnum(o, OptConsolidation, &c.Consolidation, ParseConsolidation); err != nil {
		return err
	}
	return applyEnum(o, OptTarget, &c.Target, ParseQueryTarget)
}

// PublisherConfig configures a declared publisher.
type PublisherConfig struct {
	// LocalRouting also delivers to matching subscribers declared in
	// the same process.
	LocalRouting bool

	// Priority is the relative scheduling weight of its publications.
	Priority Priority

	// CongestionControl selects block or drop under backpressure.
	CongestionControl CongestionControl
}

// DefaultPublisherConfig returns the base configuration for
// declare_publisher.
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		LocalRouting:      true,
		Priority:          PriorityData,
		CongestionControl: CongestionDrop,
	}
}

// Apply overlays recognized options onto the configuration, aborting
// on the first invalid value.
func (c *PublisherConfig) Apply(o Options) error {
	if err := applyBool(o, OptLocalRouting, &c.LocalRouting); err != nil {
		return err
	}
	if err := applyEnum(o, OptPriority, &c.Priority, ParsePriority); err != nil {
		return err
	}
	return applyEnum(o, OptCongestionControl, &c.CongestionControl, ParseCongestionControl)
}

// SubscriberConfig configures a declared subscriber or pull subscriber.
type SubscriberConfig struct {
	// Local restricts delivery to same-process publications.
	Local bool

	// Reliability is the delivery expectation.
	Reliability Reliability
}

// DefaultSubscriberConfig returns the base configuration for
// declare_subscriber and declare_pull_subscriber.
func DefaultSubscriberConfig() SubscriberConfig {
	return SubscriberConfig{
		Local:       false,
		Reliability: ReliabilityReliable,
	}
}

// Apply overlays recognized options onto the configuration, aborting
// on the first invalid value.
func (c *SubscriberConfig) Apply(o Options) error {
	if err := applyBool(o, OptLocal, &c.Local); err != nil {
		return err
	}
	return applyEnum(o, OptReliability, &c.Reliability, ParseReliability)
}

// QueryableConfig configures a declared queryable.
type QueryableConfig struct {
	// Complete claims this queryable holds a complete result set for
	// its key expression, which affects upstream query consolidation.
	Complete bool
}

// DefaultQueryableConfig returns the base configuration for
// declare_queryable.
func DefaultQueryableConfig() QueryableConfig {
	return QueryableConfig{Complete: false}
}

// Apply overlays recognized options onto the configuration, aborting
// on the first invalid value.
func (c *QueryableConfig) Apply(o Options) error {
	return applyBool(o, OptComplete, &c.Complete)
}
