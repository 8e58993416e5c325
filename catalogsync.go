// Package catalogsync reconciles product records describing the same
// catalog across independently maintained sources and reports the
// disagreements between them. The package ties the reconciler and the
// discrepancy detector into one pipeline; loading source data and
// rendering reports are collaborator concerns, handled outside the core.
package catalogsync

import (
	"context"
	"fmt"

	"github.com/catalogsync/catalogsync/pkg/discrepancy"
	"github.com/catalogsync/catalogsync/pkg/products"
	"github.com/catalogsync/catalogsync/pkg/reconcile"
)

// Catalogsync runs reconciliation pipelines over in-memory source data.
type Catalogsync interface {
	// Run executes one full pass: reconcile the sources into match
	// groups, then detect discrepancies within every group. A context
	// error aborts the run without partial results.
	Run(ctx context.Context, sources map[products.Source][]products.Record) (*RunResult, error)

	// Config returns the policy the pipeline runs under.
	Config() reconcile.Config
}

// RunResult is the complete output of one pipeline run.
type RunResult struct {
	// Reconciliation holds the ordered match groups, skipped records,
	// and run metadata
	Reconciliation *reconcile.Result

	// Discrepancies holds every detected disagreement, ordered by the
	// group ordering of the reconciliation result
	Discrepancies []products.Discrepancy
}

// ByGroup returns the discrepancies concerning one match group.
func (r *RunResult) ByGroup(groupID string) []products.Discrepancy {
	var matched []products.Discrepancy
	for _, d := range r.Discrepancies {
		if d.GroupID == groupID {
			matched = append(matched, d)
		}
	}
	return matched
}

// Summary returns a one-line human-readable summary of the run.
func (r *RunResult) Summary() string {
	return fmt.Sprintf("%s, %d discrepancies",
		r.Reconciliation.Summary(), len(r.Discrepancies))
}

// catalogsync is the internal implementation of the Catalogsync interface.
type catalogsync struct {
	config     *config
	reconciler reconcile.Reconciler
	detector   *discrepancy.Detector
}

// New creates a new Catalogsync pipeline with the given options.
func New(opts ...Option) (Catalogsync, error) {
	cs := &catalogsync{config: defaultPipelineConfig()}

	if err := cs.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	reconciler, err := reconcile.New(reconcile.WithConfig(cs.config.policy))
	if err != nil {
		return nil, fmt.Errorf("creating reconciler: %w", err)
	}
	cs.reconciler = reconciler
	cs.detector = discrepancy.NewDetector(cs.config.policy)

	return cs, nil
}

// options applies configuration options.
func (cs *catalogsync) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(cs.config); err != nil {
			return err
		}
	}
	return nil
}

// Run implements Catalogsync.
func (cs *catalogsync) Run(ctx context.Context, sources map[products.Source][]products.Record) (*RunResult, error) {
	result, err := cs.reconciler.Reconcile(ctx, sources)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run aborted: %w", err)
	}

	return &RunResult{
		Reconciliation: result,
		Discrepancies:  cs.detector.DetectAll(result.Groups),
	}, nil
}

// Config implements Catalogsync.
func (cs *catalogsync) Config() reconcile.Config {
	return cs.config.policy
}
