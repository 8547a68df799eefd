// Package operations sequences one SBOM document through the metrics
// pipeline: load, compute, index. Partial failures are aggregated into
// the run report instead of aborting the run.
package operations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Bitergia/grimoirelab-metrics/common"
	"github.com/Bitergia/grimoirelab-metrics/metrics"
	"github.com/Bitergia/grimoirelab-metrics/sbom"
	"github.com/Bitergia/grimoirelab-metrics/store"
)

// State is where a pipeline run currently stands. Failed is terminal
// and reachable only from Loading: with nothing loaded there is
// nothing to compute or index.
type State string

const (
	Loading   State = "loading"
	Computing State = "computing"
	Indexing  State = "indexing"
	Done      State = "done"
	Failed    State = "failed"
)

// Indexer is the slice of the store the pipeline needs. Satisfied by
// *store.Indexer and by fakes in tests.
type Indexer interface {
	Write(ctx context.Context, records []metrics.Record) *store.WriteReport
}

// ComputeFailure is one metric computer's failure, flattened for the
// report.
type ComputeFailure struct {
	Metric string `json:"metric"`
	Error  string `json:"error"`
}

// RunReport is the user-visible outcome of one run. It enumerates every
// partial failure by kind so operators can tell "some metrics missing"
// from "whole run failed".
type RunReport struct {
	RunID           string             `json:"run_id"`
	Source          string             `json:"source"`
	DocumentID      string             `json:"document_id,omitempty"`
	State           State              `json:"state"`
	Packages        int                `json:"packages"`
	Records         []metrics.Record   `json:"records,omitempty"`
	ComputeFailures []ComputeFailure   `json:"compute_failures,omitempty"`
	Write           *store.WriteReport `json:"write,omitempty"`
	Error           string             `json:"error,omitempty"`
	Started         time.Time          `json:"started"`
	ElapsedSeconds  float64            `json:"elapsed_seconds"`
}

// Pipeline is one configured run sequence. The zero value is not
// usable; construct with NewPipeline and override fields as needed.
type Pipeline struct {
	Load      func(source string) (*sbom.Document, error)
	Computers []metrics.Computer
	Workers   int
	Indexer   Indexer
}

func NewPipeline(indexer Indexer) *Pipeline {
	return &Pipeline{
		Load:      sbom.Load,
		Computers: metrics.DefaultComputers(),
		Workers:   metrics.DefaultWorkers,
		Indexer:   indexer,
	}
}

// Run takes one SBOM source through loading, computing and indexing.
// The error return is non-nil only when the run failed at Loading;
// every later trouble lands inside the report and the run reaches Done.
func (it *Pipeline) Run(ctx context.Context, source string) (*RunReport, error) {
	report := &RunReport{
		RunID:   uuid.NewString(),
		Source:  source,
		State:   Loading,
		Started: time.Now().UTC(),
	}
	defer func() {
		report.ElapsedSeconds = time.Since(report.Started).Seconds()
	}()

	common.Debug("Run %s: loading %q", report.RunID, source)
	document, err := it.Load(source)
	if err != nil {
		report.State = Failed
		report.Error = err.Error()
		return report, err
	}
	report.DocumentID = document.Identity
	report.Packages = len(document.Packages)

	report.State = Computing
	common.Debug("Run %s: computing metrics for %q", report.RunID, document.Identity)
	outcome := metrics.ComputeAll(document, it.Computers, it.Workers)
	report.Records = outcome.Records
	for _, failure := range outcome.Failures {
		report.ComputeFailures = append(report.ComputeFailures, ComputeFailure{
			Metric: string(failure.Metric),
			Error:  failure.Err.Error(),
		})
	}

	report.State = Indexing
	common.Debug("Run %s: indexing %d records", report.RunID, len(report.Records))
	report.Write = it.Indexer.Write(ctx, report.Records)

	report.State = Done
	common.Log("Run %s done: %d records, %d compute failures, %d write failures",
		report.RunID, len(report.Records), len(report.ComputeFailures), len(report.Write.Failures))
	return report, nil
}
