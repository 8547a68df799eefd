package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/Bitergia/grimoirelab-metrics/common"
	"github.com/Bitergia/grimoirelab-metrics/sbom"
)

// DefaultWorkers bounds the computer fan-out when no override is given.
const DefaultWorkers = 4

// Outcome is what one fan-out over a document produced: the sealed
// records of every computer that succeeded, and one failure per
// computer that did not.
type Outcome struct {
	Records  []Record
	Failures []*ComputationError
}

type verdict struct {
	records []Record
	failure *ComputationError
}

// ComputeAll fans the computers out over a bounded worker pool, each
// reading the same immutable document, and collects records and
// failures over channels. Every record is sealed with one shared clock
// reading, so all records of a run share identity day and timestamp.
func ComputeAll(document *sbom.Document, computers []Computer, workers int) Outcome {
	defer common.Stopwatch("Computing %d metrics took", len(computers)).Report()

	if workers < 1 {
		workers = DefaultWorkers
	}
	if workers > len(computers) {
		workers = len(computers)
	}

	computedAt := time.Now().UTC()
	pipeline := make(chan Computer)
	verdicts := make(chan verdict)

	for count := 0; count < workers; count++ {
		go member(document, pipeline, verdicts)
	}
	go func() {
		for _, computer := range computers {
			pipeline <- computer
		}
		close(pipeline)
	}()

	outcome := Outcome{}
	for count := 0; count < len(computers); count++ {
		result := <-verdicts
		if result.failure != nil {
			common.Error("compute", result.failure)
			outcome.Failures = append(outcome.Failures, result.failure)
			continue
		}
		for _, record := range result.records {
			outcome.Records = append(outcome.Records, record.Seal(document.Identity, computedAt))
		}
	}

	sort.Slice(outcome.Records, func(left, right int) bool {
		return outcome.Records[left].Metric < outcome.Records[right].Metric
	})
	sort.Slice(outcome.Failures, func(left, right int) bool {
		return outcome.Failures[left].Metric < outcome.Failures[right].Metric
	})
	return outcome
}

func member(document *sbom.Document, pipeline chan Computer, verdicts chan verdict) {
	for computer := range pipeline {
		verdicts <- process(document, computer)
	}
}

func process(document *sbom.Document, computer Computer) (result verdict) {
	defer catcher(computer.Name(), &result)
	records, err := computer.Compute(document)
	if err != nil {
		result.failure = &ComputationError{Metric: computer.Name(), Err: err}
		return result
	}
	result.records = records
	return result
}

// catcher keeps one panicking computer from taking the run down;
// the panic becomes that computer's failure.
func catcher(name Name, result *verdict) {
	catch := recover()
	if catch != nil {
		result.records = nil
		result.failure = &ComputationError{
			Metric: name,
			Err:    fmt.Errorf("recovered: %v", catch),
		}
	}
}
