package metrics

import (
	"errors"
	"testing"

	"github.com/Bitergia/grimoirelab-metrics/sbom"
)

type brokenComputer struct {
	name  Name
	panic bool
}

func (it brokenComputer) Name() Name {
	return it.name
}

func (it brokenComputer) Compute(document *sbom.Document) ([]Record, error) {
	if it.panic {
		panic("license grammar went sideways")
	}
	return nil, errors.New("no can do")
}

func TestComputeAllProducesSealedRecords(t *testing.T) {
	document := sampleDocument()
	outcome := ComputeAll(document, DefaultComputers(), DefaultWorkers)

	if len(outcome.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", outcome.Failures)
	}
	// package_count, license_coverage, 3 missing field counts,
	// relationship_density, unlicensed_packages
	if len(outcome.Records) != 7 {
		t.Fatalf("expected 7 records, got %d", len(outcome.Records))
	}
	for _, record := range outcome.Records {
		if record.DocumentID != document.Identity {
			t.Errorf("record %s not sealed with document identity", record.Metric)
		}
		if record.ID == "" || record.ComputedAt.IsZero() {
			t.Errorf("record %s not sealed: %+v", record.Metric, record)
		}
		if !record.ComputedAt.Equal(outcome.Records[0].ComputedAt) {
			t.Errorf("records must share one clock reading")
		}
	}
}

func TestComputeAllIsIdempotentWithinDay(t *testing.T) {
	document := sampleDocument()
	first := ComputeAll(document, DefaultComputers(), DefaultWorkers)
	second := ComputeAll(document, DefaultComputers(), DefaultWorkers)

	if len(first.Records) != len(second.Records) {
		t.Fatalf("rerun changed record count: %d vs %d", len(first.Records), len(second.Records))
	}
	for at, record := range first.Records {
		if record.ID != second.Records[at].ID {
			t.Errorf("rerun changed identity of %s: %q vs %q",
				record.Metric, record.ID, second.Records[at].ID)
		}
	}
}

func TestComputeAllSurvivesFailingComputers(t *testing.T) {
	document := sampleDocument()
	computers := append(
		[]Computer{
			brokenComputer{name: "panicky_metric", panic: true},
			brokenComputer{name: "erroring_metric"},
		},
		DefaultComputers()...,
	)

	outcome := ComputeAll(document, computers, 2)

	if len(outcome.Records) != 7 {
		t.Errorf("healthy computers must still produce, got %d records", len(outcome.Records))
	}
	if len(outcome.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(outcome.Failures))
	}
	for _, failure := range outcome.Failures {
		if failure.Metric != "erroring_metric" && failure.Metric != "panicky_metric" {
			t.Errorf("failure attributed to wrong computer: %v", failure)
		}
	}
}

func TestComputeAllWithSingleWorkerAndSubset(t *testing.T) {
	outcome := ComputeAll(sampleDocument(), []Computer{packageCounter{}}, 1)
	if len(outcome.Records) != 1 || outcome.Records[0].Metric != PackageCount {
		t.Errorf("subset run went wrong: %+v", outcome.Records)
	}
}
