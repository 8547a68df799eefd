package metrics

import (
	"fmt"
	"testing"

	"github.com/Bitergia/grimoirelab-metrics/sbom"
)

func sampleDocument() *sbom.Document {
	return &sbom.Document{
		Identity: "https://sbom.example.com/sample/1.0",
		Packages: []sbom.Package{
			{
				SPDXID:    "Package-alpha",
				Version:   "1.2.3",
				Supplier:  "ACME",
				License:   "MIT",
				Checksums: []sbom.Checksum{{Algorithm: "SHA256", Value: "abc"}},
			},
			{SPDXID: "Package-beta", License: "MIT"},
			{SPDXID: "Package-gamma"},
		},
		Relationships: []sbom.Relationship{
			{Source: "DOCUMENT", Target: "Package-alpha", Type: "DESCRIBES"},
			{Source: "Package-alpha", Target: "Package-beta", Type: "DEPENDS_ON"},
		},
	}
}

func single(t *testing.T, computer Computer, document *sbom.Document) Record {
	t.Helper()
	records, err := computer.Compute(document)
	if err != nil {
		t.Fatalf("%s failed: %v", computer.Name(), err)
	}
	if len(records) != 1 {
		t.Fatalf("%s emitted %d records, want 1", computer.Name(), len(records))
	}
	return records[0]
}

func TestPackageCountMatchesPackages(t *testing.T) {
	record := single(t, packageCounter{}, sampleDocument())
	if record.Metric != PackageCount || record.Value != 3 {
		t.Errorf("unexpected record %+v", record)
	}

	empty := single(t, packageCounter{}, &sbom.Document{})
	if empty.Value != 0 {
		t.Errorf("empty document should count 0, got %v", empty.Value)
	}
}

func TestLicenseCoverageRoundsToThreeDigits(t *testing.T) {
	record := single(t, licenseCoverage{}, sampleDocument())
	if record.Value != 0.667 {
		t.Errorf("2 of 3 licensed should read 0.667, got %v", record.Value)
	}
}

func TestLicenseCoverageOmittedForEmptyDocument(t *testing.T) {
	records, err := licenseCoverage{}.Compute(&sbom.Document{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("empty document must emit no coverage record, got %+v", records)
	}
}

func TestLicenseCoverageRejectsMalformedExpression(t *testing.T) {
	document := &sbom.Document{
		Packages: []sbom.Package{{SPDXID: "Package-bad", License: "(MIT OR"}},
	}
	_, err := licenseCoverage{}.Compute(document)
	if err == nil {
		t.Fatal("expected a malformed expression error")
	}
}

func TestMissingFieldCounts(t *testing.T) {
	records, err := missingFields{}.Compute(sampleDocument())
	if err != nil {
		t.Fatal(err)
	}
	expected := map[Name]int{
		MissingVersionCount:  2,
		MissingSupplierCount: 2,
		MissingChecksumCount: 2,
	}
	if len(records) != len(expected) {
		t.Fatalf("expected %d records, got %d", len(expected), len(records))
	}
	for _, record := range records {
		if record.Value != expected[record.Metric] {
			t.Errorf("%s = %v, want %d", record.Metric, record.Value, expected[record.Metric])
		}
	}
}

func TestMissingFieldCountEdges(t *testing.T) {
	// A field present on all packages counts 0; absent on all counts
	// the package count.
	document := &sbom.Document{
		Packages: []sbom.Package{
			{SPDXID: "a", Version: "1"},
			{SPDXID: "b", Version: "2"},
		},
	}
	records, err := missingFields{}.Compute(document)
	if err != nil {
		t.Fatal(err)
	}
	for _, record := range records {
		switch record.Metric {
		case MissingVersionCount:
			if record.Value != 0 {
				t.Errorf("all versions present, got %v missing", record.Value)
			}
		case MissingSupplierCount:
			if record.Value != 2 {
				t.Errorf("all suppliers absent, got %v missing", record.Value)
			}
		}
	}
}

func TestRelationshipDensity(t *testing.T) {
	record := single(t, relationshipDensity{}, sampleDocument())
	if record.Value != 0.667 {
		t.Errorf("2 relationships over 3 packages should read 0.667, got %v", record.Value)
	}

	dense := &sbom.Document{
		Packages: []sbom.Package{{SPDXID: "a"}},
		Relationships: []sbom.Relationship{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "c"},
			{Source: "a", Target: "d"},
		},
	}
	record = single(t, relationshipDensity{}, dense)
	if record.Value != 3.0 {
		t.Errorf("density may exceed 1, got %v", record.Value)
	}

	records, err := relationshipDensity{}.Compute(&sbom.Document{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("empty document must emit no density record, got %+v", records)
	}
}

func TestUnlicensedPackageList(t *testing.T) {
	record := single(t, unlicensedPackages{}, sampleDocument())
	listed, ok := record.Value.([]string)
	if !ok {
		t.Fatalf("expected a string list value, got %T", record.Value)
	}
	if len(listed) != 1 || listed[0] != "Package-gamma" {
		t.Errorf("unexpected unlicensed list %v", listed)
	}
	if record.Truncated {
		t.Error("list under the cap must not be truncated")
	}
}

func TestUnlicensedPackageListCap(t *testing.T) {
	document := &sbom.Document{}
	for at := 0; at < UnlicensedListCap+5; at++ {
		document.Packages = append(document.Packages, sbom.Package{
			SPDXID: fmt.Sprintf("Package-%03d", at),
		})
	}

	record := single(t, unlicensedPackages{}, document)
	listed := record.Value.([]string)
	if len(listed) != UnlicensedListCap {
		t.Errorf("list length %d exceeds cap %d", len(listed), UnlicensedListCap)
	}
	if !record.Truncated {
		t.Error("overflowing list must set truncated")
	}
	if listed[0] != "Package-000" {
		t.Errorf("list must keep document order, got first %q", listed[0])
	}
}

func TestCheckExpression(t *testing.T) {
	tests := []struct {
		expression string
		valid      bool
	}{
		{"MIT", true},
		{"MIT OR Apache-2.0", true},
		{"(MIT OR Apache-2.0) AND BSD-3-Clause", true},
		{"GPL-2.0-only WITH Classpath-exception-2.0", true},
		{"(MIT", false},
		{"MIT)", false},
		{"MIT OR", false},
		{"AND MIT", false},
		{"MIT AND OR Apache-2.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			err := checkExpression(tt.expression)
			if tt.valid && err != nil {
				t.Errorf("valid expression rejected: %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("malformed expression accepted")
			}
		})
	}
}
