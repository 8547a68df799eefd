// Package metrics turns a normalized SBOM document into identity-keyed
// metric records that a document store can upsert idempotently.
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/dchest/siphash"
)

// Name identifies one metric in the record stream.
type Name string

const (
	PackageCount         Name = "package_count"
	LicenseCoverage      Name = "license_coverage"
	MissingVersionCount  Name = "missing_version_count"
	MissingSupplierCount Name = "missing_supplier_count"
	MissingChecksumCount Name = "missing_checksum_count"
	RelationshipDensity  Name = "relationship_density"
	UnlicensedPackages   Name = "unlicensed_packages"
)

// Keys for the identity hash. Fixed forever: changing them would break
// the overwrite-on-rerun contract against already indexed records.
const (
	identityKey0 = uint64(0x4269746572676961)
	identityKey1 = uint64(0x53424f4d6d657472)
)

// dayLayout floors computed-at timestamps to UTC calendar days inside
// the record identity.
const dayLayout = "2006-01-02"

// Record is one computed measurement. Identical (document, metric, day)
// triples always hash to the same ID, so a rerun within the same day
// overwrites instead of duplicating.
type Record struct {
	ID         string      `json:"id"`
	DocumentID string      `json:"document_id"`
	Metric     Name        `json:"metric"`
	Value      interface{} `json:"value"`
	ComputedAt time.Time   `json:"computed_at"`
	Truncated  bool        `json:"truncated,omitempty"`
}

// Identity derives the stable record ID for a document/metric pair at
// the given moment.
func Identity(documentID string, metric Name, computedAt time.Time) string {
	day := computedAt.UTC().Format(dayLayout)
	payload := strings.Join([]string{documentID, string(metric), day}, "\x00")
	return fmt.Sprintf("%016x", siphash.Hash(identityKey0, identityKey1, []byte(payload)))
}

// Seal stamps the record with its source document, computation time and
// derived identity. Computers emit unsealed records; the runner seals
// them with one shared clock reading.
func (it Record) Seal(documentID string, computedAt time.Time) Record {
	it.DocumentID = documentID
	it.ComputedAt = computedAt.UTC()
	it.ID = Identity(documentID, it.Metric, computedAt)
	return it
}

// ComputationError is one metric computer failing. It is collected into
// the run report and never takes the other computers down with it.
type ComputationError struct {
	Metric Name
	Err    error
}

func (it *ComputationError) Error() string {
	return fmt.Sprintf("computing %s failed: %v", it.Metric, it.Err)
}

func (it *ComputationError) Unwrap() error {
	return it.Err
}
