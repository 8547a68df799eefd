package sbom

import (
	"strings"
	"time"
)

// NoAssertion is the SPDX marker for "the creator made no claim".
const NoAssertion = "NOASSERTION"

// NoLicense is the SPDX marker for "there is no license".
const NoLicense = "NONE"

// Document is the normalized view of one parsed SBOM. It is created
// once per pipeline run and never mutated afterwards.
type Document struct {
	Identity      string
	Name          string
	Created       time.Time
	Licenses      []string
	Packages      []Package
	Relationships []Relationship
}

// Package is one software component listed in the document. Optional
// fields hold the empty string when the SBOM did not assert them.
type Package struct {
	SPDXID    string
	Name      string
	Version   string
	Supplier  string
	License   string
	Checksums []Checksum
}

// Checksum is one digest attached to a package.
type Checksum struct {
	Algorithm string
	Value     string
}

// Relationship is a typed, ordered pair between two package SPDX IDs.
type Relationship struct {
	Source string
	Target string
	Type   string
}

// HasLicense tells whether the package carries a usable license
// expression. Absent, NOASSERTION and NONE all count as unlicensed.
func (it Package) HasLicense() bool {
	return usable(it.License)
}

// HasVersion tells whether the package asserts a version.
func (it Package) HasVersion() bool {
	return usable(it.Version)
}

// HasSupplier tells whether the package asserts a supplier.
func (it Package) HasSupplier() bool {
	return usable(it.Supplier)
}

// HasChecksum tells whether the package carries at least one digest.
func (it Package) HasChecksum() bool {
	return len(it.Checksums) > 0
}

func usable(value string) bool {
	trimmed := strings.TrimSpace(value)
	return len(trimmed) > 0 && trimmed != NoAssertion && trimmed != NoLicense
}
