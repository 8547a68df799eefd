// Package sbom loads SPDX Software Bill of Materials documents from
// files or URLs and normalizes them into an immutable in-memory model
// that metric computers can consume. Both JSON and tag-value
// serializations are supported.
package sbom
