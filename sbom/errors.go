package sbom

import "fmt"

// UnreadableSourceError means the SBOM source itself could not be
// retrieved. Fatal to the run; retrying is the caller's business.
type UnreadableSourceError struct {
	Source string
	Err    error
}

func (it *UnreadableSourceError) Error() string {
	return fmt.Sprintf("cannot read SBOM source %q: %v", it.Source, it.Err)
}

func (it *UnreadableSourceError) Unwrap() error {
	return it.Err
}

// ParseError means the retrieved bytes were not a decodable SPDX
// document in any supported serialization. Fatal to the run.
type ParseError struct {
	Source string
	Err    error
}

func (it *ParseError) Error() string {
	return fmt.Sprintf("cannot parse SBOM from %q: %v", it.Source, it.Err)
}

func (it *ParseError) Unwrap() error {
	return it.Err
}
