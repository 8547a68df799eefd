package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/Bitergia/grimoirelab-metrics/sbom"
)

// UnlicensedListCap bounds the unlicensed_packages list value so one
// pathological document cannot blow up record size in the store.
const UnlicensedListCap = 100

// FractionDigits is the precision of fractional metric values.
const FractionDigits = 3

// Computer is the shared capability of all metric computers: read one
// immutable document, emit zero or more records. Computers are
// independent and order-insensitive; running any subset is valid.
type Computer interface {
	Name() Name
	Compute(document *sbom.Document) ([]Record, error)
}

// DefaultComputers returns the full metric set in its canonical order.
func DefaultComputers() []Computer {
	return []Computer{
		packageCounter{},
		licenseCoverage{},
		missingFields{},
		relationshipDensity{},
		unlicensedPackages{},
	}
}

type packageCounter struct{}

func (it packageCounter) Name() Name {
	return PackageCount
}

func (it packageCounter) Compute(document *sbom.Document) ([]Record, error) {
	return []Record{{Metric: PackageCount, Value: len(document.Packages)}}, nil
}

type licenseCoverage struct{}

func (it licenseCoverage) Name() Name {
	return LicenseCoverage
}

// Compute emits the fraction of packages carrying a usable license
// expression. An empty document emits nothing: zero coverage would
// falsely claim the document has unlicensed packages.
func (it licenseCoverage) Compute(document *sbom.Document) ([]Record, error) {
	total := len(document.Packages)
	if total == 0 {
		return nil, nil
	}
	licensed := 0
	for _, pkg := range document.Packages {
		if !pkg.HasLicense() {
			continue
		}
		if err := checkExpression(pkg.License); err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.SPDXID, err)
		}
		licensed += 1
	}
	coverage := roundFraction(float64(licensed) / float64(total))
	return []Record{{Metric: LicenseCoverage, Value: coverage}}, nil
}

type missingFields struct{}

func (it missingFields) Name() Name {
	return Name("missing_field_counts")
}

func (it missingFields) Compute(document *sbom.Document) ([]Record, error) {
	missingVersion, missingSupplier, missingChecksum := 0, 0, 0
	for _, pkg := range document.Packages {
		if !pkg.HasVersion() {
			missingVersion += 1
		}
		if !pkg.HasSupplier() {
			missingSupplier += 1
		}
		if !pkg.HasChecksum() {
			missingChecksum += 1
		}
	}
	return []Record{
		{Metric: MissingVersionCount, Value: missingVersion},
		{Metric: MissingSupplierCount, Value: missingSupplier},
		{Metric: MissingChecksumCount, Value: missingChecksum},
	}, nil
}

type relationshipDensity struct{}

func (it relationshipDensity) Name() Name {
	return RelationshipDensity
}

// Compute emits relationships per package. May exceed 1. Empty
// documents emit nothing, same rationale as license coverage.
func (it relationshipDensity) Compute(document *sbom.Document) ([]Record, error) {
	total := len(document.Packages)
	if total == 0 {
		return nil, nil
	}
	density := roundFraction(float64(len(document.Relationships)) / float64(total))
	return []Record{{Metric: RelationshipDensity, Value: density}}, nil
}

type unlicensedPackages struct{}

func (it unlicensedPackages) Name() Name {
	return UnlicensedPackages
}

func (it unlicensedPackages) Compute(document *sbom.Document) ([]Record, error) {
	unlicensed := []string{}
	for _, pkg := range document.Packages {
		if !pkg.HasLicense() {
			unlicensed = append(unlicensed, pkg.SPDXID)
		}
	}
	truncated := len(unlicensed) > UnlicensedListCap
	if truncated {
		unlicensed = unlicensed[:UnlicensedListCap]
	}
	return []Record{{
		Metric:    UnlicensedPackages,
		Value:     unlicensed,
		Truncated: truncated,
	}}, nil
}

func roundFraction(value float64) float64 {
	shift := math.Pow(10, FractionDigits)
	return math.Round(value*shift) / shift
}

// checkExpression rejects license expressions the metric cannot
// honestly count: unbalanced parentheses or dangling AND/OR/WITH
// operators.
func checkExpression(expression string) error {
	depth := 0
	for _, character := range expression {
		switch character {
		case '(':
			depth += 1
		case ')':
			depth -= 1
		}
		if depth < 0 {
			return fmt.Errorf("malformed license expression %q", expression)
		}
	}
	if depth != 0 {
		return fmt.Errorf("malformed license expression %q", expression)
	}
	flattened := strings.NewReplacer("(", " ", ")", " ").Replace(expression)
	tokens := strings.Fields(flattened)
	for at, token := range tokens {
		switch strings.ToUpper(token) {
		case "AND", "OR", "WITH":
			edge := at == 0 || at == len(tokens)-1
			if edge || isOperator(tokens[at-1]) {
				return fmt.Errorf("malformed license expression %q", expression)
			}
		}
	}
	return nil
}

func isOperator(token string) bool {
	switch strings.ToUpper(token) {
	case "AND", "OR", "WITH":
		return true
	}
	return false
}
