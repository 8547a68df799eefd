package sbom

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx"
	"github.com/spdx/tools-golang/tagvalue"

	"github.com/Bitergia/grimoirelab-metrics/common"
)

// FetchTimeout bounds retrieval of URL sources. Parsing local files
// never waits on it.
const FetchTimeout = 60 * time.Second

// Load retrieves an SPDX document from a file path or http(s) URL and
// normalizes it. Returns *UnreadableSourceError when the source cannot
// be read and *ParseError when the bytes are not valid SPDX.
func Load(source string) (*Document, error) {
	defer common.Stopwatch("Loading SBOM from %q took", source).Report()

	content, err := fetch(source)
	if err != nil {
		return nil, &UnreadableSourceError{Source: source, Err: err}
	}
	parsed, err := parse(content)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return normalize(parsed), nil
}

func fetch(source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return download(source)
	}
	return os.ReadFile(source)
}

func download(url string) ([]byte, error) {
	client := &http.Client{Timeout: FetchTimeout}
	request, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", common.UserAgent())
	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode >= 400 {
		return nil, fmt.Errorf("GET %s returned status %d", url, response.StatusCode)
	}
	return io.ReadAll(response.Body)
}

// parse tries the serialization the content most looks like first and
// falls back to the other one, so that misnamed files still load.
func parse(content []byte) (*spdx.Document, error) {
	first, second := spdxjson.Read, tagvalue.Read
	if !looksLikeJson(content) {
		first, second = second, first
	}
	document, primary := first(bytes.NewReader(content))
	if primary == nil {
		return document, nil
	}
	document, secondary := second(bytes.NewReader(content))
	if secondary == nil {
		return document, nil
	}
	return nil, fmt.Errorf("not SPDX in any supported serialization: %v", primary)
}

func looksLikeJson(content []byte) bool {
	trimmed := bytes.TrimLeft(content, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func normalize(source *spdx.Document) *Document {
	document := &Document{
		Identity: documentIdentity(source),
		Name:     source.DocumentName,
		Licenses: documentLicenses(source),
	}
	if source.CreationInfo != nil {
		if created, err := time.Parse(time.RFC3339, source.CreationInfo.Created); err == nil {
			document.Created = created.UTC()
		}
	}
	for _, pkg := range source.Packages {
		if pkg == nil {
			continue
		}
		document.Packages = append(document.Packages, normalizePackage(pkg))
	}
	for _, relationship := range source.Relationships {
		if relationship == nil {
			continue
		}
		document.Relationships = append(document.Relationships, Relationship{
			Source: string(relationship.RefA.ElementRefID),
			Target: string(relationship.RefB.ElementRefID),
			Type:   relationship.Relationship,
		})
	}
	return document
}

func normalizePackage(pkg *spdx.Package) Package {
	result := Package{
		SPDXID:  string(pkg.PackageSPDXIdentifier),
		Name:    pkg.PackageName,
		Version: pkg.PackageVersion,
		License: pickLicense(pkg),
	}
	if pkg.PackageSupplier != nil && usable(pkg.PackageSupplier.Supplier) {
		result.Supplier = pkg.PackageSupplier.Supplier
	}
	for _, checksum := range pkg.PackageChecksums {
		if len(checksum.Value) == 0 {
			continue
		}
		result.Checksums = append(result.Checksums, Checksum{
			Algorithm: string(checksum.Algorithm),
			Value:     checksum.Value,
		})
	}
	return result
}

// pickLicense prefers what the supplier declared over what a tool
// concluded, matching how dashboards read SPDX license fields.
func pickLicense(pkg *spdx.Package) string {
	if usable(pkg.PackageLicenseDeclared) {
		return pkg.PackageLicenseDeclared
	}
	if usable(pkg.PackageLicenseConcluded) {
		return pkg.PackageLicenseConcluded
	}
	return ""
}

func documentIdentity(source *spdx.Document) string {
	if len(source.DocumentNamespace) > 0 {
		return source.DocumentNamespace
	}
	return source.DocumentName
}

func documentLicenses(source *spdx.Document) []string {
	licenses := []string{}
	if usable(source.DataLicense) {
		licenses = append(licenses, source.DataLicense)
	}
	for _, other := range source.OtherLicenses {
		if other != nil && usable(other.LicenseIdentifier) {
			licenses = append(licenses, other.LicenseIdentifier)
		}
	}
	return licenses
}
