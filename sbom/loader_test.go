package sbom

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const tagValueContent = `SPDXVersion: SPDX-2.3
DataLicense: CC0-1.0
SPDXID: SPDXRef-DOCUMENT
DocumentName: tiny
DocumentNamespace: https://sbom.example.com/tiny/1.0
Creator: Tool: example-sbom-tool-1.0
Created: 2024-01-15T10:00:00Z

PackageName: alpha
SPDXID: SPDXRef-Package-alpha
PackageDownloadLocation: NOASSERTION
FilesAnalyzed: false
PackageLicenseDeclared: MIT
PackageLicenseConcluded: NOASSERTION
`

func TestLoadFromJsonFile(t *testing.T) {
	document, err := Load(filepath.Join("testdata", "acme-app.spdx.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if document.Identity != "https://sbom.example.com/acme-app/1.0" {
		t.Errorf("unexpected identity %q", document.Identity)
	}
	if document.Name != "acme-app" {
		t.Errorf("unexpected name %q", document.Name)
	}
	expected := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	if !document.Created.Equal(expected) {
		t.Errorf("unexpected creation time %v", document.Created)
	}
	if len(document.Packages) != 3 {
		t.Fatalf("expected 3 packages, got %d", len(document.Packages))
	}

	alpha := document.Packages[0]
	if alpha.SPDXID != "Package-alpha" || alpha.Version != "1.2.3" || alpha.License != "MIT" {
		t.Errorf("alpha normalized wrong: %+v", alpha)
	}
	if alpha.Supplier != "ACME" {
		t.Errorf("alpha supplier = %q, want ACME", alpha.Supplier)
	}
	if !alpha.HasChecksum() {
		t.Error("alpha should carry a checksum")
	}

	beta := document.Packages[1]
	if beta.License != "Apache-2.0" {
		t.Errorf("beta should fall back to concluded license, got %q", beta.License)
	}
	if beta.HasVersion() || beta.HasSupplier() || beta.HasChecksum() {
		t.Errorf("beta should miss version, supplier and checksum: %+v", beta)
	}

	gamma := document.Packages[2]
	if gamma.HasLicense() {
		t.Errorf("gamma should be unlicensed, got %q", gamma.License)
	}

	if len(document.Relationships) != 2 {
		t.Fatalf("expected 2 relationships, got %d", len(document.Relationships))
	}
	depends := document.Relationships[1]
	if depends.Source != "Package-alpha" || depends.Target != "Package-beta" || depends.Type != "DEPENDS_ON" {
		t.Errorf("unexpected relationship %+v", depends)
	}
}

func TestLoadFromTagValueFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.spdx")
	if err := os.WriteFile(path, []byte(tagValueContent), 0o644); err != nil {
		t.Fatal(err)
	}

	document, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if document.Identity != "https://sbom.example.com/tiny/1.0" {
		t.Errorf("unexpected identity %q", document.Identity)
	}
	if len(document.Packages) != 1 || document.Packages[0].License != "MIT" {
		t.Errorf("unexpected packages %+v", document.Packages)
	}
}

func TestLoadFromURL(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "acme-app.spdx.json"))
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Write(content)
	}))
	defer server.Close()

	document, err := Load(server.URL + "/acme-app.spdx.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(document.Packages) != 3 {
		t.Errorf("expected 3 packages, got %d", len(document.Packages))
	}
}

func TestLoadMissingFileIsUnreadableSource(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "no-such.spdx.json"))
	unreadable := &UnreadableSourceError{}
	if !errors.As(err, &unreadable) {
		t.Fatalf("expected UnreadableSourceError, got %v", err)
	}
}

func TestLoadErrorStatusIsUnreadableSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Load(server.URL + "/gone.spdx.json")
	unreadable := &UnreadableSourceError{}
	if !errors.As(err, &unreadable) {
		t.Fatalf("expected UnreadableSourceError, got %v", err)
	}
}

func TestLoadGarbageIsParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.spdx.json")
	if err := os.WriteFile(path, []byte("{ not spdx at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	parseError := &ParseError{}
	if !errors.As(err, &parseError) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}
