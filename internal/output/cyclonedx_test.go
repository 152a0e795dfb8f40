package output

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/StinkyLord/snapcraft-sbom/internal/model"
	"github.com/StinkyLord/snapcraft-sbom/internal/scanner"
)

// makeTestResult builds a synthetic scanner.Result for testing.
// zlib comes second in the manifest but sorts last; libfoo has no version.
func makeTestResult() *scanner.Result {
	ada := &model.ExtractedComponent{
		PartName:      "ada",
		PackageName:   "ada",
		Version:       "3.2.4",
		VersionSource: "tag",
		SourceURL:     "https://github.com/ada-url/ada.git",
		SourceKind:    model.KindGit,
		SourceTag:     "v3.2.4",
		PURL:          "pkg:github/ada-url/ada@3.2.4",
		Plugin:        "cmake",
	}
	zlib := &model.ExtractedComponent{
		PartName:      "zlib",
		PackageName:   "zlib",
		Version:       "1.3.1",
		VersionSource: "url",
		SourceURL:     "https://zlib.net/zlib-1.3.1.tar.gz",
		SourceKind:    model.KindTar,
		PURL:          "pkg:generic/zlib@1.3.1?download_url=https://zlib.net/zlib-1.3.1.tar.gz",
	}
	libfoo := &model.ExtractedComponent{
		PartName:    "libfoo",
		PackageName: "libfoo",
		SourceURL:   "https://example.com/libfoo.tar.gz",
		SourceKind:  model.KindTar,
		PURL:        "pkg:generic/libfoo?download_url=https://example.com/libfoo.tar.gz",
	}

	return &scanner.Result{
		SnapName:    "example-app",
		SnapVersion: "1.0.0",
		SnapSummary: "Example application",
		SnapLicense: "Apache-2.0",

		SnapAdoptInfo: "ada",
		ManifestPath:  "snap/snapcraft.yaml",

		Components: []*model.ExtractedComponent{ada, zlib, libfoo},
		Skipped: []model.SkipNote{
			{PartName: "local-part", Reason: model.SkipLocalSource, Detail: "."},
		},
	}
}

func testOptions() Options {
	return Options{
		ToolName:    "snapcraft-sbom",
		ToolVersion: "1.0.0-test",
		Vendor:      "sbomify",
		Supplier:    "Example Corp",
	}
}

func writeAndRead(t *testing.T, result *scanner.Result, opts Options) []byte {
	t.Helper()
	tmp := filepath.Join(t.TempDir(), "sbom.json")
	if err := WriteCycloneDX(result, tmp, opts); err != nil {
		t.Fatalf("WriteCycloneDX failed: %v", err)
	}
	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatalf("cannot read output file: %v", err)
	}
	return data
}

func decodeBOM(t *testing.T, data []byte) cdxBOM {
	t.Helper()
	var bom cdxBOM
	if err := json.Unmarshal(data, &bom); err != nil {
		t.Fatalf("cannot unmarshal CycloneDX BOM: %v", err)
	}
	return bom
}

// TestCycloneDXSchema verifies that the output is valid JSON and contains the
// required CycloneDX 1.6 top-level fields.
func TestCycloneDXSchema(t *testing.T) {
	data := writeAndRead(t, makeTestResult(), testOptions())

	// Must be valid JSON
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("output is not valid JSON: %v\nContent:\n%s", err, string(data))
	}

	requiredFields := []string{"bomFormat", "specVersion", "version", "serialNumber", "metadata", "components"}
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			t.Errorf("missing required field %q in CycloneDX output", field)
		}
	}

	var bomFormat string
	if err := json.Unmarshal(raw["bomFormat"], &bomFormat); err != nil || bomFormat != "CycloneDX" {
		t.Errorf("bomFormat = %q, want %q", bomFormat, "CycloneDX")
	}

	var specVersion string
	if err := json.Unmarshal(raw["specVersion"], &specVersion); err != nil || specVersion != "1.6" {
		t.Errorf("specVersion = %q, want %q", specVersion, "1.6")
	}

	var serialNumber string
	if err := json.Unmarshal(raw["serialNumber"], &serialNumber); err != nil || !strings.HasPrefix(serialNumber, "urn:uuid:") {
		t.Errorf("serialNumber = %q, want prefix %q", serialNumber, "urn:uuid:")
	}

	var version int
	if err := json.Unmarshal(raw["version"], &version); err != nil || version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
}

// TestCycloneDXComponents verifies the library components, in manifest order.
func TestCycloneDXComponents(t *testing.T) {
	bom := decodeBOM(t, writeAndRead(t, makeTestResult(), testOptions()))

	if len(bom.Components) != 3 {
		t.Fatalf("components count = %d, want 3", len(bom.Components))
	}

	wantOrder := []string{"ada", "zlib", "libfoo"}
	for i, name := range wantOrder {
		if bom.Components[i].Name != name {
			t.Errorf("components[%d].name = %q, want %q", i, bom.Components[i].Name, name)
		}
		if bom.Components[i].Type != "library" {
			t.Errorf("components[%d].type = %q, want library", i, bom.Components[i].Type)
		}
	}

	ada := bom.Components[0]
	if ada.Version != "3.2.4" {
		t.Errorf("ada version = %q, want 3.2.4", ada.Version)
	}
	if ada.BOMRef != "snapcraft-part:ada" {
		t.Errorf("ada bom-ref = %q, want snapcraft-part:ada", ada.BOMRef)
	}
	if ada.PURL != "pkg:github/ada-url/ada@3.2.4" {
		t.Errorf("ada purl = %q", ada.PURL)
	}
	if len(ada.ExternalReferences) != 1 {
		t.Fatalf("ada externalReferences count = %d, want 1", len(ada.ExternalReferences))
	}
	if ref := ada.ExternalReferences[0]; ref.Type != "vcs" || ref.URL != "https://github.com/ada-url/ada.git" {
		t.Errorf("ada externalReferences[0] = %+v, want vcs reference to the source URL", ref)
	}

	props := map[string]string{}
	for _, p := range ada.Properties {
		props[p.Name] = p.Value
	}
	wantProps := map[string]string{
		"snapcraft:part":        "ada",
		"snapcraft:source-type": "git",
		"snapcraft:source-tag":  "v3.2.4",
		"snapcraft:plugin":      "cmake",
		"sbom:versionSource":    "tag",
	}
	for k, v := range wantProps {
		if props[k] != v {
			t.Errorf("ada property %q = %q, want %q", k, props[k], v)
		}
	}
}

// TestCycloneDXVersionOmitted verifies that a component without a detected
// version has no version key at all.
func TestCycloneDXVersionOmitted(t *testing.T) {
	data := writeAndRead(t, makeTestResult(), testOptions())

	var raw struct {
		Components []map[string]json.RawMessage `json:"components"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("cannot unmarshal components: %v", err)
	}
	if len(raw.Components) != 3 {
		t.Fatalf("components count = %d, want 3", len(raw.Components))
	}
	if _, ok := raw.Components[0]["version"]; !ok {
		t.Error("ada has no version key")
	}
	if v, ok := raw.Components[2]["version"]; ok {
		t.Errorf("libfoo version = %s, want key to be absent", v)
	}
	if bytes.Contains(data, []byte(`"unknown"`)) {
		t.Error("output contains an \"unknown\" placeholder")
	}
}

// TestCycloneDXMetadata verifies the metadata block.
func TestCycloneDXMetadata(t *testing.T) {
	bom := decodeBOM(t, writeAndRead(t, makeTestResult(), testOptions()))

	if bom.Metadata.Timestamp == "" {
		t.Error("metadata.timestamp is empty")
	}
	if _, err := time.Parse(time.RFC3339, bom.Metadata.Timestamp); err != nil {
		t.Errorf("metadata.timestamp %q is not RFC 3339: %v", bom.Metadata.Timestamp, err)
	}

	if len(bom.Metadata.Tools.Components) != 1 {
		t.Fatalf("metadata.tools.components count = %d, want 1", len(bom.Metadata.Tools.Components))
	}
	tool := bom.Metadata.Tools.Components[0]
	if tool.Name != "snapcraft-sbom" {
		t.Errorf("tool name = %q, want %q", tool.Name, "snapcraft-sbom")
	}
	if tool.Version != "1.0.0-test" {
		t.Errorf("tool version = %q, want %q", tool.Version, "1.0.0-test")
	}
	if tool.Supplier == nil || tool.Supplier.Name != "sbomify" {
		t.Errorf("tool supplier = %+v, want sbomify", tool.Supplier)
	}

	if bom.Metadata.Supplier == nil || bom.Metadata.Supplier.Name != "Example Corp" {
		t.Errorf("metadata.supplier = %+v, want Example Corp", bom.Metadata.Supplier)
	}

	snap := bom.Metadata.Component
	if snap == nil {
		t.Fatal("metadata.component is nil")
	}
	if snap.Name != "example-app" || snap.Version != "1.0.0" || snap.Type != "application" {
		t.Errorf("metadata.component = %+v, want application example-app 1.0.0", snap)
	}
	if len(snap.Licenses) != 1 || snap.Licenses[0].Expression != "Apache-2.0" {
		t.Errorf("metadata.component.licenses = %+v, want Apache-2.0", snap.Licenses)
	}
	if len(snap.Properties) != 1 || snap.Properties[0].Name != "snapcraft:adopt-info" || snap.Properties[0].Value != "ada" {
		t.Errorf("metadata.component.properties = %+v, want snapcraft:adopt-info=ada", snap.Properties)
	}
}

// TestCycloneDXDependencies verifies the flat graph: the snap depends on every
// part and parts depend on nothing.
func TestCycloneDXDependencies(t *testing.T) {
	bom := decodeBOM(t, writeAndRead(t, makeTestResult(), testOptions()))

	if len(bom.Dependencies) != 4 {
		t.Fatalf("dependencies count = %d, want 4", len(bom.Dependencies))
	}
	root := bom.Dependencies[0]
	if root.Ref != "snap:example-app" {
		t.Errorf("dependencies[0].ref = %q, want snap:example-app", root.Ref)
	}
	want := []string{"snapcraft-part:ada", "snapcraft-part:zlib", "snapcraft-part:libfoo"}
	if strings.Join(root.DependsOn, ",") != strings.Join(want, ",") {
		t.Errorf("root dependsOn = %v, want %v", root.DependsOn, want)
	}
	for _, d := range bom.Dependencies[1:] {
		if len(d.DependsOn) != 0 {
			t.Errorf("%s dependsOn = %v, want empty", d.Ref, d.DependsOn)
		}
	}
}

// TestCycloneDXEmpty verifies that a manifest without remote parts still
// yields a valid document with an empty component list.
func TestCycloneDXEmpty(t *testing.T) {
	result := &scanner.Result{Components: []*model.ExtractedComponent{}}
	data := writeAndRead(t, result, testOptions())

	if !bytes.Contains(data, []byte(`"components": []`)) {
		t.Errorf("expected an empty components array, got:\n%s", string(data))
	}
	bom := decodeBOM(t, data)
	if bom.Metadata.Component == nil || bom.Metadata.Component.Name != "snap" {
		t.Errorf("metadata.component = %+v, want fallback name snap", bom.Metadata.Component)
	}
}

// TestCycloneDXReproducible verifies that a fixed build time gives
// byte-identical documents.
func TestCycloneDXReproducible(t *testing.T) {
	buildTime := time.Unix(1700000000, 0).UTC()
	opts := testOptions()
	opts.BuildTime = &buildTime

	first := writeAndRead(t, makeTestResult(), opts)
	second := writeAndRead(t, makeTestResult(), opts)
	if !bytes.Equal(first, second) {
		t.Errorf("outputs differ:\n%s\n---\n%s", string(first), string(second))
	}

	bom := decodeBOM(t, first)
	if bom.Metadata.Timestamp != "2023-11-14T22:13:20Z" {
		t.Errorf("metadata.timestamp = %q, want 2023-11-14T22:13:20Z", bom.Metadata.Timestamp)
	}

	// Without a build time every run gets a fresh serial.
	a := decodeBOM(t, writeAndRead(t, makeTestResult(), testOptions()))
	b := decodeBOM(t, writeAndRead(t, makeTestResult(), testOptions()))
	if a.SerialNumber == b.SerialNumber {
		t.Errorf("serialNumber %q repeated across runs", a.SerialNumber)
	}
}

// TestCycloneDXStdout verifies that writing to "-" goes to stdout.
func TestCycloneDXStdout(t *testing.T) {
	result := makeTestResult()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	os.Stdout = w

	writeErr := WriteCycloneDX(result, "-", testOptions())

	w.Close()
	os.Stdout = old

	data, _ := io.ReadAll(r)
	r.Close()

	if writeErr != nil {
		t.Errorf("WriteCycloneDX to stdout failed: %v", writeErr)
	}
	if len(data) == 0 {
		t.Fatal("no output written to stdout")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Errorf("stdout output is not valid JSON: %v", err)
	}
}
