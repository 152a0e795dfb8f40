// Package model defines the data structures shared by the manifest loader,
// the extraction engine and the SBOM writers.
package model

// ExtractedComponent is one SBOM-ready record derived from a single remote part.
type ExtractedComponent struct {
	PartName    string     // Originating part (traceability)
	PackageName string     // Best-effort name derived from the source URL
	Version     string     // Best-effort version, "" when nothing could be derived
	SourceURL   string     // Source reference exactly as written in the manifest
	SourceKind  SourceKind // git, tar, ... (explicit source-type or inferred)
	PURL        string     // Package URL, if one could be built

	// VersionSource names the strategy that produced Version ("tag", "branch",
	// "commit", "url"), empty when Version is absent.
	VersionSource string

	// Raw ref fields, kept for diagnostics and SBOM properties.
	SourceTag    string
	SourceBranch string
	SourceCommit string
	SourceDepth  string
	Plugin       string
}

// HasVersion reports whether a version was derived for the component.
func (c *ExtractedComponent) HasVersion() bool {
	return c.Version != ""
}

// SkipReason enumerates why a candidate part produced no component.
type SkipReason string

const (
	SkipLocalSource SkipReason = "local source"
	SkipEmptySource SkipReason = "empty source"
	SkipNoName      SkipReason = "no derivable package name"
)

// SkipNote records a part that had a source but was excluded.
type SkipNote struct {
	PartName string
	Reason   SkipReason
	Detail   string // e.g. the offending source value
}
