package model

// ManifestPart is one entry under the manifest's parts mapping.
// It is built once by the manifest loader and never mutated.
type ManifestPart struct {
	Name string

	// HasSource distinguishes "source: ''" from no source key at all.
	HasSource    bool
	Source       string
	SourceType   string
	SourceTag    string
	SourceBranch string
	SourceCommit string
	SourceDepth  string
	Plugin       string

	// Malformed maps a field name to the YAML kind it was found with, for
	// fields that were present but not scalars. WholePart marks a part whose
	// value is not a mapping at all.
	Malformed map[string]string
}

// WholePart is the Malformed key used when the part itself has the wrong shape.
const WholePart = ""

// MalformedField reports whether field was present with a non-scalar value,
// and the kind it was found with.
func (p *ManifestPart) MalformedField(field string) (string, bool) {
	kind, ok := p.Malformed[field]
	return kind, ok
}

// SourceKind is the flavour of a remote source reference.
type SourceKind string

const (
	KindGit     SourceKind = "git"
	KindBzr     SourceKind = "bzr"
	KindHg      SourceKind = "hg"
	KindSvn     SourceKind = "svn"
	KindTar     SourceKind = "tar"
	KindZip     SourceKind = "zip"
	Kind7z      SourceKind = "7z"
	KindDeb     SourceKind = "deb"
	KindRpm     SourceKind = "rpm"
	KindSnap    SourceKind = "snap"
	KindUnknown SourceKind = "unknown"
)

// IsVCS reports whether the kind refers to a version-control checkout rather
// than a downloadable archive.
func (k SourceKind) IsVCS() bool {
	switch k {
	case KindGit, KindBzr, KindHg, KindSvn:
		return true
	}
	return false
}

// Source is the closed local/remote classification of a part's source value.
// Exactly one of LocalSource or RemoteSource implements it.
type Source interface {
	isSource()
}

// LocalSource is a filesystem path (including ".") inside the snap project.
type LocalSource struct {
	Path string
}

// RemoteSource is a reference that has to be fetched from elsewhere.
type RemoteSource struct {
	URL  string
	Kind SourceKind
}

func (LocalSource) isSource()  {}
func (RemoteSource) isSource() {}
