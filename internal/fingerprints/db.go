// Package fingerprints holds the lookup tables used to recognise source
// references: well-known code forges, archive file extensions and the
// platform tokens that release tarballs carry in their file names.
package fingerprints

import (
	"strings"

	"github.com/StinkyLord/snapcraft-sbom/internal/model"
)

// ForgeFingerprint describes how to recognise a code hosting service.
type ForgeFingerprint struct {
	Name     string   // Canonical forge name
	Hosts    []string // Host names the forge serves repositories from
	PURLType string   // Package URL type for repositories hosted here
}

// KnownForges is the built-in forge database.
var KnownForges = []ForgeFingerprint{
	{
		Name:     "github",
		Hosts:    []string{"github.com", "www.github.com"},
		PURLType: "github",
	},
	{
		Name:     "gitlab",
		Hosts:    []string{"gitlab.com", "www.gitlab.com"},
		PURLType: "gitlab",
	},
	{
		Name:     "bitbucket",
		Hosts:    []string{"bitbucket.org", "www.bitbucket.org"},
		PURLType: "bitbucket",
	},
}

// MatchForge returns the forge serving the given host, or nil.
func MatchForge(host string) *ForgeFingerprint {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	for i := range KnownForges {
		fp := &KnownForges[i]
		for _, h := range fp.Hosts {
			if host == h {
				return fp
			}
		}
	}
	return nil
}

// ArchiveFingerprint maps a file extension to the source kind it implies.
type ArchiveFingerprint struct {
	Extension string
	Kind      model.SourceKind
}

// KnownArchives is ordered so compound extensions are tried before their
// suffixes (".tar.gz" before ".gz").
var KnownArchives = []ArchiveFingerprint{
	{".tar.gz", model.KindTar},
	{".tar.bz2", model.KindTar},
	{".tar.xz", model.KindTar},
	{".tar.zst", model.KindTar},
	{".tar.lz", model.KindTar},
	{".tgz", model.KindTar},
	{".tbz2", model.KindTar},
	{".tbz", model.KindTar},
	{".txz", model.KindTar},
	{".tar", model.KindTar},
	{".gz", model.KindTar},
	{".bz2", model.KindTar},
	{".xz", model.KindTar},
	{".zip", model.KindZip},
	{".7z", model.Kind7z},
	{".deb", model.KindDeb},
	{".rpm", model.KindRpm},
	{".snap", model.KindSnap},
}

// MatchArchive returns the archive fingerprint whose extension terminates
// name (case-insensitive), or nil.
func MatchArchive(name string) *ArchiveFingerprint {
	lower := strings.ToLower(name)
	for i := range KnownArchives {
		fp := &KnownArchives[i]
		if strings.HasSuffix(lower, fp.Extension) && len(lower) > len(fp.Extension) {
			return fp
		}
	}
	return nil
}

// TrimArchiveExtension removes a known archive extension from name.
func TrimArchiveExtension(name string) string {
	if fp := MatchArchive(name); fp != nil {
		return name[:len(name)-len(fp.Extension)]
	}
	return name
}

// PlatformTokens are the OS/arch identifiers release artifacts append to
// their base name (tool-1.2.3-x86_64-unknown-linux-musl.tar.gz).
var PlatformTokens = []string{
	"x86_64", "amd64", "aarch64", "arm64", "armhf", "armv7", "arm",
	"i386", "i686", "ppc64le", "s390x", "riscv64",
	"linux", "windows", "darwin", "macos", "unknown", "musl", "gnu",
}

// SchemeKinds maps URL schemes that imply a VCS to its kind.
var SchemeKinds = map[string]model.SourceKind{
	"git":       model.KindGit,
	"git+ssh":   model.KindGit,
	"git+https": model.KindGit,
	"ssh+git":   model.KindGit,
	"bzr":       model.KindBzr,
	"bzr+ssh":   model.KindBzr,
	"lp":        model.KindBzr,
	"svn":       model.KindSvn,
	"svn+ssh":   model.KindSvn,
	"hg":        model.KindHg,
	"hg+ssh":    model.KindHg,
}
