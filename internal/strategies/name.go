package strategies

import (
	"regexp"
	"strings"

	"github.com/StinkyLord/snapcraft-sbom/internal/fingerprints"
	"github.com/StinkyLord/snapcraft-sbom/internal/model"
)

// reSourceMarker matches -src / _source / -sources markers between name parts.
var reSourceMarker = regexp.MustCompile(`(?i)[-_](?:src|sources?)([-_]|$)`)

// reNameWithSuffix captures the base name in front of a version token and/or
// a platform identifier: tool-zeta-v1.9.2-x86_64-unknown-linux-musl -> tool-zeta
var reNameWithSuffix = regexp.MustCompile(
	`^([a-zA-Z][\w-]*?)(?:-v?\d+[\d.].*)?(?:-(?:` + platformAlternation() + `)(?:[-_.].*)?)?$`,
)

// reNameWithVersion is the looser fallback that also accepts "_" before the
// version: pkg_v1.2.3 -> pkg
var reNameWithVersion = regexp.MustCompile(`^([a-zA-Z][\w-]*?)(?:[-_]v?\d+[\d.].*)?$`)

// reBareVersion matches archive names that are nothing but a version
// (GitHub's /archive/v1.2.3.tar.gz).
var reBareVersion = regexp.MustCompile(`^[vV]?\d+(?:\.\d+)*(?:[-.+~]\w+)*$`)

func platformAlternation() string {
	quoted := make([]string, 0, len(fingerprints.PlatformTokens))
	for _, tok := range fingerprints.PlatformTokens {
		quoted = append(quoted, regexp.QuoteMeta(tok))
	}
	return strings.Join(quoted, "|")
}

// PackageName derives a human-readable package name from a remote source:
// the final path segment without ".git". Non-VCS sources also lose their
// archive extension and release decorations such as "-src", version numbers
// and platform identifiers; repository names are kept as they are. It
// reports false when the reference has no usable path segment (e.g. a bare
// "https://") or cannot be parsed.
func PackageName(src model.RemoteSource) (string, bool) {
	loc, ok := parseLocation(src.URL)
	if !ok {
		return "", false
	}
	seg := lastSegment(loc.Path)
	if seg == "" {
		return "", false
	}

	name := seg
	if strings.HasSuffix(strings.ToLower(name), ".git") {
		name = name[:len(name)-len(".git")]
	}
	if !src.Kind.IsVCS() {
		name = cleanName(fingerprints.TrimArchiveExtension(name))
	}

	// Forge archive downloads are named after the tag; use the repository.
	if reBareVersion.MatchString(name) && fingerprints.MatchForge(loc.Host) != nil {
		if segs := segments(loc.Path); len(segs) >= 2 {
			name = strings.TrimSuffix(segs[1], ".git")
		}
	}
	if name == "" {
		return "", false
	}
	return name, true
}

// cleanName strips release decorations from a file or repository name.
func cleanName(name string) string {
	name = reSourceMarker.ReplaceAllString(name, "$1")

	if m := reNameWithSuffix.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if m := reNameWithVersion.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}
