package strategies

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/StinkyLord/snapcraft-sbom/internal/fingerprints"
	"github.com/StinkyLord/snapcraft-sbom/internal/model"
)

// reScheme matches a leading URL scheme ("https:", "git+ssh:", "lp:").
var reScheme = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.\-]*):`)

// reSCPLike matches scp-style git references: git@github.com:owner/repo.git
var reSCPLike = regexp.MustCompile(`^[A-Za-z0-9._\-]+@([A-Za-z0-9.\-]+):(.+)$`)

// location is the host/path view of a remote source reference.
type location struct {
	Scheme string
	Host   string
	Path   string
}

// Classify decides whether a part's source is local to the project or has to
// be fetched. An explicit source-type of "local" always wins; otherwise a
// source is remote when it carries a URL scheme other than file (a single
// letter is a Windows drive, not a scheme) or is an scp-style git reference.
func Classify(source, sourceType string) model.Source {
	s := strings.TrimSpace(source)
	if strings.EqualFold(strings.TrimSpace(sourceType), "local") || isLocalPath(s) {
		return model.LocalSource{Path: source}
	}

	if reSCPLike.MatchString(s) && !strings.Contains(s, "://") {
		return model.RemoteSource{URL: source, Kind: inferKind(s, "git", sourceType)}
	}

	m := reScheme.FindStringSubmatch(s)
	if m == nil || len(m[1]) == 1 {
		return model.LocalSource{Path: source}
	}
	scheme := strings.ToLower(m[1])
	if scheme == "file" {
		return model.LocalSource{Path: source}
	}
	return model.RemoteSource{URL: source, Kind: inferKind(s, scheme, sourceType)}
}

func isLocalPath(s string) bool {
	return s == "" || strings.HasPrefix(s, ".") || strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "~") || strings.HasPrefix(s, "$")
}

// inferKind returns the explicit source-type when given, and otherwise
// guesses from the scheme and the final path segment.
func inferKind(source, scheme, sourceType string) model.SourceKind {
	if t := strings.ToLower(strings.TrimSpace(sourceType)); t != "" {
		return model.SourceKind(t)
	}
	if kind, ok := fingerprints.SchemeKinds[scheme]; ok {
		return kind
	}

	loc, ok := parseLocation(source)
	if !ok {
		return model.KindUnknown
	}
	seg := lastSegment(loc.Path)
	if strings.HasSuffix(strings.ToLower(seg), ".git") {
		return model.KindGit
	}
	if fp := fingerprints.MatchArchive(seg); fp != nil {
		return fp.Kind
	}
	if scheme == "git" {
		return model.KindGit
	}
	return model.KindUnknown
}

// parseLocation splits a remote reference into scheme, host and path.
// It reports false for references net/url cannot parse.
func parseLocation(source string) (location, bool) {
	source = strings.TrimSpace(source)
	if m := reSCPLike.FindStringSubmatch(source); m != nil && !strings.Contains(source, "://") {
		return location{Scheme: "ssh", Host: m[1], Path: "/" + strings.TrimPrefix(m[2], "/")}, true
	}

	u, err := url.Parse(source)
	if err != nil {
		return location{}, false
	}
	p := u.Path
	if p == "" && u.Opaque != "" {
		// lp:project, bzr shorthand
		p = u.Opaque
	}
	return location{Scheme: u.Scheme, Host: u.Host, Path: p}, true
}

// lastSegment returns the final non-empty path element, ignoring a trailing
// slash. It returns "" when the path has no element at all.
func lastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	seg := path.Base(p)
	if seg == "." || seg == "/" {
		return ""
	}
	return seg
}

// segments returns the non-empty elements of p.
func segments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
