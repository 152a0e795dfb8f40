// Package strategies derives package names and versions from Snapcraft source
// references. Version detection is an ordered chain of independent strategies;
// the first one that produces a value wins.
package strategies

import (
	"regexp"
	"strings"
)

// Reference is the raw source information of one part.
type Reference struct {
	Source     string
	SourceType string
	Tag        string
	Branch     string
	Commit     string
}

// VersionStrategy is the interface every version detection strategy implements.
type VersionStrategy interface {
	Name() string
	Version(ref Reference) (string, bool)
}

// DefaultVersionChain is the precedence order: tag, branch, commit, URL.
var DefaultVersionChain = []VersionStrategy{
	&TagStrategy{},
	&BranchStrategy{},
	&CommitStrategy{},
	&URLStrategy{},
}

// ResolveVersion runs the chain in order and returns the first version found
// together with the name of the strategy that produced it. Both are empty
// when no strategy has a signal; no placeholder is ever invented.
func ResolveVersion(ref Reference, chain []VersionStrategy) (version, from string) {
	for _, st := range chain {
		if v, ok := st.Version(ref); ok {
			return v, st.Name()
		}
	}
	return "", ""
}

// reVersionPrefix matches a single leading v/V directly followed by a digit.
var reVersionPrefix = regexp.MustCompile(`^[vV](\d)`)

// reLeakedExtension matches an archive extension glued to a version.
var reLeakedExtension = regexp.MustCompile(`\.(?:tar|gz|bz2|xz|zip)(?:\.\w+)*$`)

// reURLVersion matches a dotted version token preceded by "/" or "-",
// optionally followed by one extra qualifier (-rc1, .Final, -x86_64).
var reURLVersion = regexp.MustCompile(`[/-]v?(\d+(?:\.\d+)+(?:[.-]\w+)?)`)

func stripVersionPrefix(v string) string {
	return reVersionPrefix.ReplaceAllString(v, "$1")
}

// TagStrategy uses source-tag, without a "v" prefix when one precedes a digit.
// Tags that do not look like versions are passed through unchanged.
type TagStrategy struct{}

func (s *TagStrategy) Name() string { return "tag" }

func (s *TagStrategy) Version(ref Reference) (string, bool) {
	tag := strings.TrimSpace(ref.Tag)
	if tag == "" {
		return "", false
	}
	v := stripVersionPrefix(tag)
	if v != "" && v[0] >= '0' && v[0] <= '9' {
		v = reLeakedExtension.ReplaceAllString(v, "")
	}
	if v == "" {
		return tag, true
	}
	return v, true
}

// BranchStrategy uses source-branch verbatim, but only when the branch name
// carries a digit; "main" or "stable" say nothing about the version.
type BranchStrategy struct{}

func (s *BranchStrategy) Name() string { return "branch" }

func (s *BranchStrategy) Version(ref Reference) (string, bool) {
	branch := strings.TrimSpace(ref.Branch)
	if branch == "" || !strings.ContainsAny(branch, "0123456789") {
		return "", false
	}
	return branch, true
}

// CommitStrategy uses the abbreviated (7 character) source-commit.
type CommitStrategy struct{}

func (s *CommitStrategy) Name() string { return "commit" }

const shortCommitLen = 7

func (s *CommitStrategy) Version(ref Reference) (string, bool) {
	commit := strings.TrimSpace(ref.Commit)
	if commit == "" {
		return "", false
	}
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}
	return commit, true
}

// URLStrategy looks for a version token in the source's file name first and
// then anywhere in the URL.
type URLStrategy struct{}

func (s *URLStrategy) Name() string { return "url" }

func (s *URLStrategy) Version(ref Reference) (string, bool) {
	source := strings.TrimSpace(ref.Source)
	if source == "" {
		return "", false
	}

	filename := source
	if i := strings.LastIndex(source, "/"); i >= 0 {
		filename = source[i+1:]
	}

	for _, candidate := range []string{filename, source} {
		if m := reURLVersion.FindStringSubmatch(candidate); m != nil {
			v := reLeakedExtension.ReplaceAllString(m[1], "")
			v = stripVersionPrefix(v)
			if v != "" {
				return v, true
			}
		}
	}
	return "", false
}
