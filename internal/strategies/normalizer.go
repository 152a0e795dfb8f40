package strategies

import "github.com/StinkyLord/snapcraft-sbom/internal/model"

// Normalized is the canonical identity derived for one remote source.
type Normalized struct {
	PackageName   string
	Version       string // "" when absent
	VersionSource string // strategy that produced Version
	PURL          string
}

// Normalizer turns a part's raw source fields into a package name and
// version. It holds no state between calls.
type Normalizer struct {
	Chain []VersionStrategy
}

// NewNormalizer creates a Normalizer using DefaultVersionChain.
func NewNormalizer() *Normalizer {
	return &Normalizer{Chain: DefaultVersionChain}
}

// Normalize derives the package identity of a remote source. It reports false
// when no package name can be derived; a missing version is not a failure.
func (n *Normalizer) Normalize(src model.RemoteSource, ref Reference) (Normalized, bool) {
	name, ok := PackageName(src)
	if !ok {
		return Normalized{}, false
	}

	chain := n.Chain
	if chain == nil {
		chain = DefaultVersionChain
	}
	version, from := ResolveVersion(ref, chain)

	return Normalized{
		PackageName:   name,
		Version:       version,
		VersionSource: from,
		PURL:          PackageURL(src, name, version),
	}, true
}
