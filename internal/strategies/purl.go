package strategies

import (
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/StinkyLord/snapcraft-sbom/internal/fingerprints"
	"github.com/StinkyLord/snapcraft-sbom/internal/model"
)

// PackageURL builds a purl for a remote source. Repositories on a known forge
// get a forge purl (pkg:github/owner/repo@version); everything else gets a
// generic purl carrying the source location as a qualifier.
func PackageURL(src model.RemoteSource, name, version string) string {
	loc, ok := parseLocation(src.URL)
	if ok {
		if fp := fingerprints.MatchForge(loc.Host); fp != nil {
			if segs := segments(loc.Path); len(segs) >= 2 {
				repo := strings.TrimSuffix(segs[1], ".git")
				return packageurl.NewPackageURL(fp.PURLType, segs[0], repo, version, nil, "").ToString()
			}
		}
	}

	key := "download_url"
	if src.Kind.IsVCS() {
		key = "vcs_url"
	}
	qualifiers := packageurl.Qualifiers{{Key: key, Value: src.URL}}
	return packageurl.NewPackageURL(packageurl.TypeGeneric, "", name, version, qualifiers, "").ToString()
}
