// Package scanner walks a manifest's parts and turns every remote source into
// an SBOM component, recording why the remaining candidates were skipped.
package scanner

import (
	"errors"
	"strings"

	"github.com/StinkyLord/snapcraft-sbom/internal/logging"
	"github.com/StinkyLord/snapcraft-sbom/internal/manifest"
	"github.com/StinkyLord/snapcraft-sbom/internal/model"
	"github.com/StinkyLord/snapcraft-sbom/internal/strategies"
)

// Result is the extraction report for one manifest. Components and Skipped
// are both in manifest declaration order.
type Result struct {
	SnapName    string
	SnapVersion string
	SnapSummary string
	SnapLicense string

	// SnapAdoptInfo names the part the snap takes its version from when the
	// manifest sets adopt-info instead of a fixed version.
	SnapAdoptInfo string
	ManifestPath  string

	Components []*model.ExtractedComponent
	Skipped    []model.SkipNote
}

// Scanner extracts components from manifests. It keeps no state between
// calls, so one Scanner can serve any number of manifests concurrently.
type Scanner struct {
	Normalizer *strategies.Normalizer
	Logger     logging.Logger
}

// New creates a Scanner with the default version strategy chain.
func New(logger logging.Logger) *Scanner {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Scanner{
		Normalizer: strategies.NewNormalizer(),
		Logger:     logger,
	}
}

// refFields are the part fields the extractor reads; a non-scalar value in any
// of them is a structural error for that part.
var refFields = []string{"source", "source-type", "source-tag", "source-branch", "source-commit"}

// Scan extracts one component per part with a remote source. Parts without a
// source key are ignored; local or unusable sources become skip notes.
//
// The returned Result is always complete for the well-formed parts. The error
// is non-nil only when some parts violate the manifest structure; it joins one
// *model.StructuralError per offending part.
func (s *Scanner) Scan(m *manifest.Manifest) (*Result, error) {
	result := &Result{
		SnapName:    m.Name,
		SnapVersion: m.Version,
		SnapSummary: m.Summary,
		SnapLicense: m.License,
		Components:  []*model.ExtractedComponent{},

		SnapAdoptInfo: m.AdoptInfo,
		ManifestPath:  m.SourcePath,
	}

	var structural []error
	for i := range m.Parts {
		part := &m.Parts[i]

		if err := checkStructure(part); err != nil {
			s.Logger.Debug("[scanner] malformed part", logging.F("part", part.Name), logging.F("error", err))
			structural = append(structural, err)
			continue
		}

		if !part.HasSource {
			continue
		}

		comp, skip := s.extractPart(part)
		if skip != nil {
			s.Logger.Debug("[scanner] skipped part", logging.F("part", part.Name), logging.F("reason", skip.Reason))
			result.Skipped = append(result.Skipped, *skip)
			continue
		}
		s.Logger.Debug("[scanner] extracted part",
			logging.F("part", part.Name),
			logging.F("package", comp.PackageName),
			logging.F("version", comp.Version),
		)
		result.Components = append(result.Components, comp)
	}

	return result, errors.Join(structural...)
}

func checkStructure(part *model.ManifestPart) error {
	if kind, ok := part.MalformedField(model.WholePart); ok {
		return &model.StructuralError{PartName: part.Name, Field: model.WholePart, Kind: kind}
	}
	for _, field := range refFields {
		if kind, ok := part.MalformedField(field); ok {
			return &model.StructuralError{PartName: part.Name, Field: field, Kind: kind}
		}
	}
	return nil
}

// extractPart returns either a component or the reason the part produced none.
func (s *Scanner) extractPart(part *model.ManifestPart) (*model.ExtractedComponent, *model.SkipNote) {
	if strings.TrimSpace(part.Source) == "" {
		return nil, &model.SkipNote{PartName: part.Name, Reason: model.SkipEmptySource}
	}

	var remote model.RemoteSource
	switch src := strategies.Classify(part.Source, part.SourceType).(type) {
	case model.LocalSource:
		return nil, &model.SkipNote{PartName: part.Name, Reason: model.SkipLocalSource, Detail: src.Path}
	case model.RemoteSource:
		remote = src
	}

	ref := strategies.Reference{
		Source:     part.Source,
		SourceType: part.SourceType,
		Tag:        part.SourceTag,
		Branch:     part.SourceBranch,
		Commit:     part.SourceCommit,
	}
	norm, ok := s.Normalizer.Normalize(remote, ref)
	if !ok {
		return nil, &model.SkipNote{PartName: part.Name, Reason: model.SkipNoName, Detail: part.Source}
	}

	return &model.ExtractedComponent{
		PartName:      part.Name,
		PackageName:   norm.PackageName,
		Version:       norm.Version,
		VersionSource: norm.VersionSource,
		SourceURL:     part.Source,
		SourceKind:    remote.Kind,
		PURL:          norm.PURL,
		SourceTag:     part.SourceTag,
		SourceBranch:  part.SourceBranch,
		SourceCommit:  part.SourceCommit,
		SourceDepth:   part.SourceDepth,
		Plugin:        part.Plugin,
	}, nil
}
