// Package output provides SBOM serializers.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/StinkyLord/snapcraft-sbom/internal/model"
	"github.com/StinkyLord/snapcraft-sbom/internal/scanner"
)

const cdxSpecVersion = "1.6"

// ---- CycloneDX 1.6 JSON schema types ----

type cdxBOM struct {
	BOMFormat    string          `json:"bomFormat"`
	SpecVersion  string          `json:"specVersion"`
	SerialNumber string          `json:"serialNumber"`
	Version      int             `json:"version"`
	Metadata     cdxMetadata     `json:"metadata"`
	Components   []cdxComponent  `json:"components"`
	Dependencies []cdxDependency `json:"dependencies,omitempty"`
}

type cdxMetadata struct {
	Timestamp string                 `json:"timestamp"`
	Tools     cdxTools               `json:"tools"`
	Supplier  *cdxOrganizationEntity `json:"supplier,omitempty"`
	Component *cdxComponent          `json:"component,omitempty"`
}

// cdxTools is the 1.5+ object form; the bare array form is deprecated.
type cdxTools struct {
	Components []cdxComponent `json:"components"`
}

type cdxOrganizationEntity struct {
	Name string `json:"name"`
}

type cdxComponent struct {
	Type               string                 `json:"type"`
	BOMRef             string                 `json:"bom-ref,omitempty"`
	Supplier           *cdxOrganizationEntity `json:"supplier,omitempty"`
	Group              string                 `json:"group,omitempty"`
	Name               string                 `json:"name"`
	Version            string                 `json:"version,omitempty"`
	Description        string                 `json:"description,omitempty"`
	Licenses           []cdxLicenseChoice     `json:"licenses,omitempty"`
	PURL               string                 `json:"purl,omitempty"`
	ExternalReferences []cdxExternalReference `json:"externalReferences,omitempty"`
	Properties         []cdxProperty          `json:"properties,omitempty"`
}

// cdxLicenseChoice carries an SPDX expression, as Snapcraft's license key does.
type cdxLicenseChoice struct {
	Expression string `json:"expression"`
}

type cdxExternalReference struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type cdxProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// cdxDependency represents one node in the CycloneDX dependency graph.
type cdxDependency struct {
	Ref       string   `json:"ref"`
	DependsOn []string `json:"dependsOn"`
}

// Options carries the document metadata that does not come from the manifest.
type Options struct {
	ToolName    string
	ToolVersion string
	Vendor      string
	Supplier    string

	// BuildTime, when set, replaces the current time and makes the serial
	// number a function of the document content, so identical inputs give
	// byte-identical SBOMs.
	BuildTime *time.Time
}

// WriteCycloneDX serialises the extraction result as a CycloneDX 1.6 JSON SBOM
// and writes it to the given output path. If outputPath is "-", it writes to
// stdout.
func WriteCycloneDX(result *scanner.Result, outputPath string, opts Options) error {
	bom := buildCycloneDX(result, opts)

	data, err := json.MarshalIndent(bom, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal CycloneDX JSON: %w", err)
	}

	if outputPath == "-" || outputPath == "" {
		_, err = os.Stdout.Write(data)
		if err == nil {
			_, err = os.Stdout.WriteString("\n")
		}
		return err
	}

	return os.WriteFile(outputPath, append(data, '\n'), 0644)
}

func buildCycloneDX(result *scanner.Result, opts Options) cdxBOM {
	// Components keep manifest order; the order is part of the output contract.
	cdxComps := make([]cdxComponent, 0, len(result.Components))
	refs := make([]string, 0, len(result.Components))
	for _, c := range result.Components {
		comp := componentFor(c)
		cdxComps = append(cdxComps, comp)
		refs = append(refs, comp.BOMRef)
	}

	root := snapComponent(result)

	var deps []cdxDependency
	deps = append(deps, cdxDependency{Ref: root.BOMRef, DependsOn: refs})
	for _, ref := range refs {
		deps = append(deps, cdxDependency{Ref: ref, DependsOn: []string{}})
	}

	now := time.Now().UTC()
	if opts.BuildTime != nil {
		now = opts.BuildTime.UTC()
	}

	bom := cdxBOM{
		BOMFormat:   "CycloneDX",
		SpecVersion: cdxSpecVersion,
		Version:     1,
		Metadata: cdxMetadata{
			Timestamp: now.Format(time.RFC3339),
			Tools: cdxTools{
				Components: []cdxComponent{toolComponent(opts)},
			},
			Component: &root,
		},
		Components:   cdxComps,
		Dependencies: deps,
	}
	if opts.Supplier != "" {
		bom.Metadata.Supplier = &cdxOrganizationEntity{Name: opts.Supplier}
	}

	if opts.BuildTime != nil {
		bom.SerialNumber = contentURN(bom)
	} else {
		bom.SerialNumber = uuid.New().URN()
	}
	return bom
}

func componentFor(c *model.ExtractedComponent) cdxComponent {
	comp := cdxComponent{
		Type:    "library",
		BOMRef:  componentRef(c),
		Name:    c.PackageName,
		Version: c.Version, // omitted when absent
		PURL:    c.PURL,
	}

	if c.SourceURL != "" {
		comp.ExternalReferences = []cdxExternalReference{{Type: "vcs", URL: c.SourceURL}}
	}

	comp.Properties = append(comp.Properties, cdxProperty{Name: "snapcraft:part", Value: c.PartName})
	if c.SourceKind != "" && c.SourceKind != model.KindUnknown {
		comp.Properties = append(comp.Properties, cdxProperty{Name: "snapcraft:source-type", Value: string(c.SourceKind)})
	}
	if c.SourceTag != "" {
		comp.Properties = append(comp.Properties, cdxProperty{Name: "snapcraft:source-tag", Value: c.SourceTag})
	}
	if c.SourceBranch != "" {
		comp.Properties = append(comp.Properties, cdxProperty{Name: "snapcraft:source-branch", Value: c.SourceBranch})
	}
	if c.SourceCommit != "" {
		comp.Properties = append(comp.Properties, cdxProperty{Name: "snapcraft:source-commit", Value: c.SourceCommit})
	}
	if c.Plugin != "" {
		comp.Properties = append(comp.Properties, cdxProperty{Name: "snapcraft:plugin", Value: c.Plugin})
	}
	if c.VersionSource != "" {
		comp.Properties = append(comp.Properties, cdxProperty{Name: "sbom:versionSource", Value: c.VersionSource})
	}
	return comp
}

// componentRef is unique per document because part names are unique.
func componentRef(c *model.ExtractedComponent) string {
	return "snapcraft-part:" + c.PartName
}

func snapComponent(result *scanner.Result) cdxComponent {
	name := result.SnapName
	if name == "" {
		name = "snap"
	}
	root := cdxComponent{
		Type:        "application",
		BOMRef:      "snap:" + name,
		Name:        name,
		Version:     result.SnapVersion,
		Description: result.SnapSummary,
	}
	if result.SnapLicense != "" {
		root.Licenses = []cdxLicenseChoice{{Expression: result.SnapLicense}}
	}
	if result.SnapAdoptInfo != "" {
		root.Properties = []cdxProperty{{Name: "snapcraft:adopt-info", Value: result.SnapAdoptInfo}}
	}
	return root
}

func toolComponent(opts Options) cdxComponent {
	tool := cdxComponent{
		Type:    "application",
		Group:   opts.Vendor,
		Name:    opts.ToolName,
		Version: opts.ToolVersion,
	}
	if opts.Vendor != "" {
		tool.Supplier = &cdxOrganizationEntity{Name: opts.Vendor}
	}
	return tool
}

// contentURN derives a name-based UUID from everything in the document except
// the serial number itself.
func contentURN(bom cdxBOM) string {
	bom.SerialNumber = ""
	data, err := json.Marshal(bom)
	if err != nil {
		return uuid.New().URN()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, data).URN()
}
