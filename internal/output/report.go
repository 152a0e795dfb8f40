package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/StinkyLord/snapcraft-sbom/internal/scanner"
)

// WriteReport writes the human-readable extraction report: one block per
// extracted part followed by the skipped parts. Styling is applied only when
// w is a terminal.
func WriteReport(w io.Writer, result *scanner.Result) error {
	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true)
	label := r.NewStyle().Foreground(lipgloss.Color("6"))
	muted := r.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder

	if result.ManifestPath != "" {
		fmt.Fprintf(&b, "%s %s\n", label.Render("Manifest:"), result.ManifestPath)
	}
	if result.SnapName != "" {
		fmt.Fprintf(&b, "%s %s\n", label.Render("Snap name:"), result.SnapName)
	}
	if result.SnapAdoptInfo != "" {
		fmt.Fprintf(&b, "%s %s\n", label.Render("Version adopted from part:"), result.SnapAdoptInfo)
	}
	fmt.Fprintf(&b, "\n%s\n\n", heading.Render(fmt.Sprintf("Found %d parts with remote source:", len(result.Components))))

	for _, c := range result.Components {
		fmt.Fprintf(&b, "%s %s\n", heading.Render("Part:"), c.PartName)
		line := func(name, value string) {
			if value != "" {
				fmt.Fprintf(&b, "  %s %s\n", label.Render(name+":"), value)
			}
		}
		line("Package Name", c.PackageName)
		if c.HasVersion() {
			line("Version", c.Version)
		} else {
			fmt.Fprintf(&b, "  %s %s\n", label.Render("Version:"), muted.Render("(not detected)"))
		}
		line("Source", c.SourceURL)
		line("Type", string(c.SourceKind))
		line("Tag", c.SourceTag)
		line("Branch", c.SourceBranch)
		line("Commit", c.SourceCommit)
		line("Depth", c.SourceDepth)
		line("Plugin", c.Plugin)
		line("PURL", c.PURL)
		b.WriteByte('\n')
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(&b, "%s\n", heading.Render(fmt.Sprintf("Skipped %d parts:", len(result.Skipped))))
		for _, s := range result.Skipped {
			if s.Detail != "" {
				fmt.Fprintf(&b, "  %s: %s %s\n", s.PartName, s.Reason, muted.Render("("+s.Detail+")"))
			} else {
				fmt.Fprintf(&b, "  %s: %s\n", s.PartName, s.Reason)
			}
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}
