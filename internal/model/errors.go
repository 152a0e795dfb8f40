package model

import "fmt"

// StructuralError reports a part whose shape violates the loader contract,
// e.g. a source given as a list instead of a string.
type StructuralError struct {
	PartName string
	Field    string
	Kind     string // YAML kind actually found ("sequence", "mapping", ...)
}

func (e *StructuralError) Error() string {
	if e.Field == WholePart {
		return fmt.Sprintf("part %q must be a mapping, got %s", e.PartName, e.Kind)
	}
	return fmt.Sprintf("part %q: field %q must be a string, got %s", e.PartName, e.Field, e.Kind)
}
