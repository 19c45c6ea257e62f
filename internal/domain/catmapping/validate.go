package catmapping

import (
	"sort"
	"strconv"
	"strings"
)

// ValidationError names the first canonical invariant a mapping violates
type ValidationError struct {
	Violation string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "catmapping: invalid mapping: " + e.Violation
}

// Validate enforces the canonical invariants on a mapping and returns nil if
// they all hold. The error names the first violated invariant.
func Validate(m *CategoryMapping) error {
	if m == nil {
		return &ValidationError{Violation: "mapping is nil"}
	}

	if !m.Metadata.Source.IsValid() {
		return &ValidationError{Violation: "invalid metadata source: " + string(m.Metadata.Source)}
	}

	selected := make(map[string]struct{}, len(m.UI.Selected))
	for _, id := range m.UI.Selected {
		key := formatID(id)
		if _, dup := selected[key]; dup {
			return &ValidationError{Violation: "duplicate selected category " + key}
		}
		selected[key] = struct{}{}
	}

	if m.UI.Primary != nil && len(m.UI.Selected) == 0 {
		return &ValidationError{Violation: "primary set but nothing selected"}
	}
	if m.UI.Primary != nil && !containsID(m.UI.Selected, *m.UI.Primary) {
		return &ValidationError{
			Violation: "primary (" + strconv.FormatInt(*m.UI.Primary, 10) + ") not in selected",
		}
	}

	// The key set of Mappings must equal the selected set exactly.
	missing := make([]string, 0)
	for key := range selected {
		if _, ok := m.Mappings[key]; !ok {
			missing = append(missing, key)
		}
	}
	extra := make([]string, 0)
	for key := range m.Mappings {
		if _, ok := selected[key]; !ok {
			extra = append(extra, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{Violation: "mappings key mismatch: missing " + strings.Join(missing, ", ")}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return &ValidationError{Violation: "mappings key mismatch: extra " + strings.Join(extra, ", ")}
	}

	return nil
}
