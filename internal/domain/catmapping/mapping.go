package catmapping

import (
	"time"
)

// ---------------------------------------------------------------------------
// Source
// ---------------------------------------------------------------------------

// Source records how a category mapping came into existence
type Source string

const (
	// SourceManual indicates the mapping was edited by a user
	SourceManual Source = "manual"
	// SourceEmpty indicates the canonical empty structure created on first read
	SourceEmpty Source = "empty"
	// SourceMigrated indicates the mapping was upgraded from a legacy format
	SourceMigrated Source = "migrated"
	// SourceImport indicates the mapping was produced by a bulk import
	SourceImport Source = "import"
)

// IsValid returns true if the source is valid
func (s Source) IsValid() bool {
	switch s {
	case SourceManual, SourceEmpty, SourceMigrated, SourceImport:
		return true
	default:
		return false
	}
}

// String returns the string representation of Source
func (s Source) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Canonical structure
// ---------------------------------------------------------------------------

// UISelection holds the category choices made in the catalog UI.
// Selected is an ordered set of internal category IDs; Primary, when set,
// must be one of them.
type UISelection struct {
	Selected []int64 `json:"selected"`
	Primary  *int64  `json:"primary"`
}

// Metadata carries bookkeeping for a category mapping
type Metadata struct {
	LastUpdated time.Time `json:"last_updated"`
	Source      Source    `json:"source"`
}

// CategoryMapping is the canonical structure persisted in the
// category_mappings column. Mappings is keyed by the decimal string form of
// each selected internal category ID; the value is the external category ID
// on the integration target, or nil when the external side is not yet known.
//
// Invariants (enforced by Validate):
//   - the key set of Mappings equals the set of UI.Selected
//   - UI.Primary is nil or a member of UI.Selected
//   - Metadata.Source is a valid Source value
type CategoryMapping struct {
	UI       UISelection       `json:"ui"`
	Mappings map[string]*int64 `json:"mappings"`
	Metadata Metadata          `json:"metadata"`
}

// Empty returns the canonical empty structure used when the persisted field
// is NULL, empty, or unreadable.
func Empty() *CategoryMapping {
	return &CategoryMapping{
		UI:       UISelection{Selected: make([]int64, 0)},
		Mappings: make(map[string]*int64),
		Metadata: Metadata{
			LastUpdated: time.Now().UTC(),
			Source:      SourceEmpty,
		},
	}
}

// IsEmpty returns true if no categories are selected and no external IDs are
// recorded
func (m *CategoryMapping) IsEmpty() bool {
	return len(m.UI.Selected) == 0 && len(m.Mappings) == 0
}

// IsSelected returns true if the internal category is selected
func (m *CategoryMapping) IsSelected(internalID int64) bool {
	return containsID(m.UI.Selected, internalID)
}

// ExternalID returns the mapped external category ID for an internal
// category, if one is recorded
func (m *CategoryMapping) ExternalID(internalID int64) (int64, bool) {
	v, ok := m.Mappings[formatID(internalID)]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// SetExternalID records the external category ID for an internal category.
// The internal ID must already be selected; unknown IDs are rejected so the
// key-set invariant cannot be broken through this path.
func (m *CategoryMapping) SetExternalID(internalID, externalID int64) error {
	if !containsID(m.UI.Selected, internalID) {
		return &ValidationError{Violation: "category " + formatID(internalID) + " not in selected"}
	}
	ext := externalID
	m.Mappings[formatID(internalID)] = &ext
	m.Metadata.LastUpdated = time.Now().UTC()
	return nil
}

// Select replaces the selected category set, reconciling Mappings so the
// key-set invariant holds: entries for removed categories are dropped and
// newly selected categories get an explicit nil entry. Primary is cleared if
// it is no longer selected.
func (m *CategoryMapping) Select(selected []int64, primary *int64) error {
	if primary != nil && !containsID(selected, *primary) {
		return &ValidationError{Violation: "primary not in selected"}
	}

	next := make(map[string]*int64, len(selected))
	for _, id := range selected {
		key := formatID(id)
		if ext, ok := m.Mappings[key]; ok {
			next[key] = ext
		} else {
			next[key] = nil
		}
	}

	m.UI.Selected = dedupeIDs(selected)
	m.UI.Primary = primary
	m.Mappings = next
	m.Metadata.LastUpdated = time.Now().UTC()
	m.Metadata.Source = SourceManual
	return nil
}

// Clone returns a deep copy of the mapping
func (m *CategoryMapping) Clone() *CategoryMapping {
	clone := &CategoryMapping{
		UI: UISelection{
			Selected: append([]int64(nil), m.UI.Selected...),
		},
		Mappings: make(map[string]*int64, len(m.Mappings)),
		Metadata: m.Metadata,
	}
	if m.UI.Primary != nil {
		p := *m.UI.Primary
		clone.UI.Primary = &p
	}
	for k, v := range m.Mappings {
		if v == nil {
			clone.Mappings[k] = nil
			continue
		}
		ext := *v
		clone.Mappings[k] = &ext
	}
	return clone
}
