package catmapping

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ---------------------------------------------------------------------------
// Format detection
// ---------------------------------------------------------------------------

// Format identifies the persisted shape of a category-mapping value
type Format string

const (
	// FormatUIOnly is the legacy {"selected": [...], "primary": N} shape
	// written by early catalog UI versions; no external IDs are present.
	FormatUIOnly Format = "ui_only"
	// FormatExternalOnly is the legacy flat {"<internal>": <external>} map
	// written by the first sync implementation; no UI state is present.
	FormatExternalOnly Format = "external_only"
	// FormatOptionA is the canonical {ui, mappings, metadata} structure
	FormatOptionA Format = "option_a"
	// FormatUnknown is any shape that matches none of the recognized formats
	FormatUnknown Format = "unknown"
)

// String returns the string representation of Format
func (f Format) String() string {
	return string(f)
}

// ErrUnknownFormat is returned when a persisted value matches no recognized
// category-mapping shape
var ErrUnknownFormat = fmt.Errorf("catmapping: unrecognized mapping format")

// DetectFormat classifies an already-decoded JSON value into one of the
// recognized category-mapping shapes. Nil values, empty maps and empty
// arrays (PHP's encoding of an empty associative array) are classified as
// ui_only so they convert to the canonical empty structure.
func DetectFormat(raw interface{}) Format {
	switch v := raw.(type) {
	case nil:
		return FormatUIOnly
	case *CategoryMapping:
		return FormatOptionA
	case CategoryMapping:
		return FormatOptionA
	case []interface{}:
		if len(v) == 0 {
			return FormatUIOnly
		}
		return FormatUnknown
	case map[string]interface{}:
		if len(v) == 0 {
			return FormatUIOnly
		}

		_, hasUI := v["ui"]
		_, hasMappings := v["mappings"]
		_, hasMetadata := v["metadata"]
		if hasUI && hasMappings && hasMetadata {
			return FormatOptionA
		}

		_, hasSelected := v["selected"]
		_, hasPrimary := v["primary"]
		if hasSelected && onlyKeys(v, "selected", "primary") {
			return FormatUIOnly
		}
		if hasPrimary && !hasSelected {
			return FormatUnknown
		}

		if isFlatNumericMap(v) {
			return FormatExternalOnly
		}
		return FormatUnknown
	default:
		return FormatUnknown
	}
}

// ---------------------------------------------------------------------------
// Legacy conversion
// ---------------------------------------------------------------------------

// ConvertLegacy normalizes an already-decoded category-mapping value into the
// canonical structure. Legacy shapes are upgraded; canonical input passes
// through unchanged after validation; nil or empty input yields the canonical
// empty structure. Conversion is idempotent: converting a converted value is
// a no-op.
//
// Unmapped entries are always materialized with an explicit nil value, so the
// key set of Mappings equals the selected set even before any sync has run.
func ConvertLegacy(raw interface{}) (*CategoryMapping, error) {
	switch DetectFormat(raw) {
	case FormatOptionA:
		mapping, err := decodeCanonical(raw)
		if err != nil {
			return nil, err
		}
		if err := Validate(mapping); err != nil {
			return nil, err
		}
		return mapping, nil

	case FormatUIOnly:
		return convertUIOnly(raw)

	case FormatExternalOnly:
		return convertExternalOnly(raw.(map[string]interface{}))

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownFormat, raw)
	}
}

// convertUIOnly upgrades the {"selected", "primary"} legacy shape. No
// external IDs are known yet, so every selected category gets a nil entry.
func convertUIOnly(raw interface{}) (*CategoryMapping, error) {
	m, ok := raw.(map[string]interface{})
	if !ok || len(m) == 0 {
		// nil, empty map or empty array: canonical empty structure
		return Empty(), nil
	}

	selected, err := decodeIDList(m["selected"])
	if err != nil {
		return nil, fmt.Errorf("%w: selected: %v", ErrUnknownFormat, err)
	}

	var primary *int64
	if rawPrimary, ok := m["primary"]; ok && rawPrimary != nil {
		id, err := decodeID(rawPrimary)
		if err != nil {
			return nil, fmt.Errorf("%w: primary: %v", ErrUnknownFormat, err)
		}
		primary = &id
	}

	mapping := &CategoryMapping{
		UI: UISelection{
			Selected: dedupeIDs(selected),
			Primary:  primary,
		},
		Mappings: make(map[string]*int64, len(selected)),
		Metadata: Metadata{
			LastUpdated: time.Now().UTC(),
			Source:      SourceMigrated,
		},
	}
	for _, id := range mapping.UI.Selected {
		mapping.Mappings[formatID(id)] = nil
	}

	if err := Validate(mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// convertExternalOnly upgrades the flat {"<internal>": <external>} legacy
// shape. The keys double as the selected set; no primary was recorded.
func convertExternalOnly(m map[string]interface{}) (*CategoryMapping, error) {
	selected := make([]int64, 0, len(m))
	mappings := make(map[string]*int64, len(m))

	for key, rawValue := range m {
		internalID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q is not numeric", ErrUnknownFormat, key)
		}
		externalID, err := decodeID(rawValue)
		if err != nil {
			return nil, fmt.Errorf("%w: value for key %q: %v", ErrUnknownFormat, key, err)
		}
		selected = append(selected, internalID)
		ext := externalID
		mappings[key] = &ext
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i] < selected[j] })

	mapping := &CategoryMapping{
		UI:       UISelection{Selected: selected},
		Mappings: mappings,
		Metadata: Metadata{
			LastUpdated: time.Now().UTC(),
			Source:      SourceMigrated,
		},
	}

	if err := Validate(mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// decodeCanonical converts an option_a value into the typed structure
func decodeCanonical(raw interface{}) (*CategoryMapping, error) {
	switch v := raw.(type) {
	case *CategoryMapping:
		return v.Clone(), nil
	case CategoryMapping:
		return v.Clone(), nil
	}

	// Round-trip through encoding/json; the shape was already detected as
	// canonical, so field-level mismatches surface as validation errors.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	var mapping CategoryMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	if mapping.UI.Selected == nil {
		mapping.UI.Selected = make([]int64, 0)
	}
	if mapping.Mappings == nil {
		mapping.Mappings = make(map[string]*int64)
	}
	return &mapping, nil
}

// ---------------------------------------------------------------------------
// Decoding helpers
// ---------------------------------------------------------------------------

// onlyKeys returns true if every key of m is one of the allowed keys
func onlyKeys(m map[string]interface{}, allowed ...string) bool {
	for key := range m {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// isFlatNumericMap returns true if every key parses as an integer and every
// value is a JSON number
func isFlatNumericMap(m map[string]interface{}) bool {
	for key, value := range m {
		if _, err := strconv.ParseInt(key, 10, 64); err != nil {
			return false
		}
		if _, err := decodeID(value); err != nil {
			return false
		}
	}
	return true
}

// decodeID converts a decoded JSON scalar into an int64 category ID
func decodeID(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("not a numeric ID: %T", raw)
	}
}

// decodeIDList converts a decoded JSON array into a list of int64 IDs
func decodeIDList(raw interface{}) ([]int64, error) {
	if raw == nil {
		return []int64{}, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("not a list: %T", raw)
	}
	ids := make([]int64, 0, len(list))
	for _, item := range list {
		id, err := decodeID(item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// formatID renders an internal category ID as a mappings key
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// containsID reports whether ids contains id
func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// dedupeIDs removes duplicates while preserving order
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
