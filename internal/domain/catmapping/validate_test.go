package catmapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func validMapping() *CategoryMapping {
	return &CategoryMapping{
		UI: UISelection{
			Selected: []int64{100, 103},
			Primary:  int64Ptr(100),
		},
		Mappings: map[string]*int64{
			"100": int64Ptr(9),
			"103": nil,
		},
		Metadata: Metadata{
			LastUpdated: time.Now().UTC(),
			Source:      SourceManual,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid mapping passes", func(t *testing.T) {
		assert.NoError(t, Validate(validMapping()))
	})

	t.Run("empty structure passes", func(t *testing.T) {
		assert.NoError(t, Validate(Empty()))
	})

	t.Run("nil mapping fails", func(t *testing.T) {
		assert.Error(t, Validate(nil))
	})

	t.Run("missing mappings key", func(t *testing.T) {
		m := validMapping()
		delete(m.Mappings, "103")

		err := Validate(m)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "mappings key mismatch: missing 103", verr.Violation)
	})

	t.Run("extra mappings key", func(t *testing.T) {
		m := validMapping()
		m.Mappings["999"] = int64Ptr(1)

		err := Validate(m)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "mappings key mismatch: extra 999", verr.Violation)
	})

	t.Run("primary outside selected", func(t *testing.T) {
		m := validMapping()
		m.UI.Primary = int64Ptr(999)

		err := Validate(m)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Violation, "not in selected")
	})

	t.Run("primary without selection", func(t *testing.T) {
		m := Empty()
		m.UI.Primary = int64Ptr(100)
		assert.Error(t, Validate(m))
	})

	t.Run("duplicate selected ID", func(t *testing.T) {
		m := validMapping()
		m.UI.Selected = append(m.UI.Selected, 100)
		assert.Error(t, Validate(m))
	})

	t.Run("invalid source", func(t *testing.T) {
		m := validMapping()
		m.Metadata.Source = "bogus"
		assert.Error(t, Validate(m))
	})
}

func TestSetExternalID(t *testing.T) {
	m := validMapping()

	require.NoError(t, m.SetExternalID(103, 77))
	ext, ok := m.ExternalID(103)
	assert.True(t, ok)
	assert.Equal(t, int64(77), ext)
	assert.NoError(t, Validate(m))

	t.Run("unselected ID rejected", func(t *testing.T) {
		err := m.SetExternalID(999, 1)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.NoError(t, Validate(m))
	})
}

func TestSelect(t *testing.T) {
	t.Run("reconciles mappings", func(t *testing.T) {
		m := validMapping()
		require.NoError(t, m.Select([]int64{100, 200}, int64Ptr(200)))

		// kept category retains its external ID, new one is nil, removed is gone
		ext, ok := m.ExternalID(100)
		assert.True(t, ok)
		assert.Equal(t, int64(9), ext)

		v, ok := m.Mappings["200"]
		require.True(t, ok)
		assert.Nil(t, v)

		_, ok = m.Mappings["103"]
		assert.False(t, ok)

		assert.Equal(t, SourceManual, m.Metadata.Source)
		assert.NoError(t, Validate(m))
	})

	t.Run("rejects primary outside new selection", func(t *testing.T) {
		m := validMapping()
		err := m.Select([]int64{200}, int64Ptr(100))
		assert.Error(t, err)
	})

	t.Run("clearing selection empties mappings", func(t *testing.T) {
		m := validMapping()
		require.NoError(t, m.Select(nil, nil))
		assert.Empty(t, m.Mappings)
		assert.NoError(t, Validate(m))
	})
}

func TestClone(t *testing.T) {
	m := validMapping()
	clone := m.Clone()

	require.Equal(t, m, clone)

	// mutations must not leak back into the original
	require.NoError(t, clone.SetExternalID(103, 55))
	*clone.UI.Primary = 103

	_, ok := m.ExternalID(103)
	assert.False(t, ok)
	assert.Equal(t, int64(100), *m.UI.Primary)
}
