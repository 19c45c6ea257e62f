package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppm/backend/internal/domain/catmapping"
)

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct(uuid.New(), "SKU-1", "Leather boots", decimal.NewFromInt(199))
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("creates active product", func(t *testing.T) {
		p := newTestProduct(t)
		assert.True(t, p.Active)
		assert.True(t, p.Quantity.IsZero())
		assert.Empty(t, p.CategoryMappings)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "", "Boots", decimal.Zero)
		assert.ErrorIs(t, err, ErrProductInvalidSKU)

		_, err = NewProduct(uuid.New(), "SKU-1", "", decimal.Zero)
		assert.ErrorIs(t, err, ErrProductInvalidName)
	})
}

func TestProduct_CategoryMappingFor(t *testing.T) {
	p := newTestProduct(t)

	t.Run("returns empty structure for unknown target", func(t *testing.T) {
		mapping := p.CategoryMappingFor("prestashop:shop-1")
		require.NotNil(t, mapping)
		assert.True(t, mapping.IsEmpty())
		assert.Equal(t, catmapping.SourceEmpty, mapping.Metadata.Source)
	})

	t.Run("returns the same structure on repeat reads", func(t *testing.T) {
		first := p.CategoryMappingFor("prestashop:shop-1")
		require.NoError(t, first.Select([]int64{100}, nil))
		second := p.CategoryMappingFor("prestashop:shop-1")
		assert.Equal(t, []int64{100}, second.UI.Selected)
	})
}

func TestProduct_SetCategoryMapping(t *testing.T) {
	p := newTestProduct(t)

	t.Run("accepts valid mapping", func(t *testing.T) {
		mapping := catmapping.Empty()
		require.NoError(t, mapping.Select([]int64{100, 103}, nil))
		require.NoError(t, p.SetCategoryMapping("baselinker:acct-1", mapping))
		assert.Len(t, p.CategoryMappings, 1)
	})

	t.Run("rejects invalid mapping", func(t *testing.T) {
		broken := catmapping.Empty()
		broken.Mappings["999"] = nil
		err := p.SetCategoryMapping("baselinker:acct-1", broken)
		var verr *catmapping.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestCategoryMappings_Clone(t *testing.T) {
	p := newTestProduct(t)
	mapping := catmapping.Empty()
	require.NoError(t, mapping.Select([]int64{5}, nil))
	require.NoError(t, p.SetCategoryMapping("prestashop:shop-1", mapping))

	clone := p.CategoryMappings.Clone()
	require.NoError(t, clone["prestashop:shop-1"].Select([]int64{6}, nil))

	assert.Equal(t, []int64{5}, p.CategoryMappings["prestashop:shop-1"].UI.Selected)
}
