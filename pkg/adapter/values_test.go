package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyMap_OrderPreserved(t *testing.T) {
	t.Parallel()

	m := NewPropertyMap()
	m.Set("name", PropValString("ada"))
	m.Set("age", PropValInt32(36))
	m.Set("active", PropValBool(true))

	assert.Equal(t, []string{"name", "age", "active"}, m.Names())

	m.Set("name", PropValString("ada lovelace"))
	assert.Equal(t, []string{"name", "age", "active"}, m.Names(), "overwrite must not move position")

	v, ok := m.Get("name")
	require.True(t, ok)
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "ada lovelace", s)
}

func TestPropertyMap_Delete(t *testing.T) {
	t.Parallel()

	m := NewPropertyMap()
	m.Set("a", PropValInt64(1))
	m.Set("b", PropValInt64(2))
	m.Set("c", PropValInt64(3))

	m.Delete("b")
	assert.Equal(t, []string{"a", "c"}, m.Names())

	_, ok := m.Get("b")
	assert.False(t, ok)

	v, ok := m.Get("c")
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(3), i)
}

func TestElementID_StringAndEqual(t *testing.T) {
	t.Parallel()

	a := Int64ID(42)
	b := StringID("42")
	assert.True(t, a.Equal(b))
	assert.Equal(t, "42", a.String())

	i, ok := b.AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(42), i)
}

func TestPropertyValue_Null(t *testing.T) {
	t.Parallel()

	v := PropValNull()
	assert.True(t, v.IsNull())
	assert.Nil(t, v.Interface())
}
