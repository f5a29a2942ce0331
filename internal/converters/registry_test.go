package converters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

type constConverter struct {
	dest, value string
}

func (c *constConverter) Convert(_ context.Context, _ driven.Record, out *domain.FieldValues) error {
	out.Add(c.dest, c.value)
	return nil
}

func constBuilder(spec domain.ConverterSpec) (driven.Converter, error) {
	return &constConverter{dest: spec.Dest, value: "const"}, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.Names())
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("const", constBuilder))
	assert.True(t, r.Has("const"))
	assert.False(t, r.Has("other"))

	err := r.Register("const", constBuilder)
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	assert.ErrorIs(t, r.Register("", constBuilder), domain.ErrInvalidInput)
	assert.ErrorIs(t, r.Register("nil", nil), domain.ErrInvalidInput)
}

func TestRegisterDefaults_Twice(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterDefaults(r, Dependencies{}))
	assert.ErrorIs(t, RegisterDefaults(r, Dependencies{}), domain.ErrAlreadyRegistered)
}

func TestRegistry_Names(t *testing.T) {
	r := newTestRegistry(t, nil)
	assert.Equal(t, []string{
		TagDatetime, TagDatetimeRange, TagExternal, TagInteger, TagLong,
		TagPattern, TagString, TagURL, TagVerbatim,
	}, r.Names())
}

func TestRegistry_BuildAll(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("const", constBuilder))

	entries, err := r.BuildAll([]domain.ConverterSpec{
		{Source: "a", Dest: "x", DestType: "const"},
		{Source: "b", Dest: "y", DestType: "const"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a->x", entries[0].Spec().Name())
	assert.Equal(t, "b->y", entries[1].Spec().Name())
}

func TestRegistry_BuildAll_NoPartialResult(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("const", constBuilder))

	entries, err := r.BuildAll([]domain.ConverterSpec{
		{Source: "a", Dest: "x", DestType: "const"},
		{Source: "b", Dest: "y", DestType: "missing"},
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "mapping entry 2")
	assert.Nil(t, entries)
}

func TestNewEntry(t *testing.T) {
	spec := domain.ConverterSpec{Source: "a", Dest: "x", DestType: "const"}
	entry := NewEntry(spec, &constConverter{dest: "x", value: "v"})

	out := domain.NewFieldValues()
	require.NoError(t, entry.Convert(context.Background(), nil, out))
	assert.Equal(t, []string{"v"}, out.Get("x"))
	assert.Equal(t, spec, entry.Spec())
}
