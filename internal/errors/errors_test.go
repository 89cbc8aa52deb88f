package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	t.Parallel()

	err := Newf("something failed in %s", "here").
		Component("bedfile").
		Category(CategoryStructural).
		Context("line", 12).
		FileContext("/tmp/primer.bed").
		Build()

	assert.Equal(t, "something failed in here", err.Error())
	assert.Equal(t, "bedfile", err.Component)
	assert.Equal(t, CategoryStructural, err.Category)
	assert.Equal(t, 12, err.Context["line"])
	assert.Equal(t, "/tmp/primer.bed", err.Context["path"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestBuildDefaultsToGeneric(t *testing.T) {
	t.Parallel()

	err := Newf("plain failure").Build()
	assert.Equal(t, CategoryGeneric, err.Category)
}

func TestSchemeContext(t *testing.T) {
	t.Parallel()

	err := Newf("bad scheme").
		SchemeContext("example-scheme", 400, "v1.0.0").
		Build()

	ctx := err.GetContext()
	assert.Equal(t, "example-scheme", ctx["schemename"])
	assert.Equal(t, 400, ctx["ampliconsize"])
	assert.Equal(t, "v1.0.0", ctx["schemeversion"])

	// mutating the copy must not leak back
	ctx["schemename"] = "other"
	assert.Equal(t, "example-scheme", err.Context["schemename"])
}

func TestCategoryOf(t *testing.T) {
	t.Parallel()

	err := Newf("naming failure").Category(CategoryNaming).Build()
	assert.Equal(t, CategoryNaming, CategoryOf(err))

	// walks the wrap chain
	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, CategoryNaming, CategoryOf(wrapped))

	assert.Equal(t, CategoryGeneric, CategoryOf(stderrors.New("plain")))
	assert.Equal(t, CategoryGeneric, CategoryOf(nil))
}

func TestIsMatchesWrappedSentinel(t *testing.T) {
	t.Parallel()

	sentinel := stderrors.New("cannot convert")
	err := Newf("%w: more detail", sentinel).
		Category(CategoryNaming).
		Build()

	assert.True(t, Is(err, sentinel))
	assert.False(t, Is(err, stderrors.New("other")))
}

func TestAsFindsEnhancedError(t *testing.T) {
	t.Parallel()

	built := Newf("failure").Category(CategoryIntegrity).Build()
	wrapped := fmt.Errorf("outer: %w", built)

	var ee *EnhancedError
	require.True(t, As(wrapped, &ee))
	assert.Equal(t, CategoryIntegrity, ee.Category)
}
