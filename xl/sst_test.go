package xl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharedStringTable(t *testing.T) {
	sst := NewSharedStringTable()

	assert.Equal(t, 0, sst.Intern("Name"))
	assert.Equal(t, 1, sst.Intern("Age"))
	assert.Equal(t, 0, sst.Intern("Name"))
	assert.Equal(t, 2, sst.Intern(""))
	assert.Equal(t, 3, sst.Intern("name"))
	assert.Equal(t, 4, sst.Intern("a & b <c> \"d\" 'e'"))
	assert.Equal(t, 5, sst.Intern("日本語 ✓"))
	assert.Equal(t, 2, sst.Intern(""))

	assert.Equal(t, 6, sst.Len())
	assert.Equal(t, 8, sst.Count())
	assert.Equal(t, []string{"Name", "Age", "", "name", "a & b <c> \"d\" 'e'", "日本語 ✓"}, sst.Strings())
	assert.Equal(t, "Age", sst.At(1))

	i, ok := sst.Lookup("Age")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = sst.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 8, sst.Count(), "lookup does not count references")
}

func TestSharedStringTableRepeated(t *testing.T) {
	sst := NewSharedStringTable()
	for range 1000 {
		assert.Equal(t, 0, sst.Intern("same"))
	}
	assert.Equal(t, 1, sst.Len())
	assert.Equal(t, 1000, sst.Count())
}
