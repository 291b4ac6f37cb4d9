package roster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMasterIDDeterministic(t *testing.T) {
	a := MasterID("maria@example.com", "Maria", "Santos")
	b := MasterID("maria@example.com", "Maria", "Santos")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "nlc_"))
	assert.Len(t, a, len("nlc_")+12)
}

func TestMasterIDCaseInsensitive(t *testing.T) {
	a := MasterID("Maria@Example.COM", "MARIA", "Santos")
	b := MasterID("maria@example.com", "maria", "santos")
	assert.Equal(t, a, b)
}

func TestMasterIDDistinguishesTriples(t *testing.T) {
	a := MasterID("maria@example.com", "Maria", "Santos")
	b := MasterID("maria@example.com", "Maria", "Reyes")
	c := MasterID("", "Maria", "Santos")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestMasterIDEmptyTripleFallsBack(t *testing.T) {
	a := MasterID("", "", "")
	b := MasterID("", "", "")
	assert.True(t, strings.HasPrefix(a, "id_"))
	assert.NotEqual(t, a, b)

	// Whitespace-only fields also have no identity to hash.
	c := MasterID("  ", "", " ")
	assert.True(t, strings.HasPrefix(c, "id_"))
}

func TestExportIDOpaque(t *testing.T) {
	a := ExportID()
	b := ExportID()
	assert.True(t, strings.HasPrefix(a, "export_"))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("export_")+12)
}
