package carriers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCarriers(t *testing.T) {
	reg := NewRegistry(t.TempDir())

	t.Run("postnl walks six fields in order", func(t *testing.T) {
		c, ok := reg.Get("postnl")
		require.True(t, ok)
		assert.Equal(t, []string{"bedrijf", "straat", "postcode", "stad", "land", "track"}, c.Fields())
	})

	t.Run("dhl walks seven fields ending with postcode_stad", func(t *testing.T) {
		c, ok := reg.Get("dhl")
		require.True(t, ok)
		fields := c.Fields()
		require.Len(t, fields, 7)
		assert.Equal(t, "naam", fields[0])
		assert.Equal(t, "postcode_stad", fields[6])
	})

	t.Run("lookup ignores case and whitespace", func(t *testing.T) {
		_, ok := reg.Get("  PostNL ")
		assert.True(t, ok)
	})

	t.Run("unknown carrier is not found", func(t *testing.T) {
		_, ok := reg.Get("ups")
		assert.False(t, ok)
	})

	t.Run("menu order is postnl then dhl", func(t *testing.T) {
		buttons := reg.Buttons()
		require.Len(t, buttons, 2)
		assert.Equal(t, "postnl", buttons[0].Name)
		assert.Equal(t, "dhl", buttons[1].Name)
	})

	t.Run("field names are unique per carrier", func(t *testing.T) {
		for _, name := range reg.Names() {
			c, ok := reg.Get(name)
			require.True(t, ok)
			seen := make(map[string]bool)
			for _, f := range c.Fields() {
				assert.False(t, seen[f], "duplicate field %s in %s", f, name)
				seen[f] = true
			}
		}
	})
}

func TestRegistryTemplates(t *testing.T) {
	t.Run("missing file degrades to the generic template", func(t *testing.T) {
		reg := NewRegistry(t.TempDir())
		tpl, err := reg.Template("postnl")
		require.NoError(t, err)
		assert.True(t, tpl.Fallback())

		out, err := tpl.Render(map[string]any{
			"vervoerder": "postnl",
			"fields": []map[string]string{
				{"key": "bedrijf", "value": "Amazon"},
				{"key": "track", "value": "PNL23834HSDHH"},
			},
		})
		require.NoError(t, err)
		assert.Contains(t, out, "POSTNL")
		assert.Contains(t, out, "bedrijf: Amazon")
		assert.Contains(t, out, "track: PNL23834HSDHH")
	})

	t.Run("carrier file takes precedence", func(t *testing.T) {
		dir := t.TempDir()
		src := "<html><body><p>{{ naam }} / {{ track }}</p></body></html>"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "template_dhl.html"), []byte(src), 0o644))

		reg := NewRegistry(dir)
		tpl, err := reg.Template("dhl")
		require.NoError(t, err)
		assert.False(t, tpl.Fallback())

		out, err := tpl.Render(map[string]any{"naam": "Jan Jansen", "track": "JVG36283V3Y73G"})
		require.NoError(t, err)
		assert.Contains(t, out, "Jan Jansen / JVG36283V3Y73G")
	})

	t.Run("broken file is an error, not a fallback", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "template_postnl.html"), []byte("{% for %}"), 0o644))

		reg := NewRegistry(dir)
		_, err := reg.Template("postnl")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "template parse"))
	})
}
