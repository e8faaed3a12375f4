package reference

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofhir/anthrocheck/record"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, Default(), format))

			got, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, Default(), got)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		tbl, err := LoadFile(filepath.Join("testdata", "pediatric.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "pediatric-strict", tbl.Name)

		r, ok := tbl.HeightRange(record.Female, 7)
		require.True(t, ok)
		assert.Equal(t, Between(110.0, 135.0), r)
	})

	t.Run("toml", func(t *testing.T) {
		tbl, err := LoadFile(filepath.Join("testdata", "builtin.toml"))
		require.NoError(t, err)
		assert.Equal(t, "builtin.toml", tbl.Name, "unnamed tables take the file name")

		r, ok := tbl.HeightRange(record.Male, 30)
		require.True(t, ok)
		assert.Equal(t, Between(150.0, 210.0), r)
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := LoadFile("table.json")
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join("testdata", "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestDecode_Invalid(t *testing.T) {
	t.Run("unknown yaml field", func(t *testing.T) {
		_, err := Decode(strings.NewReader("name: x\nbogus: 1\n"), FormatYAML)
		assert.ErrorIs(t, err, ErrInvalidTable)
	})

	t.Run("incomplete yaml", func(t *testing.T) {
		_, err := Decode(strings.NewReader("name: x\n"), FormatYAML)
		assert.ErrorIs(t, err, ErrInvalidTable)
	})

	t.Run("broken toml", func(t *testing.T) {
		_, err := Decode(strings.NewReader("name = "), FormatTOML)
		assert.ErrorIs(t, err, ErrInvalidTable)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Decode(strings.NewReader(""), Format("xml"))
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}
