package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemefinder/internal/scheme"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NotZero(t, c.Len())
	assert.NotEmpty(t, c.Version())
	for _, r := range c.Schemes() {
		assert.NotEmpty(t, r.Name)
		assert.True(t, scheme.ValidType(r.Type), r.Name)
		assert.GreaterOrEqual(t, r.UsefulnessScore, 0)
		assert.LessOrEqual(t, r.UsefulnessScore, 100)
	}
}

func TestSchemesReturnsCopies(t *testing.T) {
	c := Default()
	first := c.Schemes()
	first[0].Name = "mutated"
	first[0].CategoryTags[0] = "mutated"

	again := c.Schemes()
	assert.NotEqual(t, "mutated", again[0].Name)
	assert.NotEqual(t, "mutated", again[0].CategoryTags[0])
}

func TestLookup(t *testing.T) {
	c := Default()
	name := c.Names()[0]
	r, ok := c.Lookup(strings.ToUpper(name))
	require.True(t, ok)
	assert.Equal(t, name, r.Name)
	_, ok = c.Lookup("no such scheme")
	assert.False(t, ok)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty list":   `{"version":"1","schemes":[]}`,
		"no version":   `{"schemes":[{"name":"A","type":"Central"}]}`,
		"bad type":     `{"version":"1","schemes":[{"name":"A","type":"Both"}]}`,
		"no name":      `{"version":"1","schemes":[{"name":" ","type":"State"}]}`,
		"duplicate":    `{"version":"1","schemes":[{"name":"A","type":"State"},{"name":"a","type":"State"}]}`,
		"unknown key":  `{"version":"1","extra":true,"schemes":[{"name":"A","type":"State"}]}`,
		"not an array": `{"version":"1","schemes":{}}`,
	}
	for name, doc := range cases {
		_, err := Load(strings.NewReader(doc))
		assert.True(t, errors.Is(err, ErrInvalidCatalog), "%s: %v", name, err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	c := Default()
	data, err := c.Marshal()
	require.NoError(t, err)
	again, err := Load(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, c.Schemes(), again.Schemes())
	assert.Equal(t, c.Version(), again.Version())
}

func TestOpen(t *testing.T) {
	c, src, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	assert.Equal(t, "embedded", src)
	assert.Equal(t, Default().Len(), c.Len())

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"test","schemes":[{"name":"Local Scheme","type":"State","state":"Kerala"}]}`), 0o644))
	c, src, err = Open(context.Background(), Config{Path: path})
	require.NoError(t, err)
	assert.Equal(t, path, src)
	assert.Equal(t, []string{"Local Scheme"}, c.Names())

	_, _, err = Open(context.Background(), Config{Path: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}

func TestS3ConfigValidation(t *testing.T) {
	assert.False(t, S3Config{}.Enabled())
	_, err := LoadS3(context.Background(), S3Config{Endpoint: "localhost:9000", Bucket: "b"})
	assert.Error(t, err, "missing credentials")
}
