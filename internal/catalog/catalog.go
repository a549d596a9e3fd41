package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"schemefinder/internal/scheme"
)

//go:embed fallback_schemes.json
var embedded []byte

var ErrInvalidCatalog = errors.New("catalog: invalid")

// Catalog is the read-only fallback list served when live generation fails entirely.
// It is safe for concurrent use; every accessor returns copies.
type Catalog struct {
	version string
	records []scheme.Record
}

type document struct {
	Version string          `json:"version"`
	Schemes []scheme.Record `json:"schemes"`
}

// Load parses and validates a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}
	if strings.TrimSpace(doc.Version) == "" {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidCatalog)
	}
	if len(doc.Schemes) == 0 {
		return nil, fmt.Errorf("%w: no schemes", ErrInvalidCatalog)
	}
	seen := make(map[string]struct{}, len(doc.Schemes))
	records := make([]scheme.Record, 0, len(doc.Schemes))
	for i, raw := range doc.Schemes {
		if !scheme.ValidType(strings.TrimSpace(raw.Type)) {
			return nil, fmt.Errorf("%w: scheme %d: type %q", ErrInvalidCatalog, i, raw.Type)
		}
		rec := raw.Normalize()
		if rec.Name == "" {
			return nil, fmt.Errorf("%w: scheme %d: name is required", ErrInvalidCatalog, i)
		}
		key := strings.ToLower(rec.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate scheme %q", ErrInvalidCatalog, rec.Name)
		}
		seen[key] = struct{}{}
		records = append(records, rec)
	}
	return &Catalog{version: strings.TrimSpace(doc.Version), records: records}, nil
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(embedded))
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Version() string { return c.version }
func (c *Catalog) Len() int        { return len(c.records) }

// Schemes returns a deep copy of every record in catalog order.
func (c *Catalog) Schemes() []scheme.Record {
	out := make([]scheme.Record, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// Lookup finds a record by case-insensitive name.
func (c *Catalog) Lookup(name string) (scheme.Record, bool) {
	name = strings.TrimSpace(name)
	for _, r := range c.records {
		if strings.EqualFold(r.Name, name) {
			return r.Clone(), true
		}
	}
	return scheme.Record{}, false
}

// Names lists the record names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.records))
	for i, r := range c.records {
		out[i] = r.Name
	}
	return out
}

// Marshal encodes the catalog in the format Load accepts.
func (c *Catalog) Marshal() ([]byte, error) {
	return json.MarshalIndent(document{Version: c.version, Schemes: c.records}, "", "  ")
}
