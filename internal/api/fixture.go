package api

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront/internal/model"
)

// catalogSchema constrains every fixture, whatever its format.
const catalogSchema = `
#Product: {
	id:          int & >=0
	name:        string & !=""
	price:       int & >=0
	description: string | *""
	material:    string | *""
	color:       string | *""
}

products: [...#Product]
`

//go:embed catalog.cue
var defaultCatalog []byte

// Catalog is the product set the demo backend serves, in listing order.
type Catalog struct {
	Products []model.Product `json:"products" yaml:"products"`
}

// Lookup returns the product with id.
func (c Catalog) Lookup(id int64) (model.Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// Summaries returns the listing form of the catalog.
func (c Catalog) Summaries() []model.ProductSummary {
	out := make([]model.ProductSummary, len(c.Products))
	for i, p := range c.Products {
		out[i] = p.Summary()
	}
	return out
}

// DefaultCatalog returns the built-in demo catalog.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalogCUE("catalog.cue", defaultCatalog)
}

// LoadCatalog reads a fixture file. The format follows the extension:
// .cue, or .yaml/.yml.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	switch filepath.Ext(path) {
	case ".cue":
		return ParseCatalogCUE(path, data)
	case ".yaml", ".yml":
		return ParseCatalogYAML(data)
	default:
		return Catalog{}, fmt.Errorf("catalog %s: unsupported format (want .cue, .yaml or .yml)", path)
	}
}

// ParseCatalogCUE unifies a CUE fixture with the catalog schema.
func ParseCatalogCUE(filename string, data []byte) (Catalog, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(catalogSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Catalog{}, fmt.Errorf("catalog schema: %w", err)
	}
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog %s: %s", filename, cueerrors.Details(err, nil))
	}

	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Catalog{}, fmt.Errorf("validate catalog %s: %s", filename, cueerrors.Details(err, nil))
	}

	var c Catalog
	if err := v.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog %s: %w", filename, err)
	}
	return c, c.check()
}

// ParseCatalogYAML decodes a YAML fixture and applies the same rules the
// CUE schema enforces.
func ParseCatalogYAML(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog yaml: %w", err)
	}
	for i, p := range c.Products {
		if p.Name == "" {
			return Catalog{}, fmt.Errorf("catalog products[%d]: name is required", i)
		}
		if err := p.Validate(); err != nil {
			return Catalog{}, fmt.Errorf("catalog products[%d]: %w", i, err)
		}
	}
	return c, c.check()
}

// check rejects duplicate ids, which CUE lists cannot express.
func (c Catalog) check() error {
	seen := make(map[int64]bool, len(c.Products))
	for _, p := range c.Products {
		if seen[p.ID] {
			return fmt.Errorf("catalog: duplicate product id %d", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
