package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/verixa/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

//go:embed catalog.cue
var catalogSchema string

// file is the on-disk catalog layout.
type file struct {
	Products []model.Product `yaml:"products"`
}

var loadDefault = sync.OnceValues(func() ([]model.Product, error) {
	return Parse(defaultCatalog)
})

// Default returns the built-in catalog. The slice is shared; callers must
// not modify it.
func Default() ([]model.Product, error) {
	return loadDefault()
}

// LoadFile reads and parses a catalog YAML file.
func LoadFile(path string) ([]model.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse validates catalog YAML against the CUE schema and decodes it.
// Products keep their file order, which is also their seed order.
func Parse(data []byte) ([]model.Product, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var f file
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	seen := make(map[string]bool, len(f.Products))
	for i, p := range f.Products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog product %d: %w", i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("catalog product %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true

		// Optional lists decode as nil; store them as empty.
		if f.Products[i].Sizes == nil {
			f.Products[i].Sizes = []string{}
		}
		if f.Products[i].Colors == nil {
			f.Products[i].Colors = []string{}
		}
	}

	return f.Products, nil
}

// validateSchema unifies the raw YAML document with the catalog schema.
func validateSchema(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("catalog is empty")
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(catalogSchema, cue.Filename("catalog.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("catalog schema: %w", err)
	}

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("catalog encode: %w", err)
	}

	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("catalog does not match schema: %s", cueerrors.Details(err, nil))
	}
	return nil
}
