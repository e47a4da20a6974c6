package industry

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Industries []string `yaml:"industries"`
}

// DefaultCatalog returns the built-in candidate industries in catalog order.
func DefaultCatalog() []string {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(err) // embedded file is fixed at build time
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path yields DefaultCatalog.
func LoadCatalog(path string) ([]string, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "industry: read catalog %s", path)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog, dropping blanks and duplicates while
// keeping first-seen order.
func ParseCatalog(data []byte) ([]string, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "industry: parse catalog")
	}
	seen := make(map[string]bool, len(f.Industries))
	out := make([]string, 0, len(f.Industries))
	for _, name := range f.Industries {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, eris.New("industry: catalog is empty")
	}
	return out, nil
}
