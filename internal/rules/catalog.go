// Package rules loads and exposes the immutable formatting rule catalog.
package rules

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/vl4dimr/tesis-system-unap/internal/schemas"
	"github.com/vl4dimr/tesis-system-unap/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var catalogFiles embed.FS

// DefaultCatalogFile is the embedded catalog used when no file is configured.
const DefaultCatalogFile = "catalogs/unap.yaml"

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// File is the on-disk shape of a catalog.
type File struct {
	Version               string           `yaml:"version" json:"version" validate:"required"`
	Name                  string           `yaml:"nombre,omitempty" json:"nombre,omitempty"`
	AutoCorrectSeverities []types.Severity `yaml:"autocorregir_severidades,omitempty" json:"autocorregir_severidades,omitempty" validate:"omitempty,dive,oneof=ERROR ADVERTENCIA SUGERENCIA"`
	Rules                 []Rule           `yaml:"reglas" json:"reglas" validate:"required,min=1,dive"`
}

// Catalog is an immutable, validated set of rules. It is safe for
// concurrent use and exposes no mutation path.
type Catalog struct {
	version     string
	name        string
	autoFix     []types.Severity
	rules       []Rule
	fingerprint string
}

// Default returns the embedded UNAP catalog. It is parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		data, err := catalogFiles.ReadFile(DefaultCatalogFile)
		if err != nil {
			defaultErr = &CatalogError{Source: DefaultCatalogFile, Message: "cannot read embedded catalog", Cause: err}
			return
		}
		defaultCatalog, defaultErr = Parse(data, DefaultCatalogFile)
	})
	return defaultCatalog, defaultErr
}

// Load returns the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogError{Source: path, Message: "cannot read catalog file", Cause: err}
	}
	return Parse(data, path)
}

// Parse validates a YAML (or JSON) catalog document. Every problem is
// reported as *CatalogError; a catalog that parses is fully usable.
func Parse(data []byte, source string) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &CatalogError{Source: source, Message: "invalid YAML", Cause: err}
	}
	if err := schemas.ValidateValue(schemas.RuleCatalog, raw); err != nil {
		return nil, &CatalogError{Source: source, Message: "schema validation failed", Cause: err}
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, &CatalogError{Source: source, Message: "cannot decode catalog", Cause: err}
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, &CatalogError{Source: source, Message: "invalid catalog", Cause: err}
	}

	if err := checkRules(f.Rules, source); err != nil {
		return nil, err
	}

	autoFix := f.AutoCorrectSeverities
	if len(autoFix) == 0 {
		autoFix = []types.Severity{types.SeverityError}
	}

	c := &Catalog{
		version: f.Version,
		name:    f.Name,
		autoFix: slices.Clone(autoFix),
		rules:   make([]Rule, len(f.Rules)),
	}
	for i, r := range f.Rules {
		c.rules[i] = r.clone()
	}

	canonical, err := json.Marshal(c.File())
	if err != nil {
		return nil, &CatalogError{Source: source, Message: "cannot fingerprint catalog", Cause: err}
	}
	sum := sha256.Sum256(canonical)
	c.fingerprint = hex.EncodeToString(sum[:])
	return c, nil
}

func checkRules(rules []Rule, source string) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if seen[r.ID] {
			return &CatalogError{Source: source, RuleID: r.ID, Message: "duplicate rule id"}
		}
		seen[r.ID] = true

		if !r.Property.Known() {
			return &CatalogError{Source: source, RuleID: r.ID, Message: fmt.Sprintf("unknown property %q", r.Property)}
		}
		if !r.Property.allows(r.Locator.Scope) {
			return &CatalogError{Source: source, RuleID: r.ID, Message: fmt.Sprintf("property %s cannot be located by %s", r.Property, r.Locator.Scope)}
		}
		if err := properties[r.Property].check(r.Expected); err != nil {
			return &CatalogError{Source: source, RuleID: r.ID, Message: "invalid expected value", Cause: err}
		}
		if r.AutoCorrect != nil && *r.AutoCorrect && !r.Property.Correctable() {
			return &CatalogError{Source: source, RuleID: r.ID, Message: fmt.Sprintf("property %s cannot be corrected automatically", r.Property)}
		}
	}
	return nil
}

// Version returns the catalog version string.
func (c *Catalog) Version() string { return c.version }

// Name returns the human-readable catalog name.
func (c *Catalog) Name() string { return c.name }

// Fingerprint identifies the catalog content; two catalogs with equal
// fingerprints produce identical reports.
func (c *Catalog) Fingerprint() string { return c.fingerprint }

// Len returns the number of rules.
func (c *Catalog) Len() int { return len(c.rules) }

// Rules returns a copy of the rules in catalog order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.clone()
	}
	return out
}

// Rule returns the rule with the given id.
func (c *Catalog) Rule(id string) (Rule, bool) {
	for _, r := range c.rules {
		if r.ID == id {
			return r.clone(), true
		}
	}
	return Rule{}, false
}

// AutoCorrectSeverities returns the severities the formatter fixes by default.
func (c *Catalog) AutoCorrectSeverities() []types.Severity {
	return slices.Clone(c.autoFix)
}

// AutoCorrects reports whether the formatter should fix failures of r. A
// per-rule autocorregir setting overrides the catalog severities.
func (c *Catalog) AutoCorrects(r Rule) bool {
	if !r.Property.Correctable() {
		return false
	}
	if r.AutoCorrect != nil {
		return *r.AutoCorrect
	}
	return slices.Contains(c.autoFix, r.Severity)
}

// File returns the catalog in its serializable shape.
func (c *Catalog) File() File {
	return File{
		Version:               c.version,
		Name:                  c.name,
		AutoCorrectSeverities: slices.Clone(c.autoFix),
		Rules:                 c.Rules(),
	}
}
