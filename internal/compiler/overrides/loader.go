package overrides

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"

	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Gate restricts an entry to a range of SDK versions: Since is inclusive,
// Until exclusive. Empty bounds are open.
type Gate struct {
	Since string `yaml:"since,omitempty"`
	Until string `yaml:"until,omitempty"`
}

// LiteralEntry forces the options of an enumeration.
type LiteralEntry struct {
	Service string   `yaml:"service"`
	Name    string   `yaml:"name"`
	Options []string `yaml:"options"`
	Gate    `yaml:",inline"`
}

// ShapeEntry replaces a record by emitted name.
type ShapeEntry struct {
	Service string `yaml:"service"`
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Gate    `yaml:",inline"`
}

// MethodEntry overrides one argument, or the return type, of a method.
type MethodEntry struct {
	Service string `yaml:"service"`
	Owner   string `yaml:"owner"`
	Method  string `yaml:"method"`
	Field   string `yaml:"field"`
	Type    string `yaml:"type"`
	Gate    `yaml:",inline"`
}

// SignatureEntry removes a whole method.
type SignatureEntry struct {
	Service string `yaml:"service"`
	Owner   string `yaml:"owner"`
	Method  string `yaml:"method"`
	Gate    `yaml:",inline"`
}

// AliasEntry renames (or with AliasRemoved, drops) operation arguments.
type AliasEntry struct {
	Service   string            `yaml:"service"`
	Operation string            `yaml:"operation"`
	Fields    map[string]string `yaml:"fields"`
}

// File is the on-disk layout of an override table file.
type File struct {
	Literals   []LiteralEntry   `yaml:"literals"`
	Shapes     []ShapeEntry     `yaml:"shapes"`
	Methods    []MethodEntry    `yaml:"methods"`
	Signatures []SignatureEntry `yaml:"signatures"`
	Aliases    []AliasEntry     `yaml:"aliases"`
}

// Options configures Load.
type Options struct {
	// Path is an optional user file merged over the built-in defaults.
	Path string
	// SDKVersion enables version gating. Empty applies every entry.
	SDKVersion string
	// SkipDefaults ignores the built-in tables.
	SkipDefaults bool
}

// Load builds a registry from the built-in defaults and the optional user
// file. Entries from later sources win. Invalid expressions are reported
// together as an errors.ErrorList.
func Load(opts Options) (*Registry, error) {
	var sources [][]byte
	if !opts.SkipDefaults {
		sources = append(sources, defaultsYAML)
	}
	if opts.Path != "" {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read overrides file: %w", err)
		}
		sources = append(sources, data)
	}
	return LoadBytes(opts.SDKVersion, sources...)
}

// Defaults returns the registry built from the embedded defaults only.
func Defaults() *Registry {
	r, err := LoadBytes("", defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded overrides: %v", err))
	}
	return r
}

// LoadBytes builds a registry from YAML sources applied in order.
func LoadBytes(sdkVersion string, sources ...[]byte) (*Registry, error) {
	var sdk *version.Version
	if sdkVersion != "" {
		v, err := version.NewVersion(sdkVersion)
		if err != nil {
			return nil, fmt.Errorf("invalid sdk version %q: %w", sdkVersion, err)
		}
		sdk = v
	}

	registry := NewRegistry()
	hash := sha256.New()
	hash.Write([]byte(sdkVersion))

	var problems errors.ErrorList
	for i, src := range sources {
		hash.Write(src)

		var file File
		if err := yaml.Unmarshal(src, &file); err != nil {
			return nil, fmt.Errorf("failed to parse overrides source %d: %w", i, err)
		}
		problems = append(problems, apply(registry, &file, sdk)...)
	}

	if len(problems) > 0 {
		return nil, problems
	}
	registry.fingerprint = hex.EncodeToString(hash.Sum(nil))
	return registry, nil
}

func apply(r *Registry, file *File, sdk *version.Version) errors.ErrorList {
	var problems errors.ErrorList

	gated := func(g Gate, loc errors.Location) bool {
		ok, err := g.allows(sdk)
		if err != nil {
			problems = append(problems, errors.NewInvalidOverride(loc, g.Since+".."+g.Until, err))
			return false
		}
		return ok
	}

	for _, e := range file.Literals {
		loc := errors.Location{Owner: e.Service, Member: e.Name}
		if !gated(e.Gate, loc) {
			continue
		}
		if len(e.Options) == 0 {
			problems = append(problems, errors.NewInvalidOverride(loc, "", fmt.Errorf("literal has no options")))
			continue
		}
		r.AddLiteral(serviceOrWildcard(e.Service), descriptor.NewEnum(e.Name, e.Options))
	}

	for _, e := range file.Shapes {
		loc := errors.Location{Owner: e.Service, Member: e.Name}
		if !gated(e.Gate, loc) {
			continue
		}
		d, err := ParseType(e.Type)
		if err != nil {
			problems = append(problems, errors.NewInvalidOverride(loc, e.Type, err))
			continue
		}
		r.AddShape(serviceOrWildcard(e.Service), e.Name, d)
	}

	for _, e := range file.Methods {
		loc := errors.Location{Owner: e.Owner, Member: e.Method, Field: e.Field}
		if !gated(e.Gate, loc) {
			continue
		}
		o, err := ParseOverride(e.Type)
		if err != nil {
			problems = append(problems, errors.NewInvalidOverride(loc, e.Type, err))
			continue
		}
		r.AddMethod(serviceOrWildcard(e.Service), serviceOrWildcard(e.Owner), e.Method, e.Field, o)
	}

	for _, e := range file.Signatures {
		loc := errors.Location{Owner: e.Owner, Member: e.Method}
		if !gated(e.Gate, loc) {
			continue
		}
		r.RemoveSignature(serviceOrWildcard(e.Service), serviceOrWildcard(e.Owner), e.Method)
	}

	for _, e := range file.Aliases {
		r.AddAliases(serviceOrWildcard(e.Service), serviceOrWildcard(e.Operation), e.Fields)
	}

	return problems
}

func serviceOrWildcard(s string) string {
	if s == "" {
		return Wildcard
	}
	return s
}

func (g Gate) allows(sdk *version.Version) (bool, error) {
	if g.Since == "" && g.Until == "" {
		return true, nil
	}

	var constraints []string
	if g.Since != "" {
		constraints = append(constraints, ">= "+g.Since)
	}
	if g.Until != "" {
		constraints = append(constraints, "< "+g.Until)
	}
	c, err := version.NewConstraint(strings.Join(constraints, ", "))
	if err != nil {
		return false, err
	}
	if sdk == nil {
		return true, nil
	}
	return c.Check(sdk), nil
}
