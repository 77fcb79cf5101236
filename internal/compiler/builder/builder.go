package builder

import (
	"sort"
	"strings"

	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
	"github.com/shapec-dev/shapec/internal/compiler/overrides"
	"github.com/shapec-dev/shapec/internal/compiler/resolver"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
	strs "github.com/shapec-dev/shapec/internal/util/strings"
)

// Owner scopes used for override lookups.
const (
	OwnerClient          = "Client"
	OwnerServiceResource = "ServiceResource"
)

// Thresholds for inserting the keyword separator.
const (
	shapeKeywordThreshold    = 1
	fallbackKeywordThreshold = 2
)

// FallbackSource supplies signatures for resource actions that reference no
// operation, typically extracted from SDK docstrings.
type FallbackSource interface {
	Signature(owner, method string) (args []Argument, ret descriptor.Descriptor, ok bool)
}

// Option configures a Builder.
type Option func(*Builder)

// WithFallback sets the external signature source.
func WithFallback(src FallbackSource) Option {
	return func(b *Builder) { b.fallback = src }
}

// Builder builds the method signatures of one service. It shares the
// resolver, and therefore the record registry, of the compilation.
type Builder struct {
	res       *resolver.Resolver
	model     *schema.ServiceModel
	overrides *overrides.Registry
	diags     *errors.Diagnostics
	fallback  FallbackSource

	paginatorConfig *descriptor.Record
	waiterConfig    *descriptor.Record
}

// New creates a builder over res.
func New(res *resolver.Resolver, opts ...Option) *Builder {
	b := &Builder{
		res:       res,
		model:     res.Model(),
		overrides: res.Overrides(),
		diags:     res.Diagnostics(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Model returns the service model.
func (b *Builder) Model() *schema.ServiceModel { return b.model }

// Resolver returns the resolver shared with the compilation.
func (b *Builder) Resolver() *resolver.Resolver { return b.res }

// ClassPrefix is the prefix of generated class names: the service id without
// separators, or the pascal-cased service name.
func (b *Builder) ClassPrefix() string {
	id := strings.NewReplacer(" ", "", "-", "").Replace(b.model.Metadata.ServiceID)
	if id != "" {
		return id
	}
	return strs.ToPascalCase(b.model.Name)
}

type argOptions struct {
	exclude      map[string]bool
	optionalOnly bool
}

// ParseArguments converts the members of an input shape into arguments.
// Excluded members are skipped, aliases rename or drop arguments, method
// overrides replace or drop them, and required arguments come first.
func (b *Builder) ParseArguments(owner, method, operation string, shape *schema.Shape, exclude []string, optionalOnly bool) []Argument {
	opts := argOptions{exclude: make(map[string]bool, len(exclude)), optionalOnly: optionalOnly}
	for _, name := range exclude {
		opts.exclude[name] = true
	}
	return b.parseArguments(owner, method, operation, shape, opts)
}

func (b *Builder) parseArguments(owner, method, operation string, shape *schema.Shape, opts argOptions) []Argument {
	if shape == nil {
		return nil
	}
	b.res.SetLocation(owner, method)
	service := b.res.Service()

	var args []Argument
	for _, member := range shape.Members {
		if opts.exclude[member.Name] {
			continue
		}
		name, keep := b.overrides.Alias(service, operation, member.Name)
		if !keep {
			continue
		}

		arg := Argument{Name: name}
		if o, ok := b.overrides.Method(service, owner, method, member.Name); ok {
			if o.Remove {
				continue
			}
			arg.Type = o.Type
			b.diags.Add(errors.NewOverrideApplied(errors.Location{Owner: owner, Member: method, Field: member.Name}, o.String()))
		} else {
			ref := member.ShapeRef
			arg.Type = b.res.ResolveRef(&ref, resolver.Input)
		}
		if !shape.IsRequired(member.Name) {
			arg.Default = DefaultNone
		}
		if opts.optionalOnly && arg.Required() {
			continue
		}
		args = append(args, arg)
	}

	sortRequiredFirst(args)
	return args
}

// sortRequiredFirst moves required arguments before optional ones, keeping
// declaration order within each group.
func sortRequiredFirst(args []Argument) {
	sort.SliceStable(args, func(i, j int) bool {
		return args[i].Required() && !args[j].Required()
	})
}

// ReturnType resolves the return descriptor of a method. A method override
// on the return field wins.
func (b *Builder) ReturnType(owner, method string, shape *schema.Shape) descriptor.Descriptor {
	if o, ok := b.overrides.Method(b.res.Service(), owner, method, overrides.ReturnField); ok {
		b.diags.Add(errors.NewOverrideApplied(errors.Location{Owner: owner, Member: method, Field: overrides.ReturnField}, o.String()))
		if o.Remove {
			return descriptor.None
		}
		return o.Type
	}
	if shape == nil {
		return descriptor.None
	}
	b.res.SetLocation(owner, method)
	return b.res.Resolve(shape, resolver.Output)
}

// withReceiver prefixes args with the receiver and, when the rules call for
// it, the keyword separator.
func withReceiver(method string, args []Argument, threshold int) []Argument {
	out := make([]Argument, 0, len(args)+2)
	out = append(out, Self())
	if len(args) >= threshold && !strs.IsCapitalized(method) {
		out = append(out, KeywordFlag())
	}
	return append(out, args...)
}

// removed reports whether the method's signature is dropped by override.
func (b *Builder) removed(owner, method string) bool {
	if !b.overrides.SignatureRemoved(b.res.Service(), owner, method) {
		return false
	}
	b.diags.Add(errors.NewSignatureRemoved(errors.Location{Owner: owner, Member: method}))
	return true
}

// applyOverrides runs the method override table over a fixed signature.
func (b *Builder) applyOverrides(owner string, m *Method) *Method {
	service := b.res.Service()
	args := m.Arguments[:0:0]
	for _, a := range m.Arguments {
		if a.IsTyped() {
			if o, ok := b.overrides.Method(service, owner, m.Name, a.Name); ok {
				if o.Remove {
					continue
				}
				a.Type = o.Type
			}
		}
		args = append(args, a)
	}
	m.Arguments = args
	if o, ok := b.overrides.Method(service, owner, m.Name, overrides.ReturnField); ok && !o.Remove {
		m.Return = o.Type
	}
	return m
}

func (b *Builder) paginatorConfigRecord() *descriptor.Record {
	if b.paginatorConfig == nil {
		b.paginatorConfig = descriptor.PaginatorConfig()
	}
	return b.paginatorConfig
}

func (b *Builder) waiterConfigRecord() *descriptor.Record {
	if b.waiterConfig == nil {
		b.waiterConfig = descriptor.WaiterConfig()
	}
	return b.waiterConfig
}

// Client builds the client class: the built-in methods followed by one
// method per operation.
func (b *Builder) Client() *Client {
	methods := MethodMap{}
	for _, m := range []*Method{canPaginate(), generatePresignedURL()} {
		if b.removed(OwnerClient, m.Name) {
			continue
		}
		methods[m.Name] = b.applyOverrides(OwnerClient, m)
	}

	for _, opName := range b.model.OperationNames() {
		op, err := b.model.Operation(opName)
		if err != nil {
			b.diags.Add(errors.NewUnknownOperation(errors.Location{Owner: OwnerClient}, opName))
			continue
		}
		name := strs.ToSnakeCase(op.Name)
		if b.removed(OwnerClient, name) {
			continue
		}
		methods[name] = b.ClientMethod(op)
	}

	return &Client{Name: b.ClassPrefix() + "Client", Methods: methods}
}

// ClientMethod builds the client method of one operation.
func (b *Builder) ClientMethod(op *schema.Operation) *Method {
	name := strs.ToSnakeCase(op.Name)
	input := b.model.InputShape(op)
	output := b.model.OutputShape(op)

	args := b.parseArguments(OwnerClient, name, op.Name, input, argOptions{})
	m := &Method{
		Name:      name,
		Arguments: withReceiver(name, args, shapeKeywordThreshold),
		Return:    b.ReturnType(OwnerClient, name, output),
	}
	if input != nil {
		m.Request = requestRecord(resolver.TypeDefName(input.Name, "Request"), args)
	}
	return m
}

func canPaginate() *Method {
	return &Method{
		Name:      "can_paginate",
		Arguments: []Argument{Self(), {Name: "operation_name", Type: descriptor.String}},
		Return:    descriptor.Boolean,
	}
}

func generatePresignedURL() *Method {
	return &Method{
		Name: "generate_presigned_url",
		Arguments: []Argument{
			Self(),
			{Name: "ClientMethod", Type: descriptor.String},
			{Name: "Params", Type: descriptor.StringAnyMap(), Default: DefaultNone},
			{Name: "ExpiresIn", Type: descriptor.Integer, Default: "3600"},
			{Name: "HttpMethod", Type: descriptor.String, Default: DefaultNone},
		},
		Return: descriptor.String,
	}
}
