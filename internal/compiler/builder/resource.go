package builder

import (
	"strings"

	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
	"github.com/shapec-dev/shapec/internal/compiler/overrides"
	"github.com/shapec-dev/shapec/internal/compiler/resolver"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
	strs "github.com/shapec-dev/shapec/internal/util/strings"
)

// AttributesMethod is the pseudo method name under which resource attribute
// overrides are registered.
const AttributesMethod = "_attributes"

// ServiceResource builds the resource layer of the service. Without a
// resource document it returns an error wrapping schema.ErrSectionNotFound.
func (b *Builder) ServiceResource() (*ServiceResource, error) {
	doc, err := b.model.Resources()
	if err != nil {
		return nil, err
	}

	sr := &ServiceResource{
		Name:    b.ClassPrefix() + "ServiceResource",
		Methods: MethodMap{},
	}
	b.addFixed(sr.Methods, OwnerServiceResource, availableSubresources())
	b.addActions(sr.Methods, OwnerServiceResource, doc.Service.Actions)
	b.addSubResources(sr.Methods, OwnerServiceResource, doc.Service.Has)
	sr.Collections = b.collections(OwnerServiceResource, doc, doc.Service.HasMany)

	for _, name := range doc.ResourceNames() {
		shape, err := doc.Resource(name)
		if err != nil {
			continue
		}
		sr.SubResources = append(sr.SubResources, b.Resource(name, shape, doc))
	}
	return sr, nil
}

// Resource builds one resource class.
func (b *Builder) Resource(name string, shape *schema.ResourceShape, doc *schema.ResourceDocument) *Resource {
	r := &Resource{Name: name, Methods: MethodMap{}}
	for _, id := range shape.Identifiers {
		r.Identifiers = append(r.Identifiers, id.Name)
	}

	b.addFixed(r.Methods, name, availableSubresources(), receiverOnly("load"), receiverOnly("reload"))
	b.addActions(r.Methods, name, shape.Actions)
	for _, waiterName := range schema.SortedKeys(shape.Waiters) {
		b.addFixed(r.Methods, name, receiverOnly("wait_until_"+strs.ToSnakeCase(waiterName)))
	}
	b.addSubResources(r.Methods, name, shape.Has)

	r.Attributes = b.attributes(name, shape)
	r.Collections = b.collections(name, doc, shape.HasMany)
	return r
}

func availableSubresources() *Method {
	return &Method{
		Name:      "get_available_subresources",
		Arguments: []Argument{Self()},
		Return:    descriptor.NewSequence(descriptor.String),
	}
}

func receiverOnly(name string) *Method {
	return &Method{Name: name, Arguments: []Argument{Self()}, Return: descriptor.None}
}

func (b *Builder) addFixed(methods MethodMap, owner string, ms ...*Method) {
	for _, m := range ms {
		if b.removed(owner, m.Name) {
			continue
		}
		methods[m.Name] = b.applyOverrides(owner, m)
	}
}

func (b *Builder) addActions(methods MethodMap, owner string, actions map[string]*schema.Action) {
	for _, actionName := range schema.SortedKeys(actions) {
		name := strs.ToSnakeCase(actionName)
		if b.removed(owner, name) {
			continue
		}
		methods[name] = b.ActionMethod(owner, actionName, actions[actionName])
	}
}

// addSubResources adds one constructor per has entry. Its arguments are the
// identifiers the caller supplies.
func (b *Builder) addSubResources(methods MethodMap, owner string, has map[string]*schema.SubResource) {
	for _, name := range schema.SortedKeys(has) {
		sub := has[name]
		if sub == nil || sub.Resource == nil || b.removed(owner, name) {
			continue
		}
		var args []Argument
		for _, p := range sub.Resource.Identifiers {
			if p.Source == schema.ParamSourceInput {
				args = append(args, Argument{Name: p.Target, Type: descriptor.String})
			}
		}
		methods[name] = &Method{
			Name:      name,
			Arguments: withReceiver(name, args, shapeKeywordThreshold),
			Return:    descriptor.NewResourceReference(sub.Resource.Type),
		}
	}
}

// ActionMethod builds a resource action. An action producing a resource
// returns a reference to it, or a list when the resource path ends in [];
// otherwise the operation output is returned. Arguments bound from the
// resource identity are left out.
func (b *Builder) ActionMethod(owner, actionName string, action *schema.Action) *Method {
	name := strs.ToSnakeCase(actionName)
	m := &Method{Name: name, Arguments: []Argument{Self()}}

	var ret descriptor.Descriptor = descriptor.None
	if action.Resource != nil {
		ret = b.ReturnType(owner, name, &schema.Shape{Name: "resource", Type: action.Resource.Type})
		if strings.HasSuffix(action.Resource.Path, "[]") {
			ret = descriptor.NewSequence(ret)
		}
	}

	if action.Request == nil {
		if args, fret, ok := b.fallbackSignature(owner, name); ok {
			m.Arguments = withReceiver(name, args, fallbackKeywordThreshold)
			if descriptor.IsNone(ret) && fret != nil {
				ret = fret
			}
		}
		m.Return = ret
		return m
	}

	op, err := b.model.Operation(action.Request.Operation)
	if err != nil {
		b.diags.Add(errors.NewUnknownOperation(errors.Location{Owner: owner, Member: name}, action.Request.Operation))
		m.Return = ret
		return m
	}

	if input := b.model.InputShape(op); input != nil {
		args := b.ParseArguments(owner, name, op.Name, input, identifierTargets(action.Request.Params), false)
		m.Arguments = withReceiver(name, args, shapeKeywordThreshold)
		m.Request = requestRecord(resolver.TypeDefName(input.Name, owner), args)
	}
	if output := b.model.OutputShape(op); output != nil && descriptor.IsNone(ret) {
		b.res.SetLocation(owner, name)
		ret = b.res.Resolve(output, resolver.Output)
	}
	m.Return = ret
	return m
}

// identifierTargets lists the argument names bound from resource identifiers:
// Names[] and Names[0] both bind Names.
func identifierTargets(params []schema.Param) []string {
	var out []string
	for _, p := range params {
		if p.Source != schema.ParamSourceIdentifier {
			continue
		}
		target, _, _ := strings.Cut(p.Target, "[")
		out = append(out, target)
	}
	return out
}

// fallbackSignature consults the external source and runs its arguments
// through the alias and override tables.
func (b *Builder) fallbackSignature(owner, method string) ([]Argument, descriptor.Descriptor, bool) {
	if b.fallback == nil {
		return nil, nil, false
	}
	raw, ret, ok := b.fallback.Signature(owner, method)
	if !ok {
		return nil, nil, false
	}

	service := b.res.Service()
	args := make([]Argument, 0, len(raw))
	for _, a := range raw {
		if !a.IsTyped() {
			continue
		}
		name, keep := b.overrides.Alias(service, overrides.Wildcard, a.Name)
		if !keep {
			continue
		}
		if o, ok := b.overrides.Method(service, owner, method, a.Name); ok {
			if o.Remove {
				continue
			}
			a.Type = o.Type
		}
		a.Name = name
		args = append(args, a)
	}
	sortRequiredFirst(args)

	if o, ok := b.overrides.Method(service, owner, method, overrides.ReturnField); ok {
		ret = o.Type
		if o.Remove {
			ret = descriptor.None
		}
	}
	return args, ret, true
}

// attributes lists the identifiers followed by the members of the resource
// shape. Names are snake_cased; the first occurrence wins.
func (b *Builder) attributes(owner string, shape *schema.ResourceShape) []Attribute {
	service := b.res.Service()
	seen := make(map[string]bool)
	var out []Attribute

	add := func(name string, resolve func() descriptor.Descriptor) {
		if seen[name] {
			return
		}
		seen[name] = true
		if o, ok := b.overrides.Method(service, owner, AttributesMethod, name); ok {
			if o.Remove {
				return
			}
			out = append(out, Attribute{Name: name, Type: o.Type})
			return
		}
		out = append(out, Attribute{Name: name, Type: resolve()})
	}

	for _, id := range shape.Identifiers {
		add(strs.ToSnakeCase(id.Name), func() descriptor.Descriptor { return descriptor.String })
	}
	if shape.Shape == "" {
		return out
	}

	s, ok := b.model.Shape(shape.Shape)
	if !ok {
		b.diags.Add(errors.NewUnknownShape(errors.Location{Owner: owner, Member: AttributesMethod}, shape.Shape))
		return out
	}
	b.res.SetLocation(owner, AttributesMethod)
	for _, member := range s.Members {
		ref := member.ShapeRef
		add(strs.ToSnakeCase(member.Name), func() descriptor.Descriptor {
			return b.res.ResolveRef(&ref, resolver.OutputChild)
		})
	}
	return out
}

func (b *Builder) collections(parent string, doc *schema.ResourceDocument, hasMany map[string]*schema.Action) []*Collection {
	var out []*Collection
	for _, name := range schema.SortedKeys(hasMany) {
		out = append(out, b.Collection(parent, name, hasMany[name], doc))
	}
	return out
}

// Collection builds the collection class for a hasMany entry of parent.
func (b *Builder) Collection(parent, name string, action *schema.Action, doc *schema.ResourceDocument) *Collection {
	className := parent + name + "Collection"
	c := &Collection{
		Name:          className,
		AttributeName: strs.ToSnakeCase(name),
		ParentName:    parent,
		Methods:       MethodMap{},
	}

	var item descriptor.Descriptor = descriptor.Any
	if action.Resource != nil {
		c.ResourceType = action.Resource.Type
		item = descriptor.NewResourceReference(c.ResourceType)
	}

	self := descriptor.NewResourceReference(className)
	count := Argument{Name: "count", Type: descriptor.Integer}
	b.addFixed(c.Methods, className,
		&Method{Name: "all", Arguments: []Argument{Self()}, Return: self},
		&Method{Name: "limit", Arguments: []Argument{Self(), count}, Return: self},
		&Method{Name: "page_size", Arguments: []Argument{Self(), count}, Return: self},
		&Method{Name: "pages", Arguments: []Argument{Self()}, Return: descriptor.NewIterator(descriptor.NewSequence(item))},
	)
	if !b.removed(className, "filter") {
		c.Methods["filter"] = b.collectionMethod(className, "filter", action, self)
	}

	if c.ResourceType == "" {
		return c
	}
	res, err := doc.Resource(c.ResourceType)
	if err != nil {
		b.diags.Add(errors.NewMissingSection("resource", c.ResourceType))
		return c
	}
	for _, batchName := range schema.SortedKeys(res.BatchActions) {
		method := strs.ToSnakeCase(batchName)
		if b.removed(className, method) {
			continue
		}
		c.Methods[method] = b.collectionMethod(className, method, res.BatchActions[batchName], nil)
	}
	return c
}

// collectionMethod builds filter (ret set) or a batch action (ret nil, the
// operation output is returned). Only optional arguments are kept; the
// collection binds the required ones. Unresolvable operations leave a
// receiver-only signature.
func (b *Builder) collectionMethod(className, method string, action *schema.Action, ret descriptor.Descriptor) *Method {
	batch := ret == nil
	if batch {
		ret = descriptor.None
	}
	m := &Method{Name: method, Arguments: []Argument{Self()}, Return: ret}

	if action == nil || action.Request == nil {
		if !batch {
			return m
		}
		if args, fret, ok := b.fallbackSignature(className, method); ok {
			m.Arguments = withReceiver(method, optionalOnly(args), fallbackKeywordThreshold)
			if fret != nil {
				m.Return = fret
			}
		}
		return m
	}

	op, err := b.model.Operation(action.Request.Operation)
	if err != nil {
		b.diags.Warn(errors.NewUnknownOperation(errors.Location{Owner: className, Member: method}, action.Request.Operation))
		return m
	}

	if input := b.model.InputShape(op); input != nil {
		args := b.parseArguments(className, method, op.Name, input, argOptions{optionalOnly: true})
		m.Arguments = withReceiver(method, args, shapeKeywordThreshold)
		m.Request = requestRecord(resolver.TypeDefName(input.Name, className+strs.ToPascalCase(method)), args)
	}
	if output := b.model.OutputShape(op); batch && output != nil {
		b.res.SetLocation(className, method)
		m.Return = b.res.Resolve(output, resolver.Output)
	}
	return m
}

func optionalOnly(args []Argument) []Argument {
	var out []Argument
	for _, a := range args {
		if !a.Required() {
			out = append(out, a)
		}
	}
	return out
}
