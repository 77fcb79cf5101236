package builder

import (
	stderrors "errors"

	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
	"github.com/shapec-dev/shapec/internal/compiler/errors"
	"github.com/shapec-dev/shapec/internal/compiler/resolver"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
)

const (
	paginateMethod = "paginate"
	waitMethod     = "wait"
)

// Paginators builds one paginator per entry of the paginator document.
func (b *Builder) Paginators() []*Paginator {
	var out []*Paginator
	for _, name := range b.model.PaginatorNames() {
		if p := b.Paginator(name); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Paginator builds the paginator class of an operation. It returns nil when
// the paginator cannot be built; the reason is recorded in diagnostics.
func (b *Builder) Paginator(name string) *Paginator {
	className := name + "Paginator"
	if b.removed(className, paginateMethod) {
		return nil
	}
	m, err := b.PaginateMethod(name)
	if err != nil {
		b.absorb(err, "paginator", name, name, errors.Location{Owner: className, Member: paginateMethod})
		return nil
	}
	return &Paginator{Name: className, OperationName: name, Paginate: m}
}

// PaginateMethod builds the paginate method of an operation. Cursor and
// limit arguments are left out and an optional PaginationConfig appended;
// the method returns an iterator over the page type.
func (b *Builder) PaginateMethod(name string) (*Method, error) {
	pag, err := b.model.Paginator(name)
	if err != nil {
		return nil, err
	}
	op, err := b.model.Operation(name)
	if err != nil {
		return nil, err
	}

	owner := name + "Paginator"
	input := b.model.InputShape(op)
	output := b.model.OutputShape(op)

	m := &Method{Name: paginateMethod, Arguments: []Argument{Self()}, Return: descriptor.None}
	if input != nil {
		args := b.ParseArguments(owner, paginateMethod, op.Name, input, pag.SkippedArguments(), false)
		args = append(args, Argument{Name: "PaginationConfig", Type: b.paginatorConfigRecord(), Default: DefaultNone})
		m.Arguments = withReceiver(paginateMethod, args, shapeKeywordThreshold)
		m.Request = requestRecord(resolver.TypeDefName(input.Name, "Paginate"), args)
	}
	if output != nil {
		m.Return = descriptor.NewIterator(b.ReturnType(owner, paginateMethod, output))
	}
	return m, nil
}

// Waiters builds one waiter per entry of the waiter document.
func (b *Builder) Waiters() []*Waiter {
	var out []*Waiter
	for _, name := range b.model.WaiterNames() {
		if w := b.Waiter(name); w != nil {
			out = append(out, w)
		}
	}
	return out
}

// Waiter builds the waiter class for a waiter name.
func (b *Builder) Waiter(name string) *Waiter {
	className := name + "Waiter"
	if b.removed(className, waitMethod) {
		return nil
	}
	loc := errors.Location{Owner: className, Member: waitMethod}
	w, err := b.model.Waiter(name)
	if err != nil {
		b.absorb(err, "waiter", name, "", loc)
		return nil
	}
	m, err := b.WaitMethod(name)
	if err != nil {
		b.absorb(err, "waiter", name, w.Operation, loc)
		return nil
	}
	return &Waiter{Name: className, WaiterName: name, OperationName: w.Operation, Wait: m}
}

// WaitMethod builds the wait method of a waiter: the operation's input
// arguments plus an optional WaiterConfig. It returns nothing.
func (b *Builder) WaitMethod(name string) (*Method, error) {
	w, err := b.model.Waiter(name)
	if err != nil {
		return nil, err
	}
	op, err := b.model.Operation(w.Operation)
	if err != nil {
		return nil, err
	}

	owner := name + "Waiter"
	m := &Method{Name: waitMethod, Arguments: []Argument{Self()}, Return: descriptor.None}
	if input := b.model.InputShape(op); input != nil {
		args := b.ParseArguments(owner, waitMethod, op.Name, input, nil, false)
		args = append(args, Argument{Name: "WaiterConfig", Type: b.waiterConfigRecord(), Default: DefaultNone})
		m.Arguments = withReceiver(waitMethod, args, shapeKeywordThreshold)
		m.Request = requestRecord(resolver.TypeDefName(input.Name, "Wait"), args)
	}
	return m, nil
}

// absorb turns a lookup failure into a diagnostic.
func (b *Builder) absorb(err error, section, name, operation string, loc errors.Location) {
	switch {
	case stderrors.Is(err, schema.ErrSectionNotFound):
		b.diags.Add(errors.NewMissingSection(section, name))
	case stderrors.Is(err, schema.ErrUnknownOperation):
		b.diags.Add(errors.NewUnknownOperation(loc, operation))
	default:
		b.diags.Add(errors.NewInvalidDocument(section, err))
	}
}
