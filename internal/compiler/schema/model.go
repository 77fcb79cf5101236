package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrSectionNotFound is returned when an optional document or one of its
	// entries (paginator, waiter, resource) is absent.
	ErrSectionNotFound = errors.New("section not found")
	// ErrUnknownOperation is returned for references to undefined operations.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrInvalidDocument is returned when a document cannot be decoded.
	ErrInvalidDocument = errors.New("invalid document")
)

// ServiceModel is one loaded service: its shapes and operations plus the
// optional paginator, waiter and resource documents.
type ServiceModel struct {
	Name       string
	Metadata   Metadata
	Operations map[string]*Operation
	Shapes     map[string]*Shape

	paginators *PaginatorDocument
	waiters    *WaiterDocument
	resources  *ResourceDocument
}

// OperationNames returns all operation names, sorted.
func (m *ServiceModel) OperationNames() []string {
	return SortedKeys(m.Operations)
}

// Operation returns the named operation.
func (m *ServiceModel) Operation(name string) (*Operation, error) {
	op, ok := m.Operations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	return op, nil
}

// Shape returns the named shape.
func (m *ServiceModel) Shape(name string) (*Shape, bool) {
	s, ok := m.Shapes[name]
	return s, ok
}

// ResolveRef returns the shape a reference points at, with the reference's
// streaming flag merged in.
func (m *ServiceModel) ResolveRef(ref *ShapeRef) (*Shape, bool) {
	if ref == nil {
		return nil, false
	}
	s, ok := m.Shapes[ref.Shape]
	if !ok {
		return nil, false
	}
	return s.WithStreaming(ref.Streaming), true
}

// InputShape returns the input shape of op, or nil when it has none.
func (m *ServiceModel) InputShape(op *Operation) *Shape {
	s, _ := m.ResolveRef(op.Input)
	return s
}

// OutputShape returns the output shape of op, or nil when it has none.
func (m *ServiceModel) OutputShape(op *Operation) *Shape {
	s, _ := m.ResolveRef(op.Output)
	return s
}

// HasPaginators reports whether a paginator document was loaded.
func (m *ServiceModel) HasPaginators() bool { return m.paginators != nil }

// HasWaiters reports whether a waiter document was loaded.
func (m *ServiceModel) HasWaiters() bool { return m.waiters != nil }

// HasResources reports whether a resource document was loaded.
func (m *ServiceModel) HasResources() bool { return m.resources != nil }

// PaginatorNames returns the declared paginator names, sorted.
func (m *ServiceModel) PaginatorNames() []string {
	if m.paginators == nil {
		return nil
	}
	return SortedKeys(m.paginators.Pagination)
}

// Paginator returns the named paginator.
func (m *ServiceModel) Paginator(name string) (*Paginator, error) {
	if m.paginators == nil {
		return nil, fmt.Errorf("%w: paginators", ErrSectionNotFound)
	}
	p, ok := m.paginators.Pagination[name]
	if !ok {
		return nil, fmt.Errorf("%w: paginator %s", ErrSectionNotFound, name)
	}
	return p, nil
}

// WaiterNames returns the declared waiter names, sorted.
func (m *ServiceModel) WaiterNames() []string {
	if m.waiters == nil {
		return nil
	}
	return SortedKeys(m.waiters.Waiters)
}

// Waiter returns the named waiter.
func (m *ServiceModel) Waiter(name string) (*Waiter, error) {
	if m.waiters == nil {
		return nil, fmt.Errorf("%w: waiters", ErrSectionNotFound)
	}
	w, ok := m.waiters.Waiters[name]
	if !ok {
		return nil, fmt.Errorf("%w: waiter %s", ErrSectionNotFound, name)
	}
	return w, nil
}

// Resources returns the resource document.
func (m *ServiceModel) Resources() (*ResourceDocument, error) {
	if m.resources == nil {
		return nil, fmt.Errorf("%w: resources", ErrSectionNotFound)
	}
	return m.resources, nil
}

// IsResource reports whether name is a resource class of this service.
func (m *ServiceModel) IsResource(name string) bool {
	if m.resources == nil {
		return false
	}
	_, ok := m.resources.Resources[name]
	return ok
}
