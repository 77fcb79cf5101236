package builder

import (
	"github.com/shapec-dev/shapec/internal/compiler/descriptor"
)

// Client is the low-level client class of a service.
type Client struct {
	Name    string
	Methods MethodMap
}

// Paginator wraps the paginate method of one paginated operation.
type Paginator struct {
	Name          string
	OperationName string
	Paginate      *Method
}

// Waiter wraps the wait method of one waiter.
type Waiter struct {
	Name          string
	WaiterName    string
	OperationName string
	Wait          *Method
}

// Attribute is a read-only resource property.
type Attribute struct {
	Name string
	Type descriptor.Descriptor
}

// Collection is a lazily evaluated set of resources.
type Collection struct {
	Name          string
	AttributeName string
	ParentName    string
	ResourceType  string
	Methods       MethodMap
}

// Resource is a resource class.
type Resource struct {
	Name        string
	Identifiers []string
	Attributes  []Attribute
	Methods     MethodMap
	Collections []*Collection
}

// ServiceResource is the entry point of the resource layer.
type ServiceResource struct {
	Name         string
	Methods      MethodMap
	Collections  []*Collection
	SubResources []*Resource
}

// Resource returns the sub-resource called name.
func (s *ServiceResource) Resource(name string) (*Resource, bool) {
	for _, r := range s.SubResources {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// ClassNames lists the generated class names: the service resource, every
// resource and every collection.
func (s *ServiceResource) ClassNames() []string {
	names := []string{s.Name}
	for _, c := range s.Collections {
		names = append(names, c.Name)
	}
	for _, r := range s.SubResources {
		names = append(names, r.Name)
		for _, c := range r.Collections {
			names = append(names, c.Name)
		}
	}
	return names
}

// MethodOwners yields every method map of the resource layer keyed by the
// owning class name.
func (s *ServiceResource) MethodOwners() map[string]MethodMap {
	out := map[string]MethodMap{s.Name: s.Methods}
	for _, c := range s.Collections {
		out[c.Name] = c.Methods
	}
	for _, r := range s.SubResources {
		out[r.Name] = r.Methods
		for _, c := range r.Collections {
			out[c.Name] = c.Methods
		}
	}
	return out
}
