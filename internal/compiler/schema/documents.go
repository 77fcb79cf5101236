package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// StringList decodes either a single JSON string or a list of strings.
type StringList []string

// UnmarshalJSON accepts "a" and ["a", "b"].
func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*s = list
	return nil
}

// Paginator is one entry of paginators-1.json.
type Paginator struct {
	InputToken  StringList `json:"input_token"`
	OutputToken StringList `json:"output_token,omitempty"`
	LimitKey    string     `json:"limit_key,omitempty"`
	ResultKey   StringList `json:"result_key,omitempty"`
	MoreResults string     `json:"more_results,omitempty"`
}

// SkippedArguments returns the input fields managed by the pagination loop.
func (p *Paginator) SkippedArguments() []string {
	out := append([]string(nil), p.InputToken...)
	if p.LimitKey != "" {
		out = append(out, p.LimitKey)
	}
	return out
}

// PaginatorDocument is paginators-1.json.
type PaginatorDocument struct {
	Pagination map[string]*Paginator `json:"pagination"`
}

// Waiter is one entry of waiters-2.json.
type Waiter struct {
	Operation   string `json:"operation"`
	Delay       int    `json:"delay,omitempty"`
	MaxAttempts int    `json:"maxAttempts,omitempty"`
	Description string `json:"description,omitempty"`
}

// WaiterDocument is waiters-2.json.
type WaiterDocument struct {
	Version int                `json:"version"`
	Waiters map[string]*Waiter `json:"waiters"`
}

// Param maps a value into an operation request.
type Param struct {
	Target string `json:"target"`
	Source string `json:"source"`
	Name   string `json:"name,omitempty"`
	Path   string `json:"path,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// ParamSourceIdentifier marks params filled from the resource identity.
const ParamSourceIdentifier = "identifier"

// ParamSourceInput marks sub-resource identifiers supplied by the caller.
const ParamSourceInput = "input"

// Request binds a resource action to an operation.
type Request struct {
	Operation string  `json:"operation"`
	Params    []Param `json:"params,omitempty"`
}

// ActionResource describes the resource produced by an action.
type ActionResource struct {
	Type        string  `json:"type"`
	Identifiers []Param `json:"identifiers,omitempty"`
	Path        string  `json:"path,omitempty"`
}

// Action is a resource action, batch action, load definition or collection.
type Action struct {
	Request  *Request        `json:"request,omitempty"`
	Resource *ActionResource `json:"resource,omitempty"`
	Path     string          `json:"path,omitempty"`
}

// Identifier is one component of a resource identity.
type Identifier struct {
	Name       string `json:"name"`
	MemberName string `json:"memberName,omitempty"`
}

// ResourceWaiter binds a client waiter to a resource.
type ResourceWaiter struct {
	WaiterName string  `json:"waiterName"`
	Params     []Param `json:"params,omitempty"`
	Path       string  `json:"path,omitempty"`
}

// SubResource is a "has" entry that constructs another resource.
type SubResource struct {
	Resource *ActionResource `json:"resource"`
}

// ResourceShape is the definition of one resource class, or of the service
// resource itself.
type ResourceShape struct {
	Identifiers  []Identifier               `json:"identifiers,omitempty"`
	Shape        string                     `json:"shape,omitempty"`
	Load         *Action                    `json:"load,omitempty"`
	Actions      map[string]*Action         `json:"actions,omitempty"`
	BatchActions map[string]*Action         `json:"batchActions,omitempty"`
	Waiters      map[string]*ResourceWaiter `json:"waiters,omitempty"`
	Has          map[string]*SubResource    `json:"has,omitempty"`
	HasMany      map[string]*Action         `json:"hasMany,omitempty"`
}

// ResourceDocument is resources-1.json.
type ResourceDocument struct {
	Service   ResourceShape             `json:"service"`
	Resources map[string]*ResourceShape `json:"resources"`
}

// Resource returns the named resource class.
func (d *ResourceDocument) Resource(name string) (*ResourceShape, error) {
	r, ok := d.Resources[name]
	if !ok {
		return nil, fmt.Errorf("%w: resource %s", ErrSectionNotFound, name)
	}
	return r, nil
}

// ResourceNames returns the resource class names, sorted.
func (d *ResourceDocument) ResourceNames() []string {
	return SortedKeys(d.Resources)
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
