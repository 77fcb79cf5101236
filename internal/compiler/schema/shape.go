// Package schema loads botocore-style service description documents: the
// service model with its operations and shapes, and the optional paginator,
// waiter and resource documents. Everything in this package is read-only
// after loading.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape types as they appear in service-2.json.
const (
	TypeStructure = "structure"
	TypeList      = "list"
	TypeMap       = "map"
	TypeString    = "string"
	TypeCharacter = "character"
	TypeInteger   = "integer"
	TypeLong      = "long"
	TypeBoolean   = "boolean"
	TypeDouble    = "double"
	TypeFloat     = "float"
	TypeTimestamp = "timestamp"
	TypeBlob      = "blob"
)

// ShapeRef points at a named shape. Member references may carry their own
// serialization flags.
type ShapeRef struct {
	Shape         string `json:"shape"`
	Streaming     bool   `json:"streaming,omitempty"`
	Location      string `json:"location,omitempty"`
	LocationName  string `json:"locationName,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

// Member is a named structure member.
type Member struct {
	Name string
	ShapeRef
}

// Members keeps structure members in declaration order.
type Members []Member

// UnmarshalJSON decodes a JSON object into members, preserving key order.
func (m *Members) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("members: expected object, got %v", tok)
	}

	var out Members
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("members: expected key, got %v", tok)
		}
		var ref ShapeRef
		if err := dec.Decode(&ref); err != nil {
			return fmt.Errorf("members: %s: %w", name, err)
		}
		out = append(out, Member{Name: name, ShapeRef: ref})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalJSON encodes members as an object in declaration order.
func (m Members) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, member := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(member.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(member.ShapeRef)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Shape is one node of the service shape graph.
type Shape struct {
	Name          string    `json:"-"`
	Type          string    `json:"type"`
	Members       Members   `json:"members,omitempty"`
	Required      []string  `json:"required,omitempty"`
	Member        *ShapeRef `json:"member,omitempty"`
	Key           *ShapeRef `json:"key,omitempty"`
	Value         *ShapeRef `json:"value,omitempty"`
	Enum          []string  `json:"enum,omitempty"`
	Streaming     bool      `json:"streaming,omitempty"`
	Exception     bool      `json:"exception,omitempty"`
	Documentation string    `json:"documentation,omitempty"`
}

// IsRequired reports whether the named member is required.
func (s *Shape) IsRequired(member string) bool {
	for _, name := range s.Required {
		if name == member {
			return true
		}
	}
	return false
}

// WithStreaming returns s, or a copy of s with the streaming flag set.
func (s *Shape) WithStreaming(streaming bool) *Shape {
	if !streaming || s.Streaming {
		return s
	}
	cp := *s
	cp.Streaming = true
	return &cp
}

// Operation describes one API call.
type Operation struct {
	Name          string    `json:"name"`
	Input         *ShapeRef `json:"input,omitempty"`
	Output        *ShapeRef `json:"output,omitempty"`
	Documentation string    `json:"documentation,omitempty"`
	Deprecated    bool      `json:"deprecated,omitempty"`
}

// Metadata is the service metadata block.
type Metadata struct {
	APIVersion       string `json:"apiVersion"`
	EndpointPrefix   string `json:"endpointPrefix"`
	Protocol         string `json:"protocol"`
	ServiceFullName  string `json:"serviceFullName"`
	ServiceID        string `json:"serviceId"`
	SignatureVersion string `json:"signatureVersion"`
	UID              string `json:"uid"`
}
