package descriptor

// ResponseMetadataField is the field appended to every top-level output record.
const ResponseMetadataField = "ResponseMetadata"

// Field is a named member of a Record.
type Field struct {
	Name     string
	Type     Descriptor
	Required bool
}

// Record is a closed record type with ordered fields.
type Record struct {
	Name   string
	Fields []*Field

	// ForwardRef marks records that are discovered only through other records
	// and must be renderable before their definition.
	ForwardRef bool
}

// NewRecord creates an empty record.
func NewRecord(name string) *Record {
	return &Record{Name: name}
}

// AddField appends a field.
func (r *Record) AddField(name string, typ Descriptor, required bool) *Field {
	f := &Field{Name: name, Type: typ, Required: required}
	r.Fields = append(r.Fields, f)
	return f
}

// Field returns the field with the given name or nil.
func (r *Record) Field(name string) *Field {
	for _, f := range r.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasField reports whether a field with the given name exists.
func (r *Record) HasField(name string) bool {
	return r.Field(name) != nil
}

// FieldNames returns the field names in declaration order.
func (r *Record) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// IsOutput reports whether the record carries the response metadata field,
// which is what distinguishes the response role from the request role.
func (r *Record) IsOutput() bool {
	return r.HasField(ResponseMetadataField)
}

// RequiredFields returns the required fields in declaration order.
func (r *Record) RequiredFields() []*Field {
	var out []*Field
	for _, f := range r.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

func (*Record) Kind() Kind { return KindRecord }
func (r *Record) String() string { return r.Name }
func (*Record) sealed() {}

// ResponseMetadata builds the transport metadata record appended to output
// records.
func ResponseMetadata() *Record {
	r := NewRecord("ResponseMetadataTypeDef")
	r.AddField("RequestId", String, true)
	r.AddField("HostId", String, true)
	r.AddField("HTTPStatusCode", Integer, true)
	r.AddField("HTTPHeaders", StringAnyMap(), true)
	r.AddField("RetryAttempts", Integer, true)
	return r
}

// PaginatorConfig builds the optional pagination configuration record.
func PaginatorConfig() *Record {
	r := NewRecord("PaginatorConfigTypeDef")
	r.AddField("MaxItems", Integer, false)
	r.AddField("PageSize", Integer, false)
	r.AddField("StartingToken", String, false)
	return r
}

// WaiterConfig builds the optional wait configuration record.
func WaiterConfig() *Record {
	r := NewRecord("WaiterConfigTypeDef")
	r.AddField("Delay", Integer, false)
	r.AddField("MaxAttempts", Integer, false)
	return r
}
