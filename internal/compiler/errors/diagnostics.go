package errors

// Diagnostics collects the errors, warnings and notices raised while one
// service is compiled. It replaces process-wide logging inside the compiler:
// every stage receives the collector explicitly and the pipeline returns it
// alongside the compiled package.
//
// A Diagnostics is not safe for concurrent use; each service compilation owns
// its own instance.
type Diagnostics struct {
	service string
	items   ErrorList
}

// NewDiagnostics creates an empty collector for the given service.
func NewDiagnostics(service string) *Diagnostics {
	return &Diagnostics{service: service}
}

// Service returns the service the collector belongs to.
func (d *Diagnostics) Service() string {
	return d.service
}

// Add records an entry, stamping the service name when missing.
func (d *Diagnostics) Add(e *CompilerError) {
	if e == nil {
		return
	}
	if e.Service == "" {
		e.Service = d.service
	}
	d.items = append(d.items, e)
}

// Warn records e downgraded to a warning.
func (d *Diagnostics) Warn(e *CompilerError) {
	if e == nil {
		return
	}
	e.Severity = SeverityWarning
	d.Add(e)
}

// Info records e downgraded to an informational notice.
func (d *Diagnostics) Info(e *CompilerError) {
	if e == nil {
		return
	}
	e.Severity = SeverityInfo
	d.Add(e)
}

// Items returns every recorded entry in insertion order.
func (d *Diagnostics) Items() ErrorList {
	return d.items
}

// Errors returns the fatal entries.
func (d *Diagnostics) Errors() ErrorList {
	return d.items.BySeverity(SeverityError)
}

// Warnings returns the absorbed anomalies.
func (d *Diagnostics) Warnings() ErrorList {
	return d.items.BySeverity(SeverityWarning)
}

// Infos returns the informational notices.
func (d *Diagnostics) Infos() ErrorList {
	return d.items.BySeverity(SeverityInfo)
}

// HasErrors returns true if any fatal entry was recorded.
func (d *Diagnostics) HasErrors() bool {
	return d.items.HasErrors()
}

// Merge appends all entries from other.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	for _, e := range other.items {
		d.Add(e)
	}
}

// Err returns the fatal entries as an error, or nil when there are none.
func (d *Diagnostics) Err() error {
	errs := d.Errors()
	if len(errs) == 0 {
		return nil
	}
	return errs
}
