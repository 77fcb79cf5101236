package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/shapec-dev/shapec/internal/compiler/snapshot"
)

// WriteChanges lists snapshot changes, one per line, colored by kind:
//
//	+ record ThingTypeDef
//	~ method ThingsClient.list_things
//	    - (self, *, MaxResults: integer = None) -> ListThingsResultTypeDef
//	    + (self, *, MaxResults: integer = None, NextToken: string = None) -> ListThingsResultTypeDef
func WriteChanges(w io.Writer, changes []snapshot.Change, noColor bool) {
	green := paint(noColor, color.FgGreen)
	red := paint(noColor, color.FgRed)
	yellow := paint(noColor, color.FgYellow)

	for _, c := range changes {
		switch c.Kind {
		case snapshot.Added:
			green.Fprintf(w, "+ %s %s\n", c.Entity, c.Name)
		case snapshot.Removed:
			red.Fprintf(w, "- %s %s\n", c.Entity, c.Name)
		case snapshot.Changed:
			yellow.Fprintf(w, "~ %s %s\n", c.Entity, c.Name)
			red.Fprintf(w, "    - %s\n", c.Before)
			green.Fprintf(w, "    + %s\n", c.After)
		}
	}

	s := snapshot.Summarize(changes)
	if len(changes) == 0 {
		fmt.Fprintln(w, FormatSuccess("no changes", noColor))
		return
	}
	fmt.Fprintf(w, "\n%d added, %d removed, %d changed\n", s.Added, s.Removed, s.Changed)
}
