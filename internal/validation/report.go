package validation

import (
	"fmt"
	"strings"
)

// Kind classifies a schema violation by the field it concerns.
type Kind string

const (
	KindStreetAddress Kind = "street_address"
	KindTIN           Kind = "tin"
	KindPermitNumber  Kind = "permit_number"
	KindDate          Kind = "date"
	KindEmail         Kind = "email"
	KindState         Kind = "state"
	KindCity          Kind = "city"
	KindBusinessName  Kind = "business_name"
	KindZIP           Kind = "zip"
	KindWeight        Kind = "weight"
	KindPattern       Kind = "pattern"
	KindUnknown       Kind = "unknown"
)

// Location tells the user where in the workflow the bad value was entered.
type Location struct {
	// Section is a short identifier: filer, consignor, manufacturer,
	// consignee, tax_period, defaults or shipment.
	Section string `json:"section"`

	// Label is the heading shown to the user, e.g. "YOUR BUSINESS ADDRESS".
	Label string `json:"label"`

	// Step is the workflow step number, 0 when the location is unknown.
	Step int `json:"step"`

	// StepName describes the step.
	StepName string `json:"step_name"`
}

// WhereToFix renders the location as "Step N - name".
func (l Location) WhereToFix() string {
	if l.Step == 0 {
		return ""
	}
	return fmt.Sprintf("Step %d - %s", l.Step, l.StepName)
}

// Example is one sample value, marked as accepted or rejected.
type Example struct {
	Value string `json:"value"`
	Valid bool   `json:"valid"`
	Note  string `json:"note,omitempty"`
}

// Report is a plain-language explanation of one schema violation.
type Report struct {
	Kind         Kind      `json:"kind"`
	Problem      string    `json:"problem"`
	Location     Location  `json:"location"`
	InvalidValue string    `json:"invalid_value,omitempty"`
	Issues       []string  `json:"issues,omitempty"`
	Suggestion   string    `json:"suggestion,omitempty"`
	FixSteps     []string  `json:"fix_steps"`
	Examples     []Example `json:"examples,omitempty"`
	Notes        []string  `json:"notes,omitempty"`
	Line         int       `json:"line,omitempty"`
	Detail       string    `json:"detail"`
}

var afterFixing = []string{
	"Make the changes described above",
	"Save the filer record or defaults if you changed them",
	"Generate the XML again",
	"Repeat until validation passes",
}

// String renders the report as plain text for a terminal, a log file or an
// HTTP response body.
func (r *Report) String() string {
	var b strings.Builder

	b.WriteString("VALIDATION FAILED - the XML does not match the state schema\n\n")
	b.WriteString("Note: fixing one error at a time - there may be more after you fix this one.\n\n")

	fmt.Fprintf(&b, "PROBLEM: %s\n", r.Problem)
	if where := r.Location.WhereToFix(); where != "" {
		if r.Location.Label != "" {
			fmt.Fprintf(&b, "LOCATION: %s\n", r.Location.Label)
		}
		fmt.Fprintf(&b, "WHERE TO FIX: %s\n", where)
	}
	if r.InvalidValue != "" {
		fmt.Fprintf(&b, "YOUR VALUE: %q\n", r.InvalidValue)
	}
	if len(r.Issues) > 0 {
		b.WriteString("ISSUES:\n")
		for _, issue := range r.Issues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
	}
	if r.Suggestion != "" {
		fmt.Fprintf(&b, "SUGGESTED FIX: change %q to %q\n", r.InvalidValue, r.Suggestion)
	}

	if len(r.FixSteps) > 0 {
		b.WriteString("\nHOW TO FIX:\n")
		writeNumbered(&b, r.FixSteps)
	}

	if len(r.Examples) > 0 {
		b.WriteString("\nEXAMPLES:\n")
		for _, ex := range r.Examples {
			mark := "CORRECT"
			if !ex.Valid {
				mark = "WRONG  "
			}
			if ex.Note != "" {
				fmt.Fprintf(&b, "  %s %s (%s)\n", mark, ex.Value, ex.Note)
			} else {
				fmt.Fprintf(&b, "  %s %s\n", mark, ex.Value)
			}
		}
	}

	for _, note := range r.Notes {
		fmt.Fprintf(&b, "\nNOTE: %s\n", note)
	}

	b.WriteString("\nAFTER FIXING:\n")
	writeNumbered(&b, afterFixing)

	if r.Detail != "" {
		fmt.Fprintf(&b, "\nTechnical detail: %s\n", r.Detail)
	}
	return b.String()
}

func writeNumbered(b *strings.Builder, steps []string) {
	for i, step := range steps {
		fmt.Fprintf(b, "  %d. %s\n", i+1, step)
	}
}
