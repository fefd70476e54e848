// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-parser-web/internal/notify"
	"github.com/jonathan/resume-parser-web/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxFacetValues is the number of facet values listed before eliding
	maxFacetValues = 5
)

// Printer handles formatted CLI output.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title, inner), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// ResumeTable describes one listing of the resume table.
type ResumeTable struct {
	Records    []types.ResumeRecord
	Total      int
	FacetLabel string
	Value      string
	Err        string
}

// PrintResumeTable outputs the displayed resumes as a numbered two-column table.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintResumeTable(t ResumeTable) {
	if t.Err != "" {
		fmt.Fprintln(p.out, t.Err)
	}

	if t.Value != "" {
		fmt.Fprintf(p.out, "Filter: %s contains %q (%d of %d)\n", t.FacetLabel, t.Value, len(t.Records), t.Total)
	}

	fmt.Fprintln(p.out, "Uploaded Resumes:")
	if len(t.Records) == 0 {
		fmt.Fprintln(p.out, "No resume data found.")
		return
	}

	nameWidth := len("Candidate Name")
	for i := range t.Records {
		nameWidth = max(nameWidth, utf8.RuneCountInString(truncate(t.Records[i].CandidateName, 30)))
	}

	fmt.Fprintf(p.out, "%4s  %s  %s\n", "#", pad("Candidate Name", nameWidth), "Email ID")
	fmt.Fprintf(p.out, "%4s  %s  %s\n", "", strings.Repeat("─", nameWidth), strings.Repeat("─", 8))
	for i := range t.Records {
		r := &t.Records[i]
		fmt.Fprintf(p.out, "%4d  %s  %s\n", i, pad(truncate(r.CandidateName, 30), nameWidth), r.EmailID)
	}
}

// PrintFacets lists the distinct values offered for filtering.
func (p *Printer) PrintFacets(label string, values []string) {
	if len(values) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(values), maxFacetValues)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", values[i]))
	}
	if len(values) > maxFacetValues {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(values)-maxFacetValues))
	}

	p.printBox(strings.ToUpper(label)+" VALUES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResumeDetail outputs every field of one resume, with "N/A" for
// missing values.
func (p *Printer) PrintResumeDetail(r *types.ResumeRecord) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate Name: %s\n", types.OrNA(r.CandidateName)))
	sb.WriteString(fmt.Sprintf("Phone Number:   %s\n", types.OrNA(r.PhoneNumber)))
	sb.WriteString(fmt.Sprintf("Email Address:  %s\n", types.OrNA(r.EmailID)))

	if len(r.Education) > 0 {
		sb.WriteString("\nEducation:\n")
		for _, edu := range r.Education {
			sb.WriteString(fmt.Sprintf("  • Institution: %s\n", types.OrNA(edu.InstitutionName)))
			sb.WriteString(fmt.Sprintf("    Degree:      %s\n", types.OrNA(edu.DegreeObtained)))
			sb.WriteString(fmt.Sprintf("    CGPA:        %s\n", types.OrNA(edu.CGPA.String())))
			sb.WriteString(fmt.Sprintf("    Duration:    %s\n", types.OrNA(edu.Duration)))
		}
	}

	if len(r.WorkExperience) > 0 {
		sb.WriteString("\nWork Experience:\n")
		for _, exp := range r.WorkExperience {
			sb.WriteString(fmt.Sprintf("  • Company:  %s\n", types.OrNA(exp.CompanyName)))
			sb.WriteString(fmt.Sprintf("    Title:    %s\n", types.OrNA(exp.JobTitle)))
			sb.WriteString(fmt.Sprintf("    Duration: %s\n", types.OrNA(exp.Duration)))
			sb.WriteString(fmt.Sprintf("    Years:    %s\n", types.OrNA(exp.YearsOfExperience.String())))
		}
	}

	if len(r.Skills) > 0 {
		sb.WriteString("\nSkills:\n")
		sb.WriteString("  " + r.SkillsLine() + "\n")
	}

	p.printBox(r.Title(), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintNotification outputs a one-line notification.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintNotification(n *notify.Notification) {
	if n == nil {
		return
	}
	mark := "✓"
	if n.IsError() {
		mark = "✗"
	}
	fmt.Fprintf(p.out, "%s %s %s\n", mark, n.Title, n.Text)
}
