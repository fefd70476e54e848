// Package types provides type definitions for structured data exchanged with the resume parsing API.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NotAvailable is shown in place of empty values.
const NotAvailable = "N/A"

// ResumeRecord is one parsed resume as returned by the parsing API.
// Records are created remotely and never mutated by this client.
type ResumeRecord struct {
	CandidateName  string           `json:"candidate_name,omitempty"`
	EmailID        string           `json:"email_id,omitempty"`
	PhoneNumber    string           `json:"phone_number,omitempty"`
	Education      []Education      `json:"education,omitempty"`
	WorkExperience []WorkExperience `json:"workExperience,omitempty"`
	Skills         []string         `json:"skills,omitempty"`
	UserID         string           `json:"user_id,omitempty"`
}

// Education is a single education entry of a resume.
type Education struct {
	InstitutionName string `json:"institution_name,omitempty"`
	DegreeObtained  string `json:"degree_obtained,omitempty"`
	CGPA            Scalar `json:"cgpa,omitzero"`
	Duration        string `json:"duration,omitempty"`
}

// WorkExperience is a single employment entry of a resume.
type WorkExperience struct {
	CompanyName       string `json:"company_name,omitempty"`
	JobTitle          string `json:"job_title,omitempty"`
	Duration          string `json:"duration,omitempty"`
	YearsOfExperience Scalar `json:"years_of_experience,omitzero"`
}

// SkillsLine joins the skills into a single display string.
func (r *ResumeRecord) SkillsLine() string {
	return OrNA(strings.Join(r.Skills, ", "))
}

// Title is the heading used for the record's detail view.
func (r *ResumeRecord) Title() string {
	if r.CandidateName == "" {
		return "Candidate Information"
	}
	return r.CandidateName
}

// OrNA returns s, or NotAvailable when s is empty.
func OrNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// Scalar holds a JSON value the parser emits either as a number or as a string,
// such as a grade or a years-of-experience figure. It re-encodes exactly what it
// decoded, including an explicit empty string.
type Scalar struct {
	raw string
	num bool
	set bool
}

// StringScalar returns a Scalar that encodes as a JSON string.
func StringScalar(s string) Scalar {
	return Scalar{raw: s, set: true}
}

// NumberScalar returns a Scalar that encodes as a JSON number.
// The text must be a valid JSON number literal.
func NumberScalar(text string) Scalar {
	return Scalar{raw: text, num: true, set: true}
}

// String returns the textual form of the value.
func (s Scalar) String() string {
	return s.raw
}

// IsZero reports whether the value is absent or null.
func (s Scalar) IsZero() bool {
	return !s.set
}

// IsNumber reports whether the value was a JSON number.
func (s Scalar) IsNumber() bool {
	return s.num
}

// UnmarshalJSON accepts a number, a string or null.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = Scalar{}
		return nil
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("invalid string scalar: %w", err)
		}
		*s = StringScalar(str)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("scalar must be a number or a string, got %s", data)
		}
		*s = NumberScalar(n.String())
		return nil
	}
}

// MarshalJSON writes the value back in its original JSON kind.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	if s.num {
		return []byte(s.raw), nil
	}
	return json.Marshal(s.raw)
}
