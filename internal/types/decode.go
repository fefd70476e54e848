package types

import (
	"encoding/json"
	"fmt"
)

// DecodeResumeRecord decodes a parsed resume field by field. A field whose
// JSON kind does not match is left empty and its path is returned in dropped,
// so one malformed value never loses the rest of the record. It fails only
// when data is not a JSON object.
func DecodeResumeRecord(data []byte) (ResumeRecord, []string, error) {
	var rec ResumeRecord

	fields, err := objectFields(data)
	if err != nil {
		return rec, nil, err
	}

	d := &fieldDecoder{}
	d.decode(fields, "candidate_name", &rec.CandidateName)
	d.decode(fields, "email_id", &rec.EmailID)
	d.decode(fields, "phone_number", &rec.PhoneNumber)
	d.decode(fields, "user_id", &rec.UserID)
	rec.Skills = decodeList(d, fields, "skills", func(d *fieldDecoder, raw json.RawMessage) (string, bool) {
		var s string
		return s, json.Unmarshal(raw, &s) == nil
	})
	rec.Education = decodeList(d, fields, "education", func(d *fieldDecoder, raw json.RawMessage) (Education, bool) {
		var e Education
		f, err := objectFields(raw)
		if err != nil {
			return e, false
		}
		d.decode(f, "institution_name", &e.InstitutionName)
		d.decode(f, "degree_obtained", &e.DegreeObtained)
		d.decode(f, "cgpa", &e.CGPA)
		d.decode(f, "duration", &e.Duration)
		return e, true
	})
	rec.WorkExperience = decodeList(d, fields, "workExperience", func(d *fieldDecoder, raw json.RawMessage) (WorkExperience, bool) {
		var w WorkExperience
		f, err := objectFields(raw)
		if err != nil {
			return w, false
		}
		d.decode(f, "company_name", &w.CompanyName)
		d.decode(f, "job_title", &w.JobTitle)
		d.decode(f, "duration", &w.Duration)
		d.decode(f, "years_of_experience", &w.YearsOfExperience)
		return w, true
	})

	return rec, d.dropped, nil
}

func objectFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("resume record is not a JSON object: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("resume record is null")
	}
	return fields, nil
}

// fieldDecoder records the paths of fields it could not decode.
type fieldDecoder struct {
	prefix  string
	dropped []string
}

func (d *fieldDecoder) decode(fields map[string]json.RawMessage, key string, dst any) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		d.dropped = append(d.dropped, d.prefix+key)
	}
}

// decodeList decodes fields[key] as an array, keeping the elements each accepts.
func decodeList[T any](d *fieldDecoder, fields map[string]json.RawMessage, key string, each func(*fieldDecoder, json.RawMessage) (T, bool)) []T {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		d.dropped = append(d.dropped, d.prefix+key)
		return nil
	}

	out := make([]T, 0, len(elems))
	parent := d.prefix
	for i, elem := range elems {
		d.prefix = fmt.Sprintf("%s%s[%d].", parent, key, i)
		v, ok := each(d, elem)
		if !ok {
			d.dropped = append(d.dropped, fmt.Sprintf("%s%s[%d]", parent, key, i))
			continue
		}
		out = append(out, v)
	}
	d.prefix = parent
	return out
}
