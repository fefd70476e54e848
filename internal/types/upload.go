package types

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// Declared MIME types accepted for upload.
const (
	MIMETypePDF  = "application/pdf"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// UploadRequest describes one file submission to the parsing API.
type UploadRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required,oneof=application/pdf application/vnd.openxmlformats-officedocument.wordprocessingml.document"`
	UserID      string `json:"user_id" validate:"required"`
}

// Validate validates the UploadRequest using the validator.
func (r *UploadRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// UploadResponse is the body returned by the parsing API for an upload.
// ExtractedData is kept as received.
type UploadResponse struct {
	ExtractedData json.RawMessage `json:"extracted_data,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// AcceptedType reports whether contentType is one of the accepted declared types.
func AcceptedType(contentType string) bool {
	return contentType == MIMETypePDF || contentType == MIMETypeDOCX
}
