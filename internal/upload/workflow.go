// Package upload implements the resume upload workflow: declared-type validation,
// a single submission to the parsing API, and the user-facing outcome.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-parser-web/internal/notify"
	"github.com/jonathan/resume-parser-web/internal/parserapi"
	"github.com/jonathan/resume-parser-web/internal/types"
)

// User-visible messages.
const (
	MsgInvalidType     = "Please upload a valid PDF or DOCX file."
	MsgNoFile          = "Please select a file to upload."
	MsgMissingIdentity = "User authentication information is missing."
	MsgTransportError  = "Error uploading file. Please try again."
)

// ErrTooLarge is returned when an upload body exceeds the accepted size.
var ErrTooLarge = errors.New("upload exceeds the size limit")

// TooLargeMessage is shown when a file is refused for exceeding limit bytes.
func TooLargeMessage(limit int64) string {
	return fmt.Sprintf("The file is too large. Please upload a file smaller than %d MB.", max(limit>>20, 1))
}

// ValidationError is a client-side rejection raised before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Uploader is the part of the parsing API client used by the workflow.
type Uploader interface {
	Upload(ctx context.Context, in parserapi.UploadInput) (*parserapi.UploadResult, error)
}

// File is a locally selected file and the MIME type declared for it.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// State is the transient state of one upload attempt.
type State struct {
	File         *File
	Err          string
	InFlight     bool
	Result       *types.ResumeRecord
	Raw          json.RawMessage
	Notification *notify.Notification
}

// Workflow submits selected files to the parsing API.
type Workflow struct {
	uploader Uploader
}

// NewWorkflow creates a workflow backed by uploader.
func NewWorkflow(uploader Uploader) *Workflow {
	return &Workflow{uploader: uploader}
}

// SelectFile records the user's file choice. Files with any declared type other
// than PDF or DOCX are refused and clear the current selection.
func SelectFile(state *State, file *File) error {
	if file == nil || !types.AcceptedType(file.ContentType) {
		state.File = nil
		state.Err = MsgInvalidType
		return &ValidationError{Field: "file", Message: MsgInvalidType}
	}
	state.File = file
	state.Err = ""
	return nil
}

// Submit sends the selected file for userID to the parsing API exactly once.
// On success the extracted record is stored in state unchanged. Any failure is
// terminal for the attempt and leaves no result behind.
func (w *Workflow) Submit(ctx context.Context, state *State, userID string) (*types.ResumeRecord, error) {
	if state.File == nil {
		state.Err = MsgNoFile
		return nil, &ValidationError{Field: "file", Message: MsgNoFile}
	}

	req := types.UploadRequest{
		Filename:    state.File.Name,
		ContentType: state.File.ContentType,
		UserID:      userID,
	}
	if err := req.Validate(); err != nil {
		verr := toValidationError(err)
		state.Err = verr.Message
		return nil, verr
	}

	state.InFlight = true
	state.Err = ""
	state.Result = nil
	state.Raw = nil
	state.Notification = nil
	defer func() { state.InFlight = false }()

	res, err := w.uploader.Upload(ctx, parserapi.UploadInput{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		UserID:      req.UserID,
		Body:        state.File.Content,
	})
	if err != nil {
		var apiErr *parserapi.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
			state.Err = fmt.Sprintf("File upload failed: %s. Please try again.", apiErr.Message)
			state.Notification = notify.Failure("Upload Failed!", "Error: "+apiErr.Message)
		} else {
			state.Err = MsgTransportError
			state.Notification = notify.Failure("Upload Error!", "An unexpected error occurred during upload.")
		}
		log.Printf("[upload] user=%s file=%q failed: %v", userID, req.Filename, err)
		return nil, err
	}

	state.Result = res.Record
	state.Raw = res.Raw
	state.Notification = notify.Success("Resume Parsed!", "The resume data has been extracted successfully.")
	log.Printf("[upload] user=%s file=%q parsed candidate=%q", userID, req.Filename, res.Record.CandidateName)
	return res.Record, nil
}

// toValidationError maps validator field failures to the messages shown to the user.
func toValidationError(err error) *ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "request", Message: err.Error()}
	}

	switch fieldErrs[0].Field() {
	case "Filename":
		return &ValidationError{Field: "file", Message: MsgNoFile}
	case "ContentType":
		return &ValidationError{Field: "file", Message: MsgInvalidType}
	case "UserID":
		return &ValidationError{Field: "user_id", Message: MsgMissingIdentity}
	default:
		return &ValidationError{Field: fieldErrs[0].Field(), Message: fieldErrs[0].Error()}
	}
}
