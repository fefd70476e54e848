package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonathan/resume-parser-web/internal/observability"
	"github.com/jonathan/resume-parser-web/internal/upload"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload one resume to the parsing service",
	Long:  "Upload a PDF or DOCX resume for the signed-in user and print the extracted data.",
	RunE:  runUpload,
}

var (
	uploadFile  string
	uploadToken string
)

func init() {
	uploadCmd.Flags().StringVarP(&uploadFile, "file", "f", "", "Path to the resume file (required)")
	uploadCmd.Flags().StringVar(&uploadToken, "token", "", "Session token (defaults to SESSION_TOKEN)")
	_ = uploadCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(uploadCmd)
}

// declaredType returns the MIME type detected from the file's content, without parameters.
func declaredType(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	ct, _, _ := strings.Cut(mt.String(), ";")
	return strings.TrimSpace(ct), nil
}

func runUpload(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := identityFromToken(uploadToken, &cfg.Session)
	if err != nil {
		return err
	}
	client, err := newParserClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create parser API client: %w", err)
	}

	contentType, err := declaredType(uploadFile)
	if err != nil {
		return err
	}

	f, err := os.Open(uploadFile)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", uploadFile, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", uploadFile, err)
	}

	state := &upload.State{}
	if err := upload.SelectFile(state, &upload.File{
		Name:        filepath.Base(uploadFile),
		ContentType: contentType,
		Size:        info.Size(),
		Content:     f,
	}); err != nil {
		return fmt.Errorf("%s (detected %s)", state.Err, contentType)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	_, err = upload.NewWorkflow(client).Submit(cmd.Context(), state, id.UserID)
	printer.PrintNotification(state.Notification)
	if err != nil {
		return fmt.Errorf("%s", state.Err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, state.Raw, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(state.Raw)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return nil
}
