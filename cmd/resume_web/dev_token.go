package main

import (
	"fmt"

	"github.com/jonathan/resume-parser-web/internal/server"
	"github.com/jonathan/resume-parser-web/internal/types"
	"github.com/spf13/cobra"
)

var devTokenCmd = &cobra.Command{
	Use:   "dev-token",
	Short: "Mint a session token for local development",
	Long:  "Sign a session token with SESSION_JWT_SECRET so the web client and CLI can be used without the hosted identity provider.",
	RunE:  runDevToken,
}

var (
	devTokenUser      string
	devTokenRole      string
	devTokenFirstName string
)

func init() {
	devTokenCmd.Flags().StringVar(&devTokenUser, "user", "", "User ID to put in the subject claim (required)")
	devTokenCmd.Flags().StringVar(&devTokenRole, "role", "", "Optional role claim, e.g. admin")
	devTokenCmd.Flags().StringVar(&devTokenFirstName, "first-name", "", "Optional first name shown in the greeting")
	_ = devTokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(devTokenCmd)
}

func runDevToken(cmd *cobra.Command, _ []string) error {
	session, err := loadSession()
	if err != nil {
		return err
	}

	token, err := server.NewJWTService(session).GenerateToken(types.Identity{
		UserID:    devTokenUser,
		Role:      devTokenRole,
		FirstName: devTokenFirstName,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
