package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/resume-parser-web/internal/dashboard"
	"github.com/jonathan/resume-parser-web/internal/server"
	"github.com/jonathan/resume-parser-web/internal/server/ratelimit"
	"github.com/jonathan/resume-parser-web/internal/upload"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web client",
	Long:  `Start an HTTP server with the upload page, the resume dashboard and their JSON endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT and the config file)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	client, err := newParserClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create parser API client: %w", err)
	}

	jwtService := server.NewJWTService(&cfg.Session)

	admins := cfg.AdminUserIDs
	if len(admins) == 0 {
		admins = []string{dashboard.LegacyAdminUserID}
	}

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		SignInURL:      cfg.SignInURL,
		SignUpURL:      cfg.SignUpURL,
		AllowedOrigins: cfg.AllowedOrigins,
	}, server.Deps{
		Parser:     client,
		Tokens:     jwtService.AsTokenValidator(),
		Authorizer: dashboard.NewAuthorizer(admins),
		Views:      dashboard.NewStore(cfg.ViewTTL.Std(), dashboard.DefaultCleanupInterval),
		Guard:      upload.NewGuard(),
		Limiter:    ratelimit.NewLimiter(ratelimit.LoadConfig(os.Getenv)),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
