package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ixbrlcheck/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation API over HTTP",
	Long: `Serve exposes the engine over HTTP:

  GET  /healthz
  GET  /v1/profiles
  GET  /v1/rules?profile=ESEF
  POST /v1/validate?profile=ESEF&parser=xml&source=name   (raw filing as body)
  GET  /v1/history, GET /v1/history/{documentID}           (with --db)

Request bodies are limited to parser.max_bytes.

Example:
  ixbrlcheck serve --addr :8080
  curl --data-binary @report.xhtml 'localhost:8080/v1/validate?profile=ESEF'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addEngineFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	log := newLogger(cfg)

	p, st, closeStore, err := openPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var history server.History
	if st != nil {
		history = st
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "ixbrlcheck API listening on %s (default profile %s)\n", cfg.Server.Addr, p.Engine().DefaultProfile())
	if err := server.New(p, history, log).Run(ctx, cfg.Server); err != nil {
		return err
	}
	if ctx.Err() != nil && cmd.Context().Err() == nil {
		fmt.Fprintln(os.Stderr, "✓ Server stopped")
	}
	return nil
}
