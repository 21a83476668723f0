package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/negokart/negokart-cli/internal/mockapi"
	"github.com/spf13/cobra"
)

var demoAddr string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Demo and development helpers",
}

var demoServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local in-memory demo backend",
	Long: `Run a local stand-in for the NegoKart backend with in-memory state, a
scripted negotiation agent, and unsigned demo tokens. Nothing survives a
restart and nothing about it is secure; it exists so the client can be tried
without the real backend.

Seeded accounts:
  retailer   / retailer123   (retailer)
  wholesaler / wholesaler123 (wholesaler)
  testuser   / testpass      (retailer)

Point the client at it with --api or NEGOKART_API_BASE.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := &http.Server{
			Addr:    demoAddr,
			Handler: mockapi.NewServer().Handler(),
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()

		fmt.Printf("Demo backend listening on %s (Ctrl-C to stop)\n", demoAddr)
		fmt.Println("DEMO MODE: in-memory state, unsigned tokens, scripted negotiator")

		select {
		case err := <-errCh:
			return fmt.Errorf("demo backend failed: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		fmt.Println("\nStopped.")
		return nil
	},
}

func init() {
	demoServeCmd.Flags().StringVar(&demoAddr, "addr", "127.0.0.1:8000", "Address to listen on")
	demoCmd.AddCommand(demoServeCmd)
	rootCmd.AddCommand(demoCmd)
}
