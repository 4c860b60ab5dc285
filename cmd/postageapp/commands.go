package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lattiq/postageapp"
	"github.com/lattiq/postageapp/inbound"
)

func newConfigCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration (secrets redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printSettings(w io.Writer, cfg *postageapp.Configuration) {
	settings := cfg.Settings()
	delete(settings, "logger")

	names := make([]string, 0, len(settings))
	for name := range settings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "%-20s %v\n", name, settings[name])
	}
	fmt.Fprintf(w, "%-20s %s\n", "url", cfg.URL())
}

func newCallCmd(flags *globalFlags) *cobra.Command {
	var uid string

	cmd := &cobra.Command{
		Use:   "call <method> [json-arguments]",
		Short: "Call an API method and print the response",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}

			arguments := map[string]any{}
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &arguments); err != nil {
					return fmt.Errorf("arguments must be a JSON object: %w", err)
				}
			}
			if uid != "" {
				arguments["uid"] = uid
			}

			client, err := postageapp.New(cfg)
			if err != nil {
				return err
			}

			resp, err := client.Send(cmd.Context(), args[0], arguments)
			if resp != nil {
				printResponse(cmd.OutOrStdout(), resp)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&uid, "uid", "", "use this UID instead of generating one")
	return cmd
}

func printResponse(w io.Writer, resp *postageapp.Response) {
	var status string
	switch resp.Status {
	case postageapp.StatusOK:
		status = color.GreenString(resp.Status.String())
	case postageapp.StatusFail:
		status = color.YellowString(resp.Status.String())
	default:
		status = color.RedString(resp.Status.String())
	}
	fmt.Fprintf(w, "status: %s\n", status)

	if resp.UID != "" {
		fmt.Fprintf(w, "uid:    %s\n", resp.UID)
	}
	switch {
	case resp.Data != nil:
		data, _ := json.MarshalIndent(resp.Data, "", "  ")
		fmt.Fprintf(w, "data:   %s\n", data)
	case len(resp.Body) > 0:
		fmt.Fprintf(w, "body:   %s\n", resp.Body)
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func newSignCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sign <file|->",
		Short: "Print the webhook signature of a payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}
			secret, err := cfg.RequirePostbackSecret()
			if err != nil {
				return err
			}
			body, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), postageapp.Sign(body, secret))
			return nil
		},
	}
}

func newVerifyCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file|-> <signature>",
		Short: "Check a webhook payload against its signature",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}
			body, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			ok, err := cfg.VerifyWebhook(body, args[1])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), color.RedString("invalid"))
				return errors.New("signature mismatch")
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("valid"))
			return nil
		},
	}
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	var (
		addr string
		dir  string
		path string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inbound email webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}

			var ingestor inbound.Ingestor = inbound.DirIngestor{Dir: dir}
			if dir == "" {
				out := cmd.OutOrStdout()
				ingestor = inbound.IngestorFunc(func(_ context.Context, message []byte) error {
					_, err := fmt.Fprintf(out, "%s\n", message)
					return err
				})
			}

			handler, err := inbound.New(cfg, ingestor, inbound.WithPath(path))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, addr, handler, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&dir, "dir", "", "write messages to this directory instead of stdout")
	cmd.Flags().StringVar(&path, "path", inbound.DefaultPath, "route to accept inbound email on")
	return cmd
}

func serve(ctx context.Context, addr string, handler http.Handler, cfg *postageapp.Configuration) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger := cfg.Logger()
	logger.Info("inbound server starting", "listen", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("inbound server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("inbound server error: %w", err)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), postageapp.GetVersionInfo().String())
		},
	}
}
