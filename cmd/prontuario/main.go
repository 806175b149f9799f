package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prontuario/prontuario/backend/go-services/internal/app"
	"github.com/prontuario/prontuario/backend/go-services/internal/config"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient/service"
	"github.com/prontuario/prontuario/backend/go-services/pkg/logger"
	"github.com/spf13/cobra"
)

// opener builds the service the commands run against and a cleanup func.
type opener func(ctx context.Context) (*service.Service, func(), error)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	// stdout carries command output
	logger.SetOutput(os.Stderr)
	logger.SetFormat("console")
	defer logger.Sync()

	if err := newRootCmd(openFromConfig).Execute(); err != nil {
		os.Exit(1)
	}
}

func openFromConfig(ctx context.Context) (*service.Service, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	res, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return service.New(res.Store), res.Close, nil
}

func newRootCmd(open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "prontuario",
		Short:        "Operator tools for the prontuario patient store",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(summaryCmd(open))
	rootCmd.AddCommand(remindersCmd(open))
	rootCmd.AddCommand(agendaCmd(open))
	rootCmd.AddCommand(exportCmd(open))
	return rootCmd
}

// withService opens the service for the duration of fn.
func withService(cmd *cobra.Command, open opener, fn func(ctx context.Context, svc *service.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func summaryCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the practice report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(ctx context.Context, svc *service.Service) error {
				rep, err := svc.Report(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rep)
			})
		},
	}
}

func remindersCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "Print pending reminders as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(ctx context.Context, svc *service.Service) error {
				rem, err := svc.Reminders(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rem)
			})
		},
	}
}

func agendaCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "agenda",
		Short: "Print today's and upcoming appointments as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, func(ctx context.Context, svc *service.Service) error {
				ag, err := svc.Agenda(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), ag)
			})
		},
	}
}

func exportCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every patient as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("unsupported format %q (want csv or xlsx)", format)
			}
			return withService(cmd, open, func(ctx context.Context, svc *service.Service) error {
				var (
					b   []byte
					err error
				)
				if format == "csv" {
					b, err = svc.ExportCSV(ctx)
				} else {
					b, err = svc.ExportXLSX(ctx)
				}
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(b)
					return err
				}
				if err := os.WriteFile(out, b, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				logger.Infof("exported %d bytes to %s", len(b), out)
				return nil
			})
		},
	}
	cmd.Flags().String("format", "csv", "Export format: csv or xlsx")
	cmd.Flags().String("out", "", "Output file (default stdout)")
	return cmd
}
