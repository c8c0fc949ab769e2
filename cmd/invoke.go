// File: cmd/invoke.go
package cmd

import (
	"fmt"
	"io"
	"os"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/bigid-apps/quickstart/internal/execution"
	"github.com/bigid-apps/quickstart/internal/observability"
	"github.com/bigid-apps/quickstart/internal/service"
)

// newInvokeCmd runs one action outside the server, the way BigID would
// through the execute endpoint, and prints the response envelope.
func newInvokeCmd() *cobra.Command {
	var (
		file    string
		appName string
	)

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run one action from an execution context file and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("app") {
				cfg.SetServerApp(appName)
			}

			var in io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open execution context: %w", err)
				}
				defer f.Close()
				in = f
			}
			ec, err := execution.Decode(in)
			if err != nil {
				return err
			}

			components, err := service.NewComponentFactory().Create(cfg, observability.GetLogger())
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer components.Shutdown()

			res := components.Controller.Execute(cmd.Context(), ec)
			out, err := json.MarshalIndent(res.Response, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if res.Response.Status == execution.StatusError {
				return fmt.Errorf("action %q failed with HTTP status %d", ec.ActionName, res.StatusCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `execution context JSON file ("-" for stdin)`)
	cmd.Flags().StringVar(&appName, "app", "", "app to run the action in: dspm or simple (overrides server.app)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
