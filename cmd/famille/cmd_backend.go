package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bacoco/la-famille-agentui/internal/health"
	"github.com/bacoco/la-famille-agentui/internal/types"
)

func init() {
	rootCmd.AddCommand(backendCmd)
	backendCmd.AddCommand(backendListCmd, backendAddCmd, backendRemoveCmd, backendDefaultCmd, backendCheckCmd)

	backendAddCmd.Flags().String("name", "", "backend name (required)")
	backendAddCmd.Flags().String("url", "", "base URL, e.g. http://localhost:3100/v1 (required)")
	backendAddCmd.Flags().String("token", "", "bearer token")
	backendAddCmd.Flags().Int("timeout-ms", 120000, "request timeout in milliseconds")
	backendAddCmd.Flags().Bool("default", false, "make this the default backend")
	_ = backendAddCmd.MarkFlagRequired("name")
	_ = backendAddCmd.MarkFlagRequired("url")
}

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Manage API backends",
}

var backendListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured backends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}

		backends := st.backends.List()
		if len(backends) == 0 {
			fmt.Println("No backends configured.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tURL\tDEFAULT\tHEALTH\tMODELS")
		for _, b := range backends {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\t%s\n",
				b.ID,
				b.Name,
				b.BaseURL,
				b.IsDefault,
				b.HealthStatus,
				strings.Join(b.Models, ","),
			)
		}
		return w.Flush()
	},
}

var backendAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		url, _ := cmd.Flags().GetString("url")
		token, _ := cmd.Flags().GetString("token")
		timeoutMs, _ := cmd.Flags().GetInt("timeout-ms")
		makeDefault, _ := cmd.Flags().GetBool("default")

		id, err := st.backends.Add(types.APIBackend{
			Name:      name,
			BaseURL:   url,
			AuthToken: token,
			TimeoutMs: timeoutMs,
		})
		if err != nil {
			return fmt.Errorf("add backend: %w", err)
		}
		if makeDefault {
			if err := st.backends.SetDefault(id); err != nil {
				return err
			}
		}
		fmt.Fprintf(os.Stdout, "Backend %q added (%s).\n", name, id)
		return nil
	},
}

var backendRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		if err := st.backends.Remove(types.BackendID(args[0])); err != nil {
			return fmt.Errorf("remove backend: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Backend %q removed.\n", args[0])
		return nil
	},
}

var backendDefaultCmd = &cobra.Command{
	Use:   "default <id>",
	Short: "Make a backend the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		if err := st.backends.SetDefault(types.BackendID(args[0])); err != nil {
			return fmt.Errorf("set default backend: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Backend %q is now the default.\n", args[0])
		return nil
	},
}

var backendCheckCmd = &cobra.Command{
	Use:   "check [id]",
	Short: "Probe backend health now",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}

		monitor := health.New(st.backends, newTransportClient(cfg), time.Minute, cfg.Health.MaxConcurrentProbes)
		if len(args) == 1 {
			status := monitor.Check(cmd.Context(), types.BackendID(args[0]))
			fmt.Fprintf(os.Stdout, "%s: %s\n", args[0], status)
			return nil
		}

		monitor.CheckAll(cmd.Context())
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tHEALTH")
		for _, b := range st.backends.List() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Name, b.HealthStatus)
		}
		return w.Flush()
	},
}
