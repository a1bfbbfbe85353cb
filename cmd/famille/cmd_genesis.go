package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bacoco/la-famille-agentui/internal/genesis"
	"github.com/bacoco/la-famille-agentui/internal/types"
)

func init() {
	rootCmd.AddCommand(genesisCmd)
	genesisCmd.AddCommand(genesisRunCmd, genesisStatusCmd, genesisResetCmd)

	genesisRunCmd.Flags().Bool("no-register", false, "skip backend registration after a successful build")
}

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Build a new agent family",
}

var genesisRunCmd = &cobra.Command{
	Use:   "run <spec.json>",
	Short: "Submit a family spec and follow the build pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read spec file: %w", err)
		}
		var spec types.FamilyCreationRequest
		if err := json.Unmarshal(data, &spec); err != nil {
			return fmt.Errorf("parse spec file: %w", err)
		}

		st.genesis.ResetWizard()
		st.genesis.SetIdentity(spec.Name, spec.DisplayName, spec.Emoji, spec.Description)
		st.genesis.SetCapabilities(spec.Capabilities)
		st.genesis.SetOutputs(spec.Outputs)
		st.genesis.SetSchedule(spec.Schedule)
		for _, agent := range spec.Agents {
			st.genesis.AddAgent(agent)
		}

		runner := genesis.NewRunner(st.genesis, st.backends, st.agents, st.families)

		// Ctrl-C aborts the run instead of killing the process mid-write.
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			<-sigChan
			runner.Abort()
		}()

		if err := runner.Start(cmd.Context(), cfg.Genesis.URL, cfg.Genesis.Token); err != nil {
			return err
		}

		for _, entry := range st.genesis.Logs() {
			fmt.Fprintf(os.Stdout, "[%s] %s: %s\n", entry.Stage, entry.Level, entry.Message)
		}

		switch st.genesis.PipelineStatus() {
		case types.PipelineComplete:
			result := st.genesis.Result()
			fmt.Fprintf(os.Stdout, "Family %q built (port %d).\n", spec.DisplayName, result.Port)
			if noRegister, _ := cmd.Flags().GetBool("no-register"); !noRegister {
				if backendID, ok := runner.RegisterCreatedFamily(); ok {
					fmt.Fprintf(os.Stdout, "Registered backend %s with %d agents.\n", backendID, len(spec.Agents))
				}
			}
		case types.PipelineError:
			result := st.genesis.Result()
			if result != nil && result.Error != "" {
				return fmt.Errorf("family build failed: %s", result.Error)
			}
			return fmt.Errorf("family build failed")
		case types.PipelineIdle:
			fmt.Fprintln(os.Stdout, "Build aborted.")
		}
		return nil
	},
}

var genesisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last pipeline run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}

		status := st.genesis.PipelineStatus()
		fmt.Fprintf(os.Stdout, "Pipeline: %s\n", status)
		if id := st.genesis.PipelineID(); id != "" {
			fmt.Fprintf(os.Stdout, "ID: %s\n", id)
		}

		logs := st.genesis.Logs()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STAGE\tSTATUS")
		for _, stage := range genesis.Stages() {
			fmt.Fprintf(w, "%s\t%s\n", stage, genesis.StageState(stage, logs, status))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if n := len(logs); n > 0 {
			fmt.Fprintln(os.Stdout, "\nRecent logs:")
			start := n - 10
			if start < 0 {
				start = 0
			}
			for _, entry := range logs[start:] {
				fmt.Fprintf(os.Stdout, "[%s] %s: %s\n", entry.Stage, entry.Level, entry.Message)
			}
		}

		if result := st.genesis.Result(); result != nil {
			if result.Error != "" {
				fmt.Fprintf(os.Stdout, "\nError: %s\n", result.Error)
			} else if result.Port != 0 {
				fmt.Fprintf(os.Stdout, "\nServing on port %d (%s)\n", result.Port, result.FamilyDir)
			}
		}
		return nil
	},
}

var genesisResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Abort any run and clear the wizard draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		genesis.NewRunner(st.genesis, st.backends, st.agents, st.families).Abort()
		st.genesis.ResetWizard()
		fmt.Fprintln(os.Stdout, "Genesis state reset.")
		return nil
	},
}
