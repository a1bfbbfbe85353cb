package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bacoco/la-famille-agentui/internal/presets"
	"github.com/bacoco/la-famille-agentui/internal/types"
)

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.AddCommand(agentListCmd, agentAddCmd, agentRemoveCmd)

	agentAddCmd.Flags().String("name", "", "agent name (required)")
	agentAddCmd.Flags().String("model", "", "model name (required)")
	agentAddCmd.Flags().String("backend", "", "backend ID (defaults to the default backend)")
	agentAddCmd.Flags().String("emoji", "🤖", "display emoji")
	agentAddCmd.Flags().String("system-prompt", "", "system prompt")
	agentAddCmd.Flags().Float64("temperature", 0.7, "sampling temperature")
	agentAddCmd.Flags().Int("max-tokens", 4096, "max completion tokens")
	_ = agentAddCmd.MarkFlagRequired("name")
	_ = agentAddCmd.MarkFlagRequired("model")
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage chat agents",
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		st.agents.SeedPresets(presets.Agents())

		agents := st.agents.List()
		if len(agents) == 0 {
			fmt.Println("No agents configured.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMODEL\tBACKEND\tPRESET")
		for _, a := range agents {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%v\n",
				a.ID,
				a.Emoji,
				a.Name,
				a.Model,
				a.BackendID,
				a.IsPreset,
			)
		}
		return w.Flush()
	},
}

var agentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a custom agent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		model, _ := cmd.Flags().GetString("model")
		backendID, _ := cmd.Flags().GetString("backend")
		emoji, _ := cmd.Flags().GetString("emoji")
		systemPrompt, _ := cmd.Flags().GetString("system-prompt")
		temperature, _ := cmd.Flags().GetFloat64("temperature")
		maxTokens, _ := cmd.Flags().GetInt("max-tokens")

		if backendID == "" {
			def := st.backends.Default()
			if def == nil {
				return fmt.Errorf("no default backend; pass --backend")
			}
			backendID = string(def.ID)
		}

		id := st.agents.Add(types.Agent{
			Name:         name,
			Emoji:        emoji,
			BackendID:    types.BackendID(backendID),
			Model:        model,
			SystemPrompt: systemPrompt,
			Temperature:  temperature,
			MaxTokens:    maxTokens,
		})
		fmt.Fprintf(os.Stdout, "Agent %q added (%s).\n", name, id)
		return nil
	},
}

var agentRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a custom agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		if err := st.agents.Remove(types.AgentID(args[0])); err != nil {
			return fmt.Errorf("remove agent: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Agent %q removed.\n", args[0])
		return nil
	},
}
