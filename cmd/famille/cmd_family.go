package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

func init() {
	rootCmd.AddCommand(familyCmd)
	familyCmd.AddCommand(familyListCmd, familyShowCmd, familyRemoveCmd)
}

var familyCmd = &cobra.Command{
	Use:   "family",
	Short: "Manage agent families",
}

var familyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List families",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}

		families := st.families.List()
		if len(families) == 0 {
			fmt.Println("No families. Build one with `famille genesis run`.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMEMBERS\tCREATED")
		for _, f := range families {
			fmt.Fprintf(w, "%s\t%s %s\t%d\t%s\n",
				f.ID,
				f.Emoji,
				f.Name,
				len(f.Members),
				f.CreatedAt.Format("2006-01-02"),
			)
		}
		return w.Flush()
	},
}

var familyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a family and its members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}

		family := st.families.Get(types.FamilyID(args[0]))
		if family == nil {
			return fmt.Errorf("family not found: %s", args[0])
		}

		fmt.Fprintf(os.Stdout, "%s %s\n%s\n\n", family.Emoji, family.Name, family.Description)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ORDER\tAGENT\tROLE")
		for _, m := range family.Members {
			name := string(m.AgentID)
			if agent := st.agents.Get(m.AgentID); agent != nil {
				name = agent.Name
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", m.Order, name, m.Role)
		}
		return w.Flush()
	},
}

var familyRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a family record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		if err := st.families.Remove(types.FamilyID(args[0])); err != nil {
			return fmt.Errorf("remove family: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Family %s removed.\n", args[0])
		return nil
	},
}
