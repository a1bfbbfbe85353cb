package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

func init() {
	rootCmd.AddCommand(conversationCmd)
	conversationCmd.AddCommand(
		conversationListCmd,
		conversationShowCmd,
		conversationPinCmd,
		conversationRenameCmd,
		conversationSwitchCmd,
		conversationRemoveCmd,
		conversationClearCmd,
	)
}

var conversationCmd = &cobra.Command{
	Use:     "conversation",
	Aliases: []string{"conv"},
	Short:   "Manage conversations",
}

var conversationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}

		conversations := st.conversations.List()
		if len(conversations) == 0 {
			fmt.Println("No conversations.")
			return nil
		}

		activeID := st.conversations.ActiveID()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tMESSAGES\tPINNED\tUPDATED\tACTIVE")
		for _, c := range conversations {
			fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%s\t%v\n",
				c.ID,
				c.Title,
				len(c.Messages),
				c.IsPinned,
				c.UpdatedAt.Format("2006-01-02 15:04"),
				c.ID == activeID,
			)
		}
		return w.Flush()
	},
}

var conversationShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a conversation (active one by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}

		var conv *types.Conversation
		if len(args) == 1 {
			conv = st.conversations.Get(types.ConversationID(args[0]))
		} else {
			conv = st.conversations.Active()
		}
		if conv == nil {
			return fmt.Errorf("conversation not found")
		}

		fmt.Fprintf(os.Stdout, "%s (%s)\n\n", conv.Title, conv.ID)
		for _, msg := range conv.Messages {
			marker := ""
			if msg.IsError {
				marker = " [error]"
			}
			fmt.Fprintf(os.Stdout, "%s%s: %s\n", msg.Role, marker, msg.Content)
		}
		return nil
	},
}

var conversationPinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Toggle a conversation's pin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		id := types.ConversationID(args[0])
		if st.conversations.Get(id) == nil {
			return fmt.Errorf("conversation not found: %s", args[0])
		}
		st.conversations.TogglePin(id)
		fmt.Fprintf(os.Stdout, "Pinned=%v for %s.\n", st.conversations.Get(id).IsPinned, args[0])
		return nil
	},
}

var conversationRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a conversation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		id := types.ConversationID(args[0])
		if st.conversations.Get(id) == nil {
			return fmt.Errorf("conversation not found: %s", args[0])
		}
		st.conversations.UpdateTitle(id, args[1])
		fmt.Fprintf(os.Stdout, "Conversation %s renamed.\n", args[0])
		return nil
	},
}

var conversationSwitchCmd = &cobra.Command{
	Use:   "switch <id>",
	Short: "Make a conversation active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		id := types.ConversationID(args[0])
		if st.conversations.Get(id) == nil {
			return fmt.Errorf("conversation not found: %s", args[0])
		}
		st.conversations.SetActive(id)
		fmt.Fprintf(os.Stdout, "Conversation %s is now active.\n", args[0])
		return nil
	},
}

var conversationRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		st.conversations.DeleteConversation(types.ConversationID(args[0]))
		fmt.Fprintf(os.Stdout, "Conversation %s removed.\n", args[0])
		return nil
	},
}

var conversationClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		st.conversations.ClearAll()
		fmt.Fprintln(os.Stdout, "All conversations removed.")
		return nil
	},
}
