package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bacoco/la-famille-agentui/internal/chat"
	"github.com/bacoco/la-famille-agentui/internal/config"
	"github.com/bacoco/la-famille-agentui/internal/presets"
	"github.com/bacoco/la-famille-agentui/internal/transport"
	"github.com/bacoco/la-famille-agentui/internal/types"
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("agent", "Maman", "agent name to talk to")
	chatCmd.Flags().Bool("new", false, "start a fresh conversation")
	chatCmd.Flags().Bool("no-stream", false, "wait for the full response instead of streaming")
}

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a message to an agent",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		st, err := openStores(cfg)
		if err != nil {
			return err
		}
		st.agents.SeedPresets(presets.Agents())

		agentName, _ := cmd.Flags().GetString("agent")
		agent := findAgentByName(st, agentName)
		if agent == nil {
			return fmt.Errorf("agent not found: %s", agentName)
		}

		if fresh, _ := cmd.Flags().GetBool("new"); fresh {
			st.conversations.CreateConversation(agent.ID)
		}

		message := strings.Join(args, " ")
		client := newTransportClient(cfg)

		if noStream, _ := cmd.Flags().GetBool("no-stream"); noStream {
			return sendWithoutStreaming(cmd, st, client, agent, message)
		}

		orch := chat.NewOrchestrator(st.conversations, st.agents, st.backends, client)
		err = orch.SendMessage(cmd.Context(), message, agent.ID, chat.WithDelta(func(delta string) {
			fmt.Fprint(os.Stdout, delta)
		}))
		fmt.Fprintln(os.Stdout)
		return err
	},
}

func findAgentByName(st *stores, name string) *types.Agent {
	for _, a := range st.agents.List() {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}

func newTransportClient(cfg *config.Config) *transport.Client {
	if cfg.Proxy.URL != "" {
		return transport.NewWithProxy(cfg.Proxy.URL)
	}
	return transport.New()
}

// sendWithoutStreaming runs a blocking completion and records both sides
// of the exchange in the conversation store.
func sendWithoutStreaming(cmd *cobra.Command, st *stores, client *transport.Client, agent *types.Agent, message string) error {
	backend := st.backends.Get(agent.BackendID)
	if backend == nil {
		backend = st.backends.Default()
	}
	if backend == nil {
		return fmt.Errorf("no backend available")
	}

	convID := st.conversations.ActiveID()
	if convID == "" {
		convID = st.conversations.CreateConversation(agent.ID)
	}
	st.conversations.AddMessage(convID, types.Message{Role: types.RoleUser, Content: message})

	var messages []transport.ChatMessage
	if agent.SystemPrompt != "" {
		messages = append(messages, transport.ChatMessage{Role: "system", Content: agent.SystemPrompt})
	}
	conv := st.conversations.Get(convID)
	for _, msg := range conv.Messages {
		if msg.Role == types.RoleSystem {
			continue
		}
		messages = append(messages, transport.ChatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	resp, err := client.Completion(cmd.Context(), backend, &transport.CompletionRequest{
		Model:       agent.Model,
		Messages:    messages,
		Temperature: &agent.Temperature,
		MaxTokens:   agent.MaxTokens,
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("backend returned no choices")
	}

	content := resp.Choices[0].Message.Content
	st.conversations.AddMessage(convID, types.Message{
		Role:    types.RoleAssistant,
		Content: content,
		AgentID: agent.ID,
	})
	fmt.Fprintln(os.Stdout, content)
	return nil
}
