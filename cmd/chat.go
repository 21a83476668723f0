package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/negokart/negokart-cli/internal"
	"github.com/spf13/cobra"
)

var chatSend string

var chatCmd = &cobra.Command{
	Use:   "chat <session-id>",
	Short: "Show a session's negotiation chat, optionally sending a message",
	Long: `Show the chat transcript of one negotiation session. With --send, the
message goes to the negotiation agent first and the refreshed transcript is
shown after its reply; any status change the message caused (the agent
finalizing the deal) is picked up.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}

		_, client, _, err := authedClient()
		if err != nil {
			return err
		}
		view := internal.NewSessionView(client)

		if strings.TrimSpace(chatSend) != "" {
			view.SetChatInput(sessionID, chatSend)
			if err := view.SendChat(cmd.Context(), sessionID); err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}
		} else if err := view.FetchChat(cmd.Context(), sessionID); err != nil {
			return fmt.Errorf("failed to fetch chat: %w", err)
		}

		chat := view.ChatStateFor(sessionID)
		fmt.Println(titleStyle.Render(fmt.Sprintf("Session #%d chat", sessionID)))
		status := pendingStyle.Render(string(chat.Status))
		if chat.Status.Finalized() {
			status = finalizedStyle.Render(string(chat.Status))
		}
		fmt.Printf("Status: %s\n\n", status)

		if len(chat.Messages) == 0 {
			fmt.Println("No messages yet.")
			return nil
		}
		for _, m := range chat.Messages {
			stamp := m.CreatedAt
			if t, err := time.Parse(time.RFC3339, m.CreatedAt); err == nil {
				stamp = t.Local().Format("15:04:05")
			}
			fmt.Printf("%s %s\n", dimStyle.Render(strings.ToUpper(m.Role)+" · "+stamp), m.Content)
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSend, "send", "", "Message to send before showing the transcript")
	rootCmd.AddCommand(chatCmd)
}
