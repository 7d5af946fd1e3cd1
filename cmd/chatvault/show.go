package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheus3301/chatvault/internal/app"
	"github.com/matheus3301/chatvault/internal/store"
)

func showCmd() *cobra.Command {
	var limit int
	var sender string
	cmd := &cobra.Command{
		Use:   "show <chat-id>",
		Short: "Show a chat's messages in timestamp order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, app.Overrides{})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(ctx) }()

			chat, err := a.DB.GetChat(args[0])
			if err != nil {
				return err
			}
			if chat == nil {
				return fmt.Errorf("chat %s not found", args[0])
			}

			// Whole-record replacement is the only chat mutation path.
			chat.LastOpenedAt = time.Now().UnixMilli()
			if err := a.DB.ReplaceChat(chat); err != nil {
				return err
			}

			var msgs []store.Message
			if sender != "" {
				msgs, err = a.DB.ListMessagesBySender(chat.ID, sender, limit)
			} else {
				msgs, err = a.DB.ListMessages(chat.ID, 0, "", limit)
			}
			if err != nil {
				return err
			}

			pov := chat.ViewAs
			for _, m := range msgs {
				printMessage(m, pov)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 200, "maximum messages to print")
	cmd.Flags().StringVar(&sender, "sender", "", "only messages from this sender")
	return cmd
}

// printMessage renders one message line; when a point of view is set,
// messages from that participant are marked as sent.
func printMessage(m store.Message, pov string) {
	ts := time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04:05")
	switch m.Kind {
	case "system":
		fmt.Printf("%s  -- %s\n", ts, m.Content)
	case "media":
		name := m.MediaFileName
		if name == "" {
			name = "(media not recovered)"
		}
		fmt.Printf("%s  %s%s: [%s] %s\n", ts, direction(m.Sender, pov), m.Sender, m.MediaKind, name)
	default:
		fmt.Printf("%s  %s%s: %s\n", ts, direction(m.Sender, pov), m.Sender, m.Content)
	}
}

func direction(sender, pov string) string {
	if pov == "" {
		return ""
	}
	if sender == pov {
		return "> "
	}
	return "< "
}
