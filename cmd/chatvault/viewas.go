package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheus3301/chatvault/internal/app"
)

func viewAsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view-as <chat-id> [participant]",
		Short: "Set which participant 'show' should render as the local side",
		Long: `Sets the point of view used when rendering a chat. Messages from the
chosen participant are marked as sent, everyone else's as received.
Omit the participant to clear the point of view.`,
		Args: cobra.RangeArgs(1, 2),
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

			pov := ""
			if len(args) == 2 {
				pov = args[1]
				senders, err := a.DB.ListSenders(chat.ID)
				if err != nil {
					return err
				}
				if !containsString(senders, pov) {
					return fmt.Errorf("%q is not a participant of %q (known: %v)", pov, chat.Name, senders)
				}
			}

			chat.ViewAs = pov
			if err := a.DB.ReplaceChat(chat); err != nil {
				return err
			}
			if pov == "" {
				fmt.Printf("Cleared point of view for %q\n", chat.Name)
			} else {
				fmt.Printf("Viewing %q as %q\n", chat.Name, pov)
			}
			return nil
		},
	}
	return cmd
}

func containsString(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
