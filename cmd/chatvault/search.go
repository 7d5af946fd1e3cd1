package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheus3301/chatvault/internal/app"
)

func searchCmd() *cobra.Command {
	var chatID string
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across imported messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, app.Overrides{})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(ctx) }()

			results, err := a.DB.SearchMessages(args[0], chatID, limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for _, r := range results {
				ts := time.UnixMilli(r.Message.Timestamp).Format("2006-01-02 15:04")
				fmt.Printf("%s  %s  %s: %s\n", r.Message.ChatID, ts, r.Message.Sender, r.Snippet)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "restrict search to one chat")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum results")
	return cmd
}
