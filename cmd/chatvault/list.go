package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheus3301/chatvault/internal/app"
)

func listCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported chats, most recently opened first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, app.Overrides{})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(ctx) }()

			chats, err := a.DB.ListChats(limit, 0)
			if err != nil {
				return err
			}
			if len(chats) == 0 {
				fmt.Println("No chats imported yet. Run 'chatvault import'.")
				return nil
			}
			for _, c := range chats {
				kind := "direct"
				if c.IsGroup {
					kind = "group"
				}
				fmt.Printf("%s  %-30q %-6s %6d messages  opened %s\n",
					c.ID, c.Name, kind, c.MessageCount,
					time.UnixMilli(c.LastOpenedAt).Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum chats to list")
	return cmd
}
