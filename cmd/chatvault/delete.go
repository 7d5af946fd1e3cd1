package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheus3301/chatvault/internal/app"
	"github.com/matheus3301/chatvault/internal/importer"
)

func deleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a chat and all of its messages and media",
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

			if !force {
				fmt.Printf("Delete %q (%d messages)? [y/N] ", chat.Name, chat.MessageCount)
				reader := bufio.NewReader(os.Stdin)
				line, _ := reader.ReadString('\n')
				if strings.TrimSpace(strings.ToLower(line)) != "y" {
					fmt.Println("aborted")
					return nil
				}
			}

			ch, unsub := a.Bus.Subscribe("delete.", 256)
			quit := make(chan struct{})
			done := make(chan struct{})
			go func() {
				defer close(done)
				report := func(p importer.Progress) {
					fmt.Fprintf(os.Stderr, "  deleting %d%% (%d/%d)\n", p.Percent, p.Processed, p.Total)
				}
				for {
					select {
					case evt := <-ch:
						if p, ok := evt.Payload.(importer.Progress); ok {
							report(p)
						}
					case <-quit:
						for {
							select {
							case evt := <-ch:
								if p, ok := evt.Payload.(importer.Progress); ok {
									report(p)
								}
							default:
								return
							}
						}
					}
				}
			}()

			sum, err := a.Engine.Delete(ctx, args[0])
			unsub()
			close(quit)
			<-done
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %q: %d messages removed\n", chat.Name, sum.Messages)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")
	return cmd
}
