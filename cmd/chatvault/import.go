package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matheus3301/chatvault/internal/app"
	"github.com/matheus3301/chatvault/internal/bus"
	"github.com/matheus3301/chatvault/internal/importer"
	"github.com/matheus3301/chatvault/internal/status"
)

func importCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "import <export.txt | folder | export.zip>",
		Short: "Import a chat export into the vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, app.Overrides{Strict: strict})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(ctx) }()

			ch, unsub := a.Bus.Subscribe("import.", 1024)
			quit := make(chan struct{})
			done := make(chan struct{})
			go func() {
				defer close(done)
				lastStage := status.Stage("")
				report := func(evt bus.Event) {
					switch payload := evt.Payload.(type) {
					case status.StageChange:
						fmt.Fprintf(os.Stderr, "stage: %s\n", payload.To)
					case importer.Progress:
						if payload.Stage != lastStage || payload.Percent == 100 {
							fmt.Fprintf(os.Stderr, "  %s %d%% (%d/%d)\n",
								payload.Stage, payload.Percent, payload.Processed, payload.Total)
							lastStage = payload.Stage
						}
					}
				}
				for {
					select {
					case evt := <-ch:
						report(evt)
					case <-quit:
						for {
							select {
							case evt := <-ch:
								report(evt)
							default:
								return
							}
						}
					}
				}
			}()

			sum, err := a.Engine.Import(ctx, args[0])
			unsub()
			close(quit)
			<-done
			if err != nil {
				return err
			}

			for _, w := range sum.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			kind := "direct"
			if sum.IsGroup {
				kind = "group"
			}
			fmt.Printf("Imported %q (%s): %d messages, %d media bound, %d media unmatched\n",
				sum.ChatName, kind, sum.Messages, sum.MediaMatched, sum.MediaUnmatched)
			fmt.Printf("Chat ID: %s\n", sum.ChatID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "reject exports with too few timestamped lines")
	return cmd
}
