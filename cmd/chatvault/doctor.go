package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matheus3301/chatvault/internal/config"
	"github.com/matheus3301/chatvault/internal/store"
	"github.com/matheus3301/chatvault/internal/vault"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify vault layout, config, database, and FTS",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("=== Vault ===")
			checkDir("base", vault.BaseDir())
			checkDir("logs", vault.LogDir())

			fmt.Println("\n=== Config ===")
			fmt.Printf("  Path: %s\n", vault.ConfigPath())
			cfg, err := config.Load(vault.ConfigPath())
			if err != nil {
				fmt.Printf("  Status: UNREADABLE (%v)\n", err)
				cfg = config.Default()
			} else {
				fmt.Println("  Status: ok")
			}
			fmt.Printf("  Parse chunk: %d lines, write batch: %d, delete batch: %d\n",
				cfg.Import.ParseChunkLines, cfg.Import.WriteBatchSize, cfg.Import.DeleteBatchSize)

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", vault.DBPath())
			if _, err := os.Stat(vault.DBPath()); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'chatvault import' first)")
				return nil
			}

			db, err := store.Open(vault.DBPath())
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			res, err := db.Migrate()
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Printf("  Schema version: %d\n", res.Version)

			chats, err := db.ListChats(10000, 0)
			if err != nil {
				return fmt.Errorf("list chats: %w", err)
			}
			fmt.Printf("  Chats: %d\n", len(chats))

			totalMsgs, totalBlobs := 0, 0
			for _, c := range chats {
				n, err := db.CountMessages(c.ID)
				if err != nil {
					return fmt.Errorf("count messages: %w", err)
				}
				b, err := db.CountMediaBlobs(c.ID)
				if err != nil {
					return fmt.Errorf("count media: %w", err)
				}
				totalMsgs += n
				totalBlobs += b
				if n != c.MessageCount {
					fmt.Printf("  WARNING: chat %s records %d messages but holds %d\n", c.ID, c.MessageCount, n)
				}
			}
			fmt.Printf("  Messages: %d\n", totalMsgs)
			fmt.Printf("  Media blobs: %d\n", totalBlobs)

			fmt.Println("\n=== FTS ===")
			var ftsCount int
			if err := db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&ftsCount); err != nil {
				fmt.Printf("  FTS error: %v\n", err)
			} else {
				fmt.Printf("  FTS entries: %d\n", ftsCount)
				if ftsCount != totalMsgs {
					fmt.Printf("  WARNING: FTS entries (%d) out of sync with messages (%d)\n", ftsCount, totalMsgs)
				}
			}
			return nil
		},
	}
}

func checkDir(name, path string) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		fmt.Printf("  %-5s %s (missing)\n", name, path)
	case err != nil:
		fmt.Printf("  %-5s %s (error: %v)\n", name, path, err)
	case !info.IsDir():
		fmt.Printf("  %-5s %s (not a directory)\n", name, path)
	default:
		fmt.Printf("  %-5s %s (ok)\n", name, path)
	}
}
