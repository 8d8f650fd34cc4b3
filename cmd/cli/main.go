// Command cli inspects and maintains the bot's storage file offline.
//
//	cli [-storage datastore.json] stats
//	cli guilds
//	cli guild <id>
//	cli [-older 24h] prune
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sudosnok/owopondbot/internal/logger"
	"github.com/sudosnok/owopondbot/internal/storage"
)

func main() {
	path := flag.String("storage", envOr("STORAGE_PATH", "datastore.json"), "storage file")
	older := flag.Duration("older", storage.PendingTTL, "prune: drop pending graphs untouched for this long")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: cli [flags] stats|guilds|guild <id>|prune")
		flag.PrintDefaults()
	}
	flag.Parse()
	logger.Setup(logger.Options{Level: "warn"})

	store, err := storage.New(*path)
	if err != nil {
		log.Fatal().Err(err).Str("path", *path).Msg("open storage")
	}
	defer store.Close()

	if err := run(store, flag.Args(), *older); err != nil {
		log.Error().Err(err).Msg("cli")
		store.Close()
		os.Exit(1)
	}
}

func run(store *storage.Storage, args []string, older time.Duration) error {
	if len(args) == 0 {
		flag.Usage()
		return fmt.Errorf("missing command")
	}
	switch args[0] {
	case "stats":
		return printJSON(store.Stats())
	case "guilds":
		for _, id := range store.GuildIDs() {
			fmt.Println(id)
		}
		return nil
	case "guild":
		if len(args) < 2 {
			return fmt.Errorf("guild: missing id")
		}
		r, err := store.Guild(args[1])
		if err != nil {
			return err
		}
		return printJSON(r)
	case "prune":
		n, err := store.PrunePending(time.Now().Add(-older))
		if err != nil {
			return err
		}
		fmt.Printf("dropped %d pending graph lists\n", n)
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
