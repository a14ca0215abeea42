package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/pelletier/go-toml/v2"

	"bizchat/internal/app"
	"bizchat/internal/chat"
	"bizchat/internal/client"
	"bizchat/internal/config"
	"bizchat/internal/logging"
	"bizchat/internal/store"
	"bizchat/internal/types"
)

const usageText = `bizchat is a terminal client for the marketplace chat backend.

Usage:
  bizchat <command> [flags]

Commands:
  ui             run the interactive chat UI
  conversations  list the viewer's conversations
  history        print the message history with one partner
  send           send a single message
  config         print the effective configuration
  help           show help

Flags:
  -h, --help   show help

Examples:
  bizchat ui --viewer 7
  bizchat conversations --viewer 7
  bizchat history --viewer 7 --partner 9
  bizchat send --viewer 7 --partner 9 "is this still available?"
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	case "ui":
		exitOnErr("ui", runUI(args[1:]))
	case "conversations":
		exitOnErr("conversations", runConversations(args[1:]))
	case "history":
		exitOnErr("history", runHistory(args[1:]))
	case "send":
		exitOnErr("send", runSend(args[1:]))
	case "config":
		exitOnErr("config", runConfig(args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runUI(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	viewer := fs.Int64("viewer", 0, "viewer user id (defaults to the last session)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	statePath, err := config.StatePath()
	if err != nil {
		return err
	}
	appState := store.NewFileAppStateStore(statePath)

	viewerID := *viewer
	if viewerID <= 0 {
		state, err := appState.Load(context.Background())
		if err != nil {
			return err
		}
		viewerID = state.ViewerUserID
	}
	if viewerID <= 0 {
		return fmt.Errorf("no viewer id: pass --viewer on first run")
	}

	log, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	rest, err := newRESTClient(cfg)
	if err != nil {
		return err
	}
	token, err := rest.Token()
	if err != nil {
		return err
	}
	realtime := client.NewRealtime(rest.BaseURL(), token, cfg.Transports(), log)
	defer realtime.Close()

	readStatePath, err := config.ReadStatePath()
	if err != nil {
		return err
	}
	readState, err := store.NewBoltReadStateStore(readStatePath)
	if err != nil {
		return err
	}
	defer readState.Close()

	return app.Run(app.NewClientAPI(rest, realtime), viewerID, app.Options{
		AppState:  appState,
		ReadState: readState,
		Logger:    log,
	})
}

func runConversations(args []string) error {
	fs := flag.NewFlagSet("conversations", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	viewer := fs.Int64("viewer", 0, "viewer user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *viewer <= 0 {
		return fmt.Errorf("--viewer is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rest, err := newRESTClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	entries, err := rest.ChatHistory(ctx, *viewer)
	if err != nil {
		return err
	}

	printConversations(os.Stdout, entries, *viewer)
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	viewer := fs.Int64("viewer", 0, "viewer user id")
	partner := fs.Int64("partner", 0, "conversation partner user id")
	asJSON := fs.Bool("json", false, "print raw JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *viewer <= 0 || *partner <= 0 {
		return fmt.Errorf("--viewer and --partner are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rest, err := newRESTClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	messages, err := rest.Messages(ctx, *viewer, *partner)
	if err != nil {
		return err
	}
	// The backend does not page; show the newest page_size messages.
	if limit := cfg.PageSize(); len(messages) > limit {
		messages = messages[:limit]
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(messages)
	}

	// Newest first on the wire; oldest first reads better in a terminal.
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		who := strconv.FormatInt(msg.SenderUserID, 10)
		if msg.SenderUserID == *viewer {
			who = "me"
		}
		fmt.Printf("%s  %s: %s\n", msg.CreatedAt.Local().Format("2006-01-02 15:04"), who, msg.Body)
	}
	return nil
}

func runSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	viewer := fs.Int64("viewer", 0, "viewer user id")
	partner := fs.Int64("partner", 0, "recipient user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *viewer <= 0 || *partner <= 0 {
		return fmt.Errorf("--viewer and --partner are required")
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: bizchat send --viewer <id> --partner <id> <text>")
	}
	text := fs.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rest, err := newRESTClient(cfg)
	if err != nil {
		return err
	}
	token, err := rest.Token()
	if err != nil {
		return err
	}

	log, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	realtime := client.NewRealtime(rest.BaseURL(), token, cfg.Transports(), log)
	defer realtime.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return realtime.SendChat(ctx, client.SendChatRequest{
		SenderUserID:    *viewer,
		RecipientUserID: *partner,
		Message:         text,
	})
}

func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n%s", path, out)
	return nil
}

func printConversations(out io.Writer, entries []types.ChatHistoryEntry, viewerID int64) {
	writer := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "PARTNER\tNAME\tUPDATED\tLAST MESSAGE")
	for _, entry := range entries {
		partnerID := entry.SenderUserID
		if entry.SenderUserID == viewerID {
			partnerID = entry.RecipientUserID
		}
		name := chat.CounterpartParty(entry, partnerID).DisplayName()
		preview := runewidth.Truncate(entry.Preview, 48, "...")
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\n", partnerID, name, entry.UpdatedAt.Local().Format("2006-01-02 15:04"), preview)
	}
	_ = writer.Flush()
}

func newRESTClient(cfg config.Config) (*client.Client, error) {
	tokenPath, err := cfg.APITokenPath()
	if err != nil {
		return nil, err
	}
	return client.New(cfg.APIBaseURL(), tokenPath)
}

func openLogger(cfg config.Config) (logging.Logger, func(), error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, nil, err
	}
	path, err := config.LogPath()
	if err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	level := logging.ParseLevel(cfg.LogLevel())
	if cfg.StreamDebugEnabled() {
		level = logging.Debug
	}
	log := logging.New(file, level)
	return log, func() { _ = file.Close() }, nil
}

func exitOnErr(label string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}
