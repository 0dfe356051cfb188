package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/mertwole/bencode-cli/bencode"
	"github.com/mertwole/bencode-cli/config"
	"github.com/mertwole/bencode-cli/json_bridge"
	"github.com/mertwole/bencode-cli/torrent_info"
	"github.com/mertwole/bencode-cli/ui"
)

const interactiveLogFileName = "bencode-cli.log"

const usage = `Usage: bencode-cli <command> [flags] [arguments]

Commands:
  decode <input> <output>   convert a bencoded file to JSON
  encode <input> <output>   convert a JSON file to bencode
  info <torrent>            print a summary of a .torrent file
  view [file]               browse a bencoded file interactively
`

var errUsage = errors.New("invalid usage")

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#4D756F", Dark: "#A5FAEC"})
	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#2E6B38", Dark: "#66F27D"})
)

type command struct {
	name      string
	arguments string
	minArgs   int
	maxArgs   int
	run       func(cfg *config.Config, args []string, stdout io.Writer) error
}

var commands = []command{
	{name: "decode", arguments: "<input> <output>", minArgs: 2, maxArgs: 2, run: runDecode},
	{name: "encode", arguments: "<input> <output>", minArgs: 2, maxArgs: 2, run: runEncode},
	{name: "info", arguments: "<torrent>", minArgs: 1, maxArgs: 1, run: runInfo},
	{name: "view", arguments: "[file]", minArgs: 0, maxArgs: 1, run: runView},
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return errUsage
	}

	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.execute(args[1:], stdout)
		}
	}

	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(stdout, usage)
		return nil
	}

	fmt.Fprint(stdout, usage)
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

func (cmd command) execute(args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	flags.SetOutput(stdout)
	flags.Usage = func() {
		fmt.Fprintf(stdout, "Usage: bencode-cli %s [flags] %s\n\nFlags:\n", cmd.name, cmd.arguments)
		flags.PrintDefaults()
	}

	configPath := flags.String("config", "", "Path to a YAML configuration file")
	maxDepth := flags.Int("max-depth", 0, "Maximum nesting depth of lists and dictionaries (0 disables the limit)")
	strictKeys := flags.Bool("strict-keys", false, "Reject dictionaries with repeated keys")
	base64 := flags.Bool("base64", false, "Store byte strings as base64 in JSON")
	indent := flags.String("indent", "", "Indentation used for JSON output")
	logFile := flags.String("log-file", "", "Path to the log file")

	err := flags.Parse(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	cfg := config.Default()
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			return err
		}
	}

	if flags.Changed("max-depth") {
		cfg.MaxDepth = *maxDepth
	}
	if flags.Changed("strict-keys") {
		cfg.StrictKeys = *strictKeys
	}
	if flags.Changed("base64") {
		cfg.JSON.Bytes = config.BytesText
		if *base64 {
			cfg.JSON.Bytes = config.BytesBase64
		}
	}
	if flags.Changed("indent") {
		cfg.JSON.Indent = *indent
	}
	if flags.Changed("log-file") {
		cfg.LogFile = *logFile
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	positional := flags.Args()
	if len(positional) < cmd.minArgs || len(positional) > cmd.maxArgs {
		flags.Usage()
		return fmt.Errorf("%w: %s expects %s", errUsage, cmd.name, cmd.arguments)
	}

	if cfg.LogFile != "" {
		restore, err := redirectLog(cfg.LogFile)
		if err != nil {
			return err
		}
		defer restore()
	}

	return cmd.run(cfg, positional, stdout)
}

func redirectLog(path string) (func(), error) {
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	log.SetOutput(logFile)

	return func() {
		log.SetOutput(os.Stderr)
		logFile.Close()
	}, nil
}

func runDecode(cfg *config.Config, args []string, stdout io.Writer) error {
	decoded, err := bencode.DecodeFile(args[0], cfg.DecodeOptions()...)
	if err != nil {
		return err
	}
	log.Printf("decoded %s", args[0])

	err = json_bridge.SaveFile(args[1], decoded, cfg.JSONOptions()...)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Decoded bencode saved to %s\n", args[1])

	return nil
}

func runEncode(cfg *config.Config, args []string, stdout io.Writer) error {
	loaded, err := json_bridge.LoadFile(args[0], cfg.JSONOptions()...)
	if err != nil {
		return err
	}
	log.Printf("loaded %s", args[0])

	err = bencode.EncodeFile(args[1], loaded)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Encoded bencode saved to %s\n", args[1])

	return nil
}

func runInfo(cfg *config.Config, args []string, stdout io.Writer) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", args[0], err)
	}
	defer file.Close()

	info, err := torrent_info.Decode(bufio.NewReader(file), cfg.DecodeOptions()...)
	if err != nil {
		return fmt.Errorf("failed to read torrent %s: %w", args[0], err)
	}

	fmt.Fprintln(stdout, formatTorrentInfo(info))

	return nil
}

func formatTorrentInfo(info *torrent_info.TorrentInfo) string {
	var builder strings.Builder

	field := func(name string, format string, args ...any) {
		builder.WriteString(fieldStyle.Render(fmt.Sprintf("%-13s", name)))
		fmt.Fprintf(&builder, format, args...)
		builder.WriteString("\n")
	}

	builder.WriteString(headingStyle.Render(info.Name))
	builder.WriteString("\n")

	field("info hash", "%s", hex.EncodeToString(info.InfoHash[:]))
	field("total size", "%d bytes", info.TotalLength)
	field("pieces", "%d x %d bytes", len(info.Pieces), info.PieceLength)

	for _, tracker := range info.Trackers {
		field("tracker", "%s", tracker)
	}

	for _, file := range info.Files {
		field("file", "%s (%d bytes)", filepath.Join(file.Path...), file.Length)
	}

	return strings.TrimRight(builder.String(), "\n")
}

func runView(cfg *config.Config, args []string, _ io.Writer) error {
	if cfg.LogFile == "" {
		restore, err := redirectLog(interactiveLogFileName)
		if err != nil {
			return err
		}
		defer restore()
	}

	if len(args) == 0 {
		return ui.StartUI(nil, "", cfg.DecodeOptions()...)
	}

	decoded, err := bencode.DecodeFile(args[0], cfg.DecodeOptions()...)
	if err != nil {
		return err
	}

	return ui.StartUI(decoded, filepath.Base(args[0]), cfg.DecodeOptions()...)
}
