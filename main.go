package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/passvault/cmd"
	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/logging"
	"github.com/illarion/passvault/internal/secmem"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer secmem.Purge()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	logging.Setup(os.Stderr, cfg.LogLevel)

	args := os.Args[2:]
	switch os.Args[1] {
	case "init":
		runInit(cfg, args)
	case "add":
		runAdd(cfg, args)
	case "get":
		runGet(ctx, cfg, args)
	case "show":
		runShow(cfg, args)
	case "update":
		runUpdate(cfg, args)
	case "rm":
		runRm(cfg, args)
	case "ls":
		runLs(cfg, args)
	case "shell":
		runShell(ctx, cfg, args)
	case "status":
		runStatus(cfg, args)
	case "history":
		runHistory(cfg, args)
	case "restore":
		runRestore(cfg, args)
	case "diff":
		runDiff(cfg, args)
	case "compact":
		runCompact(cfg, args)
	case "push":
		runPush(ctx, cfg, args)
	case "pull":
		runPull(ctx, cfg, args)
	case "keyring":
		runKeyring(cfg, args)
	case "completion":
		runCompletion(args)
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// parse parses args with fs, adding the -f vault path flag, and returns
// the configuration with the flag applied.
func parse(fs *flag.FlagSet, cfg config.Config, args []string) config.Config {
	file := fs.String("f", "", "Vault file (default $PASSVAULT_FILE or vault.bin)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cfg.WithVaultPath(*file)
}

// requireArgs exits with usage when fs has fewer than n positional args.
func requireArgs(fs *flag.FlagSet, n int, usage string) {
	if fs.NArg() < n {
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		os.Exit(1)
	}
}

func runInit(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	cfg = parse(fs, cfg, args)

	cmd.Init(cfg)
}

func runAdd(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	cfg = parse(fs, cfg, args)
	requireArgs(fs, 2, "passvault add [-f file] <site> <username>")

	cmd.Add(cfg, fs.Arg(0), fs.Arg(1))
}

func runGet(ctx context.Context, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	cfg = parse(fs, cfg, args)
	requireArgs(fs, 1, "passvault get [-f file] <site>")

	cmd.Get(ctx, cfg, fs.Arg(0))
}

func runShow(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	passwordOnly := fs.Bool("p", false, "Print only the password")
	cfg = parse(fs, cfg, args)
	requireArgs(fs, 1, "passvault show [-f file] [-p] <site>")

	cmd.Show(cfg, fs.Arg(0), *passwordOnly)
}

func runUpdate(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	site := fs.String("site", "", "New site name")
	user := fs.String("user", "", "New username")
	password := fs.Bool("password", false, "Prompt for a new password")
	cfg = parse(fs, cfg, args)
	requireArgs(fs, 1, "passvault update [-f file] [--site s] [--user u] [--password] <site>")

	cmd.Update(cfg, fs.Arg(0), cmd.UpdateOptions{
		Site:           *site,
		Username:       *user,
		ChangePassword: *password,
	})
}

func runRm(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	cfg = parse(fs, cfg, args)

	cmd.Remove(cfg, fs.Args())
}

func runLs(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	cfg = parse(fs, cfg, args)

	cmd.Ls(cfg)
}

func runShell(ctx context.Context, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	cfg = parse(fs, cfg, args)

	cmd.Shell(ctx, cfg)
}

func runStatus(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	cfg = parse(fs, cfg, args)

	cmd.Status(cfg)
}

func runHistory(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	cfg = parse(fs, cfg, args)

	cmd.History(cfg)
}

func runRestore(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	cfg = parse(fs, cfg, args)
	requireArgs(fs, 1, "passvault restore [-f file] <id>")

	cmd.Restore(cfg, fs.Arg(0))
}

func runDiff(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	cfg = parse(fs, cfg, args)

	cmd.Diff(cfg, fs.Arg(0))
}

func runCompact(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	cfg = parse(fs, cfg, args)

	cmd.Compact(cfg)
}

func runPush(ctx context.Context, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("push", flag.ExitOnError)
	drive := fs.Bool("drive", false, "Use Google Drive instead of PASSVAULT_SYNC_URL")
	cfg = parse(fs, cfg, args)

	cmd.Push(ctx, cfg, *drive)
}

func runPull(ctx context.Context, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("pull", flag.ExitOnError)
	drive := fs.Bool("drive", false, "Use Google Drive instead of PASSVAULT_SYNC_URL")
	cfg = parse(fs, cfg, args)

	cmd.Pull(ctx, cfg, *drive)
}

func runKeyring(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("keyring", flag.ExitOnError)
	cfg = parse(fs, cfg, args)
	requireArgs(fs, 1, "passvault keyring [-f file] <save|delete|status>")

	switch fs.Arg(0) {
	case "save":
		cmd.KeyringSave(cfg)
	case "delete":
		cmd.KeyringDelete(cfg)
	case "status":
		cmd.KeyringStatus(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", fs.Arg(0))
		fmt.Fprintln(os.Stderr, "Usage: passvault keyring <save|delete|status>")
		os.Exit(1)
	}
}

func runCompletion(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: passvault completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("passvault - Local encrypted password vault")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  passvault <command> [-f file] [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Create a new vault")
	fmt.Println("  add         Add an entry")
	fmt.Println("  get         Copy a password to the clipboard")
	fmt.Println("  show        Print an entry including its password")
	fmt.Println("  update      Change an entry")
	fmt.Println("  rm          Remove entries")
	fmt.Println("  ls          List sites and usernames")
	fmt.Println("  shell       Interactive session with idle auto-lock")
	fmt.Println("  status      Show vault file state")
	fmt.Println("  history     List backup snapshots")
	fmt.Println("  restore     Restore a backup snapshot")
	fmt.Println("  diff        Compare a snapshot with the current vault")
	fmt.Println("  compact     Prune and compact the backup history")
	fmt.Println("  push, pull  Sync the encrypted vault with a remote")
	fmt.Println("  keyring     Manage the master password in the OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  PASSVAULT_FILE       Vault file (default vault.bin)")
	fmt.Println("  PASSVAULT_PASSWORD   Master password for non-interactive use")
	fmt.Println("  PASSVAULT_SYNC_URL   Remote URL for push and pull")
	fmt.Println("  PASSVAULT_LOG        Log level: debug, info, warn, error")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  passvault init                      # Create new vault")
	fmt.Println("  passvault add github.com alice      # Add an entry")
	fmt.Println("  passvault get github.com            # Copy password for 20 seconds")
	fmt.Println("  passvault shell                     # Interactive session")
	fmt.Println()
	fmt.Println("Use 'passvault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("passvault init [-f file]")
		fmt.Println()
		fmt.Println("Creates an empty vault file.")
		fmt.Println("Prompts for a master password that encrypts the vault.")
		fmt.Println("The password is not stored anywhere - you must remember it.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  passvault init                   # Create vault.bin")
		fmt.Println("  passvault init -f ~/secrets.bin  # Create vault at a custom path")
	case "add":
		fmt.Println("passvault add [-f file] <site> <username>")
		fmt.Println()
		fmt.Println("Adds an entry and prompts for its password.")
		fmt.Println("Sites may repeat; lookups use the first matching entry.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  passvault add github.com alice")
	case "get":
		fmt.Println("passvault get [-f file] <site>")
		fmt.Println()
		fmt.Println("Prints the username and copies the password to the clipboard.")
		fmt.Println("The clipboard is cleared after PASSVAULT_CLIPBOARD_CLEAR (default 20s),")
		fmt.Println("unless something else was copied in the meantime.")
		fmt.Println("Site matching is case-insensitive.")
	case "show":
		fmt.Println("passvault show [-f file] [-p] <site>")
		fmt.Println()
		fmt.Println("Prints an entry including its password.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -p    Print only the password")
	case "update":
		fmt.Println("passvault update [-f file] [--site s] [--user u] [--password] <site>")
		fmt.Println()
		fmt.Println("Changes the first entry matching <site>.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --site s      Rename the site")
		fmt.Println("  --user u      Change the username")
		fmt.Println("  --password    Prompt for a new password")
	case "rm":
		fmt.Println("passvault rm [-f file] <site> [site...]")
		fmt.Println()
		fmt.Println("Removes the first entry matching each site.")
	case "ls":
		fmt.Println("passvault ls [-f file]")
		fmt.Println()
		fmt.Println("Lists sites and usernames in vault order. Passwords are not shown.")
	case "shell":
		fmt.Println("passvault shell [-f file]")
		fmt.Println()
		fmt.Println("Unlocks the vault once and accepts commands interactively.")
		fmt.Println("The vault locks after PASSVAULT_IDLE_TIMEOUT (default 5m) without input")
		fmt.Println("and asks for the master password again on the next command.")
	case "status":
		fmt.Println("passvault status [-f file]")
		fmt.Println()
		fmt.Println("Shows file size, format, backup history and keyring state.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "history":
		fmt.Println("passvault history [-f file]")
		fmt.Println()
		fmt.Println("Lists backup snapshots, newest first.")
		fmt.Println("A snapshot of the previous vault file is taken before every save.")
		fmt.Println("PASSVAULT_HISTORY_KEEP snapshots are kept (default 20).")
	case "restore":
		fmt.Println("passvault restore [-f file] <id>")
		fmt.Println()
		fmt.Println("Replaces the vault file with snapshot <id>.")
		fmt.Println("The replaced file is itself kept as a new snapshot.")
	case "diff":
		fmt.Println("passvault diff [-f file] [<id>]")
		fmt.Println()
		fmt.Println("Compares a snapshot (latest by default) with the current vault.")
		fmt.Println("Shows added and removed entries and which passwords changed.")
	case "compact":
		fmt.Println("passvault compact [-f file]")
		fmt.Println()
		fmt.Println("Prunes the backup history to the retention limit and compacts")
		fmt.Println("the database to reclaim disk space.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "push", "pull":
		fmt.Println("passvault push|pull [-f file] [--drive]")
		fmt.Println()
		fmt.Println("Uploads or downloads the encrypted vault file.")
		fmt.Println("By default uses HTTP PUT/GET on PASSVAULT_SYNC_URL.")
		fmt.Println("With --drive uses Google Drive; credentials and token are read from")
		fmt.Println("PASSVAULT_DRIVE_CREDENTIALS and PASSVAULT_DRIVE_TOKEN.")
		fmt.Println("Pull keeps the local file in history and rejects invalid downloads.")
	case "keyring":
		fmt.Println("passvault keyring [-f file] <save|delete|status>")
		fmt.Println()
		fmt.Println("Stores the master password in the OS keyring so commands")
		fmt.Println("do not prompt for it.")
	case "completion":
		fmt.Println("passvault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(passvault completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(passvault completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  passvault completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
