package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/session"
)

const shellHelp = `Commands:
  ls                     List sites and usernames
  get <site>             Copy password to clipboard
  show <site>            Print entry including password
  add <site> <username>  Add an entry
  update <site>          Change username or password of an entry
  rm <site>              Remove an entry
  lock                   Lock the vault now
  help                   Show this help
  quit                   Leave the shell
`

// shell is one interactive session over an unlocked vault.
type shell struct {
	ws    *Workspace
	vault *core.Vault
	idle  *session.Session
	clip  *session.Clipboard
	in    *bufio.Scanner
	out   io.Writer
}

// Shell runs an interactive prompt. The vault locks itself after the
// configured idle timeout and is unlocked again on the next command.
func Shell(ctx context.Context, cfg config.Config) {
	ws := NewWorkspace(cfg)
	v, err := ws.Unlock()
	if err != nil {
		HandleError(err)
	}

	sh := &shell{
		ws:    ws,
		vault: v,
		idle:  session.New(v, cfg.IdleTimeout),
		in:    bufio.NewScanner(os.Stdin),
		out:   os.Stdout,
	}
	if session.Supported() {
		sh.clip = session.NewClipboard(session.SystemBackend(), cfg.ClipboardClear)
	}

	// Ctrl+C leaves immediately; the prompt may be blocked on input
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			sh.close()
			fmt.Fprintln(os.Stderr)
			exit(130)
		case <-done:
		}
	}()

	sh.run()
	sh.close()
}

func (sh *shell) close() {
	sh.idle.Stop()
	if sh.clip != nil {
		sh.clip.Clear()
	}
	sh.vault.Lock()
}

func (sh *shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.out, format, args...)
}

// readLine prompts and returns one trimmed input line; ok is false on EOF.
func (sh *shell) readLine(prompt string) (string, bool) {
	sh.printf("%s", prompt)
	if !sh.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(sh.in.Text()), true
}

func (sh *shell) run() {
	sh.printf("Vault %s unlocked. Type 'help' for commands.\n", sh.ws.Config.VaultPath)
	for {
		line, ok := sh.readLine("passvault> ")
		if !ok {
			sh.printf("\n")
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit":
			return
		case "help":
			sh.printf("%s", shellHelp)
			continue
		case "lock":
			sh.vault.Lock()
			sh.printf("Vault locked\n")
			continue
		}

		if !sh.ensureUnlocked() {
			continue
		}
		if err := sh.dispatch(args); err != nil {
			sh.printf("Error: %s\n", err)
		}
	}
}

// ensureUnlocked asks for the master password when the idle timer or a
// lock command has locked the vault.
func (sh *shell) ensureUnlocked() bool {
	if sh.idle.Touch() && !sh.vault.IsLocked() {
		return true
	}

	sh.printf("Vault is locked\n")
	password, err := readPassword("Enter master password: ")
	if err != nil {
		sh.printf("Error: %s\n", err)
		return false
	}
	if err := sh.vault.Unlock(password); err != nil {
		if errors.Is(err, core.ErrWrongPassword) {
			sh.printf("Wrong password\n")
		} else {
			sh.printf("Error: %s\n", err)
		}
		return false
	}
	sh.idle.Reset()
	return true
}

func (sh *shell) dispatch(args []string) error {
	cmd, rest := args[0], args[1:]

	need := map[string]int{"get": 1, "show": 1, "add": 2, "update": 1, "rm": 1}
	if n, known := need[cmd]; known && len(rest) < n {
		return fmt.Errorf("%s needs %d argument(s), see 'help'", cmd, n)
	}

	switch cmd {
	case "ls":
		return sh.list()
	case "get":
		return sh.get(rest[0])
	case "show":
		return sh.show(rest[0])
	case "add":
		return sh.add(rest[0], rest[1])
	case "update":
		return sh.update(rest[0])
	case "rm":
		return sh.remove(rest[0])
	default:
		return fmt.Errorf("unknown command %q, see 'help'", cmd)
	}
}

func (sh *shell) find(site string) (core.Entry, error) {
	e, ok, err := sh.vault.Find(site)
	if err != nil {
		return core.Entry{}, err
	}
	if !ok {
		return core.Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, site)
	}
	return e, nil
}

func (sh *shell) list() error {
	entries, err := sh.vault.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		sh.printf("No entries in vault\n")
		return nil
	}
	for _, e := range entries {
		sh.printf("  %s (%s)\n", e.Site, e.Username)
	}
	return nil
}

func (sh *shell) get(site string) error {
	if sh.clip == nil {
		return ErrNoClipboard
	}
	e, err := sh.find(site)
	if err != nil {
		return err
	}
	if err := sh.clip.Copy(e.Password); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	sh.printf("Username: %s\nPassword copied to clipboard\n", e.Username)
	return nil
}

func (sh *shell) show(site string) error {
	e, err := sh.find(site)
	if err != nil {
		return err
	}
	sh.printf("Site:     %s\nUsername: %s\nPassword: %s\n", e.Site, e.Username, e.Password)
	return nil
}

func (sh *shell) add(site, username string) error {
	secret, err := readEntryPassword(site)
	if err != nil {
		return err
	}
	if core.IsWeakPassword(secret, site, username) {
		sh.printf("Warning: password for %s is weak\n", site)
	}
	if err := sh.vault.Add(site, username, secret); err != nil {
		return err
	}
	if err := sh.ws.Save(sh.vault, "add "+site); err != nil {
		return err
	}
	sh.printf("✓ Added %s\n", site)
	return nil
}

func (sh *shell) update(site string) error {
	e, err := sh.find(site)
	if err != nil {
		return err
	}

	username, ok := sh.readLine(fmt.Sprintf("Username [%s]: ", e.Username))
	if !ok {
		return io.ErrUnexpectedEOF
	}
	if username != "" {
		e.Username = username
	}

	answer, ok := sh.readLine("Change password? [y/N]: ")
	if !ok {
		return io.ErrUnexpectedEOF
	}
	if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
		secret, err := readEntryPassword(e.Site)
		if err != nil {
			return err
		}
		e.Password = secret
	}

	if _, err := sh.vault.Update(site, e); err != nil {
		return err
	}
	if err := sh.ws.Save(sh.vault, "update "+site); err != nil {
		return err
	}
	sh.printf("✓ Updated %s\n", e.Site)
	return nil
}

func (sh *shell) remove(site string) error {
	ok, err := sh.vault.Delete(site)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, site)
	}
	if err := sh.ws.Save(sh.vault, "rm "+site); err != nil {
		return err
	}
	log.Debug().Str("site", site).Msg("Entry removed from shell")
	sh.printf("✓ Removed %s\n", site)
	return nil
}
