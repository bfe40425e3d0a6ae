package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

// Site completion only works when the password comes from the keyring or
// PASSVAULT_PASSWORD; stdin is closed so passvault never prompts.
const bashCompletion = `_passvault() {
    local cur prev words cword
    _init_completion || return

    local commands="init add get show update rm ls shell status history restore diff compact push pull keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    if [[ "$prev" == "-f" ]]; then
        _filedir
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        get|show|update|rm)
            if [[ "$cur" == -* ]]; then
                case "$cmd" in
                    show) COMPREPLY=($(compgen -W "-f -p" -- "$cur")) ;;
                    update) COMPREPLY=($(compgen -W "-f --site --user --password" -- "$cur")) ;;
                    *) COMPREPLY=($(compgen -W "-f" -- "$cur")) ;;
                esac
            else
                local sites
                sites=$(passvault ls </dev/null 2>/dev/null | grep -E '^  ' | sed 's/^  //' | sed 's/ (.*//')
                COMPREPLY=($(compgen -W "$sites" -- "$cur"))
            fi
            ;;
        push|pull)
            COMPREPLY=($(compgen -W "-f --drive" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
        *)
            COMPREPLY=($(compgen -W "-f" -- "$cur"))
            ;;
    esac
}

complete -F _passvault passvault
`

const zshCompletion = `#compdef passvault

_passvault() {
    local -a commands
    commands=(
        'init:Create a new vault'
        'add:Add an entry'
        'get:Copy a password to the clipboard'
        'show:Print an entry including its password'
        'update:Change an entry'
        'rm:Remove entries'
        'ls:List sites and usernames'
        'shell:Interactive session with idle auto-lock'
        'status:Show vault file state'
        'history:List backup snapshots'
        'restore:Restore a backup snapshot'
        'diff:Compare a snapshot with the current vault'
        'compact:Prune and compact the backup history'
        'push:Upload the encrypted vault'
        'pull:Download the encrypted vault'
        'keyring:Manage password in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'passvault commands' commands
            ;;
        args)
            case "${words[2]}" in
                get|rm)
                    _arguments \
                        '-f[Vault file]:file:_files' \
                        '*:site:_passvault_sites'
                    ;;
                show)
                    _arguments \
                        '-f[Vault file]:file:_files' \
                        '-p[Print only the password]' \
                        '*:site:_passvault_sites'
                    ;;
                update)
                    _arguments \
                        '-f[Vault file]:file:_files' \
                        '--site[Rename the site]:site:' \
                        '--user[Change the username]:user:' \
                        '--password[Prompt for a new password]' \
                        '*:site:_passvault_sites'
                    ;;
                push|pull)
                    _arguments \
                        '-f[Vault file]:file:_files' \
                        '--drive[Use Google Drive]'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'passvault commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
                *)
                    _arguments '-f[Vault file]:file:_files'
                    ;;
            esac
            ;;
    esac
}

_passvault_sites() {
    local -a sites
    sites=(${(f)"$(passvault ls </dev/null 2>/dev/null | grep -E '^  ' | sed 's/^  //' | sed 's/ (.*//')"})
    _describe -t sites 'vault sites' sites
}

_passvault "$@"
`

const fishCompletion = `# passvault fish completions

set -l commands init add get show update rm ls shell status history restore diff compact push pull keyring help completion

complete -c passvault -f

# Commands
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a init -d 'Create a new vault'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a add -d 'Add an entry'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a get -d 'Copy a password'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a show -d 'Print an entry'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a update -d 'Change an entry'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Remove entries'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List sites'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a shell -d 'Interactive session'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show vault state'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a history -d 'List snapshots'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a restore -d 'Restore a snapshot'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare with a snapshot'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact history'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a push -d 'Upload the vault'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a pull -d 'Download the vault'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c passvault -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# Vault file flag
complete -c passvault -n "__fish_seen_subcommand_from $commands" -s f -r -F -d 'Vault file'

# Sites
complete -c passvault -n "__fish_seen_subcommand_from get show update rm" -a "(passvault ls </dev/null 2>/dev/null | string match -r '^  .*' | string replace -r '^  (.*) \(.*\)$' '$1')"

# Flags
complete -c passvault -n "__fish_seen_subcommand_from show" -s p -d 'Print only the password'
complete -c passvault -n "__fish_seen_subcommand_from update" -l site -r -d 'Rename the site'
complete -c passvault -n "__fish_seen_subcommand_from update" -l user -r -d 'Change the username'
complete -c passvault -n "__fish_seen_subcommand_from update" -l password -d 'Prompt for a new password'
complete -c passvault -n "__fish_seen_subcommand_from push pull" -l drive -d 'Use Google Drive'

# keyring subcommands
complete -c passvault -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c passvault -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c passvault -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
