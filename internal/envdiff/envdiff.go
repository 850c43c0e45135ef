// Package envdiff captures shell environment snapshots and turns the
// difference between two of them into fish commands (set -gx, set -e, cd)
// that a passthrough caller replays into the interactive fish session.
package envdiff

import (
	"os"
	"sort"
	"strings"
)

// skipVars are internal to bash and never synced into fish. Sorted by
// ASCII byte order so ShouldSkipVar can binary-search it.
var skipVars = []string{
	"BASH",
	"BASHOPTS",
	"BASHPID",
	"BASH_ALIASES",
	"BASH_ARGC",
	"BASH_ARGV",
	"BASH_CMDS",
	"BASH_COMMAND",
	"BASH_EXECUTION_STRING",
	"BASH_LINENO",
	"BASH_LOADABLES_PATH",
	"BASH_REMATCH",
	"BASH_SOURCE",
	"BASH_SUBSHELL",
	"BASH_VERSINFO",
	"BASH_VERSION",
	"COLUMNS",
	"COMP_WORDBREAKS",
	"DIRSTACK",
	"EUID",
	"FUNCNAME",
	"GROUPS",
	"HISTCMD",
	"HISTFILE",
	"HOSTNAME",
	"HOSTTYPE",
	"IFS",
	"LINENO",
	"LINES",
	"MACHTYPE",
	"MAILCHECK",
	"OLDPWD",
	"OPTERR",
	"OPTIND",
	"OSTYPE",
	"PIPESTATUS",
	"PPID",
	"PS1",
	"PS2",
	"PS4",
	"PWD",
	"RANDOM",
	"SECONDS",
	"SHELL",
	"SHELLOPTS",
	"SHLVL",
	"UID",
	"_",
}

// Snapshot is the shell environment at a point in time.
type Snapshot struct {
	Vars map[string]string
	Cwd  string
}

// New builds a snapshot from an explicit variable map and working directory.
func New(vars map[string]string, cwd string) Snapshot {
	return Snapshot{Vars: vars, Cwd: cwd}
}

// CaptureCurrent snapshots the calling process's own environment.
func CaptureCurrent() Snapshot {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			k := kv[:i]
			if !ShouldSkipVar(k) {
				vars[k] = kv[i+1:]
			}
		}
	}
	cwd, _ := os.Getwd()
	return Snapshot{Vars: vars, Cwd: cwd}
}

// DiffInto appends fish commands describing the difference between s and
// after to out: set -gx for new or changed variables, set -e for removed
// ones, cd for a changed working directory.
func (s Snapshot) DiffInto(after Snapshot, out *strings.Builder) {
	keys := make([]string, 0, len(after.Vars))
	for k := range after.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if ShouldSkipVar(key) {
			continue
		}
		newVal := after.Vars[key]
		oldVal, existed := s.Vars[key]
		if existed && oldVal == newVal {
			continue
		}
		out.WriteString("set -gx ")
		out.WriteString(key)
		out.WriteByte(' ')
		if strings.HasSuffix(key, "PATH") && strings.Contains(newVal, ":") {
			for i, part := range strings.Split(newVal, ":") {
				if i > 0 {
					out.WriteByte(' ')
				}
				out.WriteString(part)
			}
		} else {
			out.WriteString(shellEscape(newVal))
		}
		out.WriteByte('\n')
	}

	removed := make([]string, 0)
	for key := range s.Vars {
		if ShouldSkipVar(key) {
			continue
		}
		if _, ok := after.Vars[key]; !ok {
			removed = append(removed, key)
		}
	}
	sort.Strings(removed)
	for _, key := range removed {
		out.WriteString("set -e ")
		out.WriteString(key)
		out.WriteByte('\n')
	}

	if after.Cwd != "" && s.Cwd != after.Cwd {
		out.WriteString("cd ")
		out.WriteString(shellEscape(after.Cwd))
		out.WriteByte('\n')
	}
}

// Diff is the allocating convenience form of DiffInto.
func (s Snapshot) Diff(after Snapshot) string {
	var out strings.Builder
	s.DiffInto(after, &out)
	return out.String()
}

// ParseNullSeparatedEnv parses the output of `env -0`: NUL-delimited
// VAR=value entries.
func ParseNullSeparatedEnv(data string) map[string]string {
	vars := make(map[string]string)
	for _, entry := range strings.Split(data, "\x00") {
		entry = strings.TrimLeft(entry, "\n")
		if entry == "" {
			continue
		}
		eq := strings.IndexByte(entry, '=')
		if eq < 0 {
			continue
		}
		key := entry[:eq]
		val := entry[eq+1:]
		if key == "" {
			continue
		}
		valid := true
		for i := 0; i < len(key); i++ {
			c := key[i]
			if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
				valid = false
				break
			}
		}
		if valid {
			vars[key] = val
		}
	}
	return vars
}

// ShouldSkipVar reports whether name is a bash-internal variable that
// should never be synced to fish or persisted to a state file.
func ShouldSkipVar(name string) bool {
	i := sort.SearchStrings(skipVars, name)
	return i < len(skipVars) && skipVars[i] == name
}

// shellEscape quotes s for safe use as a fish word, single-quoting only
// when a character outside the safe set is present.
func shellEscape(s string) string {
	safe := true
	for i := 0; i < len(s); i++ {
		b := s[i]
		if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') {
			continue
		}
		switch b {
		case '/', '.', '-', '_', ':', '~', '+', ',':
			continue
		}
		safe = false
		break
	}
	if safe {
		return s
	}
	var out strings.Builder
	out.Grow(len(s) + 2)
	out.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out.WriteString(`'\''`)
		} else {
			out.WriteByte(s[i])
		}
	}
	out.WriteByte('\'')
	return out.String()
}
