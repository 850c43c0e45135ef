// Package state persists exported bash variables across invocations of the
// bash-exec passthrough by writing them to a file as `export KEY='value'`
// statements that a later invocation sources before running the next command.
package state

import (
	"fmt"
	"os"
	"strings"

	"github.com/reef-shell/reef/internal/envdiff"
)

// Save writes the variables encoded in envData (NUL-separated env -0 output)
// to path as bash export statements, skipping bash-internal variables.
func Save(path, envData string) error {
	var out strings.Builder
	out.Grow(len(envData))

	for _, entry := range strings.Split(envData, "\x00") {
		entry = strings.TrimLeft(entry, "\n")
		if entry == "" {
			continue
		}
		eq := strings.IndexByte(entry, '=')
		if eq < 0 {
			continue
		}
		key := entry[:eq]
		value := entry[eq+1:]

		if key == "" || !isValidVarName(key) {
			continue
		}
		if envdiff.ShouldSkipVar(key) {
			continue
		}

		out.WriteString("export ")
		out.WriteString(key)
		out.WriteString("='")
		for i := 0; i < len(value); i++ {
			if value[i] == '\'' {
				out.WriteString(`'\''`)
			} else {
				out.WriteByte(value[i])
			}
		}
		out.WriteString("'\n")
	}

	return os.WriteFile(path, []byte(out.String()), 0o644)
}

// Prefix builds a bash script fragment that sources path if it exists.
func Prefix(path string) string {
	return fmt.Sprintf("[ -f '%s' ] && source '%s'\n", path, path)
}

func isValidVarName(key string) bool {
	for i := 0; i < len(key); i++ {
		c := key[i]
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
