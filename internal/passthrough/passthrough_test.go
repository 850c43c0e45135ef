package passthrough

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"testing"
)

func TestShellEscapeForBashSimple(t *testing.T) {
	if got := shellEscapeForBash("echo hello"); got != "'echo hello'" {
		t.Errorf("got %q", got)
	}
}

func TestShellEscapeForBashWithQuotes(t *testing.T) {
	got := shellEscapeForBash(`echo 'it'"s"`)
	want := `'echo '\''it'\''"s"'`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSentinelsUseNullBytes(t *testing.T) {
	if !containsByte(envMarker, 0) {
		t.Error("envMarker should contain a NUL byte")
	}
	if !containsByte(cwdMarker, 0) {
		t.Error("cwdMarker should contain a NUL byte")
	}
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

func requireBash(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

func TestExecPreservesExitCode(t *testing.T) {
	requireBash(t)
	if code := Exec("exit 42"); code != 42 {
		t.Errorf("got exit code %d, want 42", code)
	}
}

func TestExecExitCodeZero(t *testing.T) {
	requireBash(t)
	if code := Exec("true"); code != 0 {
		t.Errorf("got exit code %d, want 0", code)
	}
}

func TestExecPrintsNothingToStdout(t *testing.T) {
	requireBash(t)
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w

	code := Exec("echo hi; export FOO=bar")

	w.Close()
	os.Stdout = orig
	var buf bytes.Buffer
	io.Copy(&buf, r)

	if code != 0 {
		t.Errorf("got exit code %d, want 0", code)
	}
	if buf.Len() != 0 {
		t.Errorf("Exec wrote %q to stdout, want nothing", buf.String())
	}
}

func TestExecEnvDiffCapturesVar(t *testing.T) {
	requireBash(t)
	if code := ExecEnvDiff("export __REEF_TEST_ED_VAR=test_val"); code != 0 {
		t.Errorf("got exit code %d, want 0", code)
	}
}
