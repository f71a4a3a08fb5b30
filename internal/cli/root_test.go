package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/logging"
)

func newTestRoot() *cobra.Command {
	root := NewRootCmd()
	AddCommands(root)
	return root
}

func TestCommandAliases(t *testing.T) {
	root := newTestRoot()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"create"}, "create"},
		{[]string{"export"}, "create"},
		{[]string{"exp:create"}, "create"},
		{[]string{"list"}, "list"},
		{[]string{"exports"}, "list"},
		{[]string{"exp:list"}, "list"},
		{[]string{"config", "show"}, "show"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cmd, _, err := root.Find(tt.args)
			if err != nil {
				t.Fatalf("Find(%v) error = %v", tt.args, err)
			}
			if cmd.Name() != tt.want {
				t.Errorf("Find(%v) = %s, want %s", tt.args, cmd.Name(), tt.want)
			}
		})
	}
}

func TestPersistentFlags(t *testing.T) {
	root := newTestRoot()
	flags := map[string]string{
		"config":        "c",
		"organization":  "o",
		"domain":        "d",
		"client-id":     "",
		"client-secret": "",
		"access-token":  "",
		"verbose":       "v",
		"debug":         "",
		"log-file":      "",
	}
	for name, short := range flags {
		f := root.PersistentFlags().Lookup(name)
		if f == nil {
			t.Errorf("--%s not registered", name)
			continue
		}
		if f.Shorthand != short {
			t.Errorf("--%s shorthand = %q, want %q", name, f.Shorthand, short)
		}
	}
	if root.PersistentFlags().Lookup("log-file").NoOptDefVal == "" {
		t.Error("--log-file should default to the log directory when given without a value")
	}
}

func TestCreateFlags(t *testing.T) {
	cmd := newCreateCmd()
	flags := map[string]string{
		"type": "t", "include": "i", "where": "w", "dry-data": "D", "format": "F",
		"csv": "C", "save": "x", "save-path": "X", "notify": "N", "blind": "b", "pretty": "P",
	}
	for name, short := range flags {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			t.Errorf("--%s not registered", name)
			continue
		}
		if f.Shorthand != short {
			t.Errorf("--%s shorthand = %q, want %q", name, f.Shorthand, short)
		}
	}
	if !cmd.Flags().Lookup("notify").Hidden {
		t.Error("--notify should be hidden")
	}
	if cmd.Flags().Lookup("timeout") == nil {
		t.Error("--timeout not registered")
	}
}

func TestListFlags(t *testing.T) {
	cmd := newListCmd()
	for name, short := range map[string]string{"all": "A", "type": "t", "status": "s", "limit": "l", "json": ""} {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			t.Errorf("--%s not registered", name)
			continue
		}
		if f.Shorthand != short {
			t.Errorf("--%s shorthand = %q, want %q", name, f.Shorthand, short)
		}
	}
}

func TestCreateRejectsMutuallyExclusiveSave(t *testing.T) {
	root := newTestRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"create", "-t", "orders", "-x", "a.json", "-X", "b.json"})

	err := root.Execute()
	if err == nil {
		t.Fatal("Execute() should fail when --save and --save-path are both given")
	}
	if !strings.Contains(err.Error(), "save") {
		t.Errorf("error = %v, want mention of save flags", err)
	}
}

func TestVersionCommand(t *testing.T) {
	root := newTestRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "cl-exports ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := newTestRoot()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			if err := root.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if out.Len() == 0 {
				t.Error("completion script is empty")
			}
		})
	}

	root := newTestRoot()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("unsupported shell should be rejected")
	}
}

func TestExecuteRootClosesLogFileOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cl-exports.log")
	t.Cleanup(func() {
		logging.SetGlobalLevel(zerolog.InfoLevel)
		debug = false
		logFile = ""
	})

	root := newTestRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"create", "-t", "orders", "-x", "a.json", "-X", "b.json", "--debug", "--log-file", path})

	if err := executeRoot(context.Background(), root); err == nil {
		t.Fatal("executeRoot() should return the flag error")
	}
	if logger != nil {
		t.Error("logger should be closed and cleared after a failed command")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "Starting") {
		t.Errorf("log file missing start line: %q", data)
	}
}
