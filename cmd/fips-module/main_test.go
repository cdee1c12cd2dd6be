package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// executeCommand runs a fresh root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	return executeWithInput("", args...)
}

func executeWithInput(stdin string, args ...string) (string, error) {
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootHasSubcommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"post", "serve", "digest", "audit", "hash-credential", "version"}
	for _, name := range want {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Errorf("missing subcommand %q: %v", name, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "fips-module version v") {
		t.Errorf("unexpected output: %s", out)
	}
	if !strings.Contains(out, "quantum-go-fips") {
		t.Errorf("missing full version: %s", out)
	}
}

func TestPOSTCommand(t *testing.T) {
	out, err := executeCommand("post", "--log-level", "silent")
	if err != nil {
		t.Fatalf("post failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "module operational") {
		t.Errorf("module not operational:\n%s", out)
	}
	if !strings.Contains(out, "hash-cast") || !strings.Contains(out, "pct") {
		t.Errorf("report missing self-tests:\n%s", out)
	}
}

func TestPOSTCommandCompliance(t *testing.T) {
	out, err := executeCommand("post", "--compliance", "--log-level", "silent")
	if err != nil {
		t.Fatalf("post failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "kat") {
		t.Errorf("compliance POST should run KATs:\n%s", out)
	}
}

func TestPOSTCommandWritesAuditLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	if out, err := executeCommand("post", "--log-level", "silent", "--audit-log", path); err != nil {
		t.Fatalf("post failed: %v\n%s", err, out)
	}
	if out, err := executeCommand("post", "--log-level", "silent", "--audit-log", path); err != nil {
		t.Fatalf("second post failed: %v\n%s", err, out)
	}

	out, err := executeCommand("audit", "verify", path)
	if err != nil {
		t.Fatalf("audit verify failed: %v", err)
	}
	// Two runs of: state change, state change, POST passed.
	if !strings.Contains(out, "audit chain valid: 6 events") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("signature_enabled: false\nlog:\n  level: silent\n"), 0600); err != nil {
		t.Fatal(err)
	}
	out, err := executeCommand("post", "--config", good)
	if err != nil {
		t.Fatalf("post failed: %v\n%s", err, out)
	}
	if strings.Contains(out, "ML-DSA-65") {
		t.Errorf("disabled family was tested:\n%s", out)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("credentials:\n  scheme: rot13\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := executeCommand("post", "--config", bad); err == nil {
		t.Error("expected error for invalid config")
	}

	if _, err := executeCommand("post", "--log-format", "xml"); err == nil {
		t.Error("expected error for invalid log format")
	}
}

var checksumLine = regexp.MustCompile(`checksum: ([0-9a-f]{64})`)

func TestDigestCommand(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Skipf("cannot locate test binary: %v", err)
	}

	out, err := executeCommand("digest", exe)
	if err != nil {
		t.Skipf("executable format not supported here: %v", err)
	}
	m := checksumLine.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no checksum in output:\n%s", out)
	}
	if !strings.Contains(out, checksumVariable+"="+m[1]) {
		t.Errorf("ldflags fragment missing:\n%s", out)
	}

	if _, err := executeCommand("digest", "--expect", m[1], exe); err != nil {
		t.Errorf("expected checksum should verify: %v", err)
	}
	if _, err := executeCommand("digest", "--expect", strings.Repeat("00", 32), exe); err == nil {
		t.Error("wrong checksum should fail")
	}

	only, err := executeCommand("digest", "--ldflags-only", exe)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(only) != "-X "+checksumVariable+"="+m[1] {
		t.Errorf("unexpected ldflags output: %q", only)
	}
}

func TestDigestCommandErrors(t *testing.T) {
	if _, err := executeCommand("digest", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}

	notExe := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(notExe, []byte("not an executable"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := executeCommand("digest", notExe); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := executeCommand("digest"); err == nil {
		t.Error("expected error without arguments")
	}
}

func TestHashCredentialCommand(t *testing.T) {
	out, err := executeWithInput("s3cret\n", "hash-credential")
	if err != nil {
		t.Fatalf("hash-credential failed: %v", err)
	}
	if !strings.HasPrefix(out, "$argon2id$v=19$m=65536,t=3,p=4$") {
		t.Errorf("unexpected encoding: %s", out)
	}

	if _, err := executeWithInput("\n", "hash-credential"); err == nil {
		t.Error("expected error for empty credential")
	}
}

func TestAuditVerifyTampered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	if out, err := executeCommand("post", "--log-level", "silent", "--audit-log", path); err != nil {
		t.Fatalf("post failed: %v\n%s", err, out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := bytes.Replace(data, []byte(`"operational"`), []byte(`"error"`), 1)
	if bytes.Equal(tampered, data) {
		t.Fatal("nothing to tamper with")
	}
	if err := os.WriteFile(path, tampered, 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := executeCommand("audit", "verify", path); err == nil {
		t.Error("tampered log should fail verification")
	}
}
