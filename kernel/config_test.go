package kernel

import (
	"os"
	"path/filepath"
	"testing"

	"miniker/sched"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	policy, err := cfg.Policy()
	if err != nil {
		t.Fatalf("Policy: %v", err)
	}
	if policy != sched.PolicyPriority {
		t.Fatalf("default policy = %v, want PolicyPriority", policy)
	}
}

func TestLoadConfigFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boot.toml")
	contents := "scheduler = \"mlfq\"\ndemo = \"donation\"\nlog_level = \"debug\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Scheduler != "mlfq" {
		t.Fatalf("Scheduler = %q, want mlfq", cfg.Scheduler)
	}
	if cfg.Demo != "donation" {
		t.Fatalf("Demo = %q, want donation", cfg.Demo)
	}
	policy, err := cfg.Policy()
	if err != nil {
		t.Fatalf("Policy: %v", err)
	}
	if policy != sched.PolicyMLFQ {
		t.Fatalf("Policy = %v, want PolicyMLFQ", policy)
	}
}

func TestPolicyRejectsUnknownScheduler(t *testing.T) {
	cfg := Config{Scheduler: "round-robin"}
	if _, err := cfg.Policy(); err == nil {
		t.Fatal("expected an error for an unknown scheduler name")
	}
}
