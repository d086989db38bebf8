package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/Altius/demultiplex/internal/output"
)

func flagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.IntP("mismatch", "m", 1, "")
	fs.BoolP("edit", "d", false, "")
	fs.StringP("path", "p", ".", "")
	fs.Int("threads", 0, "")
	fs.Int("max-open", 0, "")
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return fs
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(flagSet(t), "")
	if err != nil {
		t.Fatal(err)
	}
	if c.Mismatches != 1 || c.Edit || c.Path != "." {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.Threads < 1 {
		t.Errorf("Threads = %d, want resolved to CPUs", c.Threads)
	}
	if c.MaxOpen != output.DefaultLimit() {
		t.Errorf("MaxOpen = %d, want %d", c.MaxOpen, output.DefaultLimit())
	}
	if c.ChunkSize != 1000 || c.CacheSize != 128 || c.Duplicates != DuplicatesLast {
		t.Errorf("unexpected resource defaults: %+v", c)
	}
}

func TestLoadFlags(t *testing.T) {
	c, err := Load(flagSet(t, "-m", "0", "-d", "-p", "out", "--threads", "3", "--max-open", "5"), "")
	if err != nil {
		t.Fatal(err)
	}
	if c.Mismatches != 0 || !c.Edit || c.Path != "out" || c.Threads != 3 || c.MaxOpen != 5 {
		t.Errorf("flags not applied: %+v", c)
	}
}

func TestLoadFileUnderFlags(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "demultiplex.json")
	writeFile(t, file, `{
		"inputs": ["a.fq", "b.fq"],
		"barcodes": "barcodes.txt",
		"mismatch": 2,
		"path": "from-file",
		"threads": 2
	}`)

	c, err := Load(flagSet(t, "-p", "from-flag"), file)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Inputs) != 2 || c.Inputs[1] != "b.fq" || c.Barcodes != "barcodes.txt" {
		t.Errorf("file values missing: %+v", c)
	}
	if c.Mismatches != 2 || c.Threads != 2 {
		t.Errorf("file should override defaults: %+v", c)
	}
	if c.Path != "from-flag" {
		t.Errorf("Path = %q, flag should win over file", c.Path)
	}
}

func TestLoadYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "demultiplex.yaml")
	writeFile(t, file, "edit: true\nduplicates: error\nmax-open: 7\n")
	c, err := Load(nil, file)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Edit || c.Duplicates != DuplicatesError || c.MaxOpen != 7 {
		t.Errorf("yaml values missing: %+v", c)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("DEMULTIPLEX_CHUNK_SIZE", "10")
	c, err := Load(flagSet(t), "")
	if err != nil {
		t.Fatal(err)
	}
	if c.ChunkSize != 10 {
		t.Errorf("ChunkSize = %d, want 10 from env", c.ChunkSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(nil, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Threads: 1, MaxOpen: 1, ChunkSize: 1, Duplicates: DuplicatesLast}
	}
	if err := (&Config{Threads: 1, MaxOpen: 1, ChunkSize: 1, Duplicates: DuplicatesLast}).Validate(); err != nil {
		t.Fatalf("minimal config invalid: %v", err)
	}

	tests := map[string]func(*Config){
		"negative mismatch": func(c *Config) { c.Mismatches = -1 },
		"zero threads":      func(c *Config) { c.Threads = 0 },
		"zero chunk":        func(c *Config) { c.ChunkSize = 0 },
		"bad format":        func(c *Config) { c.Format = "casava" },
		"bad duplicates":    func(c *Config) { c.Duplicates = "first" },
		"negative sample":   func(c *Config) { c.SampleSize = -1 },
	}
	for name, mutate := range tests {
		c := valid()
		mutate(&c)
		if err := c.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: err = %v, want ErrInvalid", name, err)
		}
	}

	c := valid()
	c.MaxOpen = -1
	if err := c.Validate(); !errors.Is(err, output.ErrResourceExhausted) {
		t.Errorf("negative max-open: err = %v, want ErrResourceExhausted", err)
	}
}
