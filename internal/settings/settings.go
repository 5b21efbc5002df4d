// Package settings builds the process-wide limits and paths used by every
// component. A Settings value is constructed once at startup and passed
// explicitly; nothing in this module reads the environment after that.
//
// Sources, lowest precedence first:
//   - built-in defaults (Default)
//   - ~/.llmprep/settings.yaml, or the file named by LLMPREP_SETTINGS
//   - environment variables (MCP_MAX_FILE_SIZE, MCP_MAX_CONTEXT_SIZE, ...)
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxFileSize is the per-file ceiling for inlined files (10 MiB).
	DefaultMaxFileSize int64 = 10 * 1024 * 1024
	// DefaultMaxContextSize is the ceiling for a rendered document (50 MiB).
	DefaultMaxContextSize int64 = 50 * 1024 * 1024
	// DefaultMaxPatternLength bounds the pipe-joined ignore string.
	DefaultMaxPatternLength = 2048
	// DefaultBigDirThreshold marks a directory as oversized (100 MB).
	DefaultBigDirThreshold int64 = 100 * 1000 * 1000
)

// defaultAllowedExtensions mirrors the extension list the server advertises
// for inlined files. Files outside it are still accepted, with a warning.
var defaultAllowedExtensions = []string{
	".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".c", ".cpp", ".cs", ".go",
	".rs", ".rb", ".php", ".swift", ".kt", ".scala", ".r", ".m", ".h", ".hpp",
	".sh", ".bash", ".zsh", ".fish", ".md", ".txt", ".json", ".yaml", ".yml",
	".toml", ".xml", ".html", ".css", ".scss", ".sass", ".less", ".sql",
	".graphql", ".proto", ".dockerfile", ".makefile", ".cmake", ".gradle", ".maven",
}

// Settings holds the immutable limits for one server process.
type Settings struct {
	MaxFileSize       int64         `yaml:"max_file_size"`
	MaxContextSize    int64         `yaml:"max_context_size"`
	MaxPatternLength  int           `yaml:"max_pattern_length"`
	BigDirThreshold   int64         `yaml:"big_dir_threshold"`
	ScanMaxDepth      int           `yaml:"scan_max_depth"`
	ScanTimeout       time.Duration `yaml:"scan_timeout"`
	TreeMaxDepth      int           `yaml:"tree_max_depth"`
	TreeMaxEntries    int           `yaml:"tree_max_entries"`
	AllowedExtensions []string      `yaml:"allowed_extensions"`
	Debug             bool          `yaml:"debug"`
	DockerMode        bool          `yaml:"docker_mode"`
	WorkspaceDir      string        `yaml:"workspace_dir"`
	LedgerDir         string        `yaml:"ledger_dir"`
}

// Default returns the built-in settings.
func Default() Settings {
	home, _ := os.UserHomeDir()
	return Settings{
		MaxFileSize:       DefaultMaxFileSize,
		MaxContextSize:    DefaultMaxContextSize,
		MaxPatternLength:  DefaultMaxPatternLength,
		BigDirThreshold:   DefaultBigDirThreshold,
		ScanMaxDepth:      6,
		ScanTimeout:       10 * time.Second,
		TreeMaxDepth:      3,
		TreeMaxEntries:    200,
		AllowedExtensions: append([]string(nil), defaultAllowedExtensions...),
		WorkspaceDir:      "/workspace",
		LedgerDir:         filepath.Join(home, ".llmprep"),
	}
}

// Load builds Settings from defaults, the optional YAML file, and the
// environment. A missing settings file is not an error.
func Load() (Settings, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Settings, error) {
	s := Default()

	path := getenv("LLMPREP_SETTINGS")
	if path == "" {
		path = filepath.Join(s.LedgerDir, "settings.yaml")
	}
	if err := s.mergeFile(path); err != nil {
		return Settings{}, err
	}
	if err := s.mergeEnv(getenv); err != nil {
		return Settings{}, err
	}
	return s.normalized(), nil
}

func (s *Settings) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return nil
}

func (s *Settings) mergeEnv(getenv func(string) string) error {
	ints := []struct {
		key string
		dst *int64
	}{
		{"MCP_MAX_FILE_SIZE", &s.MaxFileSize},
		{"MCP_MAX_CONTEXT_SIZE", &s.MaxContextSize},
		{"LLMPREP_BIG_DIR_THRESHOLD", &s.BigDirThreshold},
	}
	for _, v := range ints {
		raw := getenv(v.key)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", v.key, err)
		}
		*v.dst = n
	}

	if raw := getenv("LLMPREP_MAX_PATTERN_LENGTH"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("LLMPREP_MAX_PATTERN_LENGTH: %w", err)
		}
		s.MaxPatternLength = n
	}
	if raw := getenv("MCP_ALLOWED_EXTENSIONS"); raw != "" {
		s.AllowedExtensions = strings.Split(raw, ",")
	}
	if isTrue(getenv("MCP_DEBUG")) || isTrue(getenv("LLMPREP_DEBUG")) {
		s.Debug = true
	}
	if isTrue(getenv("MCP_DOCKER_MODE")) {
		s.DockerMode = true
	}
	if dir := getenv("MCP_WORKSPACE_DIR"); dir != "" {
		s.WorkspaceDir = dir
	}
	if dir := getenv("LLMPREP_HOME"); dir != "" {
		s.LedgerDir = dir
	}
	return nil
}

// normalized replaces zero or negative limits with defaults so a partial
// settings file cannot disable a bound.
func (s Settings) normalized() Settings {
	d := Default()
	if s.MaxFileSize <= 0 {
		s.MaxFileSize = d.MaxFileSize
	}
	if s.MaxContextSize <= 0 {
		s.MaxContextSize = d.MaxContextSize
	}
	if s.MaxPatternLength <= 0 {
		s.MaxPatternLength = d.MaxPatternLength
	}
	if s.BigDirThreshold <= 0 {
		s.BigDirThreshold = d.BigDirThreshold
	}
	if s.ScanMaxDepth <= 0 {
		s.ScanMaxDepth = d.ScanMaxDepth
	}
	if s.ScanTimeout <= 0 {
		s.ScanTimeout = d.ScanTimeout
	}
	if s.TreeMaxDepth <= 0 {
		s.TreeMaxDepth = d.TreeMaxDepth
	}
	if s.TreeMaxEntries <= 0 {
		s.TreeMaxEntries = d.TreeMaxEntries
	}
	for i, ext := range s.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.AllowedExtensions[i] = ext
	}
	return s
}

// IsExtensionAllowed reports whether path has one of the advertised
// extensions.
func (s Settings) IsExtensionAllowed(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range s.AllowedExtensions {
		if a == ext {
			return true
		}
	}
	return false
}

// ResolveProjectPath turns a caller-supplied project path into an absolute
// directory. In docker mode relative paths resolve under WorkspaceDir.
func (s Settings) ResolveProjectPath(p string) (string, error) {
	if p == "" {
		return "", errors.New("project path is empty")
	}
	if !filepath.IsAbs(p) && s.DockerMode {
		p = filepath.Join(s.WorkspaceDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	return abs, nil
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
