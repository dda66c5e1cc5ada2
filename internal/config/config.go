package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/MuthoniGathiithi/filehound/internal/log"
)

type Config struct {
	DataDir        string   `toml:"data_dir"`
	Roots          []string `toml:"roots"`
	ExcludeDirs    []string `toml:"exclude_dirs"`
	ExcludeHidden  bool     `toml:"exclude_hidden"`
	TextExts       []string `toml:"text_extensions"`
	MaxFileBytes   int64    `toml:"max_file_bytes"`
	PreviewChars   int      `toml:"preview_chars"`
	StoredPreview  int      `toml:"stored_preview_chars"`
	MaxKeywords    int      `toml:"max_keywords"`
	FileCountLimit int      `toml:"file_count_limit"`
	WorkerCount    int      `toml:"worker_count"`

	excludeDirsMap map[string]bool
	textExtsMap    map[string]bool
}

func Default() *Config {
	home, _ := os.UserHomeDir()

	defaultExcludeDirs := []string{
		// Version control
		".git",
		".svn",
		".hg",

		// JavaScript/Node.js
		"node_modules",
		"bower_components",
		".npm",
		".yarn",

		// Python
		"site-packages",
		"__pycache__",
		".venv",
		"venv",
		".tox",
		".pytest_cache",

		// Build outputs
		"dist",
		"build",
		"out",
		"obj",
		"target",

		// Go
		"vendor",

		// Cache directories
		".cache",
		".parcel-cache",
		".next",

		// IDE/Editor state
		".idea",
		".vscode",

		// OS specific
		"System32",
		"Windows",
		"Program Files",
		".Trash-1000",
	}

	workerCount := runtime.NumCPU() / 2
	if workerCount < 1 {
		workerCount = 1
	}

	cfg := &Config{
		DataDir:        getDefaultDataDir(),
		Roots:          []string{home},
		ExcludeDirs:    defaultExcludeDirs,
		ExcludeHidden:  true,
		MaxFileBytes:   100 * 1024 * 1024,
		PreviewChars:   5000,
		StoredPreview:  500,
		MaxKeywords:    50,
		FileCountLimit: 10000,
		WorkerCount:    workerCount,
		TextExts: []string{
			".txt", ".md", ".csv", ".json", ".xml", ".yaml", ".yml",
			".toml", ".html", ".css", ".js", ".ts", ".py", ".go",
			".rs", ".c", ".cpp", ".h", ".java", ".rb", ".php", ".sh",
		},
	}

	cfg.BuildMaps()
	return cfg
}

func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.Save(path); err != nil {
			log.Warnf("failed to create default config at %s: %v", path, err)
		} else {
			log.Infof("created default config at %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	cfg.BuildMaps()
	return cfg, nil
}

func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	f.WriteString("# filehound configuration\n\n")

	return toml.NewEncoder(f).Encode(c)
}

func (c *Config) BuildMaps() {
	c.excludeDirsMap = make(map[string]bool, len(c.ExcludeDirs))
	for _, dir := range c.ExcludeDirs {
		c.excludeDirsMap[dir] = true
	}

	c.textExtsMap = make(map[string]bool, len(c.TextExts))
	for _, ext := range c.TextExts {
		c.textExtsMap[ext] = true
	}
}

func getDefaultDataDir() string {
	var base string
	if runtime.GOOS == "windows" {
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
	} else {
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(base, "filehound")
}

func GetDefaultConfigPath() string {
	var base string
	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, "filehound", "config.toml")
}

// ShouldIndexDir reports whether a directory may be descended into during
// an index walk. The deny-list matches any single path component.
func (c *Config) ShouldIndexDir(path string) bool {
	name := filepath.Base(path)
	if c.ExcludeHidden && strings.HasPrefix(name, ".") && name != "." {
		return false
	}
	return !c.excludeDirsMap[name]
}

// ShouldIndexFile applies the eligibility policy to a regular file: no
// component on the deny-list, not hidden when hidden files are excluded.
// The size ceiling is checked by the indexer against stat data.
func (c *Config) ShouldIndexFile(path string) bool {
	name := filepath.Base(path)
	if c.ExcludeHidden && strings.HasPrefix(name, ".") {
		return false
	}
	return !c.containsExcludedComponent(path)
}

func (c *Config) containsExcludedComponent(path string) bool {
	clean := filepath.ToSlash(filepath.Clean(path))
	for _, comp := range strings.Split(clean, "/") {
		if comp == "" {
			continue
		}
		if c.excludeDirsMap[comp] {
			return true
		}
		if c.ExcludeHidden && strings.HasPrefix(comp, ".") && comp != "." && comp != ".." {
			return true
		}
	}
	return false
}

// ExclusionReason explains why a path fails the eligibility policy, or
// returns "" when it is eligible.
func (c *Config) ExclusionReason(path string) string {
	clean := filepath.ToSlash(filepath.Clean(path))
	for _, comp := range strings.Split(clean, "/") {
		if comp == "" {
			continue
		}
		if c.excludeDirsMap[comp] {
			return "component on deny-list: " + comp
		}
		if c.ExcludeHidden && strings.HasPrefix(comp, ".") && comp != "." && comp != ".." {
			return "hidden component: " + comp
		}
	}
	return ""
}

func (c *Config) IsTextFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return c.textExtsMap[ext]
}

// IndexDBPath is the bbolt metadata store file under the data dir.
func (c *Config) IndexDBPath() string {
	return filepath.Join(c.DataDir, "meta.db")
}

// ContentIndexPath is the bleve index directory under the data dir.
func (c *Config) ContentIndexPath() string {
	return filepath.Join(c.DataDir, "index")
}
