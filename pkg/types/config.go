package types

import "time"

// HeuristicPrefixes holds the weak "Q:" / "A:" style prefixes that attribute
// a line with low confidence.
type HeuristicPrefixes struct {
	// Student patterns mark an uncertain Student line (e.g. `^Q\s*[:\-]`).
	Student []string `json:"student" yaml:"student"`

	// AI patterns mark an uncertain AI line (e.g. `^A\s*[:\-]`).
	AI []string `json:"ai" yaml:"ai"`
}

// RulesConfig is the calibration data driving classification, paging, and
// counting. Every list is plain data; patterns are RE2 regular expressions
// compiled case-insensitively.
type RulesConfig struct {
	// AILabels and StudentLabels are the accepted "Label:" aliases per side.
	AILabels      []string `json:"ai_labels" yaml:"ai_labels"`
	StudentLabels []string `json:"student_labels" yaml:"student_labels"`

	// HeuristicPrefixes are the weak Q:/A: prefixes.
	HeuristicPrefixes HeuristicPrefixes `json:"heuristic_prefixes" yaml:"heuristic_prefixes"`

	// PersonaPrefixes are AI self-introductions ("hello! i'm", "as an ai").
	PersonaPrefixes []string `json:"persona_prefixes" yaml:"persona_prefixes"`

	// PreamblePrefixes are filler openings stripped from confident AI content.
	PreamblePrefixes []string `json:"preamble_prefixes" yaml:"preamble_prefixes"`

	// BlockOpeners match a line consisting solely of a student block opener
	// ("My answer:"). The pattern is anchored to the whole line.
	BlockOpeners []string `json:"block_openers" yaml:"block_openers"`

	// InlineOpeners match a block opener appearing inside a line.
	InlineOpeners []string `json:"inline_openers" yaml:"inline_openers"`

	// InstructionMarkers match system-prompt lines at the top of a page.
	InstructionMarkers []string `json:"instruction_markers" yaml:"instruction_markers"`

	// PageMarkers match lines that separate pages ("Page 3", "--- Page 3 ---").
	PageMarkers []string `json:"page_markers" yaml:"page_markers"`

	// CJKRanges are inclusive hex code point ranges, e.g. "4E00-9FFF".
	CJKRanges []string `json:"cjk_ranges" yaml:"cjk_ranges"`

	// MathSymbols is the set of operator and bracket characters.
	MathSymbols string `json:"math_symbols" yaml:"math_symbols"`

	// IgnorePhrases mark canned template lines that a recount of an
	// annotated transcript drops regardless of tag.
	IgnorePhrases []string `json:"ignore_phrases" yaml:"ignore_phrases"`
}

// RelabelConfig holds settings for the optional segment relabeler.
type RelabelConfig struct {
	// Threshold is the minimum winning probability required to relabel
	// (default 0.65).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// ModelPath points to a linear n-gram model file (YAML).
	ModelPath string `json:"model_path,omitempty" yaml:"model_path,omitempty"`

	// RemoteURL is the endpoint of a remote classifier. Ignored when
	// ModelPath is set.
	RemoteURL string `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`

	// Timeout is the HTTP timeout for the remote classifier.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the retry budget for throttled remote calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ScreenConfig holds settings for a batch screening run.
type ScreenConfig struct {
	// InputDir contains the .txt, .docx and .pdf transcripts.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutDir receives summary.csv, pages.csv, log.txt and annotated/.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// RulesPath optionally overrides the embedded rule set.
	RulesPath string `json:"rules_path,omitempty" yaml:"rules_path,omitempty"`

	// CountMode is "comprehensive" (default) or "simple".
	CountMode string `json:"count_mode" yaml:"count_mode"`

	// Workers is the number of files screened concurrently (default NumCPU).
	Workers int `json:"workers" yaml:"workers"`

	Annotate  bool `json:"annotate" yaml:"annotate"`
	Force     bool `json:"force" yaml:"force"`
	WriteYAML bool `json:"write_yaml" yaml:"write_yaml"`

	Relabel RelabelConfig `json:"relabel" yaml:"relabel"`
}

// StoreConfig holds settings for the SQLite run store.
type StoreConfig struct {
	// Path is the database file. Empty disables run recording.
	Path string `json:"path" yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}
