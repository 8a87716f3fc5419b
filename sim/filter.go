package sim

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FilterConfig holds display filter configuration, loadable from a YAML file.
// Empty fields mean "no constraint". Hidden comments stay in the Timeline.
type FilterConfig struct {
	BlockModes    []string `yaml:"block_modes"`
	BlockUsers    []string `yaml:"block_users"`
	BlockKeywords []string `yaml:"block_keywords"`
	MinSize       int      `yaml:"min_size"`
	MaxSize       int      `yaml:"max_size"`
	HighlightOnly bool     `yaml:"highlight_only"`
}

// LoadFilterConfig reads and parses a YAML filter file. Unknown keys are
// rejected so a typo does not silently disable a rule.
func LoadFilterConfig(path string) (*FilterConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading filter config: %w", err)
	}
	defer f.Close()
	var fc FilterConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing filter config: %w", err)
	}
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	return &fc, nil
}

// Validate checks mode names and size bounds.
func (fc *FilterConfig) Validate() error {
	for _, name := range fc.BlockModes {
		if _, err := ParseMode(name); err != nil {
			return fmt.Errorf("block_modes: %w", err)
		}
	}
	if fc.MinSize < 0 {
		return fmt.Errorf("min_size must be non-negative, got %d", fc.MinSize)
	}
	if fc.MaxSize < 0 {
		return fmt.Errorf("max_size must be non-negative, got %d", fc.MaxSize)
	}
	if fc.MaxSize > 0 && fc.MinSize > fc.MaxSize {
		return fmt.Errorf("min_size %d exceeds max_size %d", fc.MinSize, fc.MaxSize)
	}
	for _, kw := range fc.BlockKeywords {
		if kw == "" {
			return fmt.Errorf("block_keywords must not contain empty strings")
		}
	}
	return nil
}

// Empty reports whether the filter would show every comment.
func (fc *FilterConfig) Empty() bool {
	return fc == nil || (len(fc.BlockModes) == 0 && len(fc.BlockUsers) == 0 &&
		len(fc.BlockKeywords) == 0 && fc.MinSize == 0 && fc.MaxSize == 0 && !fc.HighlightOnly)
}

// Func compiles the configuration into a FilterFunc. An empty configuration
// compiles to nil, which the Timeline treats as "show everything".
// Keyword matching is case-insensitive. Validate must have passed.
func (fc *FilterConfig) Func() FilterFunc {
	if fc.Empty() {
		return nil
	}
	modes := make(map[Mode]bool, len(fc.BlockModes))
	for _, name := range fc.BlockModes {
		m, _ := ParseMode(name)
		modes[m] = true
	}
	users := make(map[string]bool, len(fc.BlockUsers))
	for _, u := range fc.BlockUsers {
		users[u] = true
	}
	keywords := make([]string, len(fc.BlockKeywords))
	for i, kw := range fc.BlockKeywords {
		keywords[i] = strings.ToLower(kw)
	}
	minSize, maxSize, highlightOnly := fc.MinSize, fc.MaxSize, fc.HighlightOnly

	return func(c *Comment) bool {
		if modes[c.Mode] || (c.UserHash != "" && users[c.UserHash]) {
			return false
		}
		if highlightOnly && !c.Highlight {
			return false
		}
		if c.Size < minSize || (maxSize > 0 && c.Size > maxSize) {
			return false
		}
		if len(keywords) > 0 {
			text := strings.ToLower(c.Content)
			for _, kw := range keywords {
				if strings.Contains(text, kw) {
					return false
				}
			}
		}
		return true
	}
}
