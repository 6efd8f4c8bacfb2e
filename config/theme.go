package config

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

// themeData is the built-in prompt theme table, resolved by name via the
// "prompt_theme = NAME" directive (SPEC_FULL.md §2.3). It is genuinely
// structured data (a table keyed by theme name), unlike the line-based
// directive file itself, so it is unmarshalled with yaml.v3 rather than
// hand-parsed.
//
//go:embed themes.yaml
var themeData []byte

// PromptTheme is one named entry in the built-in theme table.
type PromptTheme struct {
	Prompt string `yaml:"prompt"`
}

var themes map[string]PromptTheme

func init() {
	themes = map[string]PromptTheme{}
	if err := yaml.Unmarshal(themeData, &themes); err != nil {
		panic("config: malformed embedded themes.yaml: " + err.Error())
	}
}

// Theme resolves a theme name against the built-in table.
func Theme(name string) (PromptTheme, bool) {
	t, ok := themes[name]
	return t, ok
}
