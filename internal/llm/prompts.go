package llm

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompts holds the developer prompts of every structured request
type Prompts struct {
	SelectTopic     string `yaml:"select_topic"`
	TranslateTopics string `yaml:"translate_topics"`
	TranslateTags   string `yaml:"translate_tags"`
	TagEntities     string `yaml:"tag_entities"`
}

// DefaultPrompts returns the built-in prompts
func DefaultPrompts() Prompts {
	p, err := ParsePrompts(defaultPrompts)
	if err != nil {
		panic(fmt.Sprintf("built-in prompts: %v", err))
	}
	return p
}

// ParsePrompts reads prompts from YAML. All four prompts are required.
func ParsePrompts(data []byte) (Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Prompts{}, fmt.Errorf("parse prompts: %w", err)
	}
	if p.SelectTopic == "" || p.TranslateTopics == "" || p.TranslateTags == "" || p.TagEntities == "" {
		return Prompts{}, fmt.Errorf("parse prompts: select_topic, translate_topics, translate_tags and tag_entities are required")
	}
	return p, nil
}

// LoadPrompts reads prompts from a YAML file
func LoadPrompts(path string) (Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("read prompts: %w", err)
	}
	return ParsePrompts(data)
}
