package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

type PromptManager struct {
	prompts map[string]string // template name -> complete prompt
}

// loaded prompt template
type PromptTemplate struct {
	BasePrompt string `yaml:"base_prompt"`
	Prompt     string `yaml:"prompt"`
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		prompts: make(map[string]string),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// builds a prompt for the given template, substituting each {{.Key}} in
// vars. Simple string replacement instead of template execution.
func (pm *PromptManager) BuildPrompt(name string, vars map[string]string) (string, error) {
	prompt, exists := pm.prompts[name]
	if !exists {
		return "", fmt.Errorf("template not found: %s", name)
	}

	result := prompt
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}
	return result, nil
}

// GetTemplates returns the names of all loaded templates
func (pm *PromptManager) GetTemplates() []string {
	names := make([]string, 0, len(pm.prompts))
	for name := range pm.prompts {
		names = append(names, name)
	}
	return names
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		var fullPrompt strings.Builder
		if promptTemplate.BasePrompt != "" {
			fullPrompt.WriteString(promptTemplate.BasePrompt)
			fullPrompt.WriteString("\n\n")
		}
		fullPrompt.WriteString(promptTemplate.Prompt)

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.prompts[name] = fullPrompt.String()
	}

	return nil
}
