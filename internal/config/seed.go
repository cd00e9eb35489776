package config

import (
	"fmt"
	"os"

	"batch-reconciliation-backend/internal/templates"

	"gopkg.in/yaml.v3"
)

// TemplateSeed is the layout of TEMPLATE_SEED_FILE:
//
//	key: bank-mapping-templates
//	templates:
//	  - name: Chase
//	    mapping: {identifier: Account, amount: Amount, date: Date}
//	    accountMap: {Operating: "123456"}
type TemplateSeed struct {
	Key       string               `yaml:"key"`
	Templates []templates.Template `yaml:"templates"`
}

// LoadTemplateSeed reads the seed file. An empty path yields an empty seed.
func LoadTemplateSeed(path string) (*TemplateSeed, error) {
	seed := &TemplateSeed{Key: templates.DefaultKey}
	if path == "" {
		return seed, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template seed: %w", err)
	}
	if err := yaml.Unmarshal(data, seed); err != nil {
		return nil, fmt.Errorf("failed to parse template seed: %w", err)
	}
	if seed.Key == "" {
		seed.Key = templates.DefaultKey
	}
	for i, t := range seed.Templates {
		if t.Name == "" {
			return nil, fmt.Errorf("template seed entry %d: %w", i+1, templates.ErrInvalidName)
		}
	}
	return seed, nil
}
