package core

import "github.com/pagesift/pagesift/pkg/types"

// TargetResultsContext maps target IDs to their extracted records so later
// targets can reference them via {{ targets.<id>.items... }}.
type TargetResultsContext = map[string]types.TargetResult

type ProviderConfig = types.ProviderConfig

type Input struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required,omitempty"`
	Secret   bool   `yaml:"secret,omitempty"`
	Default  string `yaml:"default,omitempty"`
}

type Job struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Inputs      []Input          `yaml:"inputs"`
	Providers   []ProviderConfig `yaml:"providers"`
	Targets     []types.Target   `yaml:"targets"`
}

type Target = types.Target

type Cookie = types.Cookie

type ExecutionContext = types.ExecutionContext

type Logger = types.Logger
