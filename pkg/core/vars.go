package core

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// VarContext holds resolved input variables from psvars.yml.
type VarContext map[string]string

// varRegex is a package-level compiled regular expression for matching {{ varName }} placeholders.
var varRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9\._-]+)\s*\}\}`)

// ResolveVarfile loads a YAML varfile (e.g. psvars.yml), parses it, and resolves special values.
func ResolveVarfile(path string) (VarContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading varfile %q: %w", path, err)
	}

	var rawVars map[string]string
	if err := yaml.Unmarshal(data, &rawVars); err != nil {
		return nil, fmt.Errorf("parsing varfile YAML from %q: %w", path, err)
	}

	envRe := regexp.MustCompile(`^\s*\{\{\s*env\.([A-Za-z0-9_]+)\s*}}\s*$`)

	resolvedCtx := make(VarContext, len(rawVars))
	for key, val := range rawVars {
		if envRe.MatchString(val) {
			match := envRe.FindStringSubmatch(val)
			envKey := match[1]
			envVal, exists := os.LookupEnv(envKey)
			if !exists {
				log.Printf("warning: environment variable %q not found for varfile key %q", envKey, key)
			}
			resolvedCtx[key] = envVal
		} else {
			resolvedCtx[key] = val
		}
	}
	return resolvedCtx, nil
}

// ResolveTargetVariables takes a single target and resolves all its templated
// fields using the global context and the records extracted by earlier targets.
func ResolveTargetVariables(target *Target, globals VarContext, results TargetResultsContext) (*Target, error) {
	// Create a deep copy of the target to avoid modifying the original job definition.
	var resolvedTarget Target
	b, _ := yaml.Marshal(target)
	if err := yaml.Unmarshal(b, &resolvedTarget); err != nil {
		return nil, fmt.Errorf("deep copying target for resolution: %w", err)
	}

	var err error
	coreResolver := func(input string) (string, error) {
		return ResolveStringWithContext(input, globals, results)
	}

	resolvedTarget.URL, err = coreResolver(resolvedTarget.URL)
	if err != nil {
		return nil, fmt.Errorf("resolving url for target %q: %w", target.ID, err)
	}
	resolvedTarget.Prompt, err = coreResolver(resolvedTarget.Prompt)
	if err != nil {
		return nil, fmt.Errorf("resolving prompt for target %q: %w", target.ID, err)
	}
	resolvedTarget.WaitFor, err = coreResolver(resolvedTarget.WaitFor)
	if err != nil {
		return nil, fmt.Errorf("resolving wait_for for target %q: %w", target.ID, err)
	}
	resolvedTarget.UserAgent, err = coreResolver(resolvedTarget.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("resolving user_agent for target %q: %w", target.ID, err)
	}

	if resolvedTarget.Elements != nil {
		resolvedElements := make(map[string]string, len(resolvedTarget.Elements))
		for field, description := range resolvedTarget.Elements {
			resolvedDescription, errElem := coreResolver(description)
			if errElem != nil {
				return nil, fmt.Errorf("resolving elements[%s] for target %q: %w", field, target.ID, errElem)
			}
			resolvedElements[field] = resolvedDescription
		}
		resolvedTarget.Elements = resolvedElements
	}

	for i := range resolvedTarget.Cookies {
		resolvedTarget.Cookies[i].Value, err = coreResolver(resolvedTarget.Cookies[i].Value)
		if err != nil {
			return nil, fmt.Errorf("resolving cookies[%d] for target %q: %w", i, target.ID, err)
		}
	}

	if resolvedTarget.Proxy != nil {
		for i := range resolvedTarget.Proxy.ProxyURLs {
			resolvedTarget.Proxy.ProxyURLs[i], err = coreResolver(resolvedTarget.Proxy.ProxyURLs[i])
			if err != nil {
				return nil, fmt.Errorf("resolving proxy.proxy_urls[%d] for target %q: %w", i, target.ID, err)
			}
		}
	}

	// Resolve target.Timeout string
	if resolvedTarget.Timeout != "" {
		resolvedTarget.Timeout, err = coreResolver(resolvedTarget.Timeout)
		if err != nil {
			return nil, fmt.Errorf("resolving timeout for target %q: %w", target.ID, err)
		}
	}

	return &resolvedTarget, nil
}

// ResolveStringWithContext is the core template resolution engine.
func ResolveStringWithContext(input string, globals VarContext, results TargetResultsContext) (string, error) {
	var firstErr error
	output := varRegex.ReplaceAllStringFunc(input, func(match string) string {
		if firstErr != nil {
			return match // Stop processing if an error has occurred
		}

		key := varRegex.FindStringSubmatch(match)[1]
		val, found := FindValueInContext(key, globals, results)

		if !found {
			firstErr = fmt.Errorf("undefined variable: %s", key)
			return match
		}
		return fmt.Sprintf("%v", val)
	})

	if firstErr != nil {
		return "", firstErr
	}
	return output, nil
}

// FindValueInContext orchestrates the lookup for a variable. Keys of the form
// `targets.<id>.items.<n>.<field>` reach into earlier targets' records; a
// `.json` suffix marshals the resolved subtree.
func FindValueInContext(key string, globals VarContext, results TargetResultsContext) (any, bool) {
	wantsJSON := strings.HasSuffix(key, ".json")
	if wantsJSON {
		key = strings.TrimSuffix(key, ".json")
	}

	var value any
	var found bool

	// Try to resolve as a `targets` variable
	if strings.HasPrefix(key, "targets.") {
		parts := strings.Split(key, ".")
		if len(parts) < 3 { // Must be at least `targets.id.field`
			return nil, false
		}
		targetID := parts[1]
		field := parts[2]

		if result, ok := results[targetID]; ok {
			switch field {
			case "items":
				value, found = GetNestedValue(itemsAsAny(result.Items), parts[3:])
			case "url":
				if len(parts) == 3 {
					value, found = result.URL, true
				}
			case "count":
				if len(parts) == 3 {
					value, found = len(result.Items), true
				}
			}
		}
	} else {
		if val, ok := globals[key]; ok {
			value, found = val, true
		}
	}

	if !found {
		return nil, false
	}

	if wantsJSON {
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("{\"error\": \"failed to marshal to json: %v\"}", err), true
		}
		return string(jsonBytes), true
	}

	return value, true
}

// GetNestedValue traverses a data structure using a path slice. Maps are
// keyed by name, slices by numeric index.
func GetNestedValue(data any, path []string) (any, bool) {
	if len(path) == 0 {
		return data, true
	}
	if data == nil {
		return nil, false
	}

	current := data
	for _, keyInPath := range path {
		switch typedCurrent := current.(type) {
		case map[string]any:
			if val, exists := typedCurrent[keyInPath]; exists {
				current = val
			} else {
				return nil, false
			}
		case map[string]string:
			if val, exists := typedCurrent[keyInPath]; exists {
				current = val
			} else {
				return nil, false
			}
		case []any:
			idx, err := strconv.Atoi(keyInPath)
			if err != nil || idx < 0 || idx >= len(typedCurrent) {
				return nil, false
			}
			current = typedCurrent[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func itemsAsAny(items []map[string]any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// InjectVarsIntoJob is kept for the linter; it only resolves global variables.
func InjectVarsIntoJob(job *Job, globalVarCtx VarContext) (*Job, error) {
	if job == nil {
		return nil, fmt.Errorf("injecting vars into nil job")
	}

	// Create a deep copy
	var updatedJob Job
	b, err := yaml.Marshal(job)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, &updatedJob); err != nil {
		return nil, err
	}

	resolver := func(input string) string {
		return varRegex.ReplaceAllStringFunc(input, func(match string) string {
			key := varRegex.FindStringSubmatch(match)[1]

			if val, ok := globalVarCtx[key]; ok {
				return val
			}

			return match
		})
	}

	for i, target := range updatedJob.Targets {
		t := target // Work on a copy
		t.URL = resolver(t.URL)
		t.Prompt = resolver(t.Prompt)
		t.WaitFor = resolver(t.WaitFor)
		t.UserAgent = resolver(t.UserAgent)
		t.Timeout = resolver(t.Timeout)

		if t.Elements != nil {
			resolvedElements := make(map[string]string, len(t.Elements))
			for field, description := range t.Elements {
				resolvedElements[field] = resolver(description)
			}
			t.Elements = resolvedElements
		}

		for j := range t.Cookies {
			t.Cookies[j].Value = resolver(t.Cookies[j].Value)
		}
		if t.Proxy != nil {
			for j := range t.Proxy.ProxyURLs {
				t.Proxy.ProxyURLs[j] = resolver(t.Proxy.ProxyURLs[j])
			}
		}

		updatedJob.Targets[i] = t
	}

	return &updatedJob, nil
}

func ResolveProviderVariables(p *ProviderConfig, globals VarContext) (*ProviderConfig, error) {
	// Create a deep copy to avoid modifying the original
	var resolvedProvider ProviderConfig
	b, _ := yaml.Marshal(p)
	if err := yaml.Unmarshal(b, &resolvedProvider); err != nil {
		return nil, fmt.Errorf("deep copying provider for resolution: %w", err)
	}

	resolvedKey, err := ResolveStringWithContext(resolvedProvider.APIKey, globals, nil)
	if err != nil {
		return nil, fmt.Errorf("resolving 'api_key' for provider %q: %w", p.Name, err)
	}
	resolvedProvider.APIKey = resolvedKey

	resolvedBaseURL, err := ResolveStringWithContext(resolvedProvider.BaseURL, globals, nil)
	if err != nil {
		return nil, fmt.Errorf("resolving 'base_url' for provider %q: %w", p.Name, err)
	}
	resolvedProvider.BaseURL = resolvedBaseURL

	return &resolvedProvider, nil
}
