// Package config provides configuration types, defaults, and persistence for markpad.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SaveUI updates the ui section in the config file. This preserves
// comments and formatting in other sections by using yaml.Node.
func SaveUI(configPath string, ui UIConfig) error {
	return saveSection(configPath, "ui", buildUINode(ui))
}

// SaveThemeMode updates theme.mode in the config file, preserving the
// rest of the theme section.
func SaveThemeMode(configPath string, mode string) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	themeNode := findOrAppendMapping(&doc, "theme")
	setMappingValue(themeNode, "mode", &yaml.Node{Kind: yaml.ScalarNode, Value: mode})

	return writeDoc(configPath, &doc)
}

// buildUINode creates a yaml.Node representing the ui mapping.
func buildUINode(ui UIConfig) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "show_status_bar"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatBool(ui.ShowStatusBar)},
	)
	if ui.MarkdownStyle != "" {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "markdown_style"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: ui.MarkdownStyle},
		)
	}
	if ui.DiffMode != "" {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "diff_mode"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: ui.DiffMode},
		)
	}
	return node
}

// saveSection replaces one top-level key in the config file with the
// given node, creating the file if it does not exist.
func saveSection(configPath, key string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		// Empty or new file - create document structure
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: key},
						value,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind == yaml.MappingNode {
			setMappingValue(root, key, value)
		}
	}

	return writeDoc(configPath, &doc)
}

// findOrAppendMapping returns the mapping node under the given top-level
// key, creating the document structure and key as needed.
func findOrAppendMapping(doc *yaml.Node, key string) *yaml.Node {
	if doc.Kind == 0 {
		*doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	root := doc.Content[0]

	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == key && root.Content[i+1].Kind == yaml.MappingNode {
			return root.Content[i+1]
		}
	}

	node := &yaml.Node{Kind: yaml.MappingNode}
	setMappingValue(root, key, node)
	return node
}

// setMappingValue replaces the value for key in a mapping node, or
// appends the pair when the key is absent.
func setMappingValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
}

// writeDoc marshals the document and writes it atomically (write to
// temp, then rename).
func writeDoc(configPath string, doc *yaml.Node) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".markpad.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
