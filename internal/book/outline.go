// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package book

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/poembook/pkg/types"
)

// LoadOutline reads an outline file: a mapping of chapter name to a list of
// topic strings. JSON and YAML are both accepted; chapter order is kept as
// written.
func LoadOutline(path string) (types.Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Outline{}, fmt.Errorf("reading outline: %w", err)
	}
	o, err := ParseOutline(data)
	if err != nil {
		return types.Outline{}, fmt.Errorf("parsing outline %s: %w", filepath.Base(path), err)
	}
	return o, nil
}

// ParseOutline decodes outline data. A yaml.Node walk is used instead of a
// map so chapters keep their document order.
func ParseOutline(data []byte) (types.Outline, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.Outline{}, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return types.Outline{}, fmt.Errorf("outline is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return types.Outline{}, fmt.Errorf("line %d: outline must map chapter names to topic lists", root.Line)
	}

	var outline types.Outline
	seen := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return types.Outline{}, fmt.Errorf("line %d: chapter name must be a string", key.Line)
		}
		name := key.Value
		if seen[name] {
			return types.Outline{}, fmt.Errorf("line %d: duplicate chapter %q", key.Line, name)
		}
		seen[name] = true

		topics, err := topicList(name, val)
		if err != nil {
			return types.Outline{}, err
		}
		outline.Chapters = append(outline.Chapters, types.Chapter{Name: name, Topics: topics})
	}
	return outline, nil
}

func topicList(chapter string, n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: chapter %q must list topics", n.Line, chapter)
	}
	topics := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			return nil, fmt.Errorf("line %d: topic in chapter %q must be a string", item.Line, chapter)
		}
		topic := strings.TrimSpace(item.Value)
		if topic == "" {
			return nil, fmt.Errorf("line %d: empty topic in chapter %q", item.Line, chapter)
		}
		if strings.ContainsAny(topic, `/\`) {
			return nil, fmt.Errorf("line %d: topic %q contains a path separator", item.Line, topic)
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

// FragmentPath is the deterministic location of a topic's fragment:
// dir/NNN_topic.ext with a zero-padded 1-based index.
func FragmentPath(dir string, idx int, topic, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%03d_%s%s", idx, topic, ext))
}
