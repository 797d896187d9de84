package config

import (
	"os"
	"strings"

	"emperror.dev/errors"
	"gopkg.in/yaml.v3"
)

// WriteConfigWithComments writes the configuration to disk while preserving
// comments from the file already there. If there is no file, or it can't be
// merged, the configuration is written as plain YAML.
func WriteConfigWithComments(cfg *Configuration) error {
	if cfg.path == "" {
		return errors.New("cannot write configuration, no path defined in struct")
	}
	raw, err := os.ReadFile(cfg.path)
	if err != nil {
		return WriteToDisk(cfg)
	}
	merged, err := MergeConfigWithRaw(raw, cfg)
	if err != nil {
		return WriteToDisk(cfg)
	}
	_writeLock.Lock()
	defer _writeLock.Unlock()
	return errors.Wrap(os.WriteFile(cfg.path, merged, 0o600), "config: failed to write config file")
}

// MergeConfigWithRaw merges a Configuration into raw YAML content, keeping
// the comments and key order of the original.
func MergeConfigWithRaw(raw []byte, cfg *Configuration) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil || len(root.Content) == 0 {
		return yaml.Marshal(cfg)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "config: failed to marshal updated config")
	}
	var updated yaml.Node
	if err := yaml.Unmarshal(b, &updated); err != nil {
		return nil, errors.Wrap(err, "config: failed to parse updated config")
	}
	mergeNodes(root.Content[0], updated.Content[0])
	out, err := yaml.Marshal(&root)
	if err != nil {
		return nil, errors.Wrap(err, "config: failed to marshal merged config")
	}
	return out, nil
}

func mergeNodes(dst, src *yaml.Node) {
	switch {
	case dst.Kind == yaml.MappingNode && src.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(src.Content); i += 2 {
			key, value := src.Content[i], src.Content[i+1]
			if existing := lookup(dst, key.Value); existing != nil {
				mergeNodes(existing, value)
				continue
			}
			dst.Content = append(dst.Content, key, value)
		}
	case dst.Kind == yaml.SequenceNode && src.Kind == yaml.SequenceNode:
		dst.Content = src.Content
	case dst.Kind == yaml.ScalarNode && src.Kind == yaml.ScalarNode:
		dst.Value = src.Value
		dst.Tag = src.Tag
	default:
		*dst = *src
	}
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// SetValue updates a single value in the configuration file at path, using
// dot-notation for the key (e.g. "generator.model"). Comments and formatting
// are left alone and missing keys are created. The value is written as a
// plain YAML scalar so "8080" ends up an integer and "true" a boolean.
func SetValue(path, key, value string) error {
	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "config: failed to read config file")
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return errors.Wrap(err, "config: failed to parse config file")
	}
	if len(root.Content) == 0 {
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}

	node := root.Content[0]
	parts := strings.Split(key, ".")
	for i, part := range parts {
		if node.Kind != yaml.MappingNode {
			return errors.Errorf("config: %s is not a mapping", strings.Join(parts[:i], "."))
		}
		next := lookup(node, part)
		if next == nil {
			next = &yaml.Node{Kind: yaml.MappingNode}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: part}, next)
		}
		node = next
	}
	*node = yaml.Node{Kind: yaml.ScalarNode, Value: value, LineComment: node.LineComment, HeadComment: node.HeadComment}

	out, err := yaml.Marshal(&root)
	if err != nil {
		return errors.Wrap(err, "config: failed to marshal config file")
	}
	// Make sure the result still is a valid configuration.
	c, err := NewAtPath(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(out, c); err != nil {
		return errors.Wrapf(err, "config: invalid value for %s", key)
	}
	_writeLock.Lock()
	defer _writeLock.Unlock()
	return errors.Wrap(os.WriteFile(path, out, 0o600), "config: failed to write config file")
}
