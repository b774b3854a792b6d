package maestro

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

func str(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func mapping(kv ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: kv}
}

func seq(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Content: items}
}

// command builds a list item: a bare name, or name: arg.
func command(name string, arg *yaml.Node) *yaml.Node {
	if arg == nil {
		return str(name)
	}
	return mapping(str(name), arg)
}

// commandList accumulates commands and attaches pending comments to the
// next command, or to the end of the list.
type commandList struct {
	items   []*yaml.Node
	pending []string
}

func (c *commandList) add(n *yaml.Node) {
	if len(c.pending) > 0 {
		n.HeadComment = joinComments(c.pending)
		c.pending = nil
	}
	c.items = append(c.items, n)
}

func (c *commandList) comment(text string) {
	c.pending = append(c.pending, text)
}

func (c *commandList) node() *yaml.Node {
	n := seq(c.items...)
	if len(c.pending) > 0 {
		n.FootComment = joinComments(c.pending)
	}
	return n
}

func joinComments(lines []string) string {
	var b bytes.Buffer
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("# ")
		b.WriteString(l)
	}
	return b.String()
}

// encodeStream writes docs as one multi-document YAML stream.
func encodeStream(docs ...*yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for i, d := range docs {
		if err := enc.Encode(d); err != nil {
			return "", fmt.Errorf("encode document %d: %w", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
