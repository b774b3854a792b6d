package maestro

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gremlin/internal/flow"
	"github.com/roach88/gremlin/internal/playwright"
	"github.com/roach88/gremlin/internal/spec"
)

// IndexFile is the path of the index flow within the generated set.
const IndexFile = "index.yaml"

// ErrNoAppID reports a spec without an app id and no override.
var ErrNoAppID = errors.New("maestro needs an app id: set metadata.appId or pass one")

// File is one generated flow file, with a path relative to the output
// directory.
type File struct {
	Path    string
	Content string
}

// unit is one generated flow before encoding. A unit with skip set has no
// commands; skip says why.
type unit struct {
	name string
	slug string
	tags []string
	cmds *commandList
	skip string
}

// slugSet hands out file slugs, suffixing repeats with -2, -3 and so on.
type slugSet map[string]bool

func (s slugSet) unique(base string) string {
	slug := base
	for n := 2; s[slug]; n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	s[slug] = true
	return slug
}

// Generate renders s as one Maestro file per flow (or per transition) plus
// an index that runs them in order. The index comes first.
func Generate(s *spec.Spec, opts Options) ([]File, error) {
	g, err := newGenerator(s, opts)
	if err != nil {
		return nil, err
	}
	units, err := g.units()
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(units)+1)
	index := &commandList{}
	if len(units) == 0 && opts.Comments {
		index.comment("no flow from the initial state reaches a terminal state")
	}
	for _, u := range units {
		if u.skip != "" {
			index.comment("skipped " + u.skip)
			continue
		}
		p := path.Join("flows", u.slug+".yaml")
		out, err := encodeStream(g.config(u.name, u.tags), u.cmds.node())
		if err != nil {
			return nil, fmt.Errorf("flow %q: %w", u.name, err)
		}
		files = append(files, File{Path: p, Content: out})
		index.add(command("runFlow", str(p)))
	}

	out, err := encodeStream(g.config(s.Name, []string{"gremlin", "index"}), index.node())
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	return append([]File{{Path: IndexFile, Content: out}}, files...), nil
}

// GenerateSingle renders every flow into one multi-document stream, a
// config and a command document per flow.
func GenerateSingle(s *spec.Spec, opts Options) (string, error) {
	g, err := newGenerator(s, opts)
	if err != nil {
		return "", err
	}
	units, err := g.units()
	if err != nil {
		return "", err
	}

	docs := make([]*yaml.Node, 0, 2*len(units))
	for _, u := range units {
		if u.skip != "" {
			continue
		}
		docs = append(docs, g.config(u.name, u.tags), u.cmds.node())
	}
	if len(docs) == 0 {
		return "", nil
	}
	return encodeStream(docs...)
}

type generator struct {
	spec  *spec.Spec
	opts  Options
	appID string
	graph *flow.Graph
}

func newGenerator(s *spec.Spec, opts Options) (*generator, error) {
	if err := spec.Check(s); err != nil {
		return nil, err
	}
	appID := opts.AppID
	if appID == "" {
		appID = s.Metadata.AppID
	}
	if appID == "" {
		return nil, ErrNoAppID
	}
	return &generator{spec: s, opts: opts, appID: appID, graph: flow.NewGraph(s)}, nil
}

func (g *generator) units() ([]unit, error) {
	slugs := slugSet{}
	switch g.opts.GroupBy {
	case GroupByFlow, "":
		flows, err := flow.Extract(g.spec, g.opts.Extract...)
		if err != nil {
			return nil, err
		}
		units := make([]unit, 0, len(flows))
		for _, f := range flows {
			units = append(units, g.flowUnit(f, slugs))
		}
		return units, nil
	case GroupByTransition:
		var units []unit
		for _, t := range g.spec.Transitions {
			units = append(units, g.transitionUnit(t, slugs))
		}
		return units, nil
	default:
		return nil, fmt.Errorf("unknown grouping %q", g.opts.GroupBy)
	}
}

func (g *generator) config(name string, tags []string) *yaml.Node {
	tagNodes := make([]*yaml.Node, len(tags))
	for i, t := range tags {
		tagNodes[i] = str(t)
	}
	return mapping(
		str("appId"), str(g.appID),
		str("name"), str(name),
		str("tags"), seq(tagNodes...),
	)
}

func (g *generator) launch(c *commandList) {
	c.add(command("launchApp", nil))
	if g.spec.Metadata.Platform == "web" {
		c.add(command("openLink", str(playwright.BaseURL(g.spec, ""))))
	}
}

func (g *generator) flowUnit(f flow.Flow, slugs slugSet) unit {
	c := &commandList{}
	if g.opts.Comments {
		c.comment(fmt.Sprintf("steps: %d, observed frequency: %d", len(f.Transitions), f.Frequency))
	}
	g.launch(c)
	slug := slugs.unique(playwright.Slug(f.Name))
	for i, t := range f.Transitions {
		g.step(c, t, i+1, slug)
	}
	return unit{name: f.Name, slug: slug, tags: []string{"gremlin", "flow"}, cmds: c}
}

func (g *generator) transitionUnit(t spec.Transition, slugs slugSet) unit {
	s := g.spec
	name := fmt.Sprintf("%s: %s -> %s", t.ID, s.DisplayName(t.From), s.DisplayName(t.To))
	prelude, ok := g.graph.ShortestPath(s.InitialState, t.From)
	if !ok {
		skip := fmt.Sprintf("%s: %s is unreachable from %s", t.ID, s.DisplayName(t.From), s.DisplayName(s.InitialState))
		return unit{name: name, skip: skip}
	}

	c := &commandList{}
	if g.opts.Comments {
		c.comment(fmt.Sprintf("observed frequency: %d", t.Frequency))
	}
	g.launch(c)
	if len(prelude) > 0 && g.opts.Comments {
		c.comment("reach " + s.DisplayName(t.From))
	}
	for _, p := range prelude {
		lowerEvent(c, p.Event)
		postCondition(c, s, p.To, g.opts.Comments)
	}
	slug := slugs.unique(playwright.Slug(t.ID))
	g.step(c, t, 1, slug)

	tags := []string{"gremlin", "transition", "frequency-" + strconv.Itoa(t.Frequency)}
	return unit{name: name, slug: slug, tags: tags, cmds: c}
}

func (g *generator) step(c *commandList, t spec.Transition, n int, shotPrefix string) {
	s := g.spec
	if g.opts.Comments {
		c.comment(fmt.Sprintf("%s: %s (%s -> %s)", t.ID, flow.Describe(t.Event), s.DisplayName(t.From), s.DisplayName(t.To)))
	}
	guard(c, t.Guard, g.opts.Comments)
	lowerEvent(c, t.Event)
	if t.Action != nil && g.opts.Comments {
		c.comment("effect: " + spec.FormatAction(t.Action))
	}
	postCondition(c, s, t.To, g.opts.Comments)
	if g.opts.Screenshots {
		name := fmt.Sprintf("%s-step-%d-%s", shotPrefix, n, playwright.Slug(t.To))
		c.add(command("takeScreenshot", str(name)))
	}
}

// Names lists the flow names in a generated index, in run order.
func Names(files []File) []string {
	var names []string
	for _, f := range files {
		if f.Path == IndexFile {
			continue
		}
		dec := yaml.NewDecoder(strings.NewReader(f.Content))
		var cfg struct {
			Name string `yaml:"name"`
		}
		if err := dec.Decode(&cfg); err == nil {
			names = append(names, cfg.Name)
		}
	}
	return names
}
