package report

import "fmt"

// Group is a named, ordered container of reports and nested groups.
type Group struct {
	name     string
	title    string
	children []Node
	byName   map[string]struct{}
	sealed   bool
}

// NewGroup creates an empty group.
func NewGroup(name, title string) *Group {
	return &Group{
		name:   name,
		title:  title,
		byName: make(map[string]struct{}),
	}
}

// Name implements Node.
func (g *Group) Name() string { return g.name }

// Title implements Node.
func (g *Group) Title() string { return g.title }

// Children returns the direct children in insertion order.
func (g *Group) Children() []Node {
	out := make([]Node, len(g.children))
	copy(out, g.children)

	return out
}

// Sealed reports whether the group has been traversed.
func (g *Group) Sealed() bool { return g.sealed }

// Add appends a child. It fails without modifying the group when a sibling
// already uses the child's name or when the tree has been sealed.
func (g *Group) Add(child Node) error {
	if g.sealed {
		return fmt.Errorf("%w: cannot add %s to %s", ErrTreeSealed, child.Name(), g.name)
	}

	switch c := child.(type) {
	case *Group:
		if c == g || c.contains(g) {
			return fmt.Errorf("%w: %s would contain itself", ErrInvalidNode, c.name)
		}
	case Report:
	default:
		return fmt.Errorf("%w: %T", ErrInvalidNode, child)
	}

	if _, ok := g.byName[child.Name()]; ok {
		return fmt.Errorf("%w: %s already in %s", ErrDuplicateName, child.Name(), g.name)
	}

	g.children = append(g.children, child)
	g.byName[child.Name()] = struct{}{}

	return nil
}

func (g *Group) contains(target *Group) bool {
	for _, child := range g.children {
		if c, ok := child.(*Group); ok && (c == target || c.contains(target)) {
			return true
		}
	}

	return false
}

// MustAdd is Add for statically built trees; it panics on error.
func (g *Group) MustAdd(children ...Node) *Group {
	for _, c := range children {
		if err := g.Add(c); err != nil {
			panic(err)
		}
	}

	return g
}

// Entry is one node visited by Walk.
type Entry struct {
	Node Node
	// Group is set for group nodes and Report for leaves.
	Group  *Group
	Report Report
	Depth  int
}

// Walk returns every node below g in pre-order with its depth, children in
// insertion order. It seals the whole subtree and fails when two leaves share
// a name anywhere in the tree.
func (g *Group) Walk() ([]Entry, error) {
	var entries []Entry

	g.walk(0, &entries)

	seen := make(map[string]struct{})

	for _, e := range entries {
		if e.Report == nil {
			continue
		}

		if _, ok := seen[e.Report.Name()]; ok {
			return nil, fmt.Errorf("%w: report %s appears twice", ErrDuplicateName, e.Report.Name())
		}

		seen[e.Report.Name()] = struct{}{}
	}

	return entries, nil
}

func (g *Group) walk(depth int, entries *[]Entry) {
	g.sealed = true

	for _, child := range g.children {
		switch c := child.(type) {
		case *Group:
			*entries = append(*entries, Entry{Node: c, Group: c, Depth: depth})
			c.walk(depth+1, entries)
		case Report:
			*entries = append(*entries, Entry{Node: c, Report: c, Depth: depth})
		}
	}
}

// Flatten returns the leaf reports in pre-order and seals the tree.
func (g *Group) Flatten() ([]Report, error) {
	entries, err := g.Walk()
	if err != nil {
		return nil, err
	}

	return Leaves(entries), nil
}

// Leaves extracts the reports from a walk, preserving order.
func Leaves(entries []Entry) []Report {
	reports := make([]Report, 0, len(entries))

	for _, e := range entries {
		if e.Report != nil {
			reports = append(reports, e.Report)
		}
	}

	return reports
}
