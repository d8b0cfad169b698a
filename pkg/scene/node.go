// Package scene implements the retained element tree the chart engine
// renders into. Nodes carry attributes, a class set, layout bounds, a
// translation transform, and a typed Meta attachment for the drag
// system's capability flag and point tag. Mutations made through the
// node API are optionally recorded as patches so remote hosts can
// mirror them (see Recorder and Diff).
package scene

import (
	"sort"
	"sync/atomic"
)

// NodeKind represents the type of scene node
type NodeKind uint8

const (
	// KindElement represents an element node
	KindElement NodeKind = iota
	// KindText represents a text node
	KindText
)

// Meta is the typed attachment a node carries for the drag system.
// Draggable is the capability flag checked by the pointer layer;
// Series/Point are the locator tag stamped at render time.
type Meta struct {
	Draggable bool
	Tagged    bool
	Series    int
	Point     int
}

// nextNodeID assigns stable IDs used by the patch protocol.
var nextNodeID atomic.Uint32

// Node is a single scene element or text node.
type Node struct {
	Kind NodeKind
	Tag  string
	Text string

	// Attrs holds plain string attributes. Class names live in the
	// class set, not here.
	Attrs map[string]string

	// Bounds is the node's pixel bounding box, stamped by the chart
	// engine at layout time.
	Bounds Rect

	Kids []*Node

	id       uint32
	parent   *Node
	classes  map[string]struct{}
	meta     *Meta
	handlers map[string][]*handler

	tx, ty       float64
	hasTransform bool

	// rec is set on the root node only; mutations anywhere in the
	// tree are recorded against the root's recorder.
	rec *Recorder
}

// NewElement creates a new element node.
func NewElement(tag string) *Node {
	return &Node{
		Kind: KindElement,
		Tag:  tag,
		id:   nextNodeID.Add(1),
	}
}

// NewText creates a new text node.
func NewText(text string) *Node {
	return &Node{
		Kind: KindText,
		Text: text,
		id:   nextNodeID.Add(1),
	}
}

// ID returns the node's patch-protocol ID.
func (n *Node) ID() uint32 { return n.id }

// Parent returns the node's parent, or nil for a detached node or root.
func (n *Node) Parent() *Node { return n.parent }

// Root walks the parent chain to the tree root.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Meta returns the node's typed attachment, allocating it on first use.
func (n *Node) Meta() *Meta {
	if n.meta == nil {
		n.meta = &Meta{}
	}
	return n.meta
}

// HasMeta reports whether the node carries a Meta attachment.
func (n *Node) HasMeta() bool { return n.meta != nil }

// Append adds kid as the last child of n.
func (n *Node) Append(kid *Node) {
	kid.detachQuiet()
	kid.parent = n
	n.Kids = append(n.Kids, kid)
	n.record(Patch{Op: OpInsertNode, NodeID: kid.id, ParentID: n.id, Node: kid})
}

// InsertAfter inserts sibling directly after n in n's parent. Inserting
// after a detached node panics: it indicates a render/tagging bug.
func (n *Node) InsertAfter(sibling *Node) {
	p := n.parent
	if p == nil {
		panic("scene: InsertAfter on detached node")
	}
	sibling.detachQuiet()
	sibling.parent = p
	idx := p.indexOf(n)
	p.Kids = append(p.Kids, nil)
	copy(p.Kids[idx+2:], p.Kids[idx+1:])
	p.Kids[idx+1] = sibling

	before := uint32(0)
	if idx+2 < len(p.Kids) {
		before = p.Kids[idx+2].id
	}
	n.record(Patch{Op: OpInsertNode, NodeID: sibling.id, ParentID: p.id, BeforeID: before, Node: sibling})
}

// Detach removes the node from its parent. Detaching an already
// detached node is a no-op.
func (n *Node) Detach() {
	if n.parent == nil {
		return
	}
	root := n.Root()
	n.detachQuiet()
	root.recordOn(Patch{Op: OpRemoveNode, NodeID: n.id})
}

// RemoveKids detaches all children of n.
func (n *Node) RemoveKids() {
	for len(n.Kids) > 0 {
		n.Kids[0].Detach()
	}
}

func (n *Node) detachQuiet() {
	p := n.parent
	if p == nil {
		return
	}
	idx := p.indexOf(n)
	if idx >= 0 {
		p.Kids = append(p.Kids[:idx], p.Kids[idx+1:]...)
	}
	n.parent = nil
}

func (n *Node) indexOf(kid *Node) int {
	for i, k := range n.Kids {
		if k == kid {
			return i
		}
	}
	return -1
}

// SetAttr sets a string attribute.
func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	if old, ok := n.Attrs[key]; ok && old == value {
		return
	}
	n.Attrs[key] = value
	n.record(Patch{Op: OpSetAttr, NodeID: n.id, Key: key, Value: value})
}

// Attr returns the attribute value, or "" when unset.
func (n *Node) Attr(key string) string {
	return n.Attrs[key]
}

// DelAttr removes an attribute.
func (n *Node) DelAttr(key string) {
	if n.Attrs == nil {
		return
	}
	if _, ok := n.Attrs[key]; !ok {
		return
	}
	delete(n.Attrs, key)
	n.record(Patch{Op: OpRemoveAttr, NodeID: n.id, Key: key})
}

// SetText replaces a text node's content.
func (n *Node) SetText(text string) {
	if n.Text == text {
		return
	}
	n.Text = text
	var parentID uint32
	if n.parent != nil {
		parentID = n.parent.id
	}
	n.record(Patch{Op: OpReplaceText, NodeID: n.id, ParentID: parentID, Value: text})
}

// AddClass adds a class name to the node's class set.
func (n *Node) AddClass(name string) {
	if name == "" {
		return
	}
	if n.classes == nil {
		n.classes = make(map[string]struct{})
	}
	if _, ok := n.classes[name]; ok {
		return
	}
	n.classes[name] = struct{}{}
	n.record(Patch{Op: OpSetAttr, NodeID: n.id, Key: "class", Value: n.ClassAttr()})
}

// RemoveClass removes a class name; unknown names are ignored.
func (n *Node) RemoveClass(name string) {
	if _, ok := n.classes[name]; !ok {
		return
	}
	delete(n.classes, name)
	n.record(Patch{Op: OpSetAttr, NodeID: n.id, Key: "class", Value: n.ClassAttr()})
}

// HasClass reports whether the class set contains name.
func (n *Node) HasClass(name string) bool {
	_, ok := n.classes[name]
	return ok
}

// ClassAttr renders the class set as a space-separated attribute value,
// sorted for stable output.
func (n *Node) ClassAttr() string {
	if len(n.classes) == 0 {
		return ""
	}
	names := make([]string, 0, len(n.classes))
	for name := range n.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	out := names[0]
	for _, name := range names[1:] {
		out += " " + name
	}
	return out
}

// SetTransform sets the node's pixel translation.
func (n *Node) SetTransform(dx, dy float64) {
	if n.hasTransform && n.tx == dx && n.ty == dy {
		return
	}
	n.tx, n.ty = dx, dy
	n.hasTransform = true
	n.record(Patch{Op: OpSetTransform, NodeID: n.id, DX: dx, DY: dy})
}

// Transform returns the node's translation and whether one is set.
func (n *Node) Transform() (dx, dy float64, ok bool) {
	return n.tx, n.ty, n.hasTransform
}

// Clone deep-copies the node. The copy gets fresh IDs, keeps attributes,
// classes, bounds, transform, and Meta, and drops event handlers.
func (n *Node) Clone() *Node {
	c := &Node{
		Kind:         n.Kind,
		Tag:          n.Tag,
		Text:         n.Text,
		Bounds:       n.Bounds,
		id:           nextNodeID.Add(1),
		tx:           n.tx,
		ty:           n.ty,
		hasTransform: n.hasTransform,
	}
	if n.Attrs != nil {
		c.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	if n.classes != nil {
		c.classes = make(map[string]struct{}, len(n.classes))
		for name := range n.classes {
			c.classes[name] = struct{}{}
		}
	}
	if n.meta != nil {
		m := *n.meta
		c.meta = &m
	}
	for _, kid := range n.Kids {
		kc := kid.Clone()
		kc.parent = c
		c.Kids = append(c.Kids, kc)
	}
	return c
}

// FindID returns the node with the given ID in this subtree, or nil.
func (n *Node) FindID(id uint32) *Node {
	if n.id == id {
		return n
	}
	for _, kid := range n.Kids {
		if found := kid.FindID(id); found != nil {
			return found
		}
	}
	return nil
}

// Pick returns the topmost node whose bounds contain the point. Later
// siblings render on top, so the search prefers them; a child wins over
// its parent. Returns nil when nothing contains the point.
func (n *Node) Pick(x, y float64) *Node {
	for i := len(n.Kids) - 1; i >= 0; i-- {
		if hit := n.Kids[i].Pick(x, y); hit != nil {
			return hit
		}
	}
	if n.Kind == KindElement && n.Bounds.Contains(x, y) {
		return n
	}
	return nil
}

// Walk visits n and every descendant in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, kid := range n.Kids {
		kid.Walk(fn)
	}
}
