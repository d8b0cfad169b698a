package scene

import "fmt"

// PatchOp represents the type of patch operation
type PatchOp uint8

const (
	// OpReplaceText replaces text node content
	OpReplaceText PatchOp = 0x01
	// OpSetAttr sets or replaces an attribute
	OpSetAttr PatchOp = 0x02
	// OpRemoveNode removes a node
	OpRemoveNode PatchOp = 0x03
	// OpInsertNode inserts a new node (Patch.Node carries the subtree)
	OpInsertNode PatchOp = 0x04
	// OpRemoveAttr removes an attribute
	OpRemoveAttr PatchOp = 0x05
	// OpMoveNode moves a node to a new position
	OpMoveNode PatchOp = 0x06
	// OpSetTransform sets a node's pixel translation
	OpSetTransform PatchOp = 0x07
)

// Patch represents a single scene mutation.
type Patch struct {
	Op       PatchOp
	NodeID   uint32
	ParentID uint32 // for insert/move/replace-text operations
	BeforeID uint32 // for insert/move operations (0 means append)
	Key      string // attribute key for set/remove attribute
	Value    string // text content or attribute value
	DX, DY   float64
	Node     *Node // for insert operations
}

// String returns a human-readable representation of the patch
func (p Patch) String() string {
	switch p.Op {
	case OpReplaceText:
		return fmt.Sprintf("ReplaceText(node=%d, text=%q)", p.NodeID, p.Value)
	case OpSetAttr:
		return fmt.Sprintf("SetAttr(node=%d, key=%q, value=%q)", p.NodeID, p.Key, p.Value)
	case OpRemoveAttr:
		return fmt.Sprintf("RemoveAttr(node=%d, key=%q)", p.NodeID, p.Key)
	case OpRemoveNode:
		return fmt.Sprintf("RemoveNode(node=%d)", p.NodeID)
	case OpInsertNode:
		return fmt.Sprintf("InsertNode(node=%d, parent=%d, before=%d)", p.NodeID, p.ParentID, p.BeforeID)
	case OpMoveNode:
		return fmt.Sprintf("MoveNode(node=%d, parent=%d, before=%d)", p.NodeID, p.ParentID, p.BeforeID)
	case OpSetTransform:
		return fmt.Sprintf("SetTransform(node=%d, dx=%v, dy=%v)", p.NodeID, p.DX, p.DY)
	default:
		return fmt.Sprintf("Unknown(op=%d)", p.Op)
	}
}

// Recorder collects patches for mutations made through the node API.
// It is attached to a tree root with Observe; a remote host drains it
// after each event dispatch and streams the patches to its mirror.
type Recorder struct {
	patches []Patch
}

// Observe attaches rec to n's tree. Mutations anywhere under n are
// recorded from this point on. Pass nil to stop recording.
func (n *Node) Observe(rec *Recorder) {
	n.Root().rec = rec
}

// Drain returns the recorded patches and resets the recorder.
func (rec *Recorder) Drain() []Patch {
	out := rec.patches
	rec.patches = nil
	return out
}

func (n *Node) record(p Patch) {
	n.Root().recordOn(p)
}

func (n *Node) recordOn(p Patch) {
	if n.rec != nil {
		n.rec.patches = append(n.rec.patches, p)
	}
}

// Diff computes the patches that transform prev into next. Nodes are
// matched positionally when kind and tag agree; a matched next node
// adopts the prev node's ID so remote mirrors keep stable references
// across re-renders. Unmatched nodes are removed and inserted whole.
func Diff(prev, next *Node) []Patch {
	var patches []Patch
	diffNode(&patches, prev, next, 0)
	return patches
}

func diffNode(patches *[]Patch, prev, next *Node, parentID uint32) {
	if prev == nil && next == nil {
		return
	}

	if prev != nil && next == nil {
		*patches = append(*patches, Patch{Op: OpRemoveNode, NodeID: prev.id})
		return
	}

	if prev == nil {
		*patches = append(*patches, Patch{Op: OpInsertNode, NodeID: next.id, ParentID: parentID, Node: next})
		return
	}

	// Kind or tag mismatch: replace the whole subtree.
	if prev.Kind != next.Kind || prev.Tag != next.Tag {
		*patches = append(*patches,
			Patch{Op: OpRemoveNode, NodeID: prev.id},
			Patch{Op: OpInsertNode, NodeID: next.id, ParentID: parentID, Node: next},
		)
		return
	}

	// Matched: the next node takes over the prev node's identity.
	next.id = prev.id

	if prev.Kind == KindText {
		if prev.Text != next.Text {
			// ParentID lets mirrors that cannot address text nodes
			// directly replace the parent's text content instead.
			*patches = append(*patches, Patch{Op: OpReplaceText, NodeID: next.id, ParentID: parentID, Value: next.Text})
		}
		return
	}

	diffAttrs(patches, prev, next)
	diffTransform(patches, prev, next)

	// Children, positionally.
	max := len(prev.Kids)
	if len(next.Kids) > max {
		max = len(next.Kids)
	}
	for i := 0; i < max; i++ {
		var p, nx *Node
		if i < len(prev.Kids) {
			p = prev.Kids[i]
		}
		if i < len(next.Kids) {
			nx = next.Kids[i]
		}
		diffNode(patches, p, nx, next.id)
	}
}

// Commit swaps prev for next under parent without recording patches:
// the Diff that accompanies it already describes the change. A nil prev
// appends next.
func Commit(parent *Node, prev, next *Node) {
	if prev != nil {
		idx := parent.indexOf(prev)
		if idx >= 0 {
			prev.parent = nil
			next.parent = parent
			parent.Kids[idx] = next
			return
		}
	}
	next.detachQuiet()
	next.parent = parent
	parent.Kids = append(parent.Kids, next)
}

func diffAttrs(patches *[]Patch, prev, next *Node) {
	for k, v := range next.Attrs {
		if old, ok := prev.Attrs[k]; !ok || old != v {
			*patches = append(*patches, Patch{Op: OpSetAttr, NodeID: next.id, Key: k, Value: v})
		}
	}
	for k := range prev.Attrs {
		if _, ok := next.Attrs[k]; !ok {
			*patches = append(*patches, Patch{Op: OpRemoveAttr, NodeID: next.id, Key: k})
		}
	}
	if prev.ClassAttr() != next.ClassAttr() {
		*patches = append(*patches, Patch{Op: OpSetAttr, NodeID: next.id, Key: "class", Value: next.ClassAttr()})
	}
}

func diffTransform(patches *[]Patch, prev, next *Node) {
	ptx, pty, pok := prev.Transform()
	ntx, nty, nok := next.Transform()
	if nok && (!pok || ptx != ntx || pty != nty) {
		*patches = append(*patches, Patch{Op: OpSetTransform, NodeID: next.id, DX: ntx, DY: nty})
	}
}
