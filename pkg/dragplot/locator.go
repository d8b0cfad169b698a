package dragplot

import (
	"errors"
	"fmt"

	"github.com/recera/dragplot/pkg/scene"
)

// ErrUntaggedNode is returned by Resolve for a node that never received
// a point tag. For a node carrying the draggable capability this is an
// invariant violation: the session layer panics instead of recovering.
var ErrUntaggedNode = errors.New("dragplot: node has no point tag")

// Tag stamps the (series, point) pair on a rendered point node. The
// chart engine invokes it once per point per render pass; a tag is
// never reused across re-renders with different indices. The pair is
// also mirrored into attr (when non-empty) so serialized output keeps
// it visible to external tooling.
func Tag(n *scene.Node, series, point int, attr string) {
	m := n.Meta()
	m.Tagged = true
	m.Series = series
	m.Point = point
	if attr != "" {
		n.SetAttr(attr, fmt.Sprintf("%d:%d", series, point))
	}
}

// Resolve returns the (series, point) pair stamped on the node.
func Resolve(n *scene.Node) (series, point int, err error) {
	if n == nil || !n.HasMeta() || !n.Meta().Tagged {
		return 0, 0, ErrUntaggedNode
	}
	m := n.Meta()
	return m.Series, m.Point, nil
}

// read looks up the node's data slot in the host's series.
func (b *Binding) read(n *scene.Node) (DataPoint, int, int) {
	series, point, err := Resolve(n)
	if err != nil {
		panic("dragplot: draggable node missing point tag")
	}
	return b.host.DataPoint(series, point), series, point
}

// write stores data into the node's slot. The new value is the old one
// shallow-merged with the computed coordinates, so Meta passes through.
func (b *Binding) write(n *scene.Node, d DataPoint) {
	series, point, err := Resolve(n)
	if err != nil {
		panic("dragplot: draggable node missing point tag")
	}
	b.host.SetDataPoint(series, point, d)
}
