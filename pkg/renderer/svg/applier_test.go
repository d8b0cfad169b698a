package svg

import (
	"strings"
	"testing"

	"github.com/recera/dragplot/pkg/scene"
)

func TestRender_Element(t *testing.T) {
	circle := scene.NewElement("circle")
	circle.SetAttr("cx", "10")
	circle.SetAttr("cy", "20")
	circle.SetAttr("r", "4")
	circle.AddClass("chart-point")

	var sb strings.Builder
	if err := Render(&sb, circle); err != nil {
		t.Fatal(err)
	}
	want := `<circle cx="10" cy="20" r="4" class="chart-point"/>`
	if got := sb.String(); got != want {
		t.Errorf("Render() = %s, want %s", got, want)
	}
}

func TestRender_NestedWithText(t *testing.T) {
	g := scene.NewElement("g")
	label := scene.NewElement("text")
	label.Append(scene.NewText("5 < 10 & true"))
	g.Append(label)

	var sb strings.Builder
	if err := Render(&sb, g); err != nil {
		t.Fatal(err)
	}
	want := `<g><text>5 &lt; 10 &amp; true</text></g>`
	if got := sb.String(); got != want {
		t.Errorf("Render() = %s, want %s", got, want)
	}
}

func TestRender_Transform(t *testing.T) {
	n := scene.NewElement("circle")
	n.SetTransform(12.5, -3)

	var sb strings.Builder
	Render(&sb, n)
	want := `<circle transform="translate(12.5 -3)"/>`
	if got := sb.String(); got != want {
		t.Errorf("Render() = %s, want %s", got, want)
	}
}

func TestRender_SkipsRootWrapper(t *testing.T) {
	root := scene.NewElement("root")
	svg := scene.NewElement("svg")
	svg.SetAttr("width", "200")
	root.Append(svg)

	var sb strings.Builder
	Render(&sb, root)
	want := `<svg xmlns="http://www.w3.org/2000/svg" width="200"/>`
	if got := sb.String(); got != want {
		t.Errorf("Render() = %s, want %s", got, want)
	}
}

func TestRender_WithIDs(t *testing.T) {
	n := scene.NewElement("rect")
	var sb strings.Builder
	a := NewApplier(&sb)
	a.WithIDs = true
	if err := a.Apply(n); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "data-node-id=") {
		t.Errorf("output missing node IDs: %s", sb.String())
	}
}

func TestRender_EscapesAttrs(t *testing.T) {
	n := scene.NewElement("text")
	n.SetAttr("data-label", `a"b<c`)
	var sb strings.Builder
	Render(&sb, n)
	if got := sb.String(); !strings.Contains(got, `data-label="a&quot;b&lt;c"`) {
		t.Errorf("attribute not escaped: %s", got)
	}
}
