package live

import (
	"bytes"
	"strings"
	"testing"
)

func TestPageEmbedsSessionAndChart(t *testing.T) {
	s := newTestSession(t)

	var buf bytes.Buffer
	if err := writePage(&buf, s); err != nil {
		t.Fatal(err)
	}
	page := buf.String()

	if !strings.Contains(page, "/live/"+s.ID) {
		t.Error("page does not dial the session's socket path")
	}
	if !strings.Contains(page, "data-node-id=") {
		t.Error("rendered chart is missing node IDs for patch addressing")
	}
}

func TestPageMouseListenersAtDocumentScope(t *testing.T) {
	s := newTestSession(t)

	var buf bytes.Buffer
	if err := writePage(&buf, s); err != nil {
		t.Fatal(err)
	}
	page := buf.String()

	// Down stays on the chart element; move and up must be document
	// scoped or a release outside the SVG never reaches the server and
	// the session sticks in dragging.
	for _, want := range []string{
		`svgEl.addEventListener("mousedown"`,
		`document.addEventListener("mousemove"`,
		`document.addEventListener("mouseup"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page script missing %s", want)
		}
	}
}
