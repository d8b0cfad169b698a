// Package live is the browser-facing host: the client forwards DOM
// pointer events over a WebSocket, the server runs the chart and drag
// core, and scene patches stream back as binary frames.
package live

// FrameType is the first byte of every binary frame.
type FrameType uint8

const (
	// FramePatches carries a batch of scene patches, server to client
	FramePatches FrameType = 0x00
	// FrameEvent carries one pointer event, client to server
	FrameEvent FrameType = 0x01
	// FrameControl carries HELLO/PING/PONG handshakes
	FrameControl FrameType = 0x02
)

// Touch is one changed touch point in an event frame.
type Touch struct {
	X, Y float64
}

// Event is a client pointer event addressed at a scene node.
type Event struct {
	Name    string
	NodeID  uint32
	X, Y    float64
	Button  uint8
	Touches []Touch
}
