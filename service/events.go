package service

import "encoding/json"

// Broadcast event kinds. Fan-out happens over redis pub/sub on channels
// named board/{boardId}/{stream} where stream is shapes, presence or
// cursors.
const (
	EventShapeCreate = "SHAPE_CREATE"
	EventShapeUpdate = "SHAPE_UPDATE"
	EventShapeDelete = "SHAPE_DELETE"
	EventUserJoin    = "USER_JOIN"
	EventUserLeave   = "USER_LEAVE"
	EventCursorMove  = "CURSOR_MOVE"
)

const (
	StreamShapes   = "shapes"
	StreamPresence = "presence"
	StreamCursors  = "cursors"
)

func boardChannel(boardId string, stream string) string {
	return "board/" + boardId + "/" + stream
}

type ShapeEvent struct {
	Type       string          `json:"type"`
	BoardId    string          `json:"boardId"`
	ShapeId    string          `json:"shapeId"`
	ShapeType  string          `json:"shapeType,omitempty"`
	ShapeData  json.RawMessage `json:"shapeData,omitempty"`
	LayerOrder *int            `json:"layerOrder,omitempty"`
	UserId     string          `json:"userId"`
	UserEmail  string          `json:"userEmail,omitempty"`
	Timestamp  int64           `json:"timestamp"`
}

type PresenceEvent struct {
	Type      string `json:"type"`
	BoardId   string `json:"boardId"`
	UserId    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	Timestamp int64  `json:"timestamp"`
}

type CursorPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CursorEvent struct {
	Type      string         `json:"type"`
	BoardId   string         `json:"boardId"`
	UserId    string         `json:"userId"`
	UserEmail string         `json:"userEmail,omitempty"`
	Cursor    CursorPosition `json:"cursor"`
	Timestamp int64          `json:"timestamp"`
}
