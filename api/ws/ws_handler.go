package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/smartexpenses/whiteboard/service"
)

type Handler struct {
	Service *service.Service
	Hub     *Hub
}

func NewHandler(svc *service.Service, hub *Hub) *Handler {
	return &Handler{
		Service: svc,
		Hub:     hub,
	}
}

func (h *Handler) NewWsUpgrader(requiredOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == requiredOrigin
		},
		Subprotocols: []string{"whiteboard-v1"},
	}
}

// ServeWS handles websocket requests from the peer. A missing bearer header
// is refused before the upgrade; a present-but-invalid token is refused
// after the upgrade with a policy violation close frame so the client can
// read the reason.
func (h *Handler) ServeWS(wsUpgrader websocket.Upgrader, w http.ResponseWriter, r *http.Request, shutdownCtx context.Context) {
	authHeader := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))

	user, authErr := h.Service.AuthenticateToken(token)

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade ws connection: %v", err)
		return
	}

	if authErr != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Unauthenticated"),
		)
		conn.Close()
		return
	}

	client := NewClient(h.Hub, conn, user, h.HandleWsMessage)

	h.Hub.OpenCh <- client

	// Start pumps
	go client.ReadPump()
	go client.WritePump(shutdownCtx)
}

// Websocket message structs
type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type channelMessage struct {
	BoardId string `json:"boardId"`
	Channel string `json:"channel"`
}

type createShapeMessage struct {
	BoardId    string          `json:"boardId"`
	ShapeType  string          `json:"shapeType"`
	ShapeData  json.RawMessage `json:"shapeData"`
	LayerOrder *int            `json:"layerOrder"`
}

type updateShapeMessage struct {
	BoardId    string          `json:"boardId"`
	ShapeId    string          `json:"shapeId"`
	ShapeType  *string         `json:"shapeType"`
	ShapeData  json.RawMessage `json:"shapeData"`
	LayerOrder *int            `json:"layerOrder"`
}

type deleteShapeMessage struct {
	BoardId string `json:"boardId"`
	ShapeId string `json:"shapeId"`
}

type cursorMessage struct {
	BoardId string                 `json:"boardId"`
	Cursor  service.CursorPosition `json:"cursor"`
}

type responseMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

var validStreams = map[string]bool{
	service.StreamShapes:   true,
	service.StreamPresence: true,
	service.StreamCursors:  true,
}

func (h *Handler) HandleWsMessage(client *Client, messageType int, messageBytes []byte) {
	var msg message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		log.Printf("Invalid JSON: %v", err)
		return
	}

	var resp responseMessage

	switch msg.Type {
	case "subscribe":
		var chanMsg channelMessage
		if err := json.Unmarshal(msg.Data, &chanMsg); err != nil {
			log.Printf("Invalid subscribe data: %v", err)
			return
		}
		resp = h.handleSubscribe(client, chanMsg)

	case "unsubscribe":
		var chanMsg channelMessage
		if err := json.Unmarshal(msg.Data, &chanMsg); err != nil {
			log.Printf("Invalid unsubscribe data: %v", err)
			return
		}
		resp = h.handleUnsubscribe(client, chanMsg)

	case "shape/create":
		var createMsg createShapeMessage
		if err := json.Unmarshal(msg.Data, &createMsg); err != nil {
			log.Printf("Invalid shape/create data: %v", err)
			return
		}
		resp = h.handleCreateShape(client, createMsg)

	case "shape/update":
		var updateMsg updateShapeMessage
		if err := json.Unmarshal(msg.Data, &updateMsg); err != nil {
			log.Printf("Invalid shape/update data: %v", err)
			return
		}
		resp = h.handleUpdateShape(client, updateMsg)

	case "shape/delete":
		var deleteMsg deleteShapeMessage
		if err := json.Unmarshal(msg.Data, &deleteMsg); err != nil {
			log.Printf("Invalid shape/delete data: %v", err)
			return
		}
		resp = h.handleDeleteShape(client, deleteMsg)

	case "cursor/move":
		var curMsg cursorMessage
		if err := json.Unmarshal(msg.Data, &curMsg); err != nil {
			// Best-effort stream: malformed cursor frames are dropped
			return
		}
		h.Service.MoveCursor(context.Background(), client.user, curMsg.BoardId, curMsg.Cursor)
		return

	default:
		log.Printf("Unknown message type: %v", msg.Type)
	}

	if resp.Type != "" {
		respBytes, err := json.Marshal(resp)
		if err != nil {
			log.Printf("Error marshaling response JSON: %v", err)
			return
		}
		client.Send <- respBytes
	}
}

func (h *Handler) handleSubscribe(client *Client, chanMsg channelMessage) responseMessage {
	resp := responseMessage{
		Type: "subscribe_response",
	}

	if !validStreams[chanMsg.Channel] {
		resp.Data = map[string]any{"success": false, "error": "unknown channel", "boardId": chanMsg.BoardId, "channel": chanMsg.Channel}
		return resp
	}

	// View access gates subscription; GetBoard folds in the policy check
	if _, err := h.Service.GetBoard(context.Background(), client.user, chanMsg.BoardId); err != nil {
		log.Printf("Subscribe rejected for board %s: %v", chanMsg.BoardId, err)
		resp.Data = map[string]any{"success": false, "error": err.Error(), "boardId": chanMsg.BoardId, "channel": chanMsg.Channel}
		return resp
	}

	h.Hub.SubscribeCh <- subscription{client: client, boardId: chanMsg.BoardId, stream: chanMsg.Channel}
	resp.Data = map[string]any{"success": true, "boardId": chanMsg.BoardId, "channel": chanMsg.Channel}

	return resp
}

func (h *Handler) handleUnsubscribe(client *Client, chanMsg channelMessage) responseMessage {
	resp := responseMessage{
		Type: "unsubscribe_response",
	}

	if !validStreams[chanMsg.Channel] {
		resp.Data = map[string]any{"success": false, "error": "unknown channel", "boardId": chanMsg.BoardId, "channel": chanMsg.Channel}
		return resp
	}

	h.Hub.UnsubscribeCh <- subscription{client: client, boardId: chanMsg.BoardId, stream: chanMsg.Channel}
	resp.Data = map[string]any{"success": true, "boardId": chanMsg.BoardId, "channel": chanMsg.Channel}

	return resp
}

func (h *Handler) handleCreateShape(client *Client, createMsg createShapeMessage) responseMessage {
	resp := responseMessage{
		Type: "shape/create_response",
	}

	shape, err := h.Service.CreateShape(context.Background(), client.user, service.CreateShapeParams{
		BoardId:    createMsg.BoardId,
		ShapeType:  createMsg.ShapeType,
		ShapeData:  createMsg.ShapeData,
		LayerOrder: createMsg.LayerOrder,
	})

	if err != nil {
		log.Printf("CreateShape failed: %v", err)
		resp.Data = map[string]any{
			"success": false,
			"error":   err.Error(),
			"boardId": createMsg.BoardId,
		}
		return resp
	}

	resp.Data = map[string]any{
		"success":    true,
		"boardId":    createMsg.BoardId,
		"shapeId":    shape.Id,
		"layerOrder": shape.LayerOrder,
	}

	return resp
}

func (h *Handler) handleUpdateShape(client *Client, updateMsg updateShapeMessage) responseMessage {
	resp := responseMessage{
		Type: "shape/update_response",
	}

	shape, err := h.Service.UpdateShape(context.Background(), client.user, service.UpdateShapeParams{
		BoardId:    updateMsg.BoardId,
		ShapeId:    updateMsg.ShapeId,
		ShapeType:  updateMsg.ShapeType,
		ShapeData:  updateMsg.ShapeData,
		LayerOrder: updateMsg.LayerOrder,
	})

	if err != nil {
		log.Printf("UpdateShape failed: %v", err)
		resp.Data = map[string]any{
			"success": false,
			"error":   err.Error(),
			"boardId": updateMsg.BoardId,
			"shapeId": updateMsg.ShapeId,
		}
		return resp
	}

	resp.Data = map[string]any{
		"success":    true,
		"boardId":    updateMsg.BoardId,
		"shapeId":    shape.Id,
		"layerOrder": shape.LayerOrder,
	}

	return resp
}

func (h *Handler) handleDeleteShape(client *Client, deleteMsg deleteShapeMessage) responseMessage {
	resp := responseMessage{
		Type: "shape/delete_response",
	}

	err := h.Service.DeleteShape(context.Background(), client.user, deleteMsg.BoardId, deleteMsg.ShapeId)

	if err != nil {
		log.Printf("DeleteShape failed: %v", err)
		resp.Data = map[string]any{
			"success": false,
			"error":   err.Error(),
			"boardId": deleteMsg.BoardId,
			"shapeId": deleteMsg.ShapeId,
		}
		return resp
	}

	resp.Data = map[string]any{
		"success": true,
		"boardId": deleteMsg.BoardId,
		"shapeId": deleteMsg.ShapeId,
	}

	return resp
}
