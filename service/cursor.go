package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/smartexpenses/whiteboard/models"
	"github.com/smartexpenses/whiteboard/store"
)

// MoveCursor relays a cursor position to the board's cursors channel.
// View access suffices, nothing is persisted, and every failure is
// swallowed after logging; cursor spam must never interrupt editing.
func (s *Service) MoveCursor(ctx context.Context, user models.User, boardId string, cursor CursorPosition) {
	if err := ValidateId(boardId); err != nil {
		log.Printf("Dropping cursor event: %v", err)
		return
	}

	board, err := s.Store.GetBoard(ctx, boardId)
	if err != nil {
		if !errors.Is(err, store.ErrItemNotFound) {
			log.Printf("Dropping cursor event for board %s: %v", boardId, err)
		}
		return
	}

	canView, err := s.CanView(ctx, board, user.Id)
	if err != nil || !canView {
		return
	}

	event := CursorEvent{
		Type:      EventCursorMove,
		BoardId:   boardId,
		UserId:    user.Id,
		UserEmail: user.Email,
		Cursor:    cursor,
		Timestamp: time.Now().UnixMilli(),
	}
	eventBytes, _ := json.Marshal(event)
	if err := s.Cache.Publish(ctx, boardChannel(boardId, StreamCursors), eventBytes); err != nil {
		log.Printf("Failed to publish cursor event for board %s: %v", boardId, err)
	}
}
