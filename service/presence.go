package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/smartexpenses/whiteboard/models"
	"github.com/smartexpenses/whiteboard/store"
)

// presenceTable tracks who is currently on each board. One lock per board
// entry so activity on one board never blocks another; the table lock is
// only taken to insert or remove whole entries.
type presenceTable struct {
	mu     sync.RWMutex
	boards map[string]*boardPresence
}

type boardPresence struct {
	mu      sync.Mutex
	users   map[string]string // userId -> email
	removed bool
}

func newPresenceTable() *presenceTable {
	return &presenceTable{boards: make(map[string]*boardPresence)}
}

// join records the user on the board and reports whether this was the
// user's first join. The removed flag closes the race where an entry is
// deleted between lookup and lock; joining a removed entry retries.
func (t *presenceTable) join(boardId string, userId string, email string) bool {
	for {
		t.mu.RLock()
		bp, ok := t.boards[boardId]
		t.mu.RUnlock()

		if !ok {
			t.mu.Lock()
			bp, ok = t.boards[boardId]
			if !ok {
				bp = &boardPresence{users: make(map[string]string)}
				t.boards[boardId] = bp
			}
			t.mu.Unlock()
		}

		bp.mu.Lock()
		if bp.removed {
			bp.mu.Unlock()
			continue
		}
		_, existed := bp.users[userId]
		bp.users[userId] = email
		bp.mu.Unlock()

		return !existed
	}
}

func (t *presenceTable) leave(boardId string, userId string) {
	t.mu.RLock()
	bp, ok := t.boards[boardId]
	t.mu.RUnlock()
	if !ok {
		return
	}

	bp.mu.Lock()
	delete(bp.users, userId)
	removed := false
	if len(bp.users) == 0 {
		// Drop empty entries to bound memory
		bp.removed = true
		removed = true
	}
	bp.mu.Unlock()

	// bp.removed must not be re-read here; a concurrent leave may be
	// writing it under bp.mu
	if removed {
		t.mu.Lock()
		if cur, ok := t.boards[boardId]; ok && cur == bp {
			delete(t.boards, boardId)
		}
		t.mu.Unlock()
	}
}

func (t *presenceTable) boardsOf(userId string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var boardIds []string
	for boardId, bp := range t.boards {
		bp.mu.Lock()
		_, present := bp.users[userId]
		bp.mu.Unlock()
		if present {
			boardIds = append(boardIds, boardId)
		}
	}
	return boardIds
}

// JoinBoard is idempotent per (board, subject): bookkeeping always updates,
// but only a first join broadcasts USER_JOIN. Broadcasts happen after the
// presence lock is released.
func (s *Service) JoinBoard(boardId string, user models.User) {
	first := s.presence.join(boardId, user.Id, user.Email)
	if !first {
		return
	}

	// Async side-effects - presence is already recorded
	go func() {
		ctx := context.Background()
		if err := s.Cache.AddPresence(ctx, boardId, user.Id, user.Email); err != nil {
			log.Printf("Failed to mirror presence for board %s: %v", boardId, err)
		}

		event := PresenceEvent{
			Type:      EventUserJoin,
			BoardId:   boardId,
			UserId:    user.Id,
			UserEmail: user.Email,
			Timestamp: time.Now().UnixMilli(),
		}
		eventBytes, _ := json.Marshal(event)
		s.Cache.Publish(ctx, boardChannel(boardId, StreamPresence), eventBytes)
	}()
}

// LeaveBoard always broadcasts USER_LEAVE, even when invoked repeatedly.
func (s *Service) LeaveBoard(boardId string, user models.User) {
	s.presence.leave(boardId, user.Id)

	go func() {
		ctx := context.Background()
		if err := s.Cache.RemovePresence(ctx, boardId, user.Id); err != nil {
			log.Printf("Failed to remove presence mirror for board %s: %v", boardId, err)
		}

		event := PresenceEvent{
			Type:      EventUserLeave,
			BoardId:   boardId,
			UserId:    user.Id,
			UserEmail: user.Email,
			Timestamp: time.Now().UnixMilli(),
		}
		eventBytes, _ := json.Marshal(event)
		s.Cache.Publish(ctx, boardChannel(boardId, StreamPresence), eventBytes)
	}()
}

// LeaveAllBoards removes the subject from every board it is present on,
// emitting exactly one leave event per board. Called on disconnect.
func (s *Service) LeaveAllBoards(user models.User) {
	for _, boardId := range s.presence.boardsOf(user.Id) {
		s.LeaveBoard(boardId, user)
	}
}

// GetActiveUsers returns the presence mirror for a board as userId -> email.
func (s *Service) GetActiveUsers(ctx context.Context, user models.User, boardId string) (map[string]string, error) {
	board, err := s.Store.GetBoard(ctx, boardId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	canView, err := s.CanView(ctx, board, user.Id)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, ErrUnauthorized
	}

	return s.Cache.GetPresence(ctx, boardId)
}
