package worker

import (
	"context"
	"log"
	"time"

	"github.com/smartexpenses/whiteboard/store"
)

type ActivityUpdate struct {
	BoardId string
	Delta   int
}

// ActivityBatcher coalesces per-board edit counter increments so a burst of
// shape mutations becomes a single DynamoDB update per board per tick.
type ActivityBatcher struct {
	UpdateCh           chan ActivityUpdate
	whiteboardStore    store.WhiteboardStore
	tickerMilliseconds int
}

func NewActivityBatcher(whiteboardStore store.WhiteboardStore, tickerMilliseconds int) *ActivityBatcher {
	return &ActivityBatcher{
		UpdateCh:           make(chan ActivityUpdate, 1024),
		whiteboardStore:    whiteboardStore,
		tickerMilliseconds: tickerMilliseconds,
	}
}

func (b *ActivityBatcher) Run(shutdownCtx context.Context) {
	ticker := time.NewTicker(time.Duration(b.tickerMilliseconds) * time.Millisecond)
	defer ticker.Stop()

	boardCounts := make(map[string]int)

	flush := func() {
		for boardId, count := range boardCounts {
			if count == 0 {
				continue
			}
			go func(id string, c int) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := b.whiteboardStore.IncrementBoardEditCount(ctx, id, c); err != nil {
					log.Printf("Failed to update edit count for board %s: %v", id, err)
				}
			}(boardId, count)
		}
		boardCounts = make(map[string]int)
	}

	for {
		select {
		case update := <-b.UpdateCh:
			if update.BoardId != "" {
				boardCounts[update.BoardId] += update.Delta
			}

			if len(boardCounts) >= 100 {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-shutdownCtx.Done():
			flush()
			return
		}
	}
}
