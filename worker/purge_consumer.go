package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/smartexpenses/whiteboard/cache"
	"github.com/smartexpenses/whiteboard/mq"
	"github.com/smartexpenses/whiteboard/store"
)

type PurgeBoardMessage struct {
	BoardId string `json:"boardId"`
}

// PurgeConsumer drains the purge queue. A board delete only removes the META
// item synchronously; the shapes and collaborator items under the same
// partition key are deleted here with throttled batch writes.
type PurgeConsumer struct {
	purgeBoardQueue mq.MessageQueue
	whiteboardStore store.WhiteboardStore
	whiteboardCache cache.WhiteboardCache
}

func NewPurgeConsumer(purgeBoardQueue mq.MessageQueue, whiteboardStore store.WhiteboardStore, whiteboardCache cache.WhiteboardCache) *PurgeConsumer {
	return &PurgeConsumer{
		purgeBoardQueue: purgeBoardQueue,
		whiteboardStore: whiteboardStore,
		whiteboardCache: whiteboardCache,
	}
}

// Allow up to 5 minutes for the throttled batch deletion of a large board
const visibilityTimeout = 300

func (purgeConsumer PurgeConsumer) Run(shutdownCtx context.Context) {
	for {
		msg, err := purgeConsumer.purgeBoardQueue.Receive(shutdownCtx, visibilityTimeout)

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Printf("purgeConsumer receive error: %v", err)
			continue
		}

		if msg == nil {
			continue
		}

		var purgeMsg PurgeBoardMessage
		if err := json.Unmarshal([]byte(msg.Body), &purgeMsg); err != nil {
			continue
		}
		if purgeMsg.BoardId == "" {
			continue
		}

		// timeout should be a little less than queue visibility timeout
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(visibilityTimeout-1)*time.Second)

		err = purgeConsumer.whiteboardStore.PurgeBoard(ctx, purgeMsg.BoardId)
		if err == nil {
			if cacheErr := purgeConsumer.whiteboardCache.InvalidateBoard(ctx, purgeMsg.BoardId); cacheErr != nil {
				log.Printf("Failed to invalidate board %s: %v", purgeMsg.BoardId, cacheErr)
			}
		}
		cancel()

		if err != nil {
			log.Printf("whiteboardStore purge board error: %v", err)
			continue
		}

		err = purgeConsumer.purgeBoardQueue.Delete(context.Background(), msg)
		if err != nil {
			log.Printf("purgeConsumer delete error: %v", err)
			continue
		}
	}
}
