package service

import (
	"github.com/smartexpenses/whiteboard/cache"
	"github.com/smartexpenses/whiteboard/mq"
	"github.com/smartexpenses/whiteboard/store"
	"github.com/smartexpenses/whiteboard/worker"
)

type Service struct {
	Store           store.WhiteboardStore
	Cache           cache.WhiteboardCache
	MQ              mq.MessageQueue
	ActivityBatcher *worker.ActivityBatcher
	JWTSecret       []byte

	presence   *presenceTable
	layerLocks *keyedMutex
}

func NewService(
	store store.WhiteboardStore,
	cache cache.WhiteboardCache,
	mq mq.MessageQueue,
	activityBatcher *worker.ActivityBatcher,
	jwtSecret []byte,
) *Service {
	return &Service{
		Store:           store,
		Cache:           cache,
		MQ:              mq,
		ActivityBatcher: activityBatcher,
		JWTSecret:       jwtSecret,
		presence:        newPresenceTable(),
		layerLocks:      newKeyedMutex(),
	}
}
