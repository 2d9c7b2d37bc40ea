package redis

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smartexpenses/whiteboard/cache"
)

type RedisWhiteboardCache struct {
	client redis.UniversalClient
}

func NewRedisWhiteboardCache(ctx context.Context, devMode bool, redis_endpoint string) (*RedisWhiteboardCache, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redis_endpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redis_endpoint,
			// AWS elasticache endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return &RedisWhiteboardCache{client: client}, nil
}

func (redisCache *RedisWhiteboardCache) Publish(ctx context.Context, channel string, message []byte) error {
	if err := redisCache.client.Publish(ctx, channel, message).Err(); err != nil {
		return err
	}
	return nil
}

func (redisCache *RedisWhiteboardCache) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	pubsub := redisCache.client.Subscribe(ctx, channel)
	// Ensure subscription is established
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		log.Printf("Pubsub channel closed: %s", channel)
		return err
	}

	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler([]byte(msg.Payload))
			}
		}
	}()

	return nil
}

// Helper functions to generate Redis keys with hash tags for cluster compatibility
func buildBoardKey(boardId string) string {
	return "board:{" + boardId + "}"
}

func buildBoardDataKey(boardId string) string {
	return "board:{" + boardId + "}:data"
}

func buildBoardCompleteKey(boardId string) string {
	return "board:{" + boardId + "}:complete"
}

func buildBoardPresenceKey(boardId string) string {
	return "board:{" + boardId + "}:presence"
}

const cacheTTL = 10 * time.Minute

// Shape caching uses a split index/data pattern:
// 1. ZSet ("board:{id}"): ShapeIDs scored by layer order, so reads come back
//    bottom-to-top and a shape can be removed by ID with ZREM.
// 2. Hash ("board:{id}:data"): ShapeID -> JSON blob, fetched with one HMGET
//    after the ZSet read.
func (redisCache *RedisWhiteboardCache) AddShape(ctx context.Context, boardId string, shapeId string, score int64, shapeData []byte) error {
	key := buildBoardKey(boardId)
	dataKey := buildBoardDataKey(boardId)
	completeKey := buildBoardCompleteKey(boardId)

	pipe := redisCache.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(score), Member: shapeId})
	pipe.HSet(ctx, dataKey, shapeId, shapeData)
	pipe.Expire(ctx, completeKey, cacheTTL)
	pipe.Expire(ctx, key, cacheTTL)
	pipe.Expire(ctx, dataKey, cacheTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (redisCache *RedisWhiteboardCache) AddShapesBatch(ctx context.Context, boardId string, shapes []cache.ShapeCacheItem) error {
	if len(shapes) == 0 {
		return nil
	}

	key := buildBoardKey(boardId)
	dataKey := buildBoardDataKey(boardId)
	completeKey := buildBoardCompleteKey(boardId)

	zMembers := make([]redis.Z, len(shapes))
	// A flat list of key, value, key, value... is most efficient for HSet in go-redis
	hValues := make([]interface{}, len(shapes)*2)

	for i, s := range shapes {
		zMembers[i] = redis.Z{
			Score:  float64(s.Score),
			Member: s.ShapeId,
		}
		hValues[i*2] = s.ShapeId
		hValues[i*2+1] = s.Data
	}

	pipe := redisCache.client.Pipeline()
	pipe.ZAdd(ctx, key, zMembers...)
	pipe.HSet(ctx, dataKey, hValues...)
	pipe.Expire(ctx, completeKey, cacheTTL)
	pipe.Expire(ctx, key, cacheTTL)
	pipe.Expire(ctx, dataKey, cacheTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (redisCache *RedisWhiteboardCache) RemoveShape(ctx context.Context, boardId string, shapeId string) error {
	key := buildBoardKey(boardId)
	dataKey := buildBoardDataKey(boardId)
	completeKey := buildBoardCompleteKey(boardId)

	pipe := redisCache.client.Pipeline()
	pipe.ZRem(ctx, key, shapeId)
	pipe.HDel(ctx, dataKey, shapeId)
	pipe.Expire(ctx, completeKey, cacheTTL)
	pipe.Expire(ctx, key, cacheTTL)
	pipe.Expire(ctx, dataKey, cacheTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (redisCache *RedisWhiteboardCache) GetShapes(ctx context.Context, boardId string) ([][]byte, error) {
	key := buildBoardKey(boardId)
	dataKey := buildBoardDataKey(boardId)
	completeKey := buildBoardCompleteKey(boardId)

	// 1. Get shape IDs from ZSet ordered by layer order
	ids, err := redisCache.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return [][]byte{}, nil
	}

	// 2. Fetch data from Hash
	// HMGet returns interface{}, need to cast
	dataMap, err := redisCache.client.HMGet(ctx, dataKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	// 3. Assemble result
	shapes := make([][]byte, 0, len(ids))
	for _, item := range dataMap {
		if item == nil {
			continue // Should not happen if consistency is maintained
		}
		if s, ok := item.(string); ok {
			shapes = append(shapes, []byte(s))
		}
	}

	// Refresh TTL
	pipe := redisCache.client.Pipeline()
	pipe.Expire(ctx, completeKey, cacheTTL)
	pipe.Expire(ctx, key, cacheTTL)
	pipe.Expire(ctx, dataKey, cacheTTL)
	_, _ = pipe.Exec(ctx)

	return shapes, nil
}

func (redisCache *RedisWhiteboardCache) SetBoardComplete(ctx context.Context, boardId string) error {
	completeKey := buildBoardCompleteKey(boardId)
	return redisCache.client.Set(ctx, completeKey, "true", cacheTTL).Err()
}

func (redisCache *RedisWhiteboardCache) IsBoardComplete(ctx context.Context, boardId string) (bool, error) {
	completeKey := buildBoardCompleteKey(boardId)
	val, err := redisCache.client.Exists(ctx, completeKey).Result()
	if err != nil {
		return false, err
	}
	return val > 0, nil
}

func (redisCache *RedisWhiteboardCache) InvalidateBoard(ctx context.Context, boardId string) error {
	key := buildBoardKey(boardId)
	dataKey := buildBoardDataKey(boardId)
	completeKey := buildBoardCompleteKey(boardId)
	presenceKey := buildBoardPresenceKey(boardId)

	// All 4 keys for this board share a hash tag, so they hash to the same slot
	return redisCache.client.Del(ctx, key, dataKey, completeKey, presenceKey).Err()
}

// Presence mirror. The authoritative presence map lives in process memory;
// this hash exists so REST callers can list active users without a socket.
func (redisCache *RedisWhiteboardCache) AddPresence(ctx context.Context, boardId string, userId string, email string) error {
	presenceKey := buildBoardPresenceKey(boardId)

	pipe := redisCache.client.Pipeline()
	pipe.HSet(ctx, presenceKey, userId, email)
	pipe.Expire(ctx, presenceKey, cacheTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (redisCache *RedisWhiteboardCache) RemovePresence(ctx context.Context, boardId string, userId string) error {
	presenceKey := buildBoardPresenceKey(boardId)
	return redisCache.client.HDel(ctx, presenceKey, userId).Err()
}

func (redisCache *RedisWhiteboardCache) GetPresence(ctx context.Context, boardId string) (map[string]string, error) {
	presenceKey := buildBoardPresenceKey(boardId)
	users, err := redisCache.client.HGetAll(ctx, presenceKey).Result()
	if err != nil {
		return nil, err
	}
	return users, nil
}
