package cache

import "context"

type ShapeCacheItem struct {
	ShapeId string
	Score   int64
	Data    []byte
}

type WhiteboardCache interface {
	Publish(ctx context.Context, channel string, message []byte) error
	Subscribe(ctx context.Context, channel string, handler func(message []byte)) error

	AddShape(ctx context.Context, boardId string, shapeId string, score int64, shapeData []byte) error
	AddShapesBatch(ctx context.Context, boardId string, shapes []ShapeCacheItem) error
	RemoveShape(ctx context.Context, boardId string, shapeId string) error
	GetShapes(ctx context.Context, boardId string) ([][]byte, error)

	SetBoardComplete(ctx context.Context, boardId string) error
	IsBoardComplete(ctx context.Context, boardId string) (bool, error)
	InvalidateBoard(ctx context.Context, boardId string) error

	AddPresence(ctx context.Context, boardId string, userId string, email string) error
	RemovePresence(ctx context.Context, boardId string, userId string) error
	GetPresence(ctx context.Context, boardId string) (map[string]string, error)
}
