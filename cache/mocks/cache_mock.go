package mocks

import (
	"context"

	"github.com/smartexpenses/whiteboard/cache"
	"github.com/stretchr/testify/mock"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Publish(ctx context.Context, channel string, message []byte) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func (m *MockCache) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	args := m.Called(ctx, channel, handler)
	return args.Error(0)
}

func (m *MockCache) AddShape(ctx context.Context, boardId string, shapeId string, score int64, shapeData []byte) error {
	args := m.Called(ctx, boardId, shapeId, score, shapeData)
	return args.Error(0)
}

func (m *MockCache) AddShapesBatch(ctx context.Context, boardId string, shapes []cache.ShapeCacheItem) error {
	args := m.Called(ctx, boardId, shapes)
	return args.Error(0)
}

func (m *MockCache) RemoveShape(ctx context.Context, boardId string, shapeId string) error {
	args := m.Called(ctx, boardId, shapeId)
	return args.Error(0)
}

func (m *MockCache) GetShapes(ctx context.Context, boardId string) ([][]byte, error) {
	args := m.Called(ctx, boardId)
	return args.Get(0).([][]byte), args.Error(1)
}

func (m *MockCache) SetBoardComplete(ctx context.Context, boardId string) error {
	args := m.Called(ctx, boardId)
	return args.Error(0)
}

func (m *MockCache) IsBoardComplete(ctx context.Context, boardId string) (bool, error) {
	args := m.Called(ctx, boardId)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) InvalidateBoard(ctx context.Context, boardId string) error {
	args := m.Called(ctx, boardId)
	return args.Error(0)
}

func (m *MockCache) AddPresence(ctx context.Context, boardId string, userId string, email string) error {
	args := m.Called(ctx, boardId, userId, email)
	return args.Error(0)
}

func (m *MockCache) RemovePresence(ctx context.Context, boardId string, userId string) error {
	args := m.Called(ctx, boardId, userId)
	return args.Error(0)
}

func (m *MockCache) GetPresence(ctx context.Context, boardId string) (map[string]string, error) {
	args := m.Called(ctx, boardId)
	return args.Get(0).(map[string]string), args.Error(1)
}
