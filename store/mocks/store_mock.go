package mocks

import (
	"context"

	"github.com/smartexpenses/whiteboard/models"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateBoard(ctx context.Context, board models.Board) (models.Board, error) {
	args := m.Called(ctx, board)
	return args.Get(0).(models.Board), args.Error(1)
}

func (m *MockStore) GetBoard(ctx context.Context, boardId string) (models.Board, error) {
	args := m.Called(ctx, boardId)
	return args.Get(0).(models.Board), args.Error(1)
}

func (m *MockStore) UpdateBoard(ctx context.Context, boardId string, patch models.BoardPatch) (models.Board, error) {
	args := m.Called(ctx, boardId, patch)
	return args.Get(0).(models.Board), args.Error(1)
}

func (m *MockStore) DeleteBoard(ctx context.Context, boardId string) error {
	args := m.Called(ctx, boardId)
	return args.Error(0)
}

func (m *MockStore) ListOwnedBoards(ctx context.Context, userId string) ([]models.Board, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]models.Board), args.Error(1)
}

func (m *MockStore) ListCollaboratingBoards(ctx context.Context, userId string) ([]models.Board, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]models.Board), args.Error(1)
}

func (m *MockStore) ListPublicBoards(ctx context.Context) ([]models.Board, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Board), args.Error(1)
}

func (m *MockStore) GetCollaboratorRole(ctx context.Context, boardId string, userId string) (models.Role, error) {
	args := m.Called(ctx, boardId, userId)
	return args.Get(0).(models.Role), args.Error(1)
}

func (m *MockStore) PutCollaborator(ctx context.Context, collab models.Collaborator) (models.Collaborator, error) {
	args := m.Called(ctx, collab)
	return args.Get(0).(models.Collaborator), args.Error(1)
}

func (m *MockStore) UpdateCollaboratorRole(ctx context.Context, boardId string, userId string, role models.Role) error {
	args := m.Called(ctx, boardId, userId, role)
	return args.Error(0)
}

func (m *MockStore) DeleteCollaborator(ctx context.Context, boardId string, userId string) error {
	args := m.Called(ctx, boardId, userId)
	return args.Error(0)
}

func (m *MockStore) ListCollaborators(ctx context.Context, boardId string) ([]models.Collaborator, error) {
	args := m.Called(ctx, boardId)
	return args.Get(0).([]models.Collaborator), args.Error(1)
}

func (m *MockStore) GetBoardShapes(ctx context.Context, boardId string) ([]models.Shape, error) {
	args := m.Called(ctx, boardId)
	return args.Get(0).([]models.Shape), args.Error(1)
}

func (m *MockStore) GetMaxLayerOrder(ctx context.Context, boardId string) (int, error) {
	args := m.Called(ctx, boardId)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CreateShape(ctx context.Context, shape models.Shape) (models.Shape, error) {
	args := m.Called(ctx, shape)
	return args.Get(0).(models.Shape), args.Error(1)
}

func (m *MockStore) UpdateShape(ctx context.Context, shapeId string, boardId string, patch models.ShapePatch) (models.Shape, error) {
	args := m.Called(ctx, shapeId, boardId, patch)
	return args.Get(0).(models.Shape), args.Error(1)
}

func (m *MockStore) DeleteShape(ctx context.Context, shapeId string, boardId string) error {
	args := m.Called(ctx, shapeId, boardId)
	return args.Error(0)
}

func (m *MockStore) PurgeBoard(ctx context.Context, boardId string) error {
	args := m.Called(ctx, boardId)
	return args.Error(0)
}

func (m *MockStore) IncrementBoardEditCount(ctx context.Context, boardId string, count int) error {
	args := m.Called(ctx, boardId, count)
	return args.Error(0)
}
