package store

import (
	"context"
	"errors"

	"github.com/smartexpenses/whiteboard/models"
)

type WhiteboardStore interface {
	CreateBoard(ctx context.Context, board models.Board) (models.Board, error)
	GetBoard(ctx context.Context, boardId string) (models.Board, error)
	UpdateBoard(ctx context.Context, boardId string, patch models.BoardPatch) (models.Board, error)
	DeleteBoard(ctx context.Context, boardId string) error
	ListOwnedBoards(ctx context.Context, userId string) ([]models.Board, error)
	ListCollaboratingBoards(ctx context.Context, userId string) ([]models.Board, error)
	ListPublicBoards(ctx context.Context) ([]models.Board, error)

	GetCollaboratorRole(ctx context.Context, boardId string, userId string) (models.Role, error)
	PutCollaborator(ctx context.Context, collab models.Collaborator) (models.Collaborator, error)
	UpdateCollaboratorRole(ctx context.Context, boardId string, userId string, role models.Role) error
	DeleteCollaborator(ctx context.Context, boardId string, userId string) error
	ListCollaborators(ctx context.Context, boardId string) ([]models.Collaborator, error)

	GetBoardShapes(ctx context.Context, boardId string) ([]models.Shape, error)
	// GetMaxLayerOrder returns -1 for a board with no shapes, so the first
	// auto-assigned layer order is 0.
	GetMaxLayerOrder(ctx context.Context, boardId string) (int, error)
	CreateShape(ctx context.Context, shape models.Shape) (models.Shape, error)
	UpdateShape(ctx context.Context, shapeId string, boardId string, patch models.ShapePatch) (models.Shape, error)
	DeleteShape(ctx context.Context, shapeId string, boardId string) error
	PurgeBoard(ctx context.Context, boardId string) error

	IncrementBoardEditCount(ctx context.Context, boardId string, count int) error
}

// Custom error types for clarity
var (
	ErrItemNotFound    = errors.New("item does not exist")
	ErrConditionFailed = errors.New("condition not met")
)
