package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/smartexpenses/whiteboard/models"
	"github.com/smartexpenses/whiteboard/store"
	"github.com/smartexpenses/whiteboard/worker"
)

type CreateBoardParams struct {
	Name        string
	Description string
	IsPublic    bool
}

func (s *Service) CreateBoard(ctx context.Context, user models.User, params CreateBoardParams) (models.Board, error) {
	if err := ValidateBoardName(params.Name); err != nil {
		return models.Board{}, err
	}
	if err := ValidateBoardDescription(params.Description); err != nil {
		return models.Board{}, err
	}

	board := models.Board{
		Name:        params.Name,
		Description: params.Description,
		OwnerId:     user.Id,
		IsPublic:    params.IsPublic,
	}

	return s.Store.CreateBoard(ctx, board)
}

func (s *Service) GetBoard(ctx context.Context, user models.User, boardId string) (models.Board, error) {
	if err := ValidateId(boardId); err != nil {
		return models.Board{}, err
	}

	board, err := s.Store.GetBoard(ctx, boardId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Board{}, ErrNotFound
		}
		return models.Board{}, err
	}

	canView, err := s.CanView(ctx, board, user.Id)
	if err != nil {
		return models.Board{}, err
	}
	if !canView {
		return models.Board{}, ErrUnauthorized
	}

	return board, nil
}

// ListBoards returns the boards the user owns followed by the boards they
// collaborate on.
func (s *Service) ListBoards(ctx context.Context, user models.User) ([]models.Board, error) {
	owned, err := s.Store.ListOwnedBoards(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	collaborating, err := s.Store.ListCollaboratingBoards(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	boards := make([]models.Board, 0, len(owned)+len(collaborating))
	boards = append(boards, owned...)
	for _, b := range collaborating {
		// An owner listed as their own collaborator would duplicate
		if b.OwnerId != user.Id {
			boards = append(boards, b)
		}
	}

	return boards, nil
}

func (s *Service) ListPublicBoards(ctx context.Context) ([]models.Board, error) {
	return s.Store.ListPublicBoards(ctx)
}

type UpdateBoardParams struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

// UpdateBoard applies a partial update to board metadata. Owner only.
func (s *Service) UpdateBoard(ctx context.Context, user models.User, boardId string, params UpdateBoardParams) (models.Board, error) {
	if err := ValidateId(boardId); err != nil {
		return models.Board{}, err
	}
	if params.Name == nil && params.Description == nil && params.IsPublic == nil {
		return models.Board{}, ErrValidation
	}
	if params.Name != nil {
		if err := ValidateBoardName(*params.Name); err != nil {
			return models.Board{}, err
		}
	}
	if params.Description != nil {
		if err := ValidateBoardDescription(*params.Description); err != nil {
			return models.Board{}, err
		}
	}

	board, err := s.Store.GetBoard(ctx, boardId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Board{}, ErrNotFound
		}
		return models.Board{}, err
	}

	if board.OwnerId != user.Id {
		return models.Board{}, ErrUnauthorized
	}

	patch := models.BoardPatch{
		Name:        params.Name,
		Description: params.Description,
		IsPublic:    params.IsPublic,
	}
	updated, err := s.Store.UpdateBoard(ctx, boardId, patch)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Board{}, ErrNotFound
		}
		return models.Board{}, err
	}

	return updated, nil
}

// DeleteBoard removes the board's META row synchronously. The shapes and
// collaborator rows under the same partition key are purged asynchronously
// by the queue consumer, which also drops the board's cache entries.
func (s *Service) DeleteBoard(ctx context.Context, user models.User, boardId string) error {
	if err := ValidateId(boardId); err != nil {
		return err
	}

	board, err := s.Store.GetBoard(ctx, boardId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	if board.OwnerId != user.Id {
		return ErrUnauthorized
	}

	if err := s.Store.DeleteBoard(ctx, boardId); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	// Async side-effects - return to caller as soon as the store operation is done
	go func() {
		bg := context.Background()

		if cacheErr := s.Cache.InvalidateBoard(bg, boardId); cacheErr != nil {
			log.Printf("Failed to invalidate board %s: %v", boardId, cacheErr)
		}

		msg := worker.PurgeBoardMessage{BoardId: boardId}
		if msgBytes, marshalErr := json.Marshal(msg); marshalErr == nil {
			if sendErr := s.MQ.Send(bg, string(msgBytes)); sendErr != nil {
				log.Printf("Failed to enqueue purge for board %s: %v", boardId, sendErr)
			}
		}
	}()

	return nil
}
