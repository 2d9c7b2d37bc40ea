package service

import (
	"context"
	"errors"

	"github.com/smartexpenses/whiteboard/models"
	"github.com/smartexpenses/whiteboard/store"
)

// Access policy:
//   - the board owner can always view and edit
//   - a public board grants view (never edit) to any authenticated subject
//   - collaborators get their role: VIEWER views, EDITOR and OWNER edit
//
// Edit implies view; there is no edit-but-not-view state.
func (s *Service) CanView(ctx context.Context, board models.Board, userId string) (bool, error) {
	if board.OwnerId == userId {
		return true, nil
	}
	if board.IsPublic {
		return true, nil
	}

	role, err := s.Store.GetCollaboratorRole(ctx, board.Id, userId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return false, nil
		}
		return false, err
	}

	return role == models.RoleViewer || role == models.RoleEditor || role == models.RoleOwner, nil
}

func (s *Service) CanEdit(ctx context.Context, board models.Board, userId string) (bool, error) {
	if board.OwnerId == userId {
		return true, nil
	}

	role, err := s.Store.GetCollaboratorRole(ctx, board.Id, userId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return false, nil
		}
		return false, err
	}

	return role == models.RoleEditor || role == models.RoleOwner, nil
}
