package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smartexpenses/whiteboard/models"
	"github.com/smartexpenses/whiteboard/store"
)

func validateCollaboratorRole(role models.Role) error {
	if role != models.RoleEditor && role != models.RoleViewer {
		return fmt.Errorf("%w: role must be EDITOR or VIEWER", ErrValidation)
	}
	return nil
}

// AddCollaborator grants a user a role on a board. Owner only; the owner
// already holds every right and cannot be added as their own collaborator.
func (s *Service) AddCollaborator(ctx context.Context, user models.User, boardId string, collabUserId string, role models.Role) (models.Collaborator, error) {
	if err := ValidateId(boardId); err != nil {
		return models.Collaborator{}, err
	}
	if collabUserId == "" {
		return models.Collaborator{}, fmt.Errorf("%w: collaborator user id missing", ErrValidation)
	}
	if err := validateCollaboratorRole(role); err != nil {
		return models.Collaborator{}, err
	}

	board, err := s.Store.GetBoard(ctx, boardId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Collaborator{}, ErrNotFound
		}
		return models.Collaborator{}, err
	}

	if board.OwnerId != user.Id {
		return models.Collaborator{}, ErrUnauthorized
	}
	if collabUserId == board.OwnerId {
		return models.Collaborator{}, fmt.Errorf("%w: owner cannot be a collaborator", ErrValidation)
	}

	collab := models.Collaborator{
		BoardId: boardId,
		UserId:  collabUserId,
		Role:    role,
	}
	created, err := s.Store.PutCollaborator(ctx, collab)
	if err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return models.Collaborator{}, fmt.Errorf("%w: user is already a collaborator", ErrValidation)
		}
		return models.Collaborator{}, err
	}

	return created, nil
}

func (s *Service) ListCollaborators(ctx context.Context, user models.User, boardId string) ([]models.Collaborator, error) {
	if err := ValidateId(boardId); err != nil {
		return nil, err
	}

	board, err := s.Store.GetBoard(ctx, boardId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	canView, err := s.CanView(ctx, board, user.Id)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, ErrUnauthorized
	}

	return s.Store.ListCollaborators(ctx, boardId)
}

func (s *Service) UpdateCollaboratorRole(ctx context.Context, user models.User, boardId string, collabUserId string, role models.Role) error {
	if err := ValidateId(boardId); err != nil {
		return err
	}
	if err := validateCollaboratorRole(role); err != nil {
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

	err = s.Store.UpdateCollaboratorRole(ctx, boardId, collabUserId, role)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	return nil
}

func (s *Service) RemoveCollaborator(ctx context.Context, user models.User, boardId string, collabUserId string) error {
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

	err = s.Store.DeleteCollaborator(ctx, boardId, collabUserId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	return nil
}
