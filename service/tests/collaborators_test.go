package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/smartexpenses/whiteboard/models"
	"github.com/smartexpenses/whiteboard/service"
	"github.com/smartexpenses/whiteboard/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAddCollaborator_Success(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	owner := models.User{Id: "owner1"}
	board := models.Board{Id: testBoardId, OwnerId: owner.Id}

	mockStore.On("GetBoard", ctx, testBoardId).Return(board, nil)

	putCall := mockStore.On("PutCollaborator", ctx, mock.Anything)
	putCall.Run(func(args mock.Arguments) {
		collab := args.Get(1).(models.Collaborator)
		collab.Created = time.Now().UnixMilli()
		putCall.ReturnArguments = mock.Arguments{collab, nil}
	})

	collab, err := svc.AddCollaborator(ctx, owner, testBoardId, "user2", models.RoleEditor)

	assert.NoError(t, err)
	assert.Equal(t, testBoardId, collab.BoardId)
	assert.Equal(t, "user2", collab.UserId)
	assert.Equal(t, models.RoleEditor, collab.Role)
}

func TestAddCollaborator_NonOwnerDenied(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	board := models.Board{Id: testBoardId, OwnerId: "owner1"}
	mockStore.On("GetBoard", ctx, testBoardId).Return(board, nil)

	_, err := svc.AddCollaborator(ctx, models.User{Id: "editor1"}, testBoardId, "user2", models.RoleViewer)

	assert.ErrorIs(t, err, service.ErrUnauthorized)
	mockStore.AssertNotCalled(t, "PutCollaborator", mock.Anything, mock.Anything)
}

func TestAddCollaborator_OwnerCannotAddThemself(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	owner := models.User{Id: "owner1"}
	board := models.Board{Id: testBoardId, OwnerId: owner.Id}
	mockStore.On("GetBoard", ctx, testBoardId).Return(board, nil)

	_, err := svc.AddCollaborator(ctx, owner, testBoardId, owner.Id, models.RoleEditor)

	assert.ErrorIs(t, err, service.ErrValidation)
	mockStore.AssertNotCalled(t, "PutCollaborator", mock.Anything, mock.Anything)
}

func TestAddCollaborator_Duplicate(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	owner := models.User{Id: "owner1"}
	board := models.Board{Id: testBoardId, OwnerId: owner.Id}
	mockStore.On("GetBoard", ctx, testBoardId).Return(board, nil)
	mockStore.On("PutCollaborator", ctx, mock.Anything).Return(models.Collaborator{}, store.ErrConditionFailed)

	_, err := svc.AddCollaborator(ctx, owner, testBoardId, "user2", models.RoleViewer)

	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestAddCollaborator_InvalidRole(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.AddCollaborator(ctx, models.User{Id: "owner1"}, testBoardId, "user2", models.RoleOwner)

	assert.ErrorIs(t, err, service.ErrValidation)
	mockStore.AssertNotCalled(t, "GetBoard", mock.Anything, mock.Anything)
}

func TestListCollaborators_ViewerAllowed(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	viewer := models.User{Id: "viewer1"}
	board := models.Board{Id: testBoardId, OwnerId: "owner1"}
	collabs := []models.Collaborator{
		{BoardId: testBoardId, UserId: "viewer1", Role: models.RoleViewer},
		{BoardId: testBoardId, UserId: "editor1", Role: models.RoleEditor},
	}

	mockStore.On("GetBoard", ctx, testBoardId).Return(board, nil)
	mockStore.On("GetCollaboratorRole", ctx, testBoardId, viewer.Id).Return(models.RoleViewer, nil)
	mockStore.On("ListCollaborators", ctx, testBoardId).Return(collabs, nil)

	result, err := svc.ListCollaborators(ctx, viewer, testBoardId)

	assert.NoError(t, err)
	assert.Equal(t, collabs, result)
}

func TestUpdateCollaboratorRole_Success(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	owner := models.User{Id: "owner1"}
	board := models.Board{Id: testBoardId, OwnerId: owner.Id}

	mockStore.On("GetBoard", ctx, testBoardId).Return(board, nil)
	mockStore.On("UpdateCollaboratorRole", ctx, testBoardId, "user2", models.RoleEditor).Return(nil)

	err := svc.UpdateCollaboratorRole(ctx, owner, testBoardId, "user2", models.RoleEditor)

	assert.NoError(t, err)
}

func TestUpdateCollaboratorRole_Missing(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	owner := models.User{Id: "owner1"}
	board := models.Board{Id: testBoardId, OwnerId: owner.Id}

	mockStore.On("GetBoard", ctx, testBoardId).Return(board, nil)
	mockStore.On("UpdateCollaboratorRole", ctx, testBoardId, "ghost", models.RoleViewer).Return(store.ErrItemNotFound)

	err := svc.UpdateCollaboratorRole(ctx, owner, testBoardId, "ghost", models.RoleViewer)

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRemoveCollaborator_Success(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	owner := models.User{Id: "owner1"}
	board := models.Board{Id: testBoardId, OwnerId: owner.Id}

	mockStore.On("GetBoard", ctx, testBoardId).Return(board, nil)
	mockStore.On("DeleteCollaborator", ctx, testBoardId, "user2").Return(nil)

	err := svc.RemoveCollaborator(ctx, owner, testBoardId, "user2")

	assert.NoError(t, err)
}

func TestRemoveCollaborator_NonOwnerDenied(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	board := models.Board{Id: testBoardId, OwnerId: "owner1"}
	mockStore.On("GetBoard", ctx, testBoardId).Return(board, nil)

	err := svc.RemoveCollaborator(ctx, models.User{Id: "viewer1"}, testBoardId, "user2")

	assert.ErrorIs(t, err, service.ErrUnauthorized)
	mockStore.AssertNotCalled(t, "DeleteCollaborator", mock.Anything, mock.Anything, mock.Anything)
}
