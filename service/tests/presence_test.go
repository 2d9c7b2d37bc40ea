package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartexpenses/whiteboard/models"
	"github.com/smartexpenses/whiteboard/service"
	"github.com/smartexpenses/whiteboard/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const secondBoardId = "1a2b3c4d-5e6f-4a0b-8c1d-2e3f4a5b6c7d"

func TestJoinBoard_FirstJoinBroadcasts(t *testing.T) {
	svc, _, mockCache, _, _ := setupService(t)

	user := models.User{Id: "user1", Email: "user1@example.com"}

	addDone := wrapMockWithSignal(mockCache.On("AddPresence", mock.Anything, testBoardId, user.Id, user.Email).Return(nil))
	publishCall := mockCache.On("Publish", mock.Anything, "board/"+testBoardId+"/presence", mock.Anything).Return(nil)
	published := make(chan []byte, 1)
	publishCall.Run(func(args mock.Arguments) {
		published <- args.Get(2).([]byte)
	})

	svc.JoinBoard(testBoardId, user)

	waitForSignal(t, addDone, "AddPresence")

	select {
	case payload := <-published:
		var event map[string]any
		assert.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, "USER_JOIN", event["type"])
		assert.Equal(t, user.Id, event["userId"])
		assert.Equal(t, user.Email, event["userEmail"])
	case <-time.After(1 * time.Second):
		assert.Fail(t, "timed out waiting for join broadcast")
	}
}

func TestJoinBoard_RepeatJoinIsSilent(t *testing.T) {
	svc, _, mockCache, _, _ := setupService(t)

	user := models.User{Id: "user1", Email: "user1@example.com"}

	mockCache.On("AddPresence", mock.Anything, testBoardId, user.Id, user.Email).Return(nil)
	mockCache.On("Publish", mock.Anything, "board/"+testBoardId+"/presence", mock.Anything).Return(nil)

	svc.JoinBoard(testBoardId, user)
	svc.JoinBoard(testBoardId, user)
	svc.JoinBoard(testBoardId, user)

	time.Sleep(100 * time.Millisecond)
	mockCache.AssertNumberOfCalls(t, "Publish", 1)
	mockCache.AssertNumberOfCalls(t, "AddPresence", 1)
}

func TestLeaveBoard_AlwaysBroadcasts(t *testing.T) {
	svc, _, mockCache, _, _ := setupService(t)

	user := models.User{Id: "user1", Email: "user1@example.com"}

	mockCache.On("RemovePresence", mock.Anything, testBoardId, user.Id).Return(nil)
	publishCall := mockCache.On("Publish", mock.Anything, "board/"+testBoardId+"/presence", mock.Anything).Return(nil)
	published := make(chan []byte, 2)
	publishCall.Run(func(args mock.Arguments) {
		published <- args.Get(2).([]byte)
	})

	// Leaving a board never joined still emits the event
	svc.LeaveBoard(testBoardId, user)
	svc.LeaveBoard(testBoardId, user)

	for i := 0; i < 2; i++ {
		select {
		case payload := <-published:
			var event map[string]any
			assert.NoError(t, json.Unmarshal(payload, &event))
			assert.Equal(t, "USER_LEAVE", event["type"])
			assert.Equal(t, user.Id, event["userId"])
		case <-time.After(1 * time.Second):
			assert.Fail(t, "timed out waiting for leave broadcast")
		}
	}
}

func TestRejoinAfterLeave_BroadcastsAgain(t *testing.T) {
	svc, _, mockCache, _, _ := setupService(t)

	user := models.User{Id: "user1", Email: "user1@example.com"}

	mockCache.On("AddPresence", mock.Anything, testBoardId, user.Id, user.Email).Return(nil)
	mockCache.On("RemovePresence", mock.Anything, testBoardId, user.Id).Return(nil)
	mockCache.On("Publish", mock.Anything, "board/"+testBoardId+"/presence", mock.Anything).Return(nil)

	svc.JoinBoard(testBoardId, user)
	svc.LeaveBoard(testBoardId, user)
	svc.JoinBoard(testBoardId, user)

	time.Sleep(100 * time.Millisecond)
	mockCache.AssertNumberOfCalls(t, "AddPresence", 2)
	// Two joins plus one leave
	mockCache.AssertNumberOfCalls(t, "Publish", 3)
}

func TestLeaveAllBoards_OneLeavePerBoard(t *testing.T) {
	svc, _, mockCache, _, _ := setupService(t)

	user := models.User{Id: "user1", Email: "user1@example.com"}
	other := models.User{Id: "user2", Email: "user2@example.com"}

	mockCache.On("AddPresence", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockCache.On("RemovePresence", mock.Anything, mock.Anything, user.Id).Return(nil)
	mockCache.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc.JoinBoard(testBoardId, user)
	svc.JoinBoard(secondBoardId, user)
	svc.JoinBoard(testBoardId, other)

	svc.LeaveAllBoards(user)

	time.Sleep(100 * time.Millisecond)
	mockCache.AssertCalled(t, "RemovePresence", mock.Anything, testBoardId, user.Id)
	mockCache.AssertCalled(t, "RemovePresence", mock.Anything, secondBoardId, user.Id)
	mockCache.AssertNumberOfCalls(t, "RemovePresence", 2)

	// A second disconnect sweep finds nothing
	svc.LeaveAllBoards(user)
	time.Sleep(100 * time.Millisecond)
	mockCache.AssertNumberOfCalls(t, "RemovePresence", 2)
}

// Many users joining and leaving one board concurrently, repeatedly hitting
// the empty-entry removal path. The table must converge to empty so a later
// join counts as a first join again.
func TestPresence_ConcurrentJoinLeave(t *testing.T) {
	svc, _, mockCache, _, _ := setupService(t)

	mockCache.On("AddPresence", mock.Anything, testBoardId, mock.Anything, mock.Anything).Return(nil)
	mockCache.On("RemovePresence", mock.Anything, testBoardId, mock.Anything).Return(nil)
	mockCache.On("Publish", mock.Anything, "board/"+testBoardId+"/presence", mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := models.User{
				Id:    fmt.Sprintf("user%d", i),
				Email: fmt.Sprintf("user%d@example.com", i),
			}
			for j := 0; j < 25; j++ {
				svc.JoinBoard(testBoardId, user)
				svc.LeaveBoard(testBoardId, user)
			}
		}(i)
	}
	wg.Wait()

	late := models.User{Id: "late", Email: "late@example.com"}
	svc.JoinBoard(testBoardId, late)

	time.Sleep(100 * time.Millisecond)
	mockCache.AssertCalled(t, "AddPresence", mock.Anything, testBoardId, late.Id, late.Email)
}

func TestGetActiveUsers_Success(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()

	user := models.User{Id: "user1", Email: "user1@example.com"}
	board := models.Board{Id: testBoardId, OwnerId: user.Id}
	presence := map[string]string{"user1": "user1@example.com", "user2": "user2@example.com"}

	mockStore.On("GetBoard", ctx, testBoardId).Return(board, nil)
	mockCache.On("GetPresence", ctx, testBoardId).Return(presence, nil)

	activeUsers, err := svc.GetActiveUsers(ctx, user, testBoardId)

	assert.NoError(t, err)
	assert.Equal(t, presence, activeUsers)
}

func TestGetActiveUsers_NoViewAccess(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()

	user := models.User{Id: "stranger", Email: "stranger@example.com"}
	board := models.Board{Id: testBoardId, OwnerId: "owner1"}

	mockStore.On("GetBoard", ctx, testBoardId).Return(board, nil)
	mockStore.On("GetCollaboratorRole", ctx, testBoardId, user.Id).Return(models.Role(""), store.ErrItemNotFound)

	_, err := svc.GetActiveUsers(ctx, user, testBoardId)

	assert.ErrorIs(t, err, service.ErrUnauthorized)
	mockCache.AssertNotCalled(t, "GetPresence", mock.Anything, mock.Anything)
}

func TestGetActiveUsers_BoardMissing(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetBoard", ctx, testBoardId).Return(models.Board{}, store.ErrItemNotFound)

	_, err := svc.GetActiveUsers(ctx, models.User{Id: "user1"}, testBoardId)

	assert.ErrorIs(t, err, service.ErrNotFound)
}
