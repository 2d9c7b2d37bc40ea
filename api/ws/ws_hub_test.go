package ws

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	cachemocks "github.com/smartexpenses/whiteboard/cache/mocks"
	"github.com/smartexpenses/whiteboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testBoardId = "0f8fad5b-d9cb-469f-a165-70867728950e"

func noopJoin(boardId string, user models.User) {}
func noopLeave(boardId string, user models.User) {}
func noopDisconnect(user models.User) {}

// setupHub wires a hub to a mocked cache whose Subscribe hands the message
// callback back to the test through handlerCh.
func setupHub(t *testing.T) (*Hub, *cachemocks.MockCache, chan func([]byte)) {
	mockCache := new(cachemocks.MockCache)
	handlerCh := make(chan func([]byte), 8)

	subCall := mockCache.On("Subscribe", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	subCall.Run(func(args mock.Arguments) {
		handlerCh <- args.Get(2).(func(message []byte))
	})

	hub := NewHub(mockCache, noopJoin, noopLeave, noopDisconnect)
	go hub.Run()

	return hub, mockCache, handlerCh
}

func TestHub_DeliveryReachesSubscriber(t *testing.T) {
	hub, _, handlerCh := setupHub(t)

	client := NewClient(hub, nil, models.User{Id: "user1", Email: "user1@example.com"}, nil)
	hub.OpenCh <- client
	hub.SubscribeCh <- subscription{client: client, boardId: testBoardId, stream: "shapes"}

	var handler func([]byte)
	select {
	case handler = <-handlerCh:
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for subscriber registration")
	}

	payload := []byte(`{"type":"SHAPE_CREATE"}`)
	handler(payload)

	select {
	case msg := <-client.Send:
		assert.Equal(t, payload, msg)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

// Deliveries race against subscribe/unsubscribe churn on the same channel;
// membership maps must only ever be touched by the hub goroutine.
func TestHub_DeliveryDuringMembershipChurn(t *testing.T) {
	hub, _, handlerCh := setupHub(t)

	client1 := NewClient(hub, nil, models.User{Id: "user1", Email: "user1@example.com"}, nil)
	client2 := NewClient(hub, nil, models.User{Id: "user2", Email: "user2@example.com"}, nil)
	hub.OpenCh <- client1
	hub.OpenCh <- client2

	// client1 stays subscribed so the redis subscription survives the churn
	hub.SubscribeCh <- subscription{client: client1, boardId: testBoardId, stream: "shapes"}

	var handler func([]byte)
	select {
	case handler = <-handlerCh:
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for subscriber registration")
	}

	// Drain both clients so full send buffers never force drops
	var received atomic.Int64
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-client1.Send:
				received.Add(1)
			case <-stop:
				return
			}
		}
	}()
	go func() {
		for {
			select {
			case <-client2.Send:
			case <-stop:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			handler([]byte(`{"type":"SHAPE_CREATE"}`))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			hub.SubscribeCh <- subscription{client: client2, boardId: testBoardId, stream: "shapes"}
			hub.UnsubscribeCh <- subscription{client: client2, boardId: testBoardId, stream: "shapes"}
		}
	}()
	wg.Wait()

	time.Sleep(50 * time.Millisecond)
	close(stop)
	assert.Greater(t, received.Load(), int64(0))
}

func TestHub_ConnectionLimitRejection(t *testing.T) {
	hub, _, _ := setupHub(t)

	user := models.User{Id: "user1", Email: "user1@example.com"}
	clients := make([]*Client, maxConnectionsPerUser+1)
	for i := range clients {
		clients[i] = NewClient(hub, nil, user, nil)
		hub.OpenCh <- clients[i]
	}

	rejected := clients[maxConnectionsPerUser]
	select {
	case <-rejected.ctx.Done():
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for over-limit rejection")
	}

	// The read pump may still be mid-command; posting its response on Send
	// must not panic
	assert.NotPanics(t, func() {
		rejected.Send <- []byte(`{"type":"subscribe_response"}`)
	})

	// Admitted connections stay up
	for _, c := range clients[:maxConnectionsPerUser] {
		select {
		case <-c.ctx.Done():
			t.Fatal("admitted connection was cancelled")
		default:
		}
	}
}
