package ws

import (
	"context"
	"log"

	"github.com/smartexpenses/whiteboard/cache"
	"github.com/smartexpenses/whiteboard/models"
)

type subscription struct {
	client  *Client
	boardId string
	stream  string
}

// delivery is a pub/sub message handed from a redis subscriber goroutine to
// the hub goroutine, which owns the membership maps and does the fan-out.
type delivery struct {
	channel string
	payload []byte
}

func channelKey(boardId string, stream string) string {
	return "board/" + boardId + "/" + stream
}

// Hub maintains the set of active clients and fans redis pub/sub messages
// out to them. It runs as a single goroutine owning all subscription maps,
// so no case needs a lock. Presence transitions are derived here: a board
// counts a subject as present while at least one of its connections is
// subscribed to any of the board's streams.
type Hub struct {
	whiteboardCache           cache.WhiteboardCache
	OpenCh                    chan *Client
	CloseCh                   chan *Client
	SubscribeCh               chan subscription
	UnsubscribeCh             chan subscription
	deliveryCh                chan delivery
	userToClients             map[string]map[*Client]struct{}
	channelToClients          map[string]map[*Client]struct{}
	channelToSubscriberCancel map[string]context.CancelFunc
	boardToUserConns          map[string]map[string]map[*Client]struct{}

	onBoardJoin  func(boardId string, user models.User)
	onBoardLeave func(boardId string, user models.User)
	onDisconnect func(user models.User)
}

func NewHub(
	whiteboardCache cache.WhiteboardCache,
	onBoardJoin func(boardId string, user models.User),
	onBoardLeave func(boardId string, user models.User),
	onDisconnect func(user models.User),
) *Hub {
	return &Hub{
		whiteboardCache:           whiteboardCache,
		OpenCh:                    make(chan *Client, 256),
		CloseCh:                   make(chan *Client, 256),
		SubscribeCh:               make(chan subscription, 1024),
		UnsubscribeCh:             make(chan subscription, 1024),
		deliveryCh:                make(chan delivery, 1024),
		userToClients:             make(map[string]map[*Client]struct{}),
		channelToClients:          make(map[string]map[*Client]struct{}),
		channelToSubscriberCancel: make(map[string]context.CancelFunc),
		boardToUserConns:          make(map[string]map[string]map[*Client]struct{}),
		onBoardJoin:               onBoardJoin,
		onBoardLeave:              onBoardLeave,
		onDisconnect:              onDisconnect,
	}
}

const (
	maxConnectionsPerUser         = 3
	maxSubscriptionsPerConnection = 50
)

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.OpenCh:
			if _, ok := h.userToClients[client.user.Id]; !ok {
				h.userToClients[client.user.Id] = make(map[*Client]struct{})
			}

			if len(h.userToClients[client.user.Id]) >= maxConnectionsPerUser {
				log.Printf("User %s reached max connections (%d)", client.user.Id, maxConnectionsPerUser)
				// Send stays open: the read pump may still be handling a
				// command and must be able to post its response
				client.cancel()
				continue
			}

			h.userToClients[client.user.Id][client] = struct{}{}

		case client := <-h.CloseCh:
			boards := make(map[string]struct{})
			for channel, boardId := range client.subscriptions {
				h.dropChannelMember(channel, client)
				boards[boardId] = struct{}{}
			}
			for boardId := range boards {
				h.dropBoardConn(boardId, client)
			}

			delete(h.userToClients[client.user.Id], client)
			if len(h.userToClients[client.user.Id]) == 0 {
				delete(h.userToClients, client.user.Id)
				// Last connection gone: sweep any presence left by
				// edit-evidence joins without a subscription
				h.onDisconnect(client.user)
			}

		case sub := <-h.SubscribeCh:
			if len(sub.client.subscriptions) >= maxSubscriptionsPerConnection {
				log.Printf("Connection by user %s reached max subscriptions (%d)", sub.client.user.Id, maxSubscriptionsPerConnection)
				continue
			}

			channel := channelKey(sub.boardId, sub.stream)
			if h.channelToClients[channel] == nil {
				log.Printf("Subscriber does not exist, creating for channel: %s", channel)

				ctx, cancel := context.WithCancel(context.Background())
				// The callback runs on the subscriber goroutine; the
				// membership maps are only touched by the hub goroutine,
				// so hand the message over instead of fanning out here
				err := h.whiteboardCache.Subscribe(ctx, channel, func(messageBytes []byte) {
					h.deliveryCh <- delivery{channel: channel, payload: messageBytes}
				})
				if err != nil {
					log.Printf("Failed to create redis sub for channel %s: %v", channel, err)
					cancel()
					continue
				}

				h.channelToClients[channel] = make(map[*Client]struct{})
				h.channelToSubscriberCancel[channel] = cancel
			}
			h.channelToClients[channel][sub.client] = struct{}{}
			sub.client.subscriptions[channel] = sub.boardId

			if h.boardToUserConns[sub.boardId] == nil {
				h.boardToUserConns[sub.boardId] = make(map[string]map[*Client]struct{})
			}
			userConns := h.boardToUserConns[sub.boardId][sub.client.user.Id]
			if userConns == nil {
				userConns = make(map[*Client]struct{})
				h.boardToUserConns[sub.boardId][sub.client.user.Id] = userConns
			}
			if len(userConns) == 0 {
				h.onBoardJoin(sub.boardId, sub.client.user)
			}
			userConns[sub.client] = struct{}{}

		case d := <-h.deliveryCh:
			for client := range h.channelToClients[d.channel] {
				select {
				case client.Send <- d.payload:
				default:
					// A full send buffer must not stall the hub
					log.Printf("Dropping message for slow client of user %s", client.user.Id)
				}
			}

		case unsub := <-h.UnsubscribeCh:
			channel := channelKey(unsub.boardId, unsub.stream)
			if _, ok := unsub.client.subscriptions[channel]; !ok {
				continue
			}
			h.dropChannelMember(channel, unsub.client)
			delete(unsub.client.subscriptions, channel)

			// Still subscribed to another stream of this board?
			stillOnBoard := false
			for _, boardId := range unsub.client.subscriptions {
				if boardId == unsub.boardId {
					stillOnBoard = true
					break
				}
			}
			if !stillOnBoard {
				h.dropBoardConn(unsub.boardId, unsub.client)
			}
		}
	}
}

func (h *Hub) dropChannelMember(channel string, client *Client) {
	delete(h.channelToClients[channel], client)
	if len(h.channelToClients[channel]) == 0 {
		if cancel, ok := h.channelToSubscriberCancel[channel]; ok {
			cancel()
			delete(h.channelToSubscriberCancel, channel)
		}
		delete(h.channelToClients, channel)
	}
}

// dropBoardConn removes a connection from a board's membership and emits a
// presence leave when it was the subject's last connection on that board.
func (h *Hub) dropBoardConn(boardId string, client *Client) {
	userConns, ok := h.boardToUserConns[boardId][client.user.Id]
	if !ok {
		return
	}

	delete(userConns, client)
	if len(userConns) == 0 {
		delete(h.boardToUserConns[boardId], client.user.Id)
		h.onBoardLeave(boardId, client.user)
	}
	if len(h.boardToUserConns[boardId]) == 0 {
		delete(h.boardToUserConns, boardId)
	}
}
