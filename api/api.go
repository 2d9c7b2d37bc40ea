package api

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/smartexpenses/whiteboard/api/rest"
	"github.com/smartexpenses/whiteboard/api/ws"
	"github.com/smartexpenses/whiteboard/cache"
	"github.com/smartexpenses/whiteboard/mq"
	"github.com/smartexpenses/whiteboard/service"
	"github.com/smartexpenses/whiteboard/store"
	"github.com/smartexpenses/whiteboard/worker"
)

type WhiteboardAPI struct {
	restHandler *rest.Handler
	wsHandler   *ws.Handler
	wsUpgrader  websocket.Upgrader
	shutdownCtx context.Context
}

func NewWhiteboardAPI(
	whiteboardStore store.WhiteboardStore,
	purgeBoardQueue mq.MessageQueue,
	whiteboardCache cache.WhiteboardCache,
	jwtSecret []byte,
	shutdownCtx context.Context,
) *WhiteboardAPI {
	activityBatcher := worker.NewActivityBatcher(whiteboardStore, 60000)
	go activityBatcher.Run(shutdownCtx)

	purgeConsumer := worker.NewPurgeConsumer(purgeBoardQueue, whiteboardStore, whiteboardCache)
	go purgeConsumer.Run(shutdownCtx)

	svc := service.NewService(
		whiteboardStore,
		whiteboardCache,
		purgeBoardQueue,
		activityBatcher,
		jwtSecret,
	)

	wsHub := ws.NewHub(whiteboardCache, svc.JoinBoard, svc.LeaveBoard, svc.LeaveAllBoards)
	go wsHub.Run()

	restHandler := rest.NewHandler(svc)
	wsHandler := ws.NewHandler(svc, wsHub)

	return &WhiteboardAPI{
		restHandler: restHandler,
		wsHandler:   wsHandler,
		shutdownCtx: shutdownCtx,
	}
}

func (whiteboardAPI *WhiteboardAPI) RegisterRoutes(mux *http.ServeMux, requiredOrigin string) {
	// Health check endpoint (no auth required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/boards", whiteboardAPI.restHandler.HandleBoards)
	mux.HandleFunc("/boards/public", whiteboardAPI.restHandler.HandlePublicBoards)
	mux.HandleFunc("/boards/{boardId}", whiteboardAPI.restHandler.HandleBoard)
	mux.HandleFunc("/boards/{boardId}/shapes", whiteboardAPI.restHandler.HandleBoardShapes)
	mux.HandleFunc("/boards/{boardId}/active-users", whiteboardAPI.restHandler.HandleActiveUsers)
	mux.HandleFunc("/boards/{boardId}/collaborators", whiteboardAPI.restHandler.HandleCollaborators)
	mux.HandleFunc("/boards/{boardId}/collaborators/{userId}", whiteboardAPI.restHandler.HandleCollaborator)

	wsUpgrader := whiteboardAPI.wsHandler.NewWsUpgrader(requiredOrigin)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		whiteboardAPI.wsHandler.ServeWS(wsUpgrader, w, r, whiteboardAPI.shutdownCtx)
	})
}
