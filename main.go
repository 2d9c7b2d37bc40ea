package main

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartexpenses/whiteboard/api"
	"github.com/smartexpenses/whiteboard/cache/redis"
	"github.com/smartexpenses/whiteboard/mq/sqsmq"
	"github.com/smartexpenses/whiteboard/store/dynamo"
)

const (
	DynamoDBTable      = "Whiteboard"
	SQSPurgeBoardQueue = "PurgeBoardQueue"
)

func main() {
	ctx := context.Background()
	devMode := os.Getenv("DEV_MODE") == "true"

	whiteboardStore, err := dynamo.NewDynamoWhiteboardStore(ctx, devMode, os.Getenv("DYNAMODB_ENDPOINT"), DynamoDBTable)
	if err != nil {
		log.Fatalf("Failed to create dynamodb store: %v", err)
	}

	purgeBoardQueue, err := sqsmq.NewSQSMessageQueue(ctx, devMode, os.Getenv("SQS_ENDPOINT"), SQSPurgeBoardQueue)
	if err != nil {
		log.Fatalf("Failed to create SQS MQ: %v", err)
	}

	whiteboardCache, err := redis.NewRedisWhiteboardCache(ctx, devMode, os.Getenv("REDIS_ENDPOINT"))
	if err != nil {
		log.Fatalf("Failed to create redis cache: %v", err)
	}

	jwtSecret, err := base64.StdEncoding.DecodeString(os.Getenv("JWT_SECRET"))
	if err != nil {
		log.Fatalf("Failed to decode base64 jwtSecret: %v", err)
	}

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	whiteboardApi := api.NewWhiteboardAPI(whiteboardStore, purgeBoardQueue, whiteboardCache, jwtSecret, shutdownCtx)

	mux := http.NewServeMux()
	whiteboardApi.RegisterRoutes(mux, os.Getenv("ALLOWED_ORIGIN"))

	hostPort := "8080"
	if p := os.Getenv("HOST_PORT"); p != "" {
		hostPort = p
	}
	log.Printf("Starting server on host port: %s\n", hostPort)
	log.Fatal(http.ListenAndServe(":"+hostPort, mux))
}
