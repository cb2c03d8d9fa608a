package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"riff-be/internal/dto"
	"riff-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

const commandQueueSize = 16

// Dispatcher handles one raw command of a session.
type Dispatcher interface {
	Dispatch(ctx context.Context, sessionID string, raw []byte) dto.RpcResult
}

type ServeOptions struct {
	BufferSize      int
	MaxMessageBytes int64
}

// Serve runs the connection on conn until the peer goes away. Commands are
// handled one at a time in arrival order. They run under the session context,
// so work they start, such as a run, outlives this connection while other
// connections remain attached to the session.
func Serve(ctx context.Context, conn *websocket.Conn, hub *Hub, dispatcher Dispatcher, sessionID string, opts ServeOptions, log logger.ILogger) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := NewClient(conn, sessionID, opts.BufferSize, log)
	sessionCtx := hub.Attach(sessionID, client)

	commands := make(chan []byte, commandQueueSize)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		client.writePump()
	}()
	go func() {
		defer wg.Done()
		for raw := range commands {
			if ctx.Err() != nil {
				continue
			}
			reply(client, dispatcher.Dispatch(sessionCtx, sessionID, raw), log)
		}
	}()

	log.Info("Session", "Connection opened", map[string]interface{}{"session_id": sessionID})

	client.readPump(opts.MaxMessageBytes, func(raw []byte) {
		select {
		case commands <- raw:
		case <-ctx.Done():
		}
	})

	cancel()
	// detaching first lets a command in flight see the session end when this was the last member
	hub.Detach(sessionID, client)
	close(commands)
	client.Close()
	wg.Wait()

	log.Info("Session", "Connection closed", map[string]interface{}{"session_id": sessionID})
}

func reply(client *Client, result dto.RpcResult, log logger.ILogger) {
	ev := result.ToEvent()
	if ev == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error("Session", "Failed to encode reply", map[string]interface{}{"error": err.Error()})
		return
	}
	client.Send(data)
}
