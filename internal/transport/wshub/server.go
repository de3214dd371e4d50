package wshub

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"nuha.dev/surtrack/internal/util"
)

// Server upgrades dashboard connections and attaches them to the hub.
// Clients name their topics in the "topics" query parameter, comma
// separated, e.g. /ws/location?topics=location/SUR1,location/SUR2
type Server struct {
	hub    *Hub
	logger zerolog.Logger
}

func NewServer(hub *Hub) *Server {
	o := &Server{hub: hub}
	o.logger = log.With().Str("module", "websocket").Logger()
	return o
}

type wsClient struct {
	id      string
	c       *websocket.Conn
	out     chan []byte
	closed  int32
	pushed  uint64
	skipped uint64
	logger  zerolog.Logger
}

// Push hands the payload to the write loop without blocking. Payloads
// are skipped when the client buffer is full.
func (wc *wsClient) Push(topic string, payload []byte) bool {
	if atomic.LoadInt32(&wc.closed) == 1 {
		return true
	}
	select {
	case wc.out <- payload:
		atomic.AddUint64(&wc.pushed, 1)
	default:
		atomic.AddUint64(&wc.skipped, 1)
	}
	return false
}

func (wc *wsClient) close() {
	atomic.StoreInt32(&wc.closed, 1)
}

func (ws *Server) ServeWs(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		ws.logger.Err(err).Msg("error while upgrading websocket")
		return
	}
	defer c.Close(websocket.StatusInternalError, "unhandled error")

	topics := strings.Split(r.URL.Query().Get("topics"), ",")
	wc := &wsClient{id: util.GenUUID(), c: c, out: make(chan []byte, 16)}
	wc.logger = ws.logger.With().Str("conn_id", wc.id).Logger()

	n := 0
	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		ws.hub.Subscribe(topic, wc)
		n++
	}
	if n == 0 {
		c.Close(websocket.StatusPolicyViolation, "no topics")
		return
	}
	wc.logger.Info().Strs("topics", topics).Msg("websocket client attached")

	go wc.writeLoop(r.Context())
	wc.readLoop(r.Context())
	ws.hub.Drop(wc)
}

// readLoop drains the connection until the peer goes away. Incoming
// frames carry nothing the server acts on.
func (wc *wsClient) readLoop(ctx context.Context) {
	for {
		_, _, err := wc.c.Read(ctx)
		if err != nil {
			wc.logger.Debug().Err(err).Msg("websocket closed")
			wc.close()
			return
		}
	}
}

func (wc *wsClient) writeLoop(ctx context.Context) {
	for {
		select {
		case payload := <-wc.out:
			err := wc.c.Write(ctx, websocket.MessageText, payload)
			if err != nil {
				wc.logger.Err(err).Msg("error while writing to connection")
				wc.close()
				return
			}
		case <-ctx.Done():
			wc.close()
			return
		}
	}
}
