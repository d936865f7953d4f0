package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/realtime"
	"restaurant-pos/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Terminals connect from the local network; origin checks stay with
	// the reverse proxy.
	CheckOrigin: func(*http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// StreamHandler pushes live dashboard snapshots over websockets. Each
// connection gets the current snapshot immediately and a fresh one after
// every change event on the watched collection.
type StreamHandler struct {
	Tables *store.TableStore
	Orders *store.OrderStore
	Feed   realtime.Feed
}

func NewStreamHandler(tables *store.TableStore, orders *store.OrderStore, feed realtime.Feed) *StreamHandler {
	if tables == nil || orders == nil || feed == nil {
		panic("nil dependency passed to NewStreamHandler")
	}
	return &StreamHandler{Tables: tables, Orders: orders, Feed: feed}
}

// TablesStream streams the floor plan to the staff dashboard.
func (h *StreamHandler) TablesStream(c echo.Context) error {
	return h.stream(c, realtime.CollectionTables, func() any { return h.Tables.Tables() })
}

// KitchenStream streams the cooking queue to the kitchen display.
func (h *StreamHandler) KitchenStream(c echo.Context) error {
	return h.stream(c, realtime.CollectionOrderItems, func() any { return h.Orders.Pending() })
}

func (h *StreamHandler) stream(c echo.Context, collection string, snapshot func() any) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	sub, err := h.Feed.Subscribe(collection)
	if err != nil {
		log.Printf("stream: subscribe %s failed: %v", collection, err)
		return err
	}
	defer sub.Cancel()

	// Drain the client side so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Cancel()
				return
			}
		}
	}()

	if err := writeSnapshot(conn, snapshot()); err != nil {
		return nil
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case _, ok := <-sub.C:
			if !ok {
				return nil
			}
			// A snapshot one event behind is corrected by the next push.
			if err := writeSnapshot(conn, snapshot()); err != nil {
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
