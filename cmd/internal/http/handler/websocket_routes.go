package handler

import (
	"context"
	"io"
	"net/http"
	"notifyflow/cmd/internal/infrastructure/aws/websocket"
	"notifyflow/cmd/internal/infrastructure/socket"
	"notifyflow/cmd/internal/utils/apierror"
	"notifyflow/cmd/internal/utils/uid"
	"slices"

	gws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type WebSocketService interface {
	RegisterConnection(connectionID string) apierror.ErrorResponse
	RemoveConnection(ctx context.Context, connectionID string)
	HandleRaw(ctx context.Context, connID string, data []byte)
}

// DefaultWSRoute serves both push modes. Local sockets are upgraded here and
// kept in Hub; gateway sockets are announced by API Gateway through the
// connect, disconnect and message callbacks.
type DefaultWSRoute struct {
	WSService WebSocketService
	Hub       *socket.Hub
	upgrader  gws.Upgrader
}

func NewWSDefault(wsService WebSocketService, hub *socket.Hub, allowedOrigins []string) *DefaultWSRoute {
	return &DefaultWSRoute{
		WSService: wsService,
		Hub:       hub,
		upgrader: gws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no origin
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// HandleUpgrade turns the request into a local websocket and serves it until
// the peer goes away.
func (h *DefaultWSRoute) HandleUpgrade(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response
		log.Debugf("websocket upgrade failed: %v", err)
		return nil
	}

	// The request context is tied to the hijacked connection, so the socket
	// lifetime is tracked by the pumps instead
	ctx := context.Background()
	client := socket.NewClient(uid.GenerateString(), conn)

	h.Hub.Register(client)
	if apierr := h.WSService.RegisterConnection(client.ID); apierr != nil {
		h.Hub.Unregister(client.ID)
		_ = conn.Close()
		return nil
	}

	go client.WritePump()
	client.ReadPump(
		func(data []byte) {
			h.WSService.HandleRaw(ctx, client.ID, data)
		},
		func() {
			h.Hub.Unregister(client.ID)
			h.WSService.RemoveConnection(ctx, client.ID)
		},
	)
	return nil
}

func (h *DefaultWSRoute) HandleConnect(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("connectionId"))
	}

	if apierr := h.WSService.RegisterConnection(connID); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (h *DefaultWSRoute) HandleDisconnect(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID != "" {
		h.WSService.RemoveConnection(c.Request().Context(), connID)
	}
	return c.NoContent(http.StatusOK)
}

// HandleMessage receives one frame relayed by API Gateway.
func (h *DefaultWSRoute) HandleMessage(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("connectionId"))
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	h.WSService.HandleRaw(c.Request().Context(), connID, body)
	return c.NoContent(http.StatusOK)
}
