// Package httpapi exposes the lobby over HTTP and seats WebSocket players.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"

	"github.com/prasantadh/callbreak-np/internal/agent"
	"github.com/prasantadh/callbreak-np/internal/app"
	"github.com/prasantadh/callbreak-np/internal/domain"
	"github.com/prasantadh/callbreak-np/internal/ports/ws"
)

// Options configures New.
type Options struct {
	// TurnTimeout bounds each decision of a WebSocket player. 0 waits forever.
	TurnTimeout time.Duration
	// AllowedOrigins are host patterns accepted on upgrade besides the
	// request's own host.
	AllowedOrigins []string
	Logger         logrus.FieldLogger
}

type Server struct {
	lobby  *app.Lobby
	tokens *app.TokenIssuer
	opts   Options
	logger logrus.FieldLogger
}

func New(lobby *app.Lobby, tokens *app.TokenIssuer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{lobby: lobby, tokens: tokens, opts: opts, logger: logger}
}

// Echo builds the router.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(s.requestLogger)

	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	e.GET("/rooms", s.listRooms)
	e.POST("/rooms", s.createRoom)
	e.GET("/rooms/:id", s.getRoom)
	e.POST("/rooms/:id/seats", s.takeSeat)
	e.POST("/rooms/:id/bots", s.fillWithBots)
	e.GET("/rooms/:id/join", s.join)
	return e
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		s.logger.WithFields(logrus.Fields{
			"method":  c.Request().Method,
			"path":    c.Path(),
			"status":  c.Response().Status,
			"latency": time.Since(start).String(),
		}).Debug("request")
		return err
	}
}

type seatRequest struct {
	Name string `json:"name"`
}

type seatResponse struct {
	Room  string `json:"room"`
	Token string `json:"token,omitempty"`
}

func (s *Server) listRooms(c echo.Context) error {
	return c.JSON(http.StatusOK, s.lobby.Rooms())
}

func (s *Server) getRoom(c echo.Context) error {
	info, err := s.lobby.Room(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, info)
}

// createRoom opens a room; with a name in the body it also issues that
// player's seat token.
func (s *Server) createRoom(c echo.Context) error {
	var req seatRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return err
		}
	}
	id, err := s.lobby.CreateRoom()
	if err != nil {
		return httpError(err)
	}
	resp := seatResponse{Room: id}
	if req.Name != "" {
		if resp.Token, err = s.tokens.Issue(id, req.Name); err != nil {
			return httpError(err)
		}
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) takeSeat(c echo.Context) error {
	var req seatRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	id := c.Param("id")
	info, err := s.lobby.Room(id)
	if err != nil {
		return httpError(err)
	}
	if info.Started {
		return httpError(app.ErrRoomFull)
	}
	token, err := s.tokens.Issue(id, req.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, seatResponse{Room: id, Token: token})
}

func (s *Server) fillWithBots(c echo.Context) error {
	if err := s.lobby.FillWithBots(c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// join upgrades to a WebSocket and seats the token's player as a Human
// agent. With fill=true the remaining seats are given to bots. The handler
// returns when the connection ends.
func (s *Server) join(c echo.Context) error {
	id := c.Param("id")
	name, err := s.tokens.Verify(c.QueryParam("token"), id)
	if err != nil {
		return httpError(err)
	}
	if _, err := s.lobby.Room(id); err != nil {
		return httpError(err)
	}
	fill, _ := strconv.ParseBool(c.QueryParam("fill"))

	logger := s.logger.WithFields(logrus.Fields{"room": id, "player": name})
	conn, err := ws.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{OriginPatterns: s.opts.AllowedOrigins}, logger)
	if err != nil {
		logger.WithError(err).Warn("websocket upgrade failed")
		return nil
	}
	human := agent.NewHuman(name, conn, s.opts.TurnTimeout, logger)
	if err := s.lobby.Join(id, name, human); err != nil {
		logger.WithError(err).Info("join rejected")
		conn.Close()
		return nil
	}
	logger.Info("player seated")
	if fill {
		if err := s.lobby.FillWithBots(id); err != nil {
			logger.WithError(err).Warn("fill with bots")
		}
	}
	<-conn.Done()
	return nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, app.ErrRoomNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrRoomFull), errors.Is(err, domain.ErrPlayerAlreadyInGame), errors.Is(err, domain.ErrNotAcceptingNewPlayers):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrTooManyRooms):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, app.ErrInvalidSeatToken):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
