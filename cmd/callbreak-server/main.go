// Command callbreak-server serves the lobby over HTTP and seats players over WebSockets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/acme/autocert"

	"github.com/prasantadh/callbreak-np/internal/app"
	"github.com/prasantadh/callbreak-np/internal/bot"
	"github.com/prasantadh/callbreak-np/internal/config"
	"github.com/prasantadh/callbreak-np/internal/ports/httpapi"
)

var (
	httpPort   = flag.Int("http_port", 8080, "The port to listen on for http requests.")
	httpsPort  = flag.Int("https_port", 8443, "The port to listen on for https requests.")
	httpsHost  = flag.String("https_host", "", "Set this to the hostname to get a Let's Encrypt SSL certificate for.")
	configPath = flag.String("config", "", "Path of the game config JSON file.")
	logLevel   = flag.String("log_level", "info", "Log level: debug, info, warn or error.")
	origins    = flag.String("allowed_origins", "", "Comma separated origin patterns allowed to open WebSockets.")
)

func main() {
	flag.Parse()
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	}

	if err := run(logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func run(logger *logrus.Logger) error {
	if err := config.LoadGameConfig(*configPath); err != nil {
		return err
	}
	cfg := config.GetGameConfig()
	if cfg.BotIdentities != "" {
		if err := bot.LoadIdentities(cfg.BotIdentities); err != nil {
			return err
		}
	}
	if err := cfg.CheckSeatTokenSecret(); err != nil {
		return err
	}
	if cfg.SeatTokenSecret == "" {
		secret, err := config.RandomSecret()
		if err != nil {
			return err
		}
		cfg.SeatTokenSecret = secret
		logger.Warn("seat_token_secret not set, using a random one; seat tokens will not survive a restart")
	}
	level, err := bot.ParseLevel(cfg.BotLevel)
	if err != nil {
		return err
	}

	lobby := app.NewLobby(nil, app.LobbyOptions{
		MaxRooms:     cfg.MaxRooms,
		ShuffleSeats: cfg.ShuffleSeats,
		BotLevel:     level,
		BotScript:    cfg.BotScript,
		Logger:       logger,
	})
	defer lobby.Close()

	api := httpapi.New(lobby, app.NewTokenIssuer(cfg.SeatTokenSecret, cfg.SeatTokenTTL()), httpapi.Options{
		TurnTimeout:    cfg.TurnTimeout(),
		AllowedOrigins: splitList(*origins),
		Logger:         logger,
	})
	handler := api.Echo()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if *httpsHost != "" {
		// Still create an http server, but make it always redirect to https.
		redirect := &http.Server{
			Addr:    ":" + strconv.Itoa(*httpPort),
			Handler: http.RedirectHandler("https://"+*httpsHost, http.StatusMovedPermanently),
		}
		go func() {
			if err := redirect.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("redirect server")
			}
		}()
		defer redirect.Close()

		m := autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			Cache:      autocert.DirCache("golang-autocert"),
			HostPolicy: autocert.HostWhitelist(*httpsHost),
		}
		srv = &http.Server{
			Addr:      ":" + strconv.Itoa(*httpsPort),
			Handler:   handler,
			TLSConfig: m.TLSConfig(),
		}
	} else {
		srv = &http.Server{Addr: ":" + strconv.Itoa(*httpPort), Handler: handler}
	}

	errc := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("listening")
		if srv.TLSConfig != nil {
			errc <- srv.ListenAndServeTLS("", "")
		} else {
			errc <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}
