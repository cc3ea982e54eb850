// Command callbreak-client plays one seat of a Call-Break room from the terminal.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/websocket"

	"github.com/prasantadh/callbreak-np/internal/agent"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

var (
	server = flag.String("server", "http://localhost:8080", "Base URL of the callbreak server.")
	room   = flag.String("room", "", "Room to join; empty creates a new room.")
	name   = flag.String("name", "", "Player name.")
	fill   = flag.Bool("fill", false, "Give the remaining seats to bots once seated.")
)

type seatResponse struct {
	Room  string `json:"room"`
	Token string `json:"token"`
}

func main() {
	flag.Parse()
	log := logrus.New()
	if *name == "" {
		log.Fatal("-name is required")
	}
	seat, err := takeSeat(*server, *room, *name)
	if err != nil {
		log.WithError(err).Fatal("could not take a seat")
	}
	fmt.Printf("seated in room %s\n", seat.Room)

	ws, err := dial(*server, seat, *fill)
	if err != nil {
		log.WithError(err).Fatal("could not connect")
	}
	defer ws.Close()

	if err := play(ws, bufio.NewScanner(os.Stdin), os.Stdout); err != nil && !errors.Is(err, io.EOF) {
		log.WithError(err).Fatal("connection lost")
	}
	fmt.Println("game over")
}

func takeSeat(base, roomID, player string) (seatResponse, error) {
	var seat seatResponse
	body, err := json.Marshal(map[string]string{"name": player})
	if err != nil {
		return seat, err
	}
	endpoint := base + "/rooms"
	if roomID != "" {
		endpoint += "/" + url.PathEscape(roomID) + "/seats"
	}
	resp, err := http.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return seat, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return seat, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	err = json.NewDecoder(resp.Body).Decode(&seat)
	return seat, err
}

func dial(base string, seat seatResponse, fill bool) (*websocket.Conn, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	origin := u.Scheme + "://" + u.Host
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = "/rooms/" + url.PathEscape(seat.Room) + "/join"
	u.RawQuery = url.Values{"token": {seat.Token}, "fill": {strconv.FormatBool(fill)}}.Encode()
	return websocket.Dial(u.String(), "", origin)
}

// play answers every request from the server until the connection closes.
func play(ws *websocket.Conn, in *bufio.Scanner, out io.Writer) error {
	for {
		var msg agent.ServerMessage
		if err := websocket.JSON.Receive(ws, &msg); err != nil {
			return err
		}
		show(out, msg.View)
		reply, err := prompt(in, out, msg)
		if err != nil {
			return err
		}
		if err := websocket.JSON.Send(ws, reply); err != nil {
			return err
		}
	}
}

func show(out io.Writer, view domain.PlayerView) {
	cur := view.Current()
	if cur == nil {
		return
	}
	fmt.Fprintf(out, "\nround %d\n", len(view.Rounds))
	for _, seat := range domain.Turns {
		marker := " "
		if seat == view.Seat {
			marker = "*"
		}
		call := "-"
		if c := cur.Calls.At(seat); c.IsSet() {
			call = strconv.Itoa(c.Int())
		}
		fmt.Fprintf(out, "%s %-16s call %s\n", marker, view.Players[seat.Index()], call)
	}
	if t := view.ActiveTrick(); t != nil {
		var played []string
		for _, seat := range domain.Turns {
			if c := t.CardOf(seat); !c.IsZero() {
				played = append(played, view.Players[seat.Index()]+":"+c.String())
			}
		}
		fmt.Fprintf(out, "trick %d: %s\n", len(cur.Tricks), strings.Join(played, " "))
	}
	fmt.Fprintf(out, "hand: %s\n", cur.Hand)
}

func prompt(in *bufio.Scanner, out io.Writer, msg agent.ServerMessage) (agent.ClientMessage, error) {
	for {
		switch msg.Action {
		case agent.ActionCall:
			fmt.Fprintf(out, "call (%d-%d): ", domain.MinCall, domain.MaxCall)
		default:
			legal := msg.View.LegalMoves()
			names := make([]string, len(legal))
			for i, c := range legal {
				names[i] = c.String()
			}
			fmt.Fprintf(out, "play one of [%s]: ", strings.Join(names, " "))
		}
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return agent.ClientMessage{}, err
			}
			return agent.ClientMessage{}, io.EOF
		}
		reply, err := parseReply(msg.Action, in.Text())
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		return reply, nil
	}
}

func parseReply(action agent.Action, text string) (agent.ClientMessage, error) {
	text = strings.TrimSpace(text)
	if action == agent.ActionCall {
		n, err := strconv.Atoi(text)
		if err != nil {
			return agent.ClientMessage{}, fmt.Errorf("not a number: %q", text)
		}
		c, err := domain.NewCall(n)
		if err != nil {
			return agent.ClientMessage{}, err
		}
		return agent.CallMessage(c), nil
	}
	card, err := domain.ParseCard(text)
	if err != nil {
		return agent.ClientMessage{}, err
	}
	return agent.BreakMessage(card), nil
}
