package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pixelfall/worldserver/authority"
	"github.com/pixelfall/worldserver/models"
	"github.com/pixelfall/worldserver/network"
)

// worldState mirrors the last roster broadcast so the client can derive
// its own authority role locally instead of caching host flags.
type worldState struct {
	mutex    sync.Mutex
	playerID string
	hostID   string
	roster   []models.RosterEntry
}

func (w *worldState) apply(hostID string, roster []models.RosterEntry) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.hostID = hostID
	w.roster = roster
}

func (w *worldState) role() authority.Role {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return authority.RoleOf(w.roster, w.hostID, w.playerID)
}

func send(c *websocket.Conn, msgType string, payload interface{}) error {
	data, err := network.EncodeEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

func login(server, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post("http://"+server+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func main() {
	server := flag.String("server", "localhost:8080", "server address")
	username := flag.String("user", "demo", "username")
	password := flag.String("pass", "demo", "password")
	roomID := flag.String("room", "", "room to join; empty creates a new one")
	zone := flag.String("zone", "hub", "starting zone")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	token, err := login(*server, *username, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	u := url.URL{Scheme: "ws", Host: *server, Path: "/ws", RawQuery: "token=" + token}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	world := &worldState{}
	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			env, err := network.ParseEnvelope(message)
			if err != nil {
				continue
			}
			switch env.Type {
			case "create_room", "join_room":
				var resp struct {
					OK     bool                 `json:"ok"`
					RoomID string               `json:"room_id"`
					Roster []models.RosterEntry `json:"roster"`
				}
				if err := json.Unmarshal(env.Data, &resp); err != nil || !resp.OK {
					log.Printf("<- %s rejected", env.Type)
					continue
				}
				// Own entry is the last on create, otherwise find by username
				world.mutex.Lock()
				for _, p := range resp.Roster {
					if p.Username == *username {
						world.playerID = p.ID
					}
				}
				world.roster = resp.Roster
				if len(resp.Roster) > 0 {
					world.hostID = resp.Roster[0].ID
				}
				world.mutex.Unlock()
				log.Printf("<- %s %s, %d players, my role: %s",
					env.Type, resp.RoomID, len(resp.Roster), world.role())
			case "roster":
				var payload struct {
					HostID  string               `json:"host_id"`
					Players []models.RosterEntry `json:"players"`
				}
				if err := json.Unmarshal(env.Data, &payload); err != nil {
					continue
				}
				world.apply(payload.HostID, payload.Players)
				log.Printf("<- roster: %d players, my role: %s", len(payload.Players), world.role())
			case "host_change":
				var payload struct {
					HostID string `json:"host_id"`
				}
				if err := json.Unmarshal(env.Data, &payload); err != nil {
					continue
				}
				world.mutex.Lock()
				world.hostID = payload.HostID
				world.mutex.Unlock()
				log.Printf("<- host changed to %s, my role: %s", payload.HostID, world.role())
			default:
				log.Printf("<- RECV (%s): %s", env.Type, string(env.Data))
			}
		}
	}()

	if *roomID == "" {
		log.Println("Sending create_room request...")
		err = send(c, "create_room", map[string]string{"zone": *zone})
	} else {
		log.Printf("Joining room %s...", *roomID)
		err = send(c, "join_room", map[string]string{"room_id": *roomID, "zone": *zone})
	}
	if err != nil {
		log.Println("Write error:", err)
		return
	}

	log.Println("Client started. Commands: 'zone <name>', 'start', 'rooms'.")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			text = strings.TrimSpace(text)

			switch {
			case strings.HasPrefix(text, "zone "):
				name := strings.TrimPrefix(text, "zone ")
				if err := send(c, "zone_change", map[string]string{"zone": name}); err != nil {
					log.Println("Write error:", err)
					return
				}
			case text == "start":
				if err := send(c, "start_game", nil); err != nil {
					log.Println("Write error:", err)
					return
				}
			case text == "rooms":
				if err := send(c, "list_rooms", nil); err != nil {
					log.Println("Write error:", err)
					return
				}
			}
		}
	}
}
