// Command botclient is a headless game client. It joins a server, runs the
// same predictive mirror a real client would, and wanders the arena firing
// occasionally. Useful for load testing and for watching prediction quality
// against a live server.
package main

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"ironsight/internal/client"
	"ironsight/internal/game"
)

type outMessage struct {
	Type  string      `json:"type"`
	Name  string      `json:"name,omitempty"`
	Input *game.Input `json:"input,omitempty"`
}

type inMessage struct {
	Type     string            `json:"type"`
	PlayerID string            `json:"playerId,omitempty"`
	TickRate int               `json:"tickRate,omitempty"`
	Arena    *game.Arena       `json:"arena,omitempty"`
	Self     *game.PlayerState `json:"self,omitempty"`
	Snapshot *game.Snapshot    `json:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func main() {
	godotenv.Load(".env")

	url := getEnv("SERVER_URL", "ws://localhost:3000/ws")
	name := getEnv("BOT_NAME", fmt.Sprintf("bot-%04d", rand.Intn(10000)))

	log.Printf("🤖 Bot %q connecting to %s", name, url)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("❌ Dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(outMessage{Type: "join", Name: name}); err != nil {
		log.Fatalf("❌ Join failed: %v", err)
	}

	// Wait for the welcome before predicting anything.
	var welcome inMessage
	for {
		if err := conn.ReadJSON(&welcome); err != nil {
			log.Fatalf("❌ Read failed: %v", err)
		}
		if welcome.Type == "welcome" {
			break
		}
		if welcome.Type == "error" {
			log.Fatalf("❌ Server rejected join: %s", welcome.Error)
		}
	}
	if welcome.Arena == nil || welcome.Self == nil {
		log.Fatal("❌ Malformed welcome")
	}
	log.Printf("✅ Joined as %s on arena %q at %d TPS",
		welcome.PlayerID, welcome.Arena.Name, welcome.TickRate)

	mirror := client.NewMirror(welcome.PlayerID, welcome.Arena, welcome.TickRate)
	mirror.SetLocal(*welcome.Self)

	snapshots := make(chan game.Snapshot, 8)
	go func() {
		for {
			var msg inMessage
			if err := conn.ReadJSON(&msg); err != nil {
				log.Printf("📴 Connection closed: %v", err)
				close(snapshots)
				return
			}
			if msg.Type == "snapshot" && msg.Snapshot != nil {
				select {
				case snapshots <- *msg.Snapshot:
				default:
				}
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Second / time.Duration(welcome.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	report := time.NewTicker(10 * time.Second)
	defer report.Stop()

	yaw := rand.Float64() * 2 * math.Pi

	for {
		select {
		case <-quit:
			log.Println("👋 Bot leaving")
			return

		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			mirror.ApplySnapshot(snap, time.Now())

		case <-ticker.C:
			// Wander: drift the heading, walk forward, sometimes jump or
			// shoot.
			yaw += (rand.Float64() - 0.5) * 0.2
			in := game.Input{
				MoveZ:  1,
				Yaw:    yaw,
				Sprint: rand.Float64() < 0.3,
				Jump:   rand.Float64() < 0.02,
				Fire:   rand.Float64() < 0.1,
			}
			stamped, ok := mirror.PredictInput(in)
			if !ok {
				continue
			}
			if err := conn.WriteJSON(outMessage{Type: "input", Input: &stamped}); err != nil {
				log.Printf("📴 Write failed: %v", err)
				return
			}

		case <-report.C:
			snaps, reconciles, pending := mirror.Stats()
			pos, _, _, _ := mirror.LocalPose()
			hp, alive := mirror.LocalHealth()
			log.Printf("🤖 pos=(%.1f, %.1f, %.1f) hp=%d alive=%v snapshots=%d reconciles=%d pending=%d",
				pos.X, pos.Y, pos.Z, hp, alive, snaps, reconciles, pending)
		}
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
