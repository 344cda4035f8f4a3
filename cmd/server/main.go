package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ironsight/internal/api"
	"ironsight/internal/config"
	"ironsight/internal/game"
	"ironsight/internal/stats"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Println("✅ Loaded environment from .env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  IRONSIGHT - ARENA SERVER")
	log.Println("🎮 ================================")

	cfg := config.Load()

	arena := game.DefaultArena()
	if cfg.Sim.ArenaFile != "" {
		loaded, err := game.LoadArena(cfg.Sim.ArenaFile)
		if err != nil {
			log.Fatalf("❌ Failed to load arena: %v", err)
		}
		arena = loaded
		log.Printf("🗺️ Arena loaded from %s", cfg.Sim.ArenaFile)
	}
	log.Printf("🗺️ Arena %q: %d obstacles, %d spawn points",
		arena.Name, len(arena.Obstacles), len(arena.SpawnPoints))

	engine := game.NewEngine(arena, cfg.Sim.TickRate)
	engine.SetTickObserver(api.RecordTick)
	engine.SetFatalFunc(func(recovered interface{}) {
		log.Fatalf("❌ Simulation halted: %v", recovered)
	})

	if cfg.Sim.JournalFile != "" {
		if err := engine.StartJournal(cfg.Sim.JournalFile); err != nil {
			log.Printf("⚠️ Journal disabled: %v", err)
		} else {
			log.Printf("📝 Journal: %s", cfg.Sim.JournalFile)
		}
	}

	var statsStore *stats.Store
	if cfg.Stats.Path != "" {
		store, err := stats.Open(cfg.Stats.Path)
		if err != nil {
			log.Printf("⚠️ Stats store disabled: %v", err)
		} else {
			statsStore = store
			defer statsStore.Close()
			log.Printf("💾 Stats store: %s", cfg.Stats.Path)
		}
	}

	var statsIface api.StatsInterface
	if statsStore != nil {
		statsIface = statsStore
	}
	server := api.NewServer(engine, api.ServerOptions{
		MaxPlayers:      cfg.Server.MaxPlayers,
		InputsPerSecond: cfg.Server.InputsPerSecond,
		Stats:           statsIface,
	})

	// Chain the snapshot sink: broadcast to clients, record kills, refresh
	// gauges.
	hub := server.Hub()
	engine.SetSnapshotFunc(func(snap game.Snapshot) {
		hub.BroadcastSnapshot(snap)

		if statsStore != nil && len(snap.Impacts) > 0 {
			names := make(map[string]string, len(snap.Players))
			for _, p := range snap.Players {
				names[p.ID] = p.Name
			}
			for _, imp := range snap.Impacts {
				if !imp.Killed {
					continue
				}
				killer, victim := names[imp.AttackerID], names[imp.VictimID]
				if killer == "" || victim == "" {
					continue
				}
				go func(k, v string) {
					if err := statsStore.RecordKill(k, v); err != nil {
						log.Printf("⚠️ Failed to record kill: %v", err)
					}
				}(killer, victim)
			}
		}

		players, projectiles, kills := engine.Counts()
		api.UpdateSimGauges(players, projectiles, kills)
	})

	if err := api.StartDebugServer(cfg.Observability.Enabled, cfg.Observability.Port); err != nil {
		log.Printf("⚠️ Debug server disabled: %v", err)
	}

	engine.Start()

	go func() {
		addr := ":" + strconv.Itoa(cfg.Server.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	engine.Stop()
	engine.StopJournal()
	server.Stop()

	// Give in-flight stat writes a moment to land.
	time.Sleep(100 * time.Millisecond)
	log.Println("👋 Goodbye!")
}
