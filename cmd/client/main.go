package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bromq-dev/client/pkg/client"
	"github.com/bromq-dev/client/pkg/hooks"
	"github.com/bromq-dev/client/pkg/packet"
	"github.com/bromq-dev/client/pkg/transport"
)

var (
	addr      = flag.String("addr", "localhost:1883", "Broker address (host:port, or ws:// URL with -ws)")
	useWS     = flag.Bool("ws", false, "Connect over WebSocket")
	clientID  = flag.String("client-id", "myClientID", "MQTT client identifier")
	username  = flag.String("username", "", "Username (optional)")
	password  = flag.String("password", "", "Password (optional)")
	topic     = flag.String("topic", "temp/random", "Topic to publish to")
	message   = flag.String("message", "15.0", "Message payload")
	keepAlive = flag.Uint("keepalive", client.DefaultKeepAlive, "Keep alive in seconds")
	redisAddr = flag.String("redis", "", "Redis address for recording client activity (optional)")
	verbose   = flag.Bool("v", false, "Log every packet")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var dialer transport.Dialer = transport.NewTCP(&transport.TCPConfig{DialTimeout: 5 * time.Second})
	if *useWS {
		dialer = transport.NewWebSocket(nil)
	}

	ka, err := parseKeepAlive(*keepAlive)
	if err != nil {
		log.Fatalf("Invalid -keepalive: %v", err)
	}

	cfg := client.DefaultConfig()
	cfg.KeepAlive = ka
	cfg.Logger = logger
	c := client.New(dialer, cfg)
	defer func() {
		if err := c.Close(); err != nil {
			log.Printf("Close error: %v", err)
		}
	}()

	if err := c.AddHook(hooks.NewLoggerHook(hooks.LoggerConfig{Logger: logger})); err != nil {
		log.Fatalf("Failed to add logger hook: %v", err)
	}

	if *redisAddr != "" {
		rh, err := hooks.NewRedisHook(ctx, &hooks.RedisConfig{Addr: *redisAddr, Logger: logger})
		if err != nil {
			log.Fatalf("Failed to create Redis hook: %v", err)
		}
		if err := c.AddHook(rh); err != nil {
			log.Fatalf("Failed to add Redis hook: %v", err)
		}
		log.Printf("Recording client activity in Redis at %s", *redisAddr)
	}

	var user, pass *string
	if *username != "" {
		user = username
	}
	if *password != "" {
		pass = password
	}

	if err := c.Connect(ctx, *addr, packet.BuildConnect(*clientID, user, pass, cfg.KeepAlive)); err != nil {
		log.Fatalf("Failed to connect to %s: %v", *addr, err)
	}
	log.Printf("Connected to %s as %s", *addr, *clientID)

	if err := c.Publish(ctx, *topic, []byte(*message)); err != nil {
		log.Fatalf("Failed to publish: %v", err)
	}
	log.Printf("Published %q to %s", *message, *topic)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = c.Ping(pingCtx)
	cancel()
	if err != nil {
		log.Printf("Ping failed: %v", err)
	} else {
		log.Println("Broker answered ping")
	}

	if err := c.Disconnect(context.Background()); err != nil {
		log.Printf("Disconnect error: %v", err)
	}
	log.Println("Disconnected")
}

// parseKeepAlive checks that v fits the 2-byte keep-alive field of CONNECT.
func parseKeepAlive(v uint) (uint16, error) {
	if v > math.MaxUint16 {
		return 0, fmt.Errorf("%d seconds exceeds the maximum of %d", v, math.MaxUint16)
	}
	return uint16(v), nil
}
