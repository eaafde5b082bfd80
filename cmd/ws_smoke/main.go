package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"wager_service/internal/auth"

	"github.com/gorilla/websocket"
)

// Smoke test against a running server: play one mines round over REST
// and verify the outcome arrives on the WebSocket push channel.
func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	auth.InitJWT(secret)
	token, err := auth.GenerateJWT(1)
	if err != nil {
		log.Fatalf("gen token: %v", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := fmt.Sprintf("http://127.0.0.1:%s/api/v1", port)
	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, token)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	post := func(path string, body map[string]any) map[string]any {
		b, _ := json.Marshal(body)
		req, _ := http.NewRequest("POST", base+path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Fatalf("POST %s: %v", path, err)
		}
		defer res.Body.Close()
		data, _ := io.ReadAll(res.Body)
		if res.StatusCode != 200 {
			log.Fatalf("POST %s: status %d body %s", path, res.StatusCode, data)
		}
		var out map[string]any
		_ = json.Unmarshal(data, &out)
		return out
	}

	started := post("/game/start", map[string]any{
		"game_type":    "mines",
		"stake":        "1.00",
		"hazard_count": 3,
	})
	tokenField, _ := started["token"].(string)
	log.Printf("started session token=%s", tokenField)

	// Reveal cells until one sticks, then cash out. A hazard hit is fine
	// too; either way an outcome must be pushed.
	snap := post("/game/action", map[string]any{"token": tokenField, "selector": 0})
	if status, _ := snap["status"].(string); status == "active" {
		post("/game/cashout", map[string]any{"token": tokenField})
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		log.Fatalf("read outcome: %v", err)
	}
	log.Printf("ws push: %s", string(msg))
	log.Println("smoke test finished")
}
