// Package main tails the Fritter realtime event stream and prints each event.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	username := flag.String("username", "", "Log in as this user to also receive private events")
	password := flag.String("password", "password123", "Password for -username")
	types := flag.String("types", "", "Comma-separated event types to print (default all)")
	duration := flag.Duration("duration", 0, "Stop after this long (default run until interrupted)")
	flag.Parse()

	query := ""
	if *username != "" {
		token, err := login(*host, *username, *password)
		if err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		ticket, err := getTicket(*host, token)
		if err != nil {
			log.Fatalf("Ticket issuance failed: %v", err)
		}
		query = "ticket=" + url.QueryEscape(ticket)
		log.Printf("Watching as %s", *username)
	} else {
		log.Printf("Watching anonymously")
	}

	u := url.URL{Scheme: "ws", Host: *host, Path: "/api/ws", RawQuery: query}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial %s failed: %v", u.String(), err)
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	wanted := make(map[string]bool)
	for _, t := range strings.Split(*types, ",") {
		if t = strings.TrimSpace(t); t != "" {
			wanted[t] = true
		}
	}

	var mu sync.Mutex
	counts := make(map[string]int)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				return
			}
			var ev event
			if err := json.Unmarshal(data, &ev); err != nil {
				log.Printf("Skipping malformed frame: %s", data)
				continue
			}
			if len(wanted) > 0 && !wanted[ev.Type] {
				continue
			}
			mu.Lock()
			counts[ev.Type]++
			mu.Unlock()
			fmt.Printf("%s %-18s %s\n", time.Now().Format(time.TimeOnly), ev.Type, ev.Payload)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted")
	case <-timeout:
		log.Println("Duration reached")
	}

	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	select {
	case <-done:
	case <-time.After(time.Second):
	}
	mu.Lock()
	defer mu.Unlock()
	printCounts(counts)
}

func login(host, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(fmt.Sprintf("http://%s/api/auth/login", host), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func getTicket(host, token string) (string, error) {
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/api/ws/ticket", host), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}
	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Ticket, nil
}

func printCounts(counts map[string]int) {
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	log.Println("Events received")
	for _, t := range types {
		log.Printf("  %-18s %d", t, counts[t])
	}
}
