package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chedy028/amapcity/internal/repo"
)

type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int    `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type UpdateResponse struct {
	OK     bool     `json:"ok"`
	Result []Update `json:"result"`
}

func main() {
	token := os.Getenv("TOKEN_BOT")
	peerStr := os.Getenv("ADMIN_PEER_ID")
	if token == "" || peerStr == "" {
		log.Fatal("TOKEN_BOT or ADMIN_PEER_ID missing")
	}
	adminID, _ := strconv.ParseInt(peerStr, 10, 64)

	db := repo.Open()
	defer db.Close()
	userRepo := repo.NewPostgresUserDB(db)

	offset := 0
	for {
		updates, err := getUpdates(token, offset)
		if err != nil {
			log.Println("getUpdates error:", err)
			time.Sleep(2 * time.Second)
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message != nil {
				handleMessage(token, adminID, userRepo, u.Message)
			}
		}
		time.Sleep(1 * time.Second)
	}
}

func handleMessage(token string, adminID int64, userRepo *repo.PostgresUserRepository, msg *Message) {
	if msg.Chat.ID != adminID {
		sendMessage(token, msg.Chat.ID, "Not allowed")
		return
	}

	switch strings.TrimSpace(msg.Text) {
	case "/stats":
		count, err := userRepo.CountUsers(context.Background())
		if err != nil {
			sendMessage(token, msg.Chat.ID, "DB error")
			return
		}
		sendMessage(token, msg.Chat.ID, fmt.Sprintf("Registered users: %d", count))
	case "/runs":
		runs, err := userRepo.LatestRuns(context.Background(), 10)
		if err != nil {
			sendMessage(token, msg.Chat.ID, "DB error")
			return
		}
		if len(runs) == 0 {
			sendMessage(token, msg.Chat.ID, "No calculations yet")
			return
		}
		var b strings.Builder
		b.WriteString("Latest calculations:\n")
		for _, run := range runs {
			fmt.Fprintf(&b, "#%d %s %.1f A %s (%s)\n",
				run.ID, run.Label, run.AmpacityA, run.Status,
				run.CreatedAt.Format("2006-01-02 15:04"))
		}
		sendMessage(token, msg.Chat.ID, b.String())
	default:
		sendMessage(token, msg.Chat.ID, "Commands: /stats, /runs")
	}
}

func getUpdates(token string, offset int) ([]Update, error) {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/getUpdates?timeout=20&offset=%d", token, offset)
	res, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	var out UpdateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

func sendMessage(token string, chatID int64, text string) {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", token)
	payload := map[string]any{"chat_id": chatID, "text": text}
	b, _ := json.Marshal(payload)
	_, _ = http.Post(url, "application/json", strings.NewReader(string(b)))
}
