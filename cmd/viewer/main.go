// Command viewer tails a notify-lab event stream from a terminal. It is a
// development tool: each received frame is printed as a colored one-liner,
// and a per-kind summary table is rendered on exit.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"notify-lab/auth"
	"notify-lab/domain"
	"notify-lab/domain/event"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	Addr      string `env:"VIEWER_ADDR,default=http://localhost:8080"`
	Token     string `env:"VIEWER_TOKEN"`
	UserID    int64  `env:"VIEWER_USER_ID"`
	JWTSecret string `env:"JWT_SECRET"`
}

var kindColors = map[event.Kind]color.Color{
	event.KindNewChat:        color.Green,
	event.KindAddToChat:      color.Cyan,
	event.KindRemoveFromChat: color.Yellow,
	event.KindNewMessage:     color.White,
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Resolve a token: either given directly, or minted locally from the
	// shared secret (handy against a dev deployment)
	token := config.Token
	if token == "" {
		if config.JWTSecret == "" {
			log.Fatal("Either VIEWER_TOKEN or JWT_SECRET + VIEWER_USER_ID must be set")
		}
		minted, err := auth.NewTokenManager(config.JWTSecret, time.Hour).
			Generate(domain.UserID(config.UserID))
		if err != nil {
			log.Fatalf("Failed to mint token: %v", err)
		}
		token = minted
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	counts, err := tail(ctx, config.Addr, token)
	if err != nil && ctx.Err() == nil {
		log.Fatalf("Stream error: %v", err)
	}
	printSummary(counts)
}

// tail connects to the /events endpoint and prints frames until the context
// is canceled or the server closes the stream.
func tail(ctx context.Context, addr, token string) (map[event.Kind]int, error) {
	counts := make(map[event.Kind]int)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+"/events", nil)
	if err != nil {
		return counts, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return counts, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return counts, fmt.Errorf("server answered %s", resp.Status)
	}
	color.Gray.Println("Connected, waiting for events... (Ctrl+C to stop)")

	var kind event.Kind
	var data string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			kind = event.Kind(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if kind == "" {
				continue
			}
			printFrame(kind, data)
			counts[kind]++
			kind, data = "", ""
		}
	}
	return counts, scanner.Err()
}

func printFrame(kind event.Kind, data string) {
	c, ok := kindColors[kind]
	if !ok {
		c = color.Magenta
	}

	detail := data
	if e, err := event.Unmarshal(kind, []byte(data)); err == nil {
		switch evt := e.(type) {
		case event.NewMessage:
			detail = fmt.Sprintf("chat=%d sender=%d %q", evt.Message.ChatID, evt.Message.SenderID, evt.Message.Content)
		case event.NewChat:
			detail = fmt.Sprintf("chat=%d name=%q members=%v", evt.Chat.ID, evt.Chat.Name, evt.Chat.Members)
		case event.AddToChat:
			detail = fmt.Sprintf("chat=%d name=%q members=%v", evt.Chat.ID, evt.Chat.Name, evt.Chat.Members)
		case event.RemoveFromChat:
			detail = fmt.Sprintf("chat=%d name=%q members=%v", evt.Chat.ID, evt.Chat.Name, evt.Chat.Members)
		}
	}

	c.Printf("%s  %-15s %s\n", time.Now().Format("15:04:05"), kind, detail)
}

func printSummary(counts map[event.Kind]int) {
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	fmt.Println()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Event", "Count"})
	total := 0
	for _, kind := range kinds {
		table.Append([]string{kind, strconv.Itoa(counts[event.Kind(kind)])})
		total += counts[event.Kind(kind)]
	}
	table.SetFooter([]string{"Total", strconv.Itoa(total)})
	table.Render()
}
