package workers

import (
	"context"
	"log"
	"time"

	"account-rewards-bot/handlers"
	"account-rewards-bot/services"
)

const (
	longPollTimeoutSec = 30
	pollErrorBackoff   = 3 * time.Second
)

// PollUpdates long-polls the chat transport for updates and dispatches each
// one on its own goroutine, so independent user actions run concurrently.
// Runs until ctx is cancelled.
func PollUpdates(ctx context.Context, client *services.TelegramClient, handler *handlers.BotHandler) {
	log.Println("Starting chat update poller...")
	var offset int64

	for {
		select {
		case <-ctx.Done():
			log.Println("Chat update poller stopped.")
			return
		default:
		}

		updates, err := client.GetUpdates(ctx, offset, longPollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("Chat update poller stopped.")
				return
			}
			log.Printf("❌ Error polling updates: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(pollErrorBackoff):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			go handler.HandleUpdate(update)
		}
	}
}
