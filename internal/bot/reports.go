package bot

import (
	"context"
	"log"
)

// SendDailyReports sends the evening summary to every user with a profile.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	sent := 0
	for _, id := range b.store.IDs() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reminders.DailySummary(id)
		if err != nil {
			continue
		}
		if err := b.sendText(id, text); err != nil {
			log.Printf("[warn] send summary to %d: %v", id, err)
			continue
		}
		sent++
	}
	// Summaries roll stale days over.
	b.store.SaveOrLog(ctx)
	log.Printf("[cron] daily reports sent=%d", sent)
	return nil
}
