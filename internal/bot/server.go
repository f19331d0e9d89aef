package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"healthbot/internal/metrics"
)

const webhookPath = "/webhook"

// Run serves /healthz and /metrics on addr and receives updates until ctx is
// cancelled: through webhookURL + /webhook when webhookURL is set, by long polling otherwise.
func (b *Bot) Run(ctx context.Context, addr, webhookURL string) error {
	useWebhook := webhookURL != ""
	srv := &http.Server{
		Addr:              addr,
		Handler:           b.routes(ctx, useWebhook),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[info] http server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[warn] http shutdown: %v", err)
		}
	}()

	if !useWebhook {
		if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.Printf("[warn] delete webhook: %v", err)
		}
		go func() {
			if err, ok := <-serveErr; ok {
				log.Printf("[error] http server: %v", err)
			}
		}()
		return b.Start(ctx)
	}

	if err := b.ensureWebhook(webhookURL + webhookPath); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return nil
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}
}

func (b *Bot) routes(ctx context.Context, withWebhook bool) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if withWebhook {
		mux.HandleFunc(webhookPath, b.webhookHandler(ctx))
	}
	return mux
}

// webhookHandler handles each update inside its request. Requests run concurrently;
// the dialogue machine serializes the steps of one user.
func (b *Bot) webhookHandler(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		update, err := b.api.HandleUpdate(r)
		if err != nil {
			log.Printf("[warn] bad webhook request: %v", err)
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		b.handleUpdate(ctx, *update)
		w.WriteHeader(http.StatusOK)
	}
}

// ensureWebhook sets the webhook only when Telegram has a different one.
func (b *Bot) ensureWebhook(target string) error {
	info, err := b.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("get webhook info: %w", err)
	}
	if info.URL == target {
		log.Printf("[info] webhook already set to %s", target)
		return nil
	}

	wh, err := tgbotapi.NewWebhook(target)
	if err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	log.Printf("[info] webhook changed from %q to %s", info.URL, target)
	return nil
}
