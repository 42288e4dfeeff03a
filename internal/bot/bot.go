// Package bot answers history pages sent to a Telegram chat with break-even projections.
package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/jgoulah/hashfuture/internal/analyzer"
	"github.com/jgoulah/hashfuture/internal/chart"
	"github.com/jgoulah/hashfuture/internal/projector"
	"github.com/jgoulah/hashfuture/internal/render"
	"github.com/jgoulah/hashfuture/internal/session"
	"github.com/jgoulah/hashfuture/internal/upload"
	"github.com/jgoulah/hashfuture/pkg/models"
)

const (
	startText = "Type /help for more info."
	helpText  = `Send me your "History" page saved as an HTML file and I will estimate when each contract pays for itself.

/future [product] - projection for your last upload (default SHA-256)
/chart [product] - payouts, fees and power over time
/forget - delete your last upload`
	slowText = "Too many requests, please wait a minute."
)

// API is the part of tgbotapi.BotAPI the bot needs
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot handles incoming chat messages
type Bot struct {
	api        API
	analyzer   *analyzer.Analyzer
	store      *session.Store
	limiters   *session.Limiters
	products   []models.Product
	httpClient *http.Client
}

// New creates a bot
func New(api API, a *analyzer.Analyzer, store *session.Store, limiters *session.Limiters, products []models.Product) *Bot {
	return &Bot{
		api:        api,
		analyzer:   a,
		store:      store,
		limiters:   limiters,
		products:   products,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Run handles updates until ctx is cancelled or the channel closes
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// HandleMessage dispatches one message
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user := userKey(msg)
	entry := logrus.WithFields(logrus.Fields{"user": user, "chat": msg.Chat.ID})

	if !b.limiters.Allow(user) {
		b.reply(msg, slowText)
		return
	}

	var err error
	switch {
	case msg.Document != nil:
		entry.WithField("file", msg.Document.FileName).Info("Received document")
		err = b.handleDocument(ctx, msg)
	case msg.IsCommand():
		entry.WithField("command", msg.Command()).Debug("Received command")
		err = b.handleCommand(ctx, msg)
	default:
		b.reply(msg, startText)
	}

	if err != nil {
		entry.WithError(err).Warn("Message handling failed")
		b.reply(msg, fmt.Sprintf("Oops! Error: %q", err.Error()))
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		b.reply(msg, startText)
	case "help":
		b.reply(msg, helpText)
	case "forget":
		b.store.Delete(userKey(msg))
		b.reply(msg, "Your last upload is deleted.")
	case "future", "chart":
		product := models.SHA256
		if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
			p, ok := models.ParseProduct(arg)
			if !ok {
				b.reply(msg, fmt.Sprintf("Unknown product %q", arg))
				return nil
			}
			product = p
		}

		data, err := b.store.Get(userKey(msg))
		if errors.Is(err, session.ErrNoReport) {
			b.reply(msg, "Send me your History page first.")
			return nil
		}
		if err != nil {
			return err
		}

		res, err := b.analyzer.Analyze(ctx, data, []models.Product{product})
		if err != nil {
			return err
		}
		if msg.Command() == "chart" {
			return b.sendChart(msg, res, product)
		}
		p, _ := res.Projection(product)
		b.reply(msg, render.Text(p))
	default:
		b.reply(msg, helpText)
	}
	return nil
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) error {
	doc := msg.Document
	if err := upload.CheckDeclared(doc.MimeType, int64(doc.FileSize), upload.MaxSize); err != nil {
		b.reply(msg, upload.UserMessage(err))
		return nil
	}

	data, err := b.download(ctx, doc.FileID)
	if err != nil {
		return fmt.Errorf("downloading file: %w", err)
	}
	if err := upload.CheckContent(data, upload.MaxSize); err != nil {
		b.reply(msg, upload.UserMessage(err))
		return nil
	}

	res, err := b.analyzer.Analyze(ctx, data, b.products)
	if err != nil {
		return err
	}
	if err := b.store.Put(userKey(msg), data); err != nil {
		return fmt.Errorf("storing report: %w", err)
	}

	var (
		texts   []string
		charted models.Product
	)
	for _, p := range res.Projections {
		if p.InsufficientData {
			continue
		}
		texts = append(texts, render.Text(p))
		if charted == "" {
			charted = p.Product
		}
	}
	if len(texts) == 0 {
		b.reply(msg, "No payouts found in this report yet, nothing to project.")
		return nil
	}

	b.reply(msg, strings.Join(texts, "\n\n"))
	return b.sendChart(msg, res, charted)
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, upload.MaxSize+1))
}

func (b *Bot) sendChart(msg *tgbotapi.Message, res *analyzer.Result, product models.Product) error {
	var buf bytes.Buffer
	err := chart.RenderPNG(&buf, product, projector.Timeline(res.Log, product), chart.DefaultWidth, chart.DefaultHeight)
	if errors.Is(err, chart.ErrNoData) {
		b.reply(msg, fmt.Sprintf("No %s entries in your report.", product))
		return nil
	}
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "chart.png", Bytes: buf.Bytes()})
	photo.Caption = fmt.Sprintf("%s history", product)
	if _, err := b.api.Send(photo); err != nil {
		return fmt.Errorf("sending chart: %w", err)
	}
	return nil
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, text)); err != nil {
		logrus.WithError(err).WithField("chat", msg.Chat.ID).Error("Failed to send reply")
	}
}

func userKey(msg *tgbotapi.Message) string {
	if msg.From != nil {
		return strconv.FormatInt(msg.From.ID, 10)
	}
	return strconv.FormatInt(msg.Chat.ID, 10)
}
