// Package bot collects loan applications over Telegram, one field per message.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"loan-eligibility/internal/domain/eligibility"
	"loan-eligibility/internal/pkg/apperrors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const evaluateTimeout = 10 * time.Second

// Sender is the part of the Telegram API the conversation needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type question struct {
	field   string
	prompt  string
	numeric bool
}

var questions = []question{
	{eligibility.FieldName, "What is your full name?", false},
	{eligibility.FieldAge, "How old are you?", true},
	{eligibility.FieldPhone, "Your phone number?", false},
	{eligibility.FieldEmail, "Your email address?", false},
	{eligibility.FieldMonthlyIncome, "Monthly income (₹)?", true},
	{eligibility.FieldCreditScore, "Credit score?", true},
	{eligibility.FieldEmploymentYears, "Years of employment (for example 2.5)?", true},
	{eligibility.FieldExistingLoans, "Existing monthly loan payments (₹)? Send 0 if none.", true},
	{eligibility.FieldLoanAmount, "Requested loan amount (₹)?", true},
}

type session struct {
	step    int
	answers eligibility.RawApplication
}

type summary struct {
	text    string
	savedAt time.Time
}

type Bot struct {
	api          *tgbotapi.BotAPI
	sender       Sender
	service      eligibility.EligibilityService
	computeDelay time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*session
	// summaries keeps the last narration text per chat for /read until pruned.
	summaries map[int64]summary
	// closing is set by Wait; no evaluation starts after it.
	closing bool
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewBot connects to Telegram with the given token.
func NewBot(token string, debug bool, service eligibility.EligibilityService, computeDelay time.Duration, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating bot API: %w", err)
	}
	api.Debug = debug

	b := New(api, service, computeDelay, logger)
	b.api = api
	b.logger.Info("Authorized on Telegram", "account", api.Self.UserName)
	return b, nil
}

// New builds a conversation around any Sender.
func New(sender Sender, service eligibility.EligibilityService, computeDelay time.Duration, logger *slog.Logger) *Bot {
	if service == nil {
		panic("eligibility service cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Bot{
		sender:       sender,
		service:      service,
		computeDelay: computeDelay,
		logger:       logger.With("component", "TelegramBot"),
		sessions:     make(map[int64]*session),
		summaries:    make(map[int64]summary),
		now:          time.Now,
	}
}

// Start consumes updates until ctx is done. It requires a bot built by NewBot.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot has no Telegram connection")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("error getting updates channel: %w", err)
	}
	b.logger.Info("Listening for Telegram updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.HandleMessage(update.Message)
		}
	}
}

// Wait stops new evaluations from starting and blocks until every pending
// evaluation reply has been sent.
func (b *Bot) Wait() {
	b.mu.Lock()
	b.closing = true
	b.mu.Unlock()
	b.wg.Wait()
}

// PruneSummaries forgets /read summaries older than maxAge and returns how
// many were removed.
func (b *Bot) PruneSummaries(maxAge time.Duration) int {
	cutoff := b.now().Add(-maxAge)

	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for chatID, s := range b.summaries {
		if s.savedAt.Before(cutoff) {
			delete(b.summaries, chatID)
			removed++
		}
	}
	return removed
}

func (b *Bot) HandleMessage(msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start", "help":
		b.reset(chatID)
		b.send(chatID, welcomeText(b.service.Requirements()))
		return
	case "apply":
		b.startApplication(chatID)
		return
	case "cancel":
		b.reset(chatID)
		b.send(chatID, "Application cancelled. Send /apply to start a new one.")
		return
	case "read":
		b.readSummary(chatID)
		return
	case "":
	default:
		b.send(chatID, "Unknown command. Send /apply to check your eligibility.")
		return
	}

	b.handleAnswer(chatID, msg.Text)
}

func (b *Bot) startApplication(chatID int64) {
	b.mu.Lock()
	b.sessions[chatID] = &session{answers: eligibility.RawApplication{}}
	b.mu.Unlock()

	b.logger.Debug("Application started", "chatID", chatID)
	b.send(chatID, questions[0].prompt)
}

func (b *Bot) reset(chatID int64) {
	b.mu.Lock()
	delete(b.sessions, chatID)
	b.mu.Unlock()
}

func (b *Bot) handleAnswer(chatID int64, text string) {
	answer := strings.TrimSpace(text)

	b.mu.Lock()
	s, ok := b.sessions[chatID]
	if !ok {
		b.mu.Unlock()
		b.send(chatID, "Send /apply to start an application.")
		return
	}

	q := questions[s.step]
	if problem := checkAnswer(q, answer); problem != "" {
		b.mu.Unlock()
		b.send(chatID, problem+"\n"+q.prompt)
		return
	}

	s.answers[q.field] = answer
	s.step++
	if s.step < len(questions) {
		next := questions[s.step].prompt
		b.mu.Unlock()
		b.send(chatID, next)
		return
	}

	delete(b.sessions, chatID)
	if b.closing {
		b.mu.Unlock()
		b.send(chatID, "The service is shutting down. Please send /apply again in a few minutes.")
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	b.send(chatID, "Checking...")
	go b.evaluate(chatID, s.answers)
}

func checkAnswer(q question, answer string) string {
	if answer == "" {
		return "This field is required."
	}
	if !q.numeric {
		return ""
	}
	v, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return "Please send a number."
	}
	if v < 0 {
		return "The value cannot be negative."
	}
	return ""
}

func (b *Bot) evaluate(chatID int64, raw eligibility.RawApplication) {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic while evaluating application", "chatID", chatID, "panic", r)
			b.send(chatID, "Something went wrong while checking your eligibility. Please try again later.")
		}
	}()
	if b.computeDelay > 0 {
		time.Sleep(b.computeDelay)
	}

	ctx, cancel := context.WithTimeout(context.Background(), evaluateTimeout)
	defer cancel()

	decision, err := b.service.Evaluate(ctx, raw)
	if err != nil {
		b.logger.Warn("Evaluation failed", "chatID", chatID, "error", err)
		if field := apperrors.FieldOf(err); field != "" {
			b.send(chatID, fmt.Sprintf("The %s you entered could not be used. Send /apply to try again.", field))
			return
		}
		b.send(chatID, "Something went wrong while checking your eligibility. Please try again later.")
		return
	}

	b.mu.Lock()
	b.summaries[chatID] = summary{text: decision.Result.Summary, savedAt: b.now()}
	b.mu.Unlock()

	b.send(chatID, ResultCard(raw[eligibility.FieldName], decision.Result))
}

func (b *Bot) readSummary(chatID int64) {
	b.mu.Lock()
	saved, ok := b.summaries[chatID]
	b.mu.Unlock()
	if !ok {
		b.send(chatID, "No result yet. Send /apply to check your eligibility.")
		return
	}
	b.send(chatID, saved.text)
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("Error sending message", "chatID", chatID, "error", err)
	}
}

func welcomeText(req eligibility.Requirements) string {
	var sb strings.Builder
	sb.WriteString("👋 Welcome to FiNova!\nCheck your loan eligibility in minutes.\n\nRequirements:\n")
	sb.WriteString("• Personal info (Name, Age, Contact)\n• Employment details\n• Financial info (Income, Credit score)\n• Desired loan amount\n\nHow you are scored:\n")
	for _, c := range req.Criteria {
		fmt.Fprintf(&sb, "• %s (%s)\n", c.Requirement, c.Contribution)
	}
	sb.WriteString("\nSend /apply to get started, /cancel to start over.")
	return sb.String()
}

// ResultCard renders a result for chat.
func ResultCard(name interface{}, r eligibility.Result) string {
	var sb strings.Builder
	if r.Eligible {
		fmt.Fprintf(&sb, "🎉 Approved!\n%v, approved!\n\n", name)
		fmt.Fprintf(&sb, "Score: %d/100\n", r.Score)
		fmt.Fprintf(&sb, "Max Loan: ₹%s\n", eligibility.FormatAmount(r.MaxLoan))
		fmt.Fprintf(&sb, "EMI: ₹%s\n", eligibility.FormatAmount(r.EMI))
		fmt.Fprintf(&sb, "Debt ratio: %s%%\n\n✅ Details\n", eligibility.FormatRatio(r.Ratio))
	} else {
		fmt.Fprintf(&sb, "⚠️ Not Eligible\n%v, needs review\n\n❌ Reasons\n", name)
	}

	mark := "✗"
	if r.Eligible {
		mark = "✓"
	}
	for _, reason := range r.Reasons {
		fmt.Fprintf(&sb, "%s %s\n", mark, reason)
	}
	sb.WriteString("\nSend /read to hear the full summary, /apply for a new application.")
	return sb.String()
}
