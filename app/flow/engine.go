// Package flow implements the conversation engine: carrier selection, the
// per-carrier question walk, and delivery of the rendered receipt.
package flow

import (
	"errors"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/verzendhq/verzendbot/app/carriers"
	"github.com/verzendhq/verzendbot/app/render"
	"github.com/verzendhq/verzendbot/app/session"
	"github.com/verzendhq/verzendbot/core/logger"
	"github.com/verzendhq/verzendbot/core/telegram/callbacks"
	tghelpers "github.com/verzendhq/verzendbot/core/telegram/helpers"
	"github.com/verzendhq/verzendbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

const (
	msgWelcome      = "Welkom bij de verzendbewijs generator! Kies een verzenddienst of doe een suggestie:"
	msgNoSession    = "Typ /start om te beginnen."
	msgRenderFailed = "❌ Afbeelding kon niet worden gegenereerd."
	msgReady        = "📸 Screenshot is klaar:"

	btnSuggestion = "💡 Doe een suggestie voor nieuwe verzendbewijzen"
	btnBack       = "🔁 Terug naar start"

	// Callback uniques.
	CallbackCarrier = "vervoerder"
	CallbackRestart = "terug_naar_start"

	defaultSuggestionURL = "https://t.me/gasgevenn"
	welcomeImage         = "welkom.png"
)

// Options configure the engine.
type Options struct {
	Sessions      session.Store
	Carriers      *carriers.Registry
	Pipeline      *render.Pipeline
	AssetsDir     string
	SuggestionURL string
}

// Engine drives the question flow for every user.
type Engine struct {
	sessions      session.Store
	carriers      *carriers.Registry
	pipeline      *render.Pipeline
	assetsDir     string
	suggestionURL string
}

// NewEngine validates options and builds the engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Sessions == nil {
		return nil, errors.New("flow: session store is required")
	}
	if opts.Carriers == nil {
		return nil, errors.New("flow: carriers registry is required")
	}
	if opts.Pipeline == nil {
		return nil, errors.New("flow: render pipeline is required")
	}
	url := opts.SuggestionURL
	if url == "" {
		url = defaultSuggestionURL
	}
	return &Engine{
		sessions:      opts.Sessions,
		carriers:      opts.Carriers,
		pipeline:      opts.Pipeline,
		assetsDir:     opts.AssetsDir,
		suggestionURL: url,
	}, nil
}

// InProgress reports whether the user has an active session.
func (e *Engine) InProgress(userID int64) bool {
	_, ok := e.sessions.Get(userID)
	return ok
}

// StartHandler shows the welcome image with the carrier menu.
func (e *Engine) StartHandler(c tele.Context) error {
	row := make([]keyboard.InlineBtn, 0, 2)
	for _, carrier := range e.carriers.Buttons() {
		row = append(row, keyboard.InlineBtn{
			Text:   carrier.ButtonLabel,
			Unique: CallbackCarrier,
			Data:   carrier.Name,
		})
	}
	markup := keyboard.InlineButtonsRows(
		row,
		[]keyboard.InlineBtn{{Text: btnSuggestion, URL: e.suggestionURL}},
	)
	return tghelpers.SendPhotoPath(c, filepath.Join(e.assetsDir, welcomeImage), msgWelcome, markup)
}

// CarrierCallback starts a fresh flow for the chosen carrier. Any in-progress
// session for the user is discarded.
func (e *Engine) CarrierCallback(c tele.Context) error {
	name := callbacks.CallbackPayload(c)
	carrier, ok := e.carriers.Get(name)
	if !ok {
		logger.Warn(tghelpers.BuildContext(c), "service.flow", "flow.carrier_unknown",
			slog.String("carrier", logger.SanitizeLimit(name, 32)),
		)
		return tghelpers.SendText(c, msgNoSession)
	}

	userID := c.Sender().ID
	e.sessions.Put(userID, session.New(carrier.Name))

	logger.Info(tghelpers.BuildContext(c), "service.flow", "flow.started",
		slog.String("carrier", carrier.Name),
		slog.Int("fields_total", len(carrier.Questions)),
	)

	caption := carrier.Intro + "\n" + carrier.Questions[0].Prompt
	err := tghelpers.SendPhotoPath(c, filepath.Join(e.assetsDir, carrier.Illustration), caption)
	tghelpers.DeleteMessage(c)
	return err
}

// RestartCallback discards any session and shows the start menu again.
func (e *Engine) RestartCallback(c tele.Context) error {
	e.sessions.Remove(c.Sender().ID)
	tghelpers.DeleteMessage(c)
	return e.StartHandler(c)
}

// NoSessionHandler answers text that arrives outside an active flow.
func (e *Engine) NoSessionHandler(c tele.Context) error {
	return tghelpers.SendText(c, msgNoSession)
}

// ManagerHandler consumes one answer for the user's active session and either
// asks the next question or renders the receipt.
func (e *Engine) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	sess, ok := e.sessions.Get(userID)
	if !ok {
		return e.NoSessionHandler(c)
	}
	carrier, ok := e.carriers.Get(sess.Carrier)
	if !ok {
		e.sessions.Remove(userID)
		return e.NoSessionHandler(c)
	}

	answer := strings.TrimSpace(c.Text())
	current := firstUnanswered(carrier, sess)
	if current < 0 {
		// All fields already captured; a render is in flight. Drop the input.
		return nil
	}
	sess.SetAnswer(carrier.Questions[current].Field, answer)

	if next := current + 1; next < len(carrier.Questions) {
		logger.Debug(tghelpers.BuildContext(c), "service.flow", "flow.answer",
			slog.String("carrier", carrier.Name),
			slog.String("field", carrier.Questions[current].Field),
			slog.Int("fields_done", next),
			slog.Int("fields_total", len(carrier.Questions)),
		)
		return tghelpers.SendText(c, carrier.Questions[next].Prompt)
	}

	// Final answer captured; the conversation ends here whatever the render
	// outcome.
	answers := sess.AnswerMap()
	e.sessions.Remove(userID)
	return e.deliver(c, userID, carrier, answers)
}

func (e *Engine) deliver(c tele.Context, userID int64, carrier carriers.Carrier, answers map[string]string) error {
	ctx := tghelpers.BuildContext(c)
	path, err := e.pipeline.Generate(ctx, userID, carrier, answers)
	if err != nil {
		return tghelpers.SendText(c, msgRenderFailed)
	}

	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnBack, Unique: CallbackRestart},
	})
	if err := tghelpers.SendText(c, msgReady); err != nil {
		logger.Warn(ctx, "service.flow", "flow.notify_failed",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
	return tghelpers.SendPhotoPath(c, path, "", markup)
}

func firstUnanswered(carrier carriers.Carrier, sess *session.Session) int {
	for i, q := range carrier.Questions {
		if !sess.Answered(q.Field) {
			return i
		}
	}
	return -1
}
