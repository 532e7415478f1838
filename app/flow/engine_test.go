package flow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"

	"github.com/verzendhq/verzendbot/app/carriers"
	"github.com/verzendhq/verzendbot/app/render"
	"github.com/verzendhq/verzendbot/app/session"
)

// fakeContext implements the slice of tele.Context the engine touches.
type fakeContext struct {
	tele.Context

	user    *tele.User
	text    string
	data    string
	store   map[string]any
	sent    []any
	deleted bool
}

func newFakeContext(userID int64, text string) *fakeContext {
	return &fakeContext{
		user:  &tele.User{ID: userID},
		text:  text,
		store: map[string]any{},
	}
}

func (f *fakeContext) Sender() *tele.User { return f.user }
func (f *fakeContext) Chat() *tele.Chat   { return &tele.Chat{ID: f.user.ID} }
func (f *fakeContext) Update() tele.Update {
	return tele.Update{ID: 1}
}
func (f *fakeContext) Text() string { return f.text }
func (f *fakeContext) Message() *tele.Message {
	return &tele.Message{ID: 10, Chat: &tele.Chat{ID: f.user.ID}}
}
func (f *fakeContext) Callback() *tele.Callback {
	if f.data == "" {
		return nil
	}
	return &tele.Callback{Data: f.data, Sender: f.user}
}
func (f *fakeContext) Get(key string) any      { return f.store[key] }
func (f *fakeContext) Set(key string, val any) { f.store[key] = val }
func (f *fakeContext) Delete() error {
	f.deleted = true
	return nil
}
func (f *fakeContext) Send(what any, _ ...any) error {
	f.sent = append(f.sent, what)
	return nil
}

func (f *fakeContext) sentTexts() []string {
	var out []string
	for _, s := range f.sent {
		if txt, ok := s.(string); ok {
			out = append(out, txt)
		}
	}
	return out
}

func (f *fakeContext) sentPhotos() []*tele.Photo {
	var out []*tele.Photo
	for _, s := range f.sent {
		if p, ok := s.(*tele.Photo); ok {
			out = append(out, p)
		}
	}
	return out
}

// writingRaster creates the output file so delivery succeeds.
type writingRaster struct{}

func (writingRaster) Rasterize(_ context.Context, _, outputPath string) error {
	return os.WriteFile(outputPath, []byte("png"), 0o644)
}

// silentRaster never writes, forcing an artifact_missing failure.
type silentRaster struct{}

func (silentRaster) Rasterize(context.Context, string, string) error { return nil }

func newTestEngine(t *testing.T, raster render.Rasterizer) (*Engine, session.Store) {
	t.Helper()
	store := session.NewMemoryStore()
	carrierReg := carriers.NewRegistry(t.TempDir())
	pipeline, err := render.NewPipeline(render.Options{
		Carriers:  carrierReg,
		Raster:    raster,
		OutputDir: filepath.Join(t.TempDir(), "verzendbewijzen"),
		Workers:   1,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	engine, err := NewEngine(Options{
		Sessions:  store,
		Carriers:  carrierReg,
		Pipeline:  pipeline,
		AssetsDir: "img",
	})
	require.NoError(t, err)
	return engine, store
}

func selectCarrier(t *testing.T, e *Engine, userID int64, carrier string) {
	t.Helper()
	c := newFakeContext(userID, "")
	c.data = "\f" + CallbackCarrier + "|" + carrier
	require.NoError(t, e.CarrierCallback(c))
}

func TestEngineStart(t *testing.T) {
	e, _ := newTestEngine(t, writingRaster{})
	c := newFakeContext(7, "/start")

	require.NoError(t, e.StartHandler(c))

	photos := c.sentPhotos()
	require.Len(t, photos, 1)
	assert.Equal(t, "Welkom bij de verzendbewijs generator! Kies een verzenddienst of doe een suggestie:", photos[0].Caption)
	assert.True(t, strings.HasSuffix(photos[0].FileLocal, "welkom.png"))
}

func TestEngineSelectCarrier(t *testing.T) {
	e, store := newTestEngine(t, writingRaster{})

	t.Run("creates a session and asks the first question", func(t *testing.T) {
		c := newFakeContext(7, "")
		c.data = "\f" + CallbackCarrier + "|postnl"
		require.NoError(t, e.CarrierCallback(c))

		sess, ok := store.Get(7)
		require.True(t, ok)
		assert.Equal(t, "postnl", sess.Carrier)
		assert.True(t, e.InProgress(7))

		photos := c.sentPhotos()
		require.Len(t, photos, 1)
		assert.Contains(t, photos[0].Caption, "Je hebt POSTNL gekozen.")
		assert.Contains(t, photos[0].Caption, "naam van het bedrijf")
		assert.True(t, c.deleted)
	})

	t.Run("reselecting discards collected answers", func(t *testing.T) {
		require.NoError(t, e.ManagerHandler(newFakeContext(7, "Amazon")))
		sess, _ := store.Get(7)
		require.True(t, sess.Answered("bedrijf"))

		selectCarrier(t, e, 7, "dhl")
		sess, ok := store.Get(7)
		require.True(t, ok)
		assert.Equal(t, "dhl", sess.Carrier)
		assert.Equal(t, 0, sess.Answers.Len())
	})

	t.Run("unknown carrier keeps the user sessionless", func(t *testing.T) {
		c := newFakeContext(8, "")
		c.data = "\f" + CallbackCarrier + "|ups"
		require.NoError(t, e.CarrierCallback(c))
		assert.False(t, e.InProgress(8))
		assert.Contains(t, c.sentTexts(), "Typ /start om te beginnen.")
	})
}

func TestEngineAnswerWalk(t *testing.T) {
	t.Run("text without a session prompts for /start and stores nothing", func(t *testing.T) {
		e, store := newTestEngine(t, writingRaster{})
		c := newFakeContext(9, "Amazon")
		require.NoError(t, e.ManagerHandler(c))
		assert.Contains(t, c.sentTexts(), "Typ /start om te beginnen.")
		_, ok := store.Get(9)
		assert.False(t, ok)
	})

	t.Run("postnl completes in exactly six answers", func(t *testing.T) {
		e, store := newTestEngine(t, writingRaster{})
		selectCarrier(t, e, 9, "postnl")

		answers := []string{"Amazon", "Herengracht 1", "1022VX", "Amsterdam", "Nederland", "PNL23834HSDHH"}
		var last *fakeContext
		for i, a := range answers {
			last = newFakeContext(9, a)
			require.NoError(t, e.ManagerHandler(last))
			if i < len(answers)-1 {
				assert.True(t, e.InProgress(9), "session should survive answer %d", i+1)
				require.Len(t, last.sentTexts(), 1)
			}
		}

		assert.False(t, e.InProgress(9))
		_, ok := store.Get(9)
		assert.False(t, ok)

		texts := last.sentTexts()
		require.Contains(t, texts, "📸 Screenshot is klaar:")
		photos := last.sentPhotos()
		require.Len(t, photos, 1)
		assert.Regexp(t, `postnl_Amazon_\d{8}_\d{6}\.png$`, photos[0].FileLocal)
	})

	t.Run("answers are trimmed before storing", func(t *testing.T) {
		e, store := newTestEngine(t, writingRaster{})
		selectCarrier(t, e, 11, "postnl")
		require.NoError(t, e.ManagerHandler(newFakeContext(11, "  Amazon  ")))
		sess, _ := store.Get(11)
		v, _ := sess.Answer("bedrijf")
		assert.Equal(t, "Amazon", v)
	})

	t.Run("dhl session ends after the seventh answer even when rendering fails", func(t *testing.T) {
		e, store := newTestEngine(t, silentRaster{})
		selectCarrier(t, e, 10, "dhl")

		answers := []string{
			"Jan Jansen", "JVG36283V3Y73G", "Amazon",
			"Maandag 24 maart", "14.22", "Bruna, Breestraat 22", "1044BX Amsterdam",
		}
		var last *fakeContext
		for _, a := range answers {
			last = newFakeContext(10, a)
			require.NoError(t, e.ManagerHandler(last))
		}

		_, ok := store.Get(10)
		assert.False(t, ok)
		assert.Contains(t, last.sentTexts(), "❌ Afbeelding kon niet worden gegenereerd.")
		assert.Empty(t, last.sentPhotos())
	})
}

func TestEngineRestart(t *testing.T) {
	e, store := newTestEngine(t, writingRaster{})
	selectCarrier(t, e, 12, "postnl")
	require.NoError(t, e.ManagerHandler(newFakeContext(12, "Amazon")))

	c := newFakeContext(12, "")
	c.data = "\f" + CallbackRestart
	require.NoError(t, e.RestartCallback(c))

	_, ok := store.Get(12)
	assert.False(t, ok)
	assert.True(t, c.deleted)
	photos := c.sentPhotos()
	require.Len(t, photos, 1)
	assert.True(t, strings.HasSuffix(photos[0].FileLocal, "welkom.png"))
}
