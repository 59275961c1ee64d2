// Package app runs the interactive viewer: a tcell event loop that
// feeds key presses into a session and redraws after every event.
package app

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/kk-code-lab/rview/internal/encdetect"
	"github.com/kk-code-lab/rview/internal/session"
	"github.com/kk-code-lab/rview/internal/ui/viewer"
)

// encodingCycle is the order the 'e' key walks through.
var encodingCycle = []encdetect.Encoding{
	encdetect.UTF8,
	encdetect.EUCKR,
	encdetect.CP949,
	encdetect.UTF16LE,
	encdetect.UTF16BE,
	encdetect.ISO8859_1,
}

// Application owns the screen and dispatches events to one session.
type Application struct {
	screen   tcell.Screen
	sess     *session.Session
	renderer *viewer.Renderer
	log      zerolog.Logger

	frame      viewer.Frame
	shouldQuit bool
}

// NewScreen creates and initializes a tcell screen.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

func New(screen tcell.Screen, sess *session.Session, log zerolog.Logger) *Application {
	return &Application{
		screen:   screen,
		sess:     sess,
		renderer: viewer.NewRenderer(screen),
		log:      log,
	}
}

// Run drives the event loop until quit or context cancellation. It
// finalizes the screen on return.
func (app *Application) Run(ctx context.Context) error {
	defer app.screen.Fini()

	app.renderer.Render(app.sess, app.frame)

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for !app.shouldQuit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				app.screen.Sync()
			case *tcell.EventKey:
				app.handleKey(ctx, ev)
			}
			app.renderer.Render(app.sess, app.frame)
		}
	}
	return nil
}

// bodyHeight is the number of document rows on screen, used as the
// paging step in scroll mode.
func (app *Application) bodyHeight() int {
	_, h := app.screen.Size()
	if h < 3 {
		return 1
	}
	return h - 2
}

func (app *Application) handleKey(ctx context.Context, ev *tcell.EventKey) {
	if app.frame.Prompting {
		app.handlePromptKey(ev)
		return
	}
	app.frame.Message = ""

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		app.shouldQuit = true
		return
	case tcell.KeyUp:
		app.moveBack(1)
		return
	case tcell.KeyDown:
		app.moveForward(1)
		return
	case tcell.KeyLeft, tcell.KeyPgUp:
		app.pageBack()
		return
	case tcell.KeyRight, tcell.KeyPgDn:
		app.pageForward()
		return
	case tcell.KeyHome:
		app.goFirst()
		return
	case tcell.KeyEnd:
		app.goLast()
		return
	}

	if ev.Key() != tcell.KeyRune {
		return
	}
	switch ev.Rune() {
	case 'q':
		app.shouldQuit = true
	case 'm':
		app.toggleMode()
	case '/':
		app.frame.Prompting = true
		app.frame.Prompt = ""
	case 'n':
		if _, ok := app.sess.NextMatch(); !ok {
			app.frame.Message = "no matches"
		}
	case 'N':
		if _, ok := app.sess.PreviousMatch(); !ok {
			app.frame.Message = "no matches"
		}
	case 'e':
		app.cycleEncoding(ctx)
	case 'k':
		app.moveBack(1)
	case 'j':
		app.moveForward(1)
	case ' ', 'f':
		app.pageForward()
	case 'b':
		app.pageBack()
	case 'g':
		app.goFirst()
	case 'G':
		app.goLast()
	}
}

func (app *Application) handlePromptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		app.frame.Prompting = false
		app.frame.Prompt = ""
	case tcell.KeyEnter:
		query := app.frame.Prompt
		app.frame.Prompting = false
		app.frame.Prompt = ""
		if query == "" {
			return
		}
		n := app.sess.Search(query)
		if n == 0 {
			app.frame.Message = fmt.Sprintf("no matches for %q", query)
			return
		}
		app.sess.RevealCurrent()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(app.frame.Prompt); len(r) > 0 {
			app.frame.Prompt = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		app.frame.Prompt += string(ev.Rune())
	}
}

func (app *Application) toggleMode() {
	if app.sess.View().Mode == session.ModeScroll {
		app.sess.SetMode(session.ModePage)
	} else {
		app.sess.SetMode(session.ModeScroll)
	}
}

func (app *Application) moveForward(n int) {
	if app.sess.View().Mode == session.ModePage {
		app.sess.NextPage()
		return
	}
	app.sess.ScrollBy(n)
}

func (app *Application) moveBack(n int) {
	if app.sess.View().Mode == session.ModePage {
		app.sess.PreviousPage()
		return
	}
	app.sess.ScrollBy(-n)
}

func (app *Application) pageForward() {
	if app.sess.View().Mode == session.ModePage {
		app.sess.NextPage()
		return
	}
	app.sess.ScrollBy(app.bodyHeight())
}

func (app *Application) pageBack() {
	if app.sess.View().Mode == session.ModePage {
		app.sess.PreviousPage()
		return
	}
	app.sess.ScrollBy(-app.bodyHeight())
}

func (app *Application) goFirst() {
	if app.sess.View().Mode == session.ModePage {
		_ = app.sess.GoToPage(app.sess.Paginator().MinPage())
		return
	}
	app.sess.ScrollTo(0)
}

func (app *Application) goLast() {
	if app.sess.View().Mode == session.ModePage {
		_ = app.sess.GoToPage(app.sess.Paginator().MaxPage())
		return
	}
	if doc := app.sess.Document(); doc != nil {
		app.sess.ScrollTo(doc.LineCount() - 1)
	}
}

func (app *Application) cycleEncoding(ctx context.Context) {
	doc := app.sess.Document()
	if doc == nil {
		return
	}
	next := encodingCycle[0]
	for i, enc := range encodingCycle {
		if enc == doc.Encoding {
			next = encodingCycle[(i+1)%len(encodingCycle)]
			break
		}
	}
	if err := app.sess.ChangeEncoding(ctx, next); err != nil {
		app.log.Warn().Err(err).Stringer("encoding", next).Msg("encoding switch failed")
		app.frame.Message = fmt.Sprintf("cannot decode as %s", next)
		return
	}
	app.frame.Message = fmt.Sprintf("encoding: %s", next)
}
