package ui

import (
	"context"
	"log"
	"time"

	"github.com/rivo/tview"

	"github.com/charly05tr/devconnect/api"
	"github.com/charly05tr/devconnect/chat"
	"github.com/charly05tr/devconnect/config"
	"github.com/charly05tr/devconnect/models"
	"github.com/charly05tr/devconnect/realtime"
)

// App is the main application
type App struct {
	app     *tview.Application
	pages   *tview.Pages
	cfg     *config.Config
	api     *api.Client
	store   *chat.Store
	channel *realtime.Channel
	logger  *log.Logger

	session models.Session

	conversationsList *tview.List
	chatView          *tview.TextView
	chatBannerRows    int
	messageInput      *tview.InputField
	statusBar         *tview.TextView
	connectionView    *tview.TextView
	listErrorView     *tview.TextView
	statusTicker      *time.Ticker
	statusTickerDone  chan struct{}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, logger *log.Logger) *App {
	if logger == nil {
		logger = log.Default()
	}
	client := api.NewClient(cfg.APIBaseURL, time.Duration(cfg.HTTPTimeout)*time.Second)
	return &App{
		cfg:    cfg,
		api:    client,
		store:  chat.NewStore(client, nil, cfg.PageSize, logger),
		logger: logger,
	}
}

// Run starts the application. Route rendering is gated behind the one-shot
// session probe: nothing but the loading page mounts until it resolves.
func (a *App) Run() error {
	a.app = tview.NewApplication()
	a.pages = tview.NewPages()

	background := tview.NewBox()
	background.SetBackgroundColor(ColorBg)
	a.pages.AddPage("background", background, true, true)

	a.showLoadingPage()

	// Redraws triggered by store mutations must not block the event loop,
	// so the hook always hops through a goroutine.
	a.store.OnChange(func() {
		go a.app.QueueUpdateDraw(a.refresh)
	})

	go func() {
		session := a.api.BootstrapSession(context.Background())
		a.app.QueueUpdateDraw(func() {
			a.pages.RemovePage("loading")
			if session.Authenticated {
				a.startSession(session)
			} else {
				a.showAuthPage("")
			}
		})
	}()

	return a.app.SetRoot(a.pages, true).EnableMouse(false).Run()
}

func (a *App) showLoadingPage() {
	loading := tview.NewTextView()
	loading.SetBackgroundColor(ColorBg)
	loading.SetTextColor(ColorFg)
	loading.SetTextAlign(tview.AlignCenter)
	loading.SetText("\n\nDevConnect\n\nChecking session...")
	a.pages.AddPage("loading", loading, true, true)
}

// startSession mounts the authenticated surface: realtime channel, store
// binding, main screen, conversation load.
func (a *App) startSession(session models.Session) {
	a.session = session

	a.channel = realtime.NewChannel(a.cfg.WSBaseURL, session.UserID, a.logger)
	a.store = chat.NewStore(a.api, a.channel, a.cfg.PageSize, a.logger)
	a.store.SetSession(session)
	a.store.Bind(a.channel)
	a.store.OnChange(func() {
		go a.app.QueueUpdateDraw(a.refresh)
	})
	a.channel.Open()

	a.showMainScreen()

	go a.store.LoadConversations(context.Background())
}

// logout tears the session down and returns to the anonymous pages.
func (a *App) logout() {
	if a.channel != nil {
		a.channel.Close()
		a.channel = nil
	}
	a.stopStatusTicker()
	go a.api.Logout(context.Background())

	a.session = models.Session{}
	a.store = chat.NewStore(a.api, nil, a.cfg.PageSize, a.logger)
	a.conversationsList = nil
	a.chatView = nil
	a.messageInput = nil

	a.pages.RemovePage("main")
	a.pages.RemovePage("matches")
	a.pages.RemovePage("profile")
	a.showAuthPage("")
}

// refresh re-renders everything touched by store state.
func (a *App) refresh() {
	a.updateConversationsList()
	a.refreshChatView()
	a.updateConnectionStatus()
}

// quit exits the application
func (a *App) quit() {
	if a.channel != nil {
		a.channel.Close()
	}
	a.app.Stop()
}

func modal(primitive tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(primitive, width, 0, true).
			AddItem(nil, 0, 1, false), height, 0, true).
		AddItem(nil, 0, 1, false)
}

func styledForm(title string) *tview.Form {
	form := tview.NewForm()
	form.SetBackgroundColor(ColorBg)
	form.SetFieldBackgroundColor(ColorField)
	form.SetFieldTextColor(ColorFg)
	form.SetLabelColor(ColorHighlight)
	form.SetButtonBackgroundColor(ColorAccent)
	form.SetButtonTextColor(ColorTitle)
	form.SetBorder(true)
	form.SetBorderColor(ColorBorder)
	form.SetTitle(title)
	form.SetTitleColor(ColorTitle)
	return form
}
