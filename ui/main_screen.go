package ui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func (a *App) showMainScreen() {
	a.pages.RemovePage("auth")

	mainPage := a.createMainPage()
	a.pages.AddPage("main", mainPage, true, true)

	a.conversationsList.SetTitle(fmt.Sprintf(" Conversations [user %d] ", a.session.UserID))

	a.startStatusTicker()
	a.updateConnectionStatus()
	a.updateStatusBarText()

	a.app.SetFocus(a.conversationsList)
}

func (a *App) createMainPage() tview.Primitive {
	// Conversations list on the left
	a.conversationsList = tview.NewList()
	a.conversationsList.SetBorder(true)
	a.conversationsList.SetBorderColor(ColorBorder)
	a.conversationsList.SetBackgroundColor(ColorBg)
	a.conversationsList.SetTitle(" Conversations ")
	a.conversationsList.SetTitleColor(ColorTitle)
	a.conversationsList.SetMainTextColor(ColorFg)
	a.conversationsList.SetMainTextStyle(tcell.StyleDefault.Foreground(ColorFg).Background(ColorBg))
	a.conversationsList.SetSelectedTextColor(ColorTitle)
	a.conversationsList.SetSelectedBackgroundColor(ColorAccent)
	a.conversationsList.SetHighlightFullLine(true)
	a.conversationsList.ShowSecondaryText(true)
	a.conversationsList.SetSecondaryTextColor(ColorSystem)

	a.conversationsList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		conversations := a.store.Conversations()
		if index < 0 || index >= len(conversations) {
			return
		}
		a.openConversation(conversations[index].ID)
	})

	a.listErrorView = tview.NewTextView()
	a.listErrorView.SetBackgroundColor(ColorBg)
	a.listErrorView.SetTextColor(tcell.ColorRed)
	a.listErrorView.SetDynamicColors(true)

	// Connection status view
	a.connectionView = tview.NewTextView()
	a.connectionView.SetBorder(true)
	a.connectionView.SetBorderColor(ColorBorder)
	a.connectionView.SetBackgroundColor(ColorBg)
	a.connectionView.SetTitle(" Connection ")
	a.connectionView.SetTitleColor(ColorTitle)
	a.connectionView.SetTextColor(ColorFg)
	a.connectionView.SetDynamicColors(true)
	a.connectionView.SetTextAlign(tview.AlignCenter)

	// Status bar at bottom
	a.statusBar = tview.NewTextView()
	a.statusBar.SetBackgroundColor(ColorAccent)
	a.statusBar.SetTextColor(ColorTitle)
	a.statusBar.SetTextAlign(tview.AlignCenter)

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.conversationsList, 0, 1, true).
		AddItem(a.listErrorView, 1, 0, false).
		AddItem(a.connectionView, 3, 0, false).
		AddItem(a.statusBar, 1, 0, false)
	mainFlex.SetBackgroundColor(ColorBg)

	mainFlex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			a.showHelp()
			return nil
		case tcell.KeyF2:
			a.showNewConversationDialog()
			return nil
		case tcell.KeyF3:
			a.showMatchesPage()
			return nil
		case tcell.KeyF4:
			a.showProfilePage(a.session.UserID)
			return nil
		case tcell.KeyF5:
			go a.store.LoadConversations(context.Background())
			return nil
		case tcell.KeyF6:
			a.logout()
			return nil
		case tcell.KeyF10:
			a.quit()
			return nil
		case tcell.KeyEsc:
			a.quit()
			return nil
		}
		return event
	})

	return mainFlex
}

func (a *App) updateStatusBarText() {
	if a.statusBar == nil {
		return
	}
	a.statusBar.SetText(" F1:Help | F2:New | F3:Matches | F4:Profile | F5:Refresh | F6:Logout | F10:Quit ")
}
