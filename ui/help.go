package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func (a *App) showHelp() {
	helpText := tview.NewTextView()
	helpText.SetBorder(true)
	helpText.SetBorderColor(ColorBorder)
	helpText.SetBackgroundColor(ColorBg)
	helpText.SetTitle(" Help ")
	helpText.SetTitleColor(ColorTitle)
	helpText.SetTextColor(ColorFg)
	helpText.SetDynamicColors(true)
	helpText.SetText(`
 [::b]Conversations[-]
   Enter        Open conversation
   F2           New conversation
   F5           Refresh list

 [::b]Chat[-]
   Enter        Send message
   Tab          Toggle scroll focus
   Up/PgUp      Scroll up (loads older pages near the top)
   F2           Invite user
   F7           Leave conversation
   Esc          Back to list

 [::b]Profile[-]
   E            Edit profile
   R            Link a repository

 [::b]Other[-]
   F3           Matches
   F4           Profile
   F6           Logout
   F10          Quit

 Press Esc to close this help.`)

	helpText.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc {
			a.pages.RemovePage("help")
			a.app.SetFocus(a.conversationsList)
			return nil
		}
		return event
	})

	a.pages.AddPage("help", modal(helpText, 60, 28), true, true)
	a.app.SetFocus(helpText)
}
