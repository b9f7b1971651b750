package ui

import (
	"context"
	"fmt"

	"github.com/rivo/tview"
)

// showAuthPage mounts the anonymous route table: landing text plus the
// login/register form. Any attempt to reach the messages surface without a
// session lands here.
func (a *App) showAuthPage(notice string) {
	form := styledForm(" DevConnect ")

	statusText := tview.NewTextView()
	statusText.SetBackgroundColor(ColorBg)
	statusText.SetTextColor(ColorFg)
	statusText.SetTextAlign(tview.AlignCenter)
	statusText.SetDynamicColors(true)
	if notice != "" {
		statusText.SetText(notice)
	}

	usernameField := tview.NewInputField()
	usernameField.SetLabel("Username: ")
	usernameField.SetFieldWidth(30)
	usernameField.SetBackgroundColor(ColorBg)

	passwordField := tview.NewInputField()
	passwordField.SetLabel("Password: ")
	passwordField.SetFieldWidth(30)
	passwordField.SetMaskCharacter('*')
	passwordField.SetBackgroundColor(ColorBg)

	form.AddFormItem(usernameField)
	form.AddFormItem(passwordField)

	form.AddButton("Login", func() {
		username := usernameField.GetText()
		password := passwordField.GetText()
		if username == "" || password == "" {
			statusText.SetText("[red]Please enter username and password[-]")
			return
		}
		a.doAuth(username, password, statusText, false)
	})

	form.AddButton("Register", func() {
		username := usernameField.GetText()
		password := passwordField.GetText()
		if username == "" || password == "" {
			statusText.SetText("[red]Please enter username and password[-]")
			return
		}
		a.doAuth(username, password, statusText, true)
	})

	form.AddButton("Quit", func() {
		a.app.Stop()
	})

	formFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(statusText, 1, 0, false)

	a.pages.AddPage("auth", modal(formFlex, 54, 12), true, true)
	a.app.SetFocus(form)
}

func (a *App) doAuth(username, password string, statusText *tview.TextView, register bool) {
	if register {
		statusText.SetText("Registering...")
	} else {
		statusText.SetText("Logging in...")
	}

	// Run the REST call in a goroutine to keep the UI responsive.
	go func() {
		ctx := context.Background()
		var err error
		if register {
			_, err = a.api.Register(ctx, username, password)
			if err == nil {
				_, err = a.api.Login(ctx, username, password)
			}
		}
		if !register {
			_, err = a.api.Login(ctx, username, password)
		}
		if err != nil {
			a.app.QueueUpdateDraw(func() {
				statusText.SetText(fmt.Sprintf("[red]%v[-]", err))
			})
			return
		}

		// The probe is the source of truth for the user id.
		session, err := a.api.DebugSession(ctx)
		if err != nil || !session.Authenticated {
			a.app.QueueUpdateDraw(func() {
				statusText.SetText("[red]Session check failed[-]")
			})
			return
		}

		a.app.QueueUpdateDraw(func() {
			a.pages.RemovePage("auth")
			a.startSession(session)
		})
	}()
}
