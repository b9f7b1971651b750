package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/charly05tr/devconnect/models"
)

// showNewConversationDialog creates a direct message (one user picked, no
// name) or a group (name set, several users picked). Users are resolved
// through the search endpoint.
func (a *App) showNewConversationDialog() {
	form := styledForm(" New Conversation ")

	statusLabel := tview.NewTextView()
	statusLabel.SetBackgroundColor(ColorBg)
	statusLabel.SetTextColor(tcell.ColorRed)
	statusLabel.SetDynamicColors(true)

	var picked []models.User

	nameField := tview.NewInputField()
	nameField.SetLabel("Group name: ")
	nameField.SetFieldWidth(30)

	searchField := tview.NewInputField()
	searchField.SetLabel("Add user: ")
	searchField.SetFieldWidth(30)

	resultsList := tview.NewList()
	resultsList.SetBackgroundColor(ColorBg)
	resultsList.SetMainTextColor(ColorFg)
	resultsList.SetSelectedBackgroundColor(ColorAccent)
	resultsList.ShowSecondaryText(false)

	var results []models.User
	resultsList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index < 0 || index >= len(results) {
			return
		}
		for _, user := range picked {
			if user.ID == results[index].ID {
				return
			}
		}
		picked = append(picked, results[index])
		names := make([]string, len(picked))
		for i, user := range picked {
			names[i] = user.Username
		}
		statusLabel.SetText(fmt.Sprintf("[white]Picked: %s[-]", strings.Join(names, ", ")))
		a.app.SetFocus(form)
	})

	searchField.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		term := searchField.GetText()
		if term == "" {
			return
		}
		go func() {
			users, err := a.api.SearchUsers(context.Background(), term)
			a.app.QueueUpdateDraw(func() {
				resultsList.Clear()
				if err != nil {
					statusLabel.SetText(fmt.Sprintf("[red]%v[-]", err))
					return
				}
				results = users
				for _, user := range users {
					resultsList.AddItem(user.Username, "", 0, nil)
				}
				if len(users) > 0 {
					a.app.SetFocus(resultsList)
				} else {
					statusLabel.SetText("[gray]No users found[-]")
				}
			})
		}()
	})

	form.AddFormItem(nameField)
	form.AddFormItem(searchField)

	form.AddButton("Create", func() {
		if len(picked) == 0 {
			statusLabel.SetText("Pick at least one user")
			return
		}
		name := nameField.GetText()
		if name == "" && len(picked) > 1 {
			statusLabel.SetText("A group needs a name")
			return
		}
		ids := make([]int64, len(picked))
		for i, user := range picked {
			ids[i] = user.ID
		}
		go func() {
			conversation, err := a.store.Create(context.Background(), name, ids)
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					statusLabel.SetText(fmt.Sprintf("[red]%v[-]", err))
					return
				}
				a.pages.RemovePage("dialog")
				a.openConversation(conversation.ID)
			})
		}()
	})

	form.AddButton("Cancel", func() {
		a.pages.RemovePage("dialog")
		a.app.SetFocus(a.conversationsList)
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 9, 0, true).
		AddItem(resultsList, 0, 1, false).
		AddItem(statusLabel, 1, 0, false)
	flex.SetBackgroundColor(ColorBg)

	a.pages.AddPage("dialog", modal(flex, 56, 18), true, true)
	a.app.SetFocus(form)
}

// showInviteDialog adds a user to the open conversation. The membership
// broadcast goes out only after the REST call succeeds.
func (a *App) showInviteDialog(conversationID int64) {
	form := styledForm(" Invite User ")

	statusLabel := tview.NewTextView()
	statusLabel.SetBackgroundColor(ColorBg)
	statusLabel.SetTextColor(tcell.ColorRed)
	statusLabel.SetDynamicColors(true)

	searchField := tview.NewInputField()
	searchField.SetLabel("Username: ")
	searchField.SetFieldWidth(30)

	form.AddFormItem(searchField)

	form.AddButton("Invite", func() {
		term := searchField.GetText()
		if term == "" {
			statusLabel.SetText("Enter a username")
			return
		}
		go func() {
			users, err := a.api.SearchUsers(context.Background(), term)
			if err == nil && len(users) == 0 {
				err = fmt.Errorf("no user matches %q", term)
			}
			if err == nil {
				err = a.store.Invite(context.Background(), conversationID, users[0].ID)
			}
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					statusLabel.SetText(fmt.Sprintf("[red]%v[-]", err))
					return
				}
				a.pages.RemovePage("dialog")
				if a.messageInput != nil {
					a.app.SetFocus(a.messageInput)
				}
			})
		}()
	})

	form.AddButton("Cancel", func() {
		a.pages.RemovePage("dialog")
		if a.messageInput != nil {
			a.app.SetFocus(a.messageInput)
		}
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(statusLabel, 1, 0, false)
	flex.SetBackgroundColor(ColorBg)

	a.pages.AddPage("dialog", modal(flex, 50, 9), true, true)
	a.app.SetFocus(form)
}

func (a *App) showLeaveDialog(conversationID int64) {
	confirm := tview.NewModal()
	confirm.SetBackgroundColor(ColorBg)
	confirm.SetTextColor(ColorFg)
	confirm.SetButtonBackgroundColor(ColorAccent)
	confirm.SetButtonTextColor(ColorTitle)
	confirm.SetText("Leave this conversation?")
	confirm.AddButtons([]string{"Leave", "Cancel"})
	confirm.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		a.pages.RemovePage("dialog")
		if buttonLabel != "Leave" {
			if a.messageInput != nil {
				a.app.SetFocus(a.messageInput)
			}
			return
		}
		go func() {
			if err := a.store.Leave(context.Background(), conversationID); err != nil {
				a.logger.Printf("leave conversation %d: %v", conversationID, err)
				return
			}
			a.app.QueueUpdateDraw(func() {
				a.closeConversation()
			})
		}()
	})

	a.pages.AddPage("dialog", confirm, true, true)
}
