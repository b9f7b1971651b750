package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/charly05tr/devconnect/chat"
)

// openConversation selects a conversation and mounts the chat page. The
// store keeps the room join idempotent per distinct selection.
func (a *App) openConversation(conversationID int64) {
	if a.store.SelectedID() == conversationID && a.pages.HasPage("chat") {
		a.pages.SwitchToPage("chat")
		return
	}

	chatPage := a.createChatPage(conversationID)
	a.pages.AddPage("chat", chatPage, true, true)
	a.pages.SwitchToPage("chat")

	a.store.Select(conversationID)
	a.updateChatTitle()
}

func (a *App) getChatTitle(conversationID int64) string {
	conversation, ok := a.store.Conversation(conversationID)
	if !ok {
		return " Conversation "
	}
	kind := "direct"
	if conversation.IsGroup() {
		kind = fmt.Sprintf("%d members", len(conversation.Participants))
	}
	return fmt.Sprintf(" %s ─ %s ", conversation.DisplayName(a.session.UserID), kind)
}

func (a *App) updateChatTitle() {
	if a.chatView != nil && a.store.SelectedID() != 0 {
		a.chatView.SetTitle(a.getChatTitle(a.store.SelectedID()))
	}
}

func (a *App) createChatPage(conversationID int64) tview.Primitive {
	// Chat history view. Wrapping stays off so one message occupies exactly
	// one row; the older-page scroll anchor math depends on that.
	a.chatView = tview.NewTextView()
	a.chatView.SetBorder(true)
	a.chatView.SetBorderColor(ColorBorder)
	a.chatView.SetBackgroundColor(ColorBg)
	a.chatView.SetTitle(a.getChatTitle(conversationID))
	a.chatView.SetTitleColor(ColorTitle)
	a.chatView.SetTextColor(ColorFg)
	a.chatView.SetDynamicColors(true)
	a.chatView.SetScrollable(true)
	a.chatView.SetWrap(false)
	a.chatView.ScrollToEnd()
	a.chatBannerRows = 0

	// Message input
	a.messageInput = tview.NewInputField()
	a.messageInput.SetLabel("> ")
	a.messageInput.SetFieldWidth(0)
	a.messageInput.SetBackgroundColor(ColorBg)
	a.messageInput.SetFieldBackgroundColor(ColorField)
	a.messageInput.SetFieldTextColor(ColorFg)
	a.messageInput.SetLabelColor(ColorHighlight)
	a.messageInput.SetBorder(true)
	a.messageInput.SetBorderColor(ColorBorder)
	a.messageInput.SetTitle(" Message ")
	a.messageInput.SetTitleColor(ColorTitle)

	a.messageInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			text := a.messageInput.GetText()
			if text != "" {
				a.sendMessage(text)
				a.messageInput.SetText("")
			}
		}
	})

	chatStatus := tview.NewTextView()
	chatStatus.SetBackgroundColor(ColorAccent)
	chatStatus.SetTextColor(ColorTitle)
	chatStatus.SetTextAlign(tview.AlignCenter)
	chatStatus.SetText(" Enter:Send | Tab:Scroll | F2:Invite | F7:Leave | Esc:Back ")

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.chatView, 0, 1, false).
		AddItem(a.messageInput, 3, 0, true).
		AddItem(chatStatus, 1, 0, false)
	mainFlex.SetBackgroundColor(ColorBg)

	chatViewFocused := false

	mainFlex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			if chatViewFocused {
				chatViewFocused = false
				a.app.SetFocus(a.messageInput)
				return nil
			}
			a.closeConversation()
			return nil
		case tcell.KeyTab:
			chatViewFocused = !chatViewFocused
			if chatViewFocused {
				a.app.SetFocus(a.chatView)
			} else {
				a.app.SetFocus(a.messageInput)
			}
			return nil
		case tcell.KeyF2:
			a.showInviteDialog(conversationID)
			return nil
		case tcell.KeyF7:
			a.showLeaveDialog(conversationID)
			return nil
		case tcell.KeyPgUp:
			a.scrollChat(-10)
			return nil
		case tcell.KeyPgDn:
			a.scrollChat(10)
			return nil
		case tcell.KeyUp:
			if chatViewFocused {
				a.scrollChat(-1)
				return nil
			}
		case tcell.KeyDown:
			if chatViewFocused {
				a.scrollChat(1)
				return nil
			}
		case tcell.KeyHome:
			if chatViewFocused {
				a.chatView.ScrollToBeginning()
				a.maybeLoadOlder(0)
				return nil
			}
		case tcell.KeyEnd:
			if chatViewFocused {
				a.chatView.ScrollToEnd()
				return nil
			}
		}
		return event
	})

	return mainFlex
}

// scrollChat moves the view and fires the older-page load when the scroll
// position nears the top of the loaded region.
func (a *App) scrollChat(delta int) {
	row, col := a.chatView.GetScrollOffset()
	row += delta
	if row < 0 {
		row = 0
	}
	a.chatView.ScrollTo(row, col)
	a.maybeLoadOlder(row)
}

func (a *App) maybeLoadOlder(row int) {
	if row <= 2 {
		a.store.LoadOlder()
	}
}

func (a *App) refreshChatView() {
	if a.chatView == nil {
		return
	}

	messages := a.store.Messages()
	phase := a.store.PagerPhase()

	bannerRows := 0
	var sb strings.Builder
	switch phase {
	case chat.PhaseResolving, chat.PhaseLoadingLast:
		sb.WriteString("[gray]Loading messages...[-]\n")
		bannerRows = 1
	case chat.PhaseFailed:
		sb.WriteString(fmt.Sprintf("[red]Failed to load messages: %s[-]\n", a.store.MessagesError()))
		bannerRows = 1
	case chat.PhaseLoadingOlder:
		sb.WriteString("[gray]Loading older messages...[-]\n")
		bannerRows = 1
	}

	for _, msg := range messages {
		timeStr := msg.CreatedAt.Format("15:04:05")
		switch {
		case msg.Sender == nil:
			sb.WriteString(fmt.Sprintf("[gray]%s[-] [gray]· %s[-]\n", timeStr, msg.Content))
		case msg.Sender.ID == a.session.UserID:
			sb.WriteString(fmt.Sprintf("[gray]%s[-] [white]→ %s[-]\n", timeStr, msg.Content))
		default:
			sb.WriteString(fmt.Sprintf("[gray]%s[-] [yellow]%s: %s[-]\n", timeStr, msg.Sender.Username, msg.Content))
		}
	}

	row, col := a.chatView.GetScrollOffset()
	a.chatView.SetText(sb.String())

	// The banner line above the history counts as a prepended row too: when
	// it appears or disappears between redraws the offset must move with it.
	bannerShift := bannerRows - a.chatBannerRows
	a.chatBannerRows = bannerRows

	if anchor := a.store.TakePrependAnchor(); anchor > 0 {
		// Older rows were prepended above the viewport; shift the offset by
		// the same amount so the visible region does not jump.
		a.chatView.ScrollTo(anchoredScrollRow(row, anchor, bannerShift), col)
	} else if phase == chat.PhaseReady || phase == chat.PhaseLoadingOlder {
		if a.atChatBottom(row, len(messages)+bannerRows) {
			a.chatView.ScrollToEnd()
		} else if bannerShift != 0 {
			a.chatView.ScrollTo(anchoredScrollRow(row, 0, bannerShift), col)
		}
	}

	a.updateChatTitle()
}

// anchoredScrollRow keeps the viewport on the same message after prepended
// rows of history appeared above it and the banner row count changed.
func anchoredScrollRow(row, prepended, bannerShift int) int {
	next := row + prepended + bannerShift
	if next < 0 {
		next = 0
	}
	return next
}

// atChatBottom reports whether the viewport was pinned to the newest rows
// before the redraw.
func (a *App) atChatBottom(row, totalRows int) bool {
	_, _, _, height := a.chatView.GetInnerRect()
	return row >= totalRows-height
}

func (a *App) sendMessage(text string) {
	// The channel echo appends the message; nothing is inserted here.
	go func() {
		if err := a.store.Send(context.Background(), text); err != nil {
			a.logger.Printf("send message: %v", err)
			a.app.QueueUpdateDraw(func() {
				if a.chatView != nil {
					a.chatView.SetTitle(fmt.Sprintf(" send failed: %s ", truncate(err.Error(), 40)))
				}
			})
		}
	}()
}

func (a *App) closeConversation() {
	a.store.Deselect()
	a.chatView = nil
	a.messageInput = nil
	a.pages.RemovePage("chat")
	a.pages.SwitchToPage("main")
	a.app.SetFocus(a.conversationsList)
}
