package ui

import (
	"fmt"
)

func (a *App) updateConversationsList() {
	if a.conversationsList == nil {
		return
	}

	currentIdx := a.conversationsList.GetCurrentItem()
	a.conversationsList.Clear()

	for _, conversation := range a.store.Conversations() {
		name := conversation.DisplayName(a.session.UserID)

		icon := "◦"
		if conversation.IsGroup() {
			icon = fmt.Sprintf("◦ %d", len(conversation.Participants))
		}

		preview := ""
		if conversation.LastMessage != nil {
			sender := "system"
			if conversation.LastMessage.Sender != nil {
				sender = conversation.LastMessage.Sender.Username
			}
			preview = fmt.Sprintf("%s: %s", sender, truncate(conversation.LastMessage.Content, 48))
		}

		mainText := fmt.Sprintf("[white]%s [gray](%s)", name, icon)
		if conversation.ID == a.store.SelectedID() {
			mainText = fmt.Sprintf("[::b][white]%s [gray](%s)", name, icon)
		}
		a.conversationsList.AddItem(mainText, preview, 0, nil)
	}

	if currentIdx >= 0 && currentIdx < a.conversationsList.GetItemCount() {
		a.conversationsList.SetCurrentItem(currentIdx)
	}

	if a.listErrorView != nil {
		if listErr := a.store.ListError(); listErr != "" {
			a.listErrorView.SetText(fmt.Sprintf("[red]%s[-]", listErr))
		} else {
			a.listErrorView.SetText("")
		}
	}
}
