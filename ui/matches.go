package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/charly05tr/devconnect/models"
)

// showMatchesPage mounts the swipe feed: one candidate profile at a time,
// like or pass, with a list of mutual matches below.
func (a *App) showMatchesPage() {
	candidateView := tview.NewTextView()
	candidateView.SetBorder(true)
	candidateView.SetBorderColor(ColorBorder)
	candidateView.SetBackgroundColor(ColorBg)
	candidateView.SetTitle(" Discover ")
	candidateView.SetTitleColor(ColorTitle)
	candidateView.SetTextColor(ColorFg)
	candidateView.SetDynamicColors(true)

	matchesList := tview.NewList()
	matchesList.SetBorder(true)
	matchesList.SetBorderColor(ColorBorder)
	matchesList.SetBackgroundColor(ColorBg)
	matchesList.SetTitle(" Matches ")
	matchesList.SetTitleColor(ColorTitle)
	matchesList.SetMainTextColor(ColorFg)
	matchesList.SetSelectedBackgroundColor(ColorAccent)
	matchesList.ShowSecondaryText(false)

	statusBar := tview.NewTextView()
	statusBar.SetBackgroundColor(ColorAccent)
	statusBar.SetTextColor(ColorTitle)
	statusBar.SetTextAlign(tview.AlignCenter)
	statusBar.SetText(" L:Like | P:Pass | Enter:Open Chat | Esc:Back ")

	var feed []models.Profile
	var matches []models.Match

	renderCandidate := func() {
		if len(feed) == 0 {
			candidateView.SetText("\n[gray]No more profiles. Check back later.[-]")
			return
		}
		candidateView.SetText(renderProfile(feed[0]))
	}

	reloadMatches := func() {
		go func() {
			loaded, err := a.api.ListMatches(context.Background())
			a.app.QueueUpdateDraw(func() {
				matchesList.Clear()
				if err != nil {
					matchesList.AddItem(fmt.Sprintf("[red]%v", err), "", 0, nil)
					return
				}
				matches = loaded
				for _, match := range loaded {
					matchesList.AddItem(fmt.Sprintf("◆ %s", match.Profile.Username), "", 0, nil)
				}
			})
		}()
	}

	// A mutual match opens a direct conversation through the same path the
	// sidebar uses, so selection and room join behave identically.
	matchesList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index < 0 || index >= len(matches) {
			return
		}
		target := matches[index].Profile.UserID
		go func() {
			conversation, err := a.store.Create(context.Background(), "", []int64{target})
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					a.logger.Printf("open match conversation: %v", err)
					return
				}
				a.pages.RemovePage("matches")
				a.openConversation(conversation.ID)
			})
		}()
	})

	swipe := func(liked bool) {
		if len(feed) == 0 {
			return
		}
		target := feed[0].UserID
		feed = feed[1:]
		renderCandidate()
		go func() {
			result, err := a.api.Swipe(context.Background(), target, liked)
			if err != nil {
				a.logger.Printf("swipe: %v", err)
				return
			}
			if result.Matched {
				a.app.QueueUpdateDraw(func() {
					statusBar.SetText(" It's a match! | L:Like | P:Pass | Esc:Back ")
				})
				reloadMatches()
			}
		}()
	}

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(candidateView, 0, 2, true).
		AddItem(matchesList, 0, 1, false).
		AddItem(statusBar, 1, 0, false)
	flex.SetBackgroundColor(ColorBg)

	flex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			a.pages.RemovePage("matches")
			a.pages.SwitchToPage("main")
			a.app.SetFocus(a.conversationsList)
			return nil
		case tcell.KeyTab:
			a.app.SetFocus(matchesList)
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'l', 'L':
				swipe(true)
				return nil
			case 'p', 'P':
				swipe(false)
				return nil
			}
		}
		return event
	})

	a.pages.AddPage("matches", flex, true, true)
	a.app.SetFocus(flex)

	go func() {
		profiles, err := a.api.MatchFeed(context.Background())
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				candidateView.SetText(fmt.Sprintf("\n[red]Failed to load feed: %v[-]", err))
				return
			}
			feed = profiles
			renderCandidate()
		})
	}()
	reloadMatches()
}

func renderProfile(profile models.Profile) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n[::b][white]%s[-]", profile.Username))
	if profile.FullName != "" {
		sb.WriteString(fmt.Sprintf(" [gray](%s)[-]", profile.FullName))
	}
	sb.WriteString("\n\n")
	if profile.Bio != "" {
		sb.WriteString(fmt.Sprintf("[white]%s[-]\n\n", profile.Bio))
	}
	if len(profile.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("[yellow]Skills:[-] %s\n", strings.Join(profile.Skills, ", ")))
	}
	if profile.GithubURL != "" {
		sb.WriteString(fmt.Sprintf("[gray]%s[-]\n", profile.GithubURL))
	}
	return sb.String()
}
