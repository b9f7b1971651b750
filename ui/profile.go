package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/charly05tr/devconnect/models"
)

// showProfilePage renders a profile with its linked GitHub repositories.
// The current user's own profile is editable.
func (a *App) showProfilePage(userID int64) {
	profileView := tview.NewTextView()
	profileView.SetBorder(true)
	profileView.SetBorderColor(ColorBorder)
	profileView.SetBackgroundColor(ColorBg)
	profileView.SetTitle(" Profile ")
	profileView.SetTitleColor(ColorTitle)
	profileView.SetTextColor(ColorFg)
	profileView.SetDynamicColors(true)

	projectsView := tview.NewTextView()
	projectsView.SetBorder(true)
	projectsView.SetBorderColor(ColorBorder)
	projectsView.SetBackgroundColor(ColorBg)
	projectsView.SetTitle(" Repositories ")
	projectsView.SetTitleColor(ColorTitle)
	projectsView.SetTextColor(ColorFg)
	projectsView.SetDynamicColors(true)

	statusBar := tview.NewTextView()
	statusBar.SetBackgroundColor(ColorAccent)
	statusBar.SetTextColor(ColorTitle)
	statusBar.SetTextAlign(tview.AlignCenter)
	if userID == a.session.UserID {
		statusBar.SetText(" E:Edit | R:Link Repo | Esc:Back ")
	} else {
		statusBar.SetText(" Esc:Back ")
	}

	var profile models.Profile
	var projects []models.Project

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(profileView, 0, 1, true).
		AddItem(projectsView, 0, 1, false).
		AddItem(statusBar, 1, 0, false)
	flex.SetBackgroundColor(ColorBg)

	flex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			a.pages.RemovePage("profile")
			a.pages.SwitchToPage("main")
			a.app.SetFocus(a.conversationsList)
			return nil
		case tcell.KeyRune:
			if userID != a.session.UserID {
				break
			}
			switch event.Rune() {
			case 'e', 'E':
				a.showEditProfileDialog(profile, func(updated models.Profile) {
					profile = updated
					profileView.SetText(renderProfile(updated))
				})
				return nil
			case 'r', 'R':
				a.showLinkRepoDialog(projects, func(updated []models.Project) {
					projects = updated
					projectsView.SetText(renderProjects(updated))
				})
				return nil
			}
		}
		return event
	})

	a.pages.AddPage("profile", flex, true, true)
	a.app.SetFocus(flex)

	go func() {
		loaded, err := a.api.GetProfile(context.Background(), userID)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				profileView.SetText(fmt.Sprintf("\n[red]Failed to load profile: %v[-]", err))
				return
			}
			profile = loaded
			profileView.SetText(renderProfile(loaded))
		})
	}()

	go func() {
		loaded, err := a.api.UserProjects(context.Background(), userID)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				projectsView.SetText(fmt.Sprintf("\n[red]Failed to load repositories: %v[-]", err))
				return
			}
			projects = loaded
			projectsView.SetText(renderProjects(loaded))
		})
	}()
}

// showLinkRepoDialog adds one GitHub repository to the current user's
// project list and saves the full replacement set.
func (a *App) showLinkRepoDialog(projects []models.Project, onSaved func([]models.Project)) {
	form := styledForm(" Link Repository ")

	statusLabel := tview.NewTextView()
	statusLabel.SetBackgroundColor(ColorBg)
	statusLabel.SetTextColor(tcell.ColorRed)
	statusLabel.SetDynamicColors(true)

	nameField := tview.NewInputField()
	nameField.SetLabel("Name: ")
	nameField.SetFieldWidth(30)

	urlField := tview.NewInputField()
	urlField.SetLabel("Repository URL: ")
	urlField.SetFieldWidth(30)

	languageField := tview.NewInputField()
	languageField.SetLabel("Language: ")
	languageField.SetFieldWidth(30)

	descriptionField := tview.NewInputField()
	descriptionField.SetLabel("Description: ")
	descriptionField.SetFieldWidth(30)

	form.AddFormItem(nameField)
	form.AddFormItem(urlField)
	form.AddFormItem(languageField)
	form.AddFormItem(descriptionField)

	form.AddButton("Link", func() {
		name := strings.TrimSpace(nameField.GetText())
		repoURL := strings.TrimSpace(urlField.GetText())
		if name == "" || repoURL == "" {
			statusLabel.SetText("[red]Name and repository URL are required[-]")
			return
		}

		updated := append(append([]models.Project{}, projects...), models.Project{
			UserID:      a.session.UserID,
			Name:        name,
			RepoURL:     repoURL,
			Language:    strings.TrimSpace(languageField.GetText()),
			Description: strings.TrimSpace(descriptionField.GetText()),
		})

		go func() {
			saved, err := a.api.UpdateUserProjects(context.Background(), a.session.UserID, updated)
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					statusLabel.SetText(fmt.Sprintf("[red]%v[-]", err))
					return
				}
				a.pages.RemovePage("dialog")
				onSaved(saved)
			})
		}()
	})

	form.AddButton("Cancel", func() {
		a.pages.RemovePage("dialog")
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(statusLabel, 1, 0, false)
	flex.SetBackgroundColor(ColorBg)

	a.pages.AddPage("dialog", modal(flex, 60, 15), true, true)
	a.app.SetFocus(form)
}

func renderProjects(projects []models.Project) string {
	if len(projects) == 0 {
		return "\n[gray]No linked repositories.[-]"
	}
	var sb strings.Builder
	for _, project := range projects {
		sb.WriteString(fmt.Sprintf("\n[::b][white]%s[-]", project.Name))
		if project.Language != "" {
			sb.WriteString(fmt.Sprintf(" [gray]· %s[-]", project.Language))
		}
		if project.Stars > 0 {
			sb.WriteString(fmt.Sprintf(" [yellow]★ %d[-]", project.Stars))
		}
		sb.WriteString("\n")
		if project.Description != "" {
			sb.WriteString(fmt.Sprintf("[white]%s[-]\n", project.Description))
		}
		sb.WriteString(fmt.Sprintf("[gray]%s[-]\n", project.RepoURL))
	}
	return sb.String()
}

func (a *App) showEditProfileDialog(profile models.Profile, onSaved func(models.Profile)) {
	form := styledForm(" Edit Profile ")

	statusLabel := tview.NewTextView()
	statusLabel.SetBackgroundColor(ColorBg)
	statusLabel.SetTextColor(tcell.ColorRed)
	statusLabel.SetDynamicColors(true)

	nameField := tview.NewInputField()
	nameField.SetLabel("Full name: ")
	nameField.SetFieldWidth(30)
	nameField.SetText(profile.FullName)

	bioField := tview.NewInputField()
	bioField.SetLabel("Bio: ")
	bioField.SetFieldWidth(30)
	bioField.SetText(profile.Bio)

	skillsField := tview.NewInputField()
	skillsField.SetLabel("Skills (comma separated): ")
	skillsField.SetFieldWidth(30)
	skillsField.SetText(strings.Join(profile.Skills, ", "))

	githubField := tview.NewInputField()
	githubField.SetLabel("GitHub URL: ")
	githubField.SetFieldWidth(30)
	githubField.SetText(profile.GithubURL)

	form.AddFormItem(nameField)
	form.AddFormItem(bioField)
	form.AddFormItem(skillsField)
	form.AddFormItem(githubField)

	form.AddButton("Save", func() {
		updated := profile
		updated.FullName = nameField.GetText()
		updated.Bio = bioField.GetText()
		updated.GithubURL = githubField.GetText()
		updated.Skills = nil
		for _, skill := range strings.Split(skillsField.GetText(), ",") {
			if trimmed := strings.TrimSpace(skill); trimmed != "" {
				updated.Skills = append(updated.Skills, trimmed)
			}
		}
		go func() {
			saved, err := a.api.UpdateProfile(context.Background(), updated)
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					statusLabel.SetText(fmt.Sprintf("[red]%v[-]", err))
					return
				}
				a.pages.RemovePage("dialog")
				onSaved(saved)
			})
		}()
	})

	form.AddButton("Cancel", func() {
		a.pages.RemovePage("dialog")
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(statusLabel, 1, 0, false)
	flex.SetBackgroundColor(ColorBg)

	a.pages.AddPage("dialog", modal(flex, 60, 15), true, true)
	a.app.SetFocus(form)
}
