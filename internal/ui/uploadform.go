package ui

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/gallery/internal/form"
	"github.com/five82/gallery/internal/upload"
)

const (
	fieldPath = iota
	fieldTitle
	fieldDescription
	fieldCount
)

var fieldNames = [fieldCount]string{form.FieldImage, form.FieldTitle, form.FieldDescription}

// uploadModal collects an image path, title and description, validates them
// locally and submits through the form.Submitter.
type uploadModal struct {
	id        int
	ctx       context.Context
	submitter *form.Submitter
	inputs    [fieldCount]textinput.Model
	focus     int
	fieldErrs map[string]string
	err       string
	busy      bool
}

func newUploadModal(ctx context.Context, submitter *form.Submitter, id int) uploadModal {
	labels := [fieldCount]string{"Image file", "Title", "Description"}
	placeholders := [fieldCount]string{"~/Pictures/photo.png", "3 to 10 characters", "up to 10 characters"}

	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Prompt = labels[i] + ": "
		in.Placeholder = placeholders[i]
		in.CharLimit = 512
		inputs[i] = in
	}
	inputs[fieldPath].Focus()

	return uploadModal{
		id:        id,
		ctx:       ctx,
		submitter: submitter,
		inputs:    inputs,
		fieldErrs: map[string]string{},
	}
}

func (u uploadModal) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (u uploadModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case submitDoneMsg:
		// Result of a form that was cancelled before this one opened.
		if msg.formID != u.id {
			return u, nil, false
		}
		u.busy = false
		if msg.err == nil {
			return u, nil, true
		}
		u.applyError(msg.err)
		return u, nil, false

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Escape):
			return u, nil, true
		case u.busy:
			return u, nil, false
		case key.Matches(msg, keys.NextField):
			return u, u.setFocus((u.focus + 1) % fieldCount), false
		case key.Matches(msg, keys.PrevField):
			return u, u.setFocus((u.focus + fieldCount - 1) % fieldCount), false
		case key.Matches(msg, keys.Submit):
			return u.submit()
		case key.Matches(msg, keys.View):
			if u.focus < fieldCount-1 {
				return u, u.setFocus(u.focus + 1), false
			}
			return u.submit()
		}
	}

	if u.busy {
		return u, nil, false
	}
	var cmd tea.Cmd
	u.inputs[u.focus], cmd = u.inputs[u.focus].Update(msg)
	return u, cmd, false
}

func (u *uploadModal) setFocus(idx int) tea.Cmd {
	u.inputs[u.focus].Blur()
	u.focus = idx
	return u.inputs[u.focus].Focus()
}

func (u uploadModal) input() (form.Input, string) {
	in := form.Input{
		Title:       u.inputs[fieldTitle].Value(),
		Description: u.inputs[fieldDescription].Value(),
	}
	path := strings.TrimSpace(u.inputs[fieldPath].Value())
	if path == "" {
		return in, ""
	}
	file, err := upload.FromPath(expandHome(path))
	if err != nil {
		return in, err.Error()
	}
	in.Image = &file
	return in, ""
}

func (u uploadModal) submit() (Modal, tea.Cmd, bool) {
	u.fieldErrs = map[string]string{}
	u.err = ""

	in, pathErr := u.input()
	if err := u.submitter.Rules().Validate(in); err != nil {
		u.applyError(err)
	}
	if pathErr != "" {
		u.fieldErrs[form.FieldImage] = pathErr
	}
	if len(u.fieldErrs) > 0 || u.err != "" {
		return u, nil, false
	}

	u.busy = true
	id, ctx, submitter := u.id, u.ctx, u.submitter
	return u, func() tea.Msg {
		item, err := submitter.Submit(ctx, in)
		return submitDoneMsg{formID: id, item: item, err: err}
	}, false
}

func (u *uploadModal) applyError(err error) {
	var verrs form.Errors
	switch {
	case errors.As(err, &verrs):
		rules := u.submitter.Rules()
		for _, v := range verrs {
			u.fieldErrs[v.Field] = rules.Message(v)
		}
	case errors.Is(err, form.ErrSubmitInFlight):
		u.err = "An upload is already in progress"
	default:
		u.err = "Upload failed: " + err.Error()
	}
}

func (u uploadModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Upload image"))
	b.WriteString("\n\n")
	for i := range u.inputs {
		b.WriteString(u.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := u.fieldErrs[fieldNames[i]]; ok {
			b.WriteString(styles.DangerText.Render("  " + msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	switch {
	case u.busy:
		b.WriteString(styles.WarningText.Render("Uploading..."))
	case u.err != "":
		b.WriteString(styles.DangerText.Render(u.err))
	default:
		b.WriteString(styles.FaintText.Render("tab next field · enter/ctrl+s submit · esc cancel"))
	}

	return placeModal(theme, width, height, 64, b.String())
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + strings.TrimPrefix(path, "~")
}
