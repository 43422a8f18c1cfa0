package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"tableflip.dev/planner/pkg/interpretation"
	"tableflip.dev/planner/pkg/task"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// confirm asks a yes/no question. Anything but y is a no.
func confirm(cmd *cobra.Command, label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    nopWriteCloser{cmd.OutOrStdout()},
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func pickTask(cmd *cobra.Command, label string, tasks []task.Task) (task.Task, error) {
	if len(tasks) == 0 {
		return task.Task{}, errors.New("no tasks to choose from")
	}
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "➜  {{ .Title | bold }} {{ .Status | green }}",
		Inactive: "   {{ .Title }} {{ .Status | cyan }}",
		Selected: "{{ .Title | bold }}",
	}
	searcher := func(input string, index int) bool {
		title := strings.ReplaceAll(strings.ToLower(tasks[index].Title), " ", "")
		input = strings.ReplaceAll(strings.ToLower(input), " ", "")
		return strings.Contains(title, input)
	}
	prompt := promptui.Select{
		HideHelp:  true,
		Label:     label,
		Items:     tasks,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    nopWriteCloser{cmd.OutOrStdout()},
	}
	i, _, err := prompt.Run()
	if err != nil {
		return task.Task{}, err
	}
	return tasks[i], nil
}

func pickStatus(cmd *cobra.Command, current task.Status) (task.Status, error) {
	statuses := task.AllStatuses()
	labels := make([]string, len(statuses))
	cursor := 0
	for i, s := range statuses {
		labels[i] = s.Label()
		if s == current {
			cursor = i
		}
	}
	prompt := promptui.Select{
		HideHelp:  true,
		Label:     "Status",
		Items:     labels,
		CursorPos: cursor,
		Stdin:     io.NopCloser(cmd.InOrStdin()),
		Stdout:    nopWriteCloser{cmd.OutOrStdout()},
	}
	i, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return statuses[i], nil
}

type itemChoice struct {
	ID    string
	Title string
	State string
}

func pickItem(cmd *cobra.Command, items []interpretation.Item) (interpretation.Item, error) {
	var pending []interpretation.Item
	var choices []itemChoice
	for _, it := range items {
		if !it.Editable() {
			continue
		}
		pending = append(pending, it)
		choices = append(choices, itemChoice{ID: it.ID, Title: it.Data.Title(), State: string(it.Status)})
	}
	if len(pending) == 0 {
		return interpretation.Item{}, errors.New("no pending suggestions")
	}
	prompt := promptui.Select{
		HideHelp: true,
		Label:    "Suggestion",
		Items:    choices,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}?",
			Active:   "➜  {{ .Title | bold }}",
			Inactive: "   {{ .Title }}",
			Selected: "{{ .Title | bold }}",
		},
		Stdin:  io.NopCloser(cmd.InOrStdin()),
		Stdout: nopWriteCloser{cmd.OutOrStdout()},
	}
	i, _, err := prompt.Run()
	if err != nil {
		return interpretation.Item{}, fmt.Errorf("select suggestion: %w", err)
	}
	return pending[i], nil
}

// promptText asks for a line of text, starting from def.
func promptText(cmd *cobra.Command, label, def string, required bool) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Templates: &promptui.PromptTemplates{
			Prompt:  "{{ . | bold }}: ",
			Valid:   "{{ . | green }}: ",
			Invalid: "{{ . | red }}: ",
			Success: "{{ . | faint }}: ",
		},
		Stdin:  io.NopCloser(cmd.InOrStdin()),
		Stdout: nopWriteCloser{cmd.OutOrStdout()},
	}
	if required {
		prompt.Validate = func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("required")
			}
			return nil
		}
	}
	return prompt.Run()
}
