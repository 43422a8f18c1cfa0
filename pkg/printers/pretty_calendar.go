package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/planner/pkg/task"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Calendar prints the month grid for on, highlighting days with tasks due,
// followed by the tasks of that month in date order.
func (pp *PrettyPrint) Calendar(on time.Time, tasks ...task.Task) {
	then := time.Date(on.Year(), on.Month(), 1, 0, 0, 0, 0, time.Local)
	count := make([]int, DaysIn(then))
	var inMonth []task.Task
	for _, t := range tasks {
		if t.DueAt == nil {
			continue
		}
		due := t.DueAt.Local()
		if due.Year() == then.Year() && due.Month() == then.Month() {
			count[due.Day()-1]++
			inMonth = append(inMonth, t)
		}
	}
	pp.PrintMonthCount(then, count)
	pp.printDue(then, inMonth)
}

// PrintMonthCount prints a Sunday-first month grid; days with a non-zero
// count are bold.
func (pp *PrettyPrint) PrintMonthCount(then time.Time, count []int) {
	out := pp.out()
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)
	m := then.Format("January 2006")
	mid := max((width-len(m))/2, 0)
	_, _ = tf.Fprintf(out, "%s%s\n", strings.Repeat(" ", mid), m)
	_, _ = color.New(color.Faint).Fprintln(out, "Su Mo Tu We Th Fr Sa")

	_, _ = fmt.Fprint(out, strings.Repeat("   ", int(d)))

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)
	today := time.Now()

	days := DaysIn(then)
	for i := 0; i < days; i++ {
		p := l1
		if i < len(count) && count[i] > 0 {
			p = l2
		}
		if today.Year() == then.Year() && today.Month() == then.Month() && today.Day() == i+1 {
			p = color.New(color.Bold, color.Underline)
		}
		_, _ = p.Fprintf(out, "%2d ", i+1)

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(out, "\n")
		}
	}
	_, _ = fmt.Fprint(out, "\n\n")
}

func (pp *PrettyPrint) printDue(then time.Time, tasks []task.Task) {
	if len(tasks) == 0 {
		return
	}
	out := pp.out()
	s := color.New(color.Underline)
	for day := 1; day <= DaysIn(then); day++ {
		date := time.Date(then.Year(), then.Month(), day, 0, 0, 0, 0, time.Local)
		first := true
		for _, t := range tasks {
			if !t.DueOn(date) {
				continue
			}
			if first {
				_, _ = s.Fprintf(out, "%2d %s\n", day, date.Weekday().String()[0:3])
				first = false
			}
			_, _ = fmt.Fprintf(out, "   %s %s\n", StatusBadge(t.Status), t.Title)
		}
	}
	pp.NewLine()
}

func NextMonth(then time.Time) time.Time {
	return time.Date(then.Year(), then.Month()+1, 1, 0, 0, 0, 0, then.Location())
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 0, 0, 0, 0, time.UTC).Weekday()
}
