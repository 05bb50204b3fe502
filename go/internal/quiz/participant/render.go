package participant

import (
	"fmt"
	"io"

	"github.com/brainup-app/brainup/go/internal/quiz/round"
)

// RenderScreen writes a text rendering of the participant screen.
func RenderScreen(w io.Writer, snap ScreenSnapshot) {
	switch snap.Round.Phase {
	case round.PhaseWaiting:
		fmt.Fprintf(w, "[%s] Waiting for the next question...\n", snap.StreamState)

	case round.PhaseActive:
		q := snap.Round.Question
		fmt.Fprintf(w, "Question %d: %s   (%ds left)\n", q.ID, q.Text, snap.Round.TimeLeft)
		for i, alt := range q.Alternatives {
			marker := " "
			if snap.Round.Selected != nil && *snap.Round.Selected == i {
				marker = ">"
			}
			fmt.Fprintf(w, " %s %c) %s\n", marker, 'A'+i, alt)
		}

	case round.PhaseAnswered, round.PhaseExpired, round.PhaseResultShown:
		renderResult(w, snap.Round)
	}
}

func renderResult(w io.Writer, snap round.Snapshot) {
	switch snap.Outcome {
	case round.OutcomeCorrect:
		fmt.Fprintln(w, "Correct! Well done.")
	case round.OutcomeIncorrect:
		q := snap.Question
		if q != nil && q.CorrectAnswer != nil {
			idx := *q.CorrectAnswer
			fmt.Fprintf(w, "Incorrect. The right answer was %c) %s\n", 'A'+idx, q.Alternatives[idx])
		} else {
			fmt.Fprintln(w, "Incorrect.")
		}
	case round.OutcomeExpired:
		fmt.Fprintln(w, "Time's up! No answer was submitted.")
	case round.OutcomeAnswered:
		fmt.Fprintln(w, "Answer recorded.")
	}
	fmt.Fprintln(w, "Press 'n' to wait for the next question.")
}
