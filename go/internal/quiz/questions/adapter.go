package questions

import (
	"encoding/json"
	"fmt"
)

// The question endpoints have drifted across server versions: the prompt may
// arrive as "text" or "question", alternatives as plain strings or as
// {text, correct} objects, and the key as an explicit index or as a flag on
// the correct alternative. Normalize maps any of those onto the fixed
// Question schema so none of the shape-sniffing leaks past this file.

type questionDTO struct {
	ID            *int             `json:"id"`
	Text          string           `json:"text"`
	Question      string           `json:"question"`
	Alternatives  []alternativeDTO `json:"alternatives"`
	CorrectAnswer *int             `json:"correctAnswer"`
}

type alternativeDTO struct {
	Text    string
	Correct bool
}

func (a *alternativeDTO) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Text = s
		return nil
	}
	var obj struct {
		Text    string `json:"text"`
		Correct bool   `json:"correct"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("alternative is neither string nor object: %w", err)
	}
	a.Text = obj.Text
	a.Correct = obj.Correct
	return nil
}

// Normalize decodes a raw question DTO for sequence position n.
func Normalize(raw []byte, n int) (Question, error) {
	var dto questionDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return Question{}, fmt.Errorf("decode question %d: %w", n, err)
	}

	q := Question{ID: n}
	if dto.ID != nil {
		q.ID = *dto.ID
	}

	switch {
	case dto.Text != "":
		q.Text = dto.Text
	case dto.Question != "":
		q.Text = dto.Question
	default:
		q.Text = fmt.Sprintf("Question %d", n)
	}

	for _, alt := range dto.Alternatives {
		q.Alternatives = append(q.Alternatives, alt.Text)
	}

	// An explicit key pointing outside the alternatives is another drifted
	// shape; treat it as absent rather than carry an index nobody can render.
	if dto.CorrectAnswer != nil && *dto.CorrectAnswer >= 0 && *dto.CorrectAnswer < len(dto.Alternatives) {
		q.CorrectAnswer = dto.CorrectAnswer
	} else {
		for i, alt := range dto.Alternatives {
			if alt.Correct {
				idx := i
				q.CorrectAnswer = &idx
				break
			}
		}
	}

	return q, nil
}
