package questions

// Question is the fixed client-side schema every server shape is normalized
// into. Alternatives are immutable for the lifetime of a round once set.
// CorrectAnswer may be nil: the server is free to withhold the answer key
// until the round ends.
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"text"`
	Alternatives  []string `json:"alternatives"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
}

// HasKey reports whether the answer key is known.
func (q Question) HasKey() bool {
	return q.CorrectAnswer != nil
}
