package quiz

// Score tracks quiz performance across one session. It only moves
// forward; starting a new game replaces it with the zero value.
type Score struct {
	Correct int
	Total   int
	Streak  int
}

// Grade returns the score after one guess. A hit extends the streak, a
// miss resets it; the total always advances.
func (s Score) Grade(correct bool) Score {
	s.Total++
	if correct {
		s.Correct++
		s.Streak++
	} else {
		s.Streak = 0
	}
	return s
}
