package domain

// GameOverReason explains why a game terminated
type GameOverReason string

const (
	ReasonFinished GameOverReason = "finished" // question set exhausted
	ReasonLastMan  GameOverReason = "last_man" // one active player left
	ReasonDraw     GameOverReason = "draw"     // every active player eliminated
)

// RoundOutcome summarizes one resolved round
type RoundOutcome struct {
	CorrectAnswer string
	Eliminated    []string // names, in join order
	Remaining     int
}

// CurrentQuestion returns the question for the current round
func (r *Room) CurrentQuestion() (Question, bool) {
	if r.RoundIndex < 0 || r.RoundIndex >= len(r.Questions) {
		return Question{}, false
	}
	return r.Questions[r.RoundIndex], true
}

// LastRound reports whether the current round is the final one
func (r *Room) LastRound() bool {
	return r.RoundIndex >= len(r.Questions)-1
}

// OpenRound opens the current round for answers: bumps the round token and
// clears every active player's per-round state. Returns the new token.
func (r *Room) OpenRound() uint64 {
	r.RoundToken++
	for _, p := range r.Players {
		p.ResetForRound()
	}
	return r.RoundToken
}

// RecordAnswer records a player's submission for the open round. Unknown,
// eliminated, and duplicate submitters are ignored; this is the idempotency
// boundary for retransmitted or late answers.
func (r *Room) RecordAnswer(sid, answer string) bool {
	p, ok := r.Players[sid]
	if !ok || p.Eliminated || p.Answered {
		return false
	}
	p.Answered = true
	p.Answer = answer
	return true
}

// AllAnswered reports whether every active player has answered this round
func (r *Room) AllAnswered() bool {
	active := r.ActiveCount()
	return active > 0 && r.AnsweredCount() >= active
}

// ResolveAnswers evaluates every active player's submission against the
// current question, awarding the fixed score for correct answers and
// eliminating the rest. Unanswered players count as wrong (the timeout case).
func (r *Room) ResolveAnswers(award int) RoundOutcome {
	q, ok := r.CurrentQuestion()
	if !ok {
		return RoundOutcome{Remaining: r.ActiveCount()}
	}

	outcome := RoundOutcome{CorrectAnswer: q.Answer}
	for _, sid := range r.order {
		p := r.Players[sid]
		if p == nil || p.Eliminated {
			continue
		}
		if p.Answered && IsCorrect(q, p.Answer) {
			p.Score += award
		} else {
			p.Eliminated = true
			outcome.Eliminated = append(outcome.Eliminated, p.Name)
		}
	}
	outcome.Remaining = r.ActiveCount()
	return outcome
}

// Termination decides whether the game ends after a resolved round, applying
// the checks in order: last man standing (multi-player rooms only), draw,
// question set exhausted. A lone host playing solo is never a "last man".
func (r *Room) Termination(remaining int) (GameOverReason, bool) {
	switch {
	case remaining == 1 && len(r.Players) > 1:
		return ReasonLastMan, true
	case remaining == 0:
		return ReasonDraw, true
	case r.LastRound():
		return ReasonFinished, true
	}
	return "", false
}

// Winner returns the sole surviving player, if exactly one remains
func (r *Room) Winner() (*Player, bool) {
	var winner *Player
	for _, sid := range r.order {
		if p := r.Players[sid]; p != nil && p.Active() {
			if winner != nil {
				return nil, false
			}
			winner = p
		}
	}
	return winner, winner != nil
}
