package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/okian/raspa/internal/domain/eligibility"
	"github.com/okian/raspa/internal/domain/model"
	"github.com/okian/raspa/internal/domain/scratch"
	"github.com/okian/raspa/internal/domain/types"
)

// Session states.
const (
	// StateEligible means the card may still be scratched.
	StateEligible = "eligible"

	// StateBlocked means today's game is already complete; the session is
	// display-only and scratch input is ignored.
	StateBlocked = "blocked"

	// StateRevealed means the threshold was crossed this session and the
	// full card is shown.
	StateRevealed = "revealed"
)

// session is one logged-in game in progress. All mutation goes through
// the owning Service while mu is held.
type session struct {
	mu sync.Mutex

	token    string
	record   model.PlayRecord
	outcome  eligibility.Outcome
	sharedIP bool
	detector *scratch.Detector
	state    string
}

func newSession(dec eligibility.Decision, width, height int, opts ...scratch.Option) *session {
	s := &session{
		token:    uuid.NewString(),
		record:   dec.Record,
		outcome:  dec.Outcome,
		sharedIP: dec.SharedIP,
		detector: scratch.New(width, height, opts...),
		state:    StateEligible,
	}
	if dec.Outcome == eligibility.OutcomeBlocked {
		s.state = StateBlocked
	}
	return s
}

// viewLocked builds the external view. Callers hold mu.
func (s *session) viewLocked() types.SessionView {
	coverage := s.detector.Coverage()
	if s.state != StateEligible {
		// A finished card renders fully cleared.
		coverage = 100
	}
	return types.SessionView{
		Token:    s.token,
		State:    s.state,
		Outcome:  string(s.outcome),
		Coverage: coverage,
		SharedIP: s.sharedIP,
		Record: types.RecordView{
			Username:    s.record.Username,
			Agent:       s.record.Agent,
			Prize:       s.record.Prize,
			Date:        s.record.Date,
			IsScratched: s.record.IsScratched,
			IsClaimed:   s.record.IsClaimed,
		},
	}
}

func (s *session) view() types.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}
