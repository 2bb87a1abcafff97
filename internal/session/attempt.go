// Package session owns the lifecycle of one student's in-progress assignment
// attempt: per-question answer drafts, navigation, the countdown, and the
// exactly-once terminal submission. State lives only in memory; a lost session
// discards all drafts.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/CSCORE-2025/cscore-web/internal/langdetect"
	"github.com/CSCORE-2025/cscore-web/internal/models"
)

type State string

const (
	StateEditing    State = "EDITING"
	StateSubmitting State = "SUBMITTING"
	StateSubmitted  State = "SUBMITTED"
	StateFailed     State = "FAILED"
)

// AnswerDraft is the locally held, unsaved response to one question. FreeText
// is used by programming/essay questions, SelectedOptionIDs by choice types.
type AnswerDraft struct {
	FreeText          string  `json:"answer"`
	SelectedOptionIDs []int64 `json:"selectedOptionIds"`
}

// Answered reports whether the draft carries any content.
func (d AnswerDraft) Answered() bool {
	return d.FreeText != "" || len(d.SelectedOptionIDs) > 0
}

// SubmitGateway is the slice of the assignment gateway the attempt needs for
// its terminal submission.
type SubmitGateway interface {
	Submit(ctx context.Context, token string, req *models.SubmissionRequest) (*models.SubmissionReceipt, error)
}

// Hooks are invoked after terminal submission transitions, outside the
// attempt lock. All fields are optional.
type Hooks struct {
	OnSubmitted    func(a *Attempt, autoTriggered bool, receipt *models.SubmissionReceipt)
	OnSubmitFailed func(a *Attempt, autoTriggered bool, err error)
}

// Config assembles a new attempt. Assignment must have at least one question;
// zero-question assignments are handled before a session is created.
type Config struct {
	ID            string
	StudentID     string
	Token         string
	Course        models.CourseSummary
	Assignment    *models.AssignmentDefinition
	Gateway       SubmitGateway
	SubmitTimeout time.Duration
	Hooks         Hooks
}

// Attempt is the state container for one attempt session. All mutations are
// guarded by the mutex; the browser's single event loop does not exist here,
// so the state check under lock is what makes submission exactly-once between
// the ticker goroutine and a manual submit racing it.
type Attempt struct {
	mu sync.Mutex

	id        string
	studentID string
	token     string

	course     models.CourseSummary
	assignment *models.AssignmentDefinition

	answers      map[int64]*AnswerDraft
	currentIndex int

	timed    bool
	timeLeft int // seconds remaining, meaningful only when timed

	state   State
	lastErr error
	receipt *models.SubmissionReceipt

	gateway       SubmitGateway
	submitTimeout time.Duration
	hooks         Hooks
}

// New builds an attempt and eagerly creates one draft per question,
// pre-populated with any previously saved answer so a draft can be resumed.
func New(cfg Config) *Attempt {
	a := &Attempt{
		id:            cfg.ID,
		studentID:     cfg.StudentID,
		token:         cfg.Token,
		course:        cfg.Course,
		assignment:    cfg.Assignment,
		answers:       make(map[int64]*AnswerDraft, len(cfg.Assignment.Questions)),
		state:         StateEditing,
		gateway:       cfg.Gateway,
		submitTimeout: cfg.SubmitTimeout,
		hooks:         cfg.Hooks,
	}

	for _, q := range cfg.Assignment.Questions {
		a.answers[q.ID] = &AnswerDraft{
			FreeText:          q.UserAnswer,
			SelectedOptionIDs: append([]int64(nil), q.SelectedOptionIDs...),
		}
	}

	if cfg.Assignment.TimeLimit > 0 {
		a.timed = true
		a.timeLeft = cfg.Assignment.TimeLimit * 60
	}

	return a
}

func (a *Attempt) ID() string        { return a.id }
func (a *Attempt) StudentID() string { return a.studentID }

func (a *Attempt) Timed() bool { return a.timed }

// TimeRemaining returns the seconds left and whether the attempt is timed.
func (a *Attempt) TimeRemaining() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timeLeft, a.timed
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Finished reports whether the attempt reached its terminal state.
func (a *Attempt) Finished() bool {
	return a.State() == StateSubmitted
}

// SetAnswer replaces the free-text draft for a question. Out-of-range ids are
// a programming error surfaced as ErrUnknownQuestion, not silently ignored.
func (a *Attempt) SetAnswer(questionID int64, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ensureEditableLocked(); err != nil {
		return err
	}
	d, ok := a.answers[questionID]
	if !ok {
		return ErrUnknownQuestion
	}
	d.FreeText = text
	return nil
}

// ToggleOption updates the selection set for a choice question. Single-select
// collapses the set to exactly the given option (radio semantics); multi-select
// adds the option if absent and removes it if present (checkbox semantics).
func (a *Attempt) ToggleOption(questionID, optionID int64, multiSelect bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ensureEditableLocked(); err != nil {
		return err
	}
	d, ok := a.answers[questionID]
	if !ok {
		return ErrUnknownQuestion
	}

	if !multiSelect {
		d.SelectedOptionIDs = []int64{optionID}
		return nil
	}

	for i, id := range d.SelectedOptionIDs {
		if id == optionID {
			d.SelectedOptionIDs = append(d.SelectedOptionIDs[:i], d.SelectedOptionIDs[i+1:]...)
			return nil
		}
	}
	d.SelectedOptionIDs = append(d.SelectedOptionIDs, optionID)
	return nil
}

// Navigate moves the current question index by delta, clamped to the valid
// range. It never wraps and never fails.
func (a *Attempt) Navigate(delta int) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := a.currentIndex + delta
	if idx < 0 {
		idx = 0
	}
	if max := len(a.assignment.Questions) - 1; idx > max {
		idx = max
	}
	a.currentIndex = idx
	return idx
}

func (a *Attempt) CurrentIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentIndex
}

// Tick advances the countdown by one second. When the countdown reaches zero
// it triggers the auto submission exactly once and reports false; once the
// attempt left the editing state further ticks are no-ops.
func (a *Attempt) Tick(ctx context.Context) bool {
	a.mu.Lock()
	if !a.timed || a.state != StateEditing {
		a.mu.Unlock()
		return false
	}
	if a.timeLeft > 0 {
		a.timeLeft--
	}
	expired := a.timeLeft <= 0
	a.mu.Unlock()

	if !expired {
		return true
	}

	// Time is up: submit without confirmation. The state guard in Submit
	// keeps a racing manual click from submitting twice.
	a.Submit(ctx, true) //nolint:errcheck // failure is captured as attempt state
	return false
}

// Submit performs the terminal submission. Calls while a submission is in
// flight or after the attempt was submitted are no-ops. A failed submission
// surfaces the gateway error verbatim and leaves the attempt retryable.
func (a *Attempt) Submit(ctx context.Context, autoTriggered bool) (*models.SubmissionReceipt, error) {
	a.mu.Lock()
	if a.state == StateSubmitting || a.state == StateSubmitted {
		receipt := a.receipt
		a.mu.Unlock()
		return receipt, nil
	}

	payload, err := a.buildPayloadLocked()
	if err != nil {
		a.state = StateEditing
		a.mu.Unlock()
		return nil, err
	}
	a.state = StateSubmitting
	a.lastErr = nil
	a.mu.Unlock()

	if a.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.submitTimeout)
		defer cancel()
	}

	receipt, err := a.gateway.Submit(ctx, a.token, payload)

	a.mu.Lock()
	if err != nil {
		a.state = StateFailed
		a.lastErr = err
		a.mu.Unlock()
		if a.hooks.OnSubmitFailed != nil {
			a.hooks.OnSubmitFailed(a, autoTriggered, err)
		}
		return nil, err
	}
	a.state = StateSubmitted
	a.receipt = receipt
	a.mu.Unlock()

	if a.hooks.OnSubmitted != nil {
		a.hooks.OnSubmitted(a, autoTriggered, receipt)
	}
	return receipt, nil
}

// LastError returns the error captured by the most recent failed submission.
func (a *Attempt) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// ensureEditableLocked gates mutations: terminal and in-flight states reject
// them, and touching a failed attempt brings it back to editing (the only
// backward edge in the state machine).
func (a *Attempt) ensureEditableLocked() error {
	switch a.state {
	case StateSubmitted:
		return ErrAttemptFinished
	case StateSubmitting:
		return ErrSubmitInProgress
	case StateFailed:
		a.state = StateEditing
	}
	return nil
}

// buildPayloadLocked partitions the drafts into the wire payload. Programming
// assignments submit only non-empty code answers, each tagged with a detected
// language; anything else submits every question as-is, answered or not.
func (a *Attempt) buildPayloadLocked() (*models.SubmissionRequest, error) {
	req := &models.SubmissionRequest{AssignmentID: a.assignment.ID}

	if a.assignment.HasProgramming() {
		for _, q := range a.assignment.Questions {
			if q.Type != models.QuestionProgramming {
				continue
			}
			code := a.answers[q.ID].FreeText
			if strings.TrimSpace(code) == "" {
				continue
			}
			req.Answers = append(req.Answers, models.AnswerSubmission{
				QuestionID: q.ID,
				Answer:     code,
				Language:   string(langdetect.Detect(code)),
			})
		}
		if len(req.Answers) == 0 {
			return nil, ErrEmptySubmission
		}
		return req, nil
	}

	for _, q := range a.assignment.Questions {
		d := a.answers[q.ID]
		req.Answers = append(req.Answers, models.AnswerSubmission{
			QuestionID:        q.ID,
			Answer:            d.FreeText,
			SelectedOptionIDs: append([]int64(nil), d.SelectedOptionIDs...),
		})
	}
	return req, nil
}

// Snapshot is a consistent read-only copy of the attempt for building views.
type Snapshot struct {
	ID           string
	StudentID    string
	Course       models.CourseSummary
	Assignment   *models.AssignmentDefinition
	Answers      map[int64]AnswerDraft
	CurrentIndex int
	Timed        bool
	TimeLeft     int
	State        State
	LastError    error
	Receipt      *models.SubmissionReceipt
}

func (s Snapshot) AnsweredCount() int {
	n := 0
	for _, d := range s.Answers {
		if d.Answered() {
			n++
		}
	}
	return n
}

func (a *Attempt) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	answers := make(map[int64]AnswerDraft, len(a.answers))
	for id, d := range a.answers {
		answers[id] = AnswerDraft{
			FreeText:          d.FreeText,
			SelectedOptionIDs: append([]int64(nil), d.SelectedOptionIDs...),
		}
	}

	return Snapshot{
		ID:           a.id,
		StudentID:    a.studentID,
		Course:       a.course,
		Assignment:   a.assignment,
		Answers:      answers,
		CurrentIndex: a.currentIndex,
		Timed:        a.timed,
		TimeLeft:     a.timeLeft,
		State:        a.state,
		LastError:    a.lastErr,
		Receipt:      a.receipt,
	}
}
