package personalization

import (
	"context"
	"errors"
	"fmt"
)

const (
	Closed WizardState = iota
	SelectingKind
	EditingGoal
	EditingAlert
)

var ErrInvalidTransition = errors.New("invalid wizard transition")

// WizardState is the step of the "add widget" settings flow.
type WizardState int

func (s WizardState) String() string {
	switch s {
	case Closed:
		return "closed"
	case SelectingKind:
		return "selecting_kind"
	case EditingGoal:
		return "editing_goal"
	case EditingAlert:
		return "editing_alert"
	default:
		return fmt.Sprintf("WizardState(%d)", int(s))
	}
}

// Wizard tracks the settings flow and its draft fields. The zero value is a
// closed wizard. Whenever it closes, every draft field is reset.
type Wizard struct {
	state WizardState

	Goal  GoalDraft
	Alert AlertDraft
}

func (w *Wizard) State() WizardState {
	return w.state
}

// Open moves Closed -> SelectingKind.
func (w *Wizard) Open() error {
	return w.transition(Closed, SelectingKind)
}

// PickGoal moves SelectingKind -> EditingGoal.
func (w *Wizard) PickGoal() error {
	return w.transition(SelectingKind, EditingGoal)
}

// PickAlert moves SelectingKind -> EditingAlert.
func (w *Wizard) PickAlert() error {
	return w.transition(SelectingKind, EditingAlert)
}

// Back returns from either editing step to SelectingKind. Drafts are kept.
func (w *Wizard) Back() error {
	if w.state != EditingGoal && w.state != EditingAlert {
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, w.state)
	}
	w.state = SelectingKind
	return nil
}

// Cancel closes the wizard from any state.
func (w *Wizard) Cancel() {
	w.close()
}

// Submit saves the current draft through the engine and closes the wizard.
// When the engine rejects the draft the wizard stays on the editing step.
func (w *Wizard) Submit(ctx context.Context, e *Engine) error {
	switch w.state {
	case EditingGoal:
		if _, err := e.CreateGoal(ctx, w.Goal); err != nil {
			return err
		}
	case EditingAlert:
		if _, err := e.UpsertAlert(ctx, w.Alert); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, w.state)
	}
	w.close()
	return nil
}

func (w *Wizard) transition(from, to WizardState) error {
	if w.state != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.state, to)
	}
	w.state = to
	return nil
}

func (w *Wizard) close() {
	*w = Wizard{}
}
