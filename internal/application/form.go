package application

import (
	"context"
	"errors"
	"fmt"
)

// FormState is the state of the event dialog.
type FormState int

const (
	FormClosed FormState = iota
	FormCreating
	FormEditing
)

func (s FormState) String() string {
	switch s {
	case FormCreating:
		return "open(create)"
	case FormEditing:
		return "open(edit)"
	default:
		return "closed"
	}
}

// ErrFormClosed is returned when an operation needs an open form.
var ErrFormClosed = errors.New("application: form is closed")

// Form drives one create/edit dialog over an EventService. A Form is not
// safe for concurrent use.
type Form struct {
	events *EventService
	state  FormState
	draft  Draft
}

// NewForm returns a closed form.
func NewForm(events *EventService) *Form {
	return &Form{events: events}
}

// State reports the current state.
func (f *Form) State() FormState {
	return f.state
}

// Draft returns a copy of the draft being edited.
func (f *Form) Draft() Draft {
	d := f.draft
	d.Attachments = cloneAttachments(f.draft.Attachments)
	return d
}

// OpenCreate opens the form for a new event on date.
func (f *Form) OpenCreate(date string) {
	f.state = FormCreating
	f.draft = Draft{Date: date}
}

// OpenEdit opens the form pre-filled with the event id.
func (f *Form) OpenEdit(ctx context.Context, id string) error {
	event, err := f.events.Get(ctx, id)
	if err != nil {
		return err
	}
	f.state = FormEditing
	f.draft = DraftFromEvent(event)
	return nil
}

// Edit applies fn to the draft of an open form. The draft id cannot be changed.
func (f *Form) Edit(fn func(*Draft)) error {
	if f.state == FormClosed {
		return ErrFormClosed
	}
	id := f.draft.ID
	fn(&f.draft)
	f.draft.ID = id
	return nil
}

// Cancel closes the form and discards the draft.
func (f *Form) Cancel() {
	f.reset()
}

// Submit stores the draft. A validation failure leaves the form open.
func (f *Form) Submit(ctx context.Context) (Event, error) {
	if f.state == FormClosed {
		return Event{}, ErrFormClosed
	}
	event, _, err := f.events.Submit(ctx, f.Draft())
	if err != nil {
		return Event{}, err
	}
	f.reset()
	return event, nil
}

// Delete removes the event being edited and closes the form.
func (f *Form) Delete(ctx context.Context) error {
	if f.state != FormEditing {
		return fmt.Errorf("delete from %s form: %w", f.state, ErrFormClosed)
	}
	if err := f.events.Delete(ctx, f.draft.ID); err != nil {
		return err
	}
	f.reset()
	return nil
}

func (f *Form) reset() {
	f.state = FormClosed
	f.draft = Draft{}
}
