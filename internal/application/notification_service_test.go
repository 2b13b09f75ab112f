package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/event-calendar/internal/application"
	"github.com/example/event-calendar/internal/testfixtures"
)

func newCalendar(t *testing.T, policy application.ReschedulePolicy) (*testfixtures.Calendar, *testfixtures.Clock, *testfixtures.Notifier) {
	t.Helper()
	factory := testfixtures.NewServiceFactory()
	notifier := testfixtures.NewNotifier()
	cal := factory.NewCalendar(testfixtures.CalendarDeps{Notifier: notifier, Policy: policy})
	t.Cleanup(cal.Scheduler.Close)
	return cal, factory.Clock, notifier
}

func createStandup(t *testing.T, cal *testfixtures.Calendar) application.Event {
	t.Helper()
	event, err := cal.Events.Create(context.Background(), application.Draft{
		Title:       "Standup",
		Description: "daily sync",
		Date:        "2024-01-10",
		Time:        "09:00",
	})
	if err != nil {
		t.Fatalf("create standup: %v", err)
	}
	return event
}

func at(hour, minute int) time.Time {
	return time.Date(2024, time.January, 10, hour, minute, 0, 0, time.UTC)
}

func expectCount(t *testing.T, what string, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected %d %s, got %d", want, what, got)
	}
}

func strPtr(v string) *string { return &v }

func TestStandupFiresAfterOneHour(t *testing.T) {
	cal, clock, notifier := newCalendar(t, application.PolicyReplace)
	event := createStandup(t, cal)

	pending := cal.Notifications.Pending()
	expectCount(t, "pending timers", len(pending), 1)
	if !pending[0].FireAt.Equal(clock.Now().Add(time.Hour)) {
		t.Fatalf("expected fire at %v, got %v", clock.Now().Add(time.Hour), pending[0].FireAt)
	}

	clock.Advance(59 * time.Minute)
	expectCount(t, "fired notifications", len(cal.Notifications.Fired()), 0)

	clock.Advance(time.Minute)
	fired := cal.Notifications.Fired()
	expectCount(t, "fired notifications", len(fired), 1)
	if fired[0].ID != event.ID || fired[0].Title != "Standup" || !fired[0].Time.Equal(at(9, 0)) {
		t.Fatalf("unexpected fired record %+v", fired[0])
	}

	payloads := notifier.Payloads()
	expectCount(t, "payloads", len(payloads), 1)
	if want := (application.Payload{Title: "Standup", Body: "daily sync", Tag: event.ID}); payloads[0] != want {
		t.Fatalf("expected payload %+v, got %+v", want, payloads[0])
	}
}

func TestPastEventsNeverNotify(t *testing.T) {
	cal, clock, notifier := newCalendar(t, application.PolicyReplace)

	for _, draft := range []application.Draft{
		{Title: "Past", Date: "2024-01-10", Time: "07:59"},
		{Title: "Now", Date: "2024-01-10", Time: "08:00"},
	} {
		if _, err := cal.Events.Create(context.Background(), draft); err != nil {
			t.Fatalf("create %s: %v", draft.Title, err)
		}
	}

	expectCount(t, "pending timers", len(cal.Notifications.Pending()), 0)
	clock.Advance(48 * time.Hour)
	expectCount(t, "fired notifications", len(cal.Notifications.Fired()), 0)
	expectCount(t, "payloads", len(notifier.Payloads()), 0)
}

func TestDefaultPolicyKeepsEarlierNotificationArmed(t *testing.T) {
	cal, clock, notifier := newCalendar(t, "")
	if got := cal.Notifications.Policy(); got != application.PolicyDuplicate {
		t.Fatalf("expected duplicate policy by default, got %q", got)
	}
	event := createStandup(t, cal)

	draft := application.DraftFromEvent(event)
	draft.Time = "10:00"
	if _, _, err := cal.Events.Submit(context.Background(), draft); err != nil {
		t.Fatalf("submit edit: %v", err)
	}

	clock.Advance(2 * time.Hour)
	payloads := notifier.Payloads()
	expectCount(t, "payloads", len(payloads), 2)
	if payloads[0].Title != "Standup" || payloads[1].Title != "Standup" {
		t.Fatalf("unexpected payloads %+v", payloads)
	}
}

func TestEditUnderDuplicatePolicyFiresTwice(t *testing.T) {
	cal, clock, notifier := newCalendar(t, application.PolicyDuplicate)
	event := createStandup(t, cal)

	draft := application.DraftFromEvent(event)
	draft.Time = "10:00"
	draft.Description = "moved"
	_, stored, err := cal.Events.Submit(context.Background(), draft)
	if err != nil || !stored {
		t.Fatalf("submit edit: stored=%v err=%v", stored, err)
	}
	expectCount(t, "pending timers", len(cal.Notifications.Pending()), 2)

	clock.Advance(time.Hour)
	payloads := notifier.Payloads()
	expectCount(t, "payloads", len(payloads), 1)
	if payloads[0].Body != "daily sync" {
		t.Fatalf("expected the 09:00 fire to carry the pre-edit snapshot, got %q", payloads[0].Body)
	}

	clock.Advance(time.Hour)
	payloads = notifier.Payloads()
	expectCount(t, "payloads", len(payloads), 2)
	if want := (application.Payload{Title: "Standup", Body: "moved", Tag: event.ID}); payloads[1] != want {
		t.Fatalf("expected payload %+v, got %+v", want, payloads[1])
	}

	fired := cal.Notifications.Fired()
	expectCount(t, "fired notifications", len(fired), 1)
	if !fired[0].Time.Equal(at(10, 0)) {
		t.Fatalf("expected the later fire to replace the earlier record, got %v", fired[0].Time)
	}
}

func TestPartialPatchUnderDuplicatePolicyArmsNothingNew(t *testing.T) {
	cal, _, _ := newCalendar(t, application.PolicyDuplicate)
	event := createStandup(t, cal)

	// The rescheduled snapshot is the patch alone, which has no date.
	_, found, err := cal.Events.Update(context.Background(), event.ID, application.Patch{Time: strPtr("10:00")})
	if err != nil || !found {
		t.Fatalf("update: found=%v err=%v", found, err)
	}

	pending := cal.Notifications.Pending()
	expectCount(t, "pending timers", len(pending), 1)
	if !pending[0].FireAt.Equal(at(9, 0)) {
		t.Fatalf("expected the 09:00 timer to remain, got %v", pending[0].FireAt)
	}
}

func TestEditUnderReplacePolicyFiresOnceWithCurrentData(t *testing.T) {
	cal, clock, notifier := newCalendar(t, application.PolicyReplace)
	event := createStandup(t, cal)

	if _, _, err := cal.Events.Update(context.Background(), event.ID, application.Patch{Time: strPtr("10:00")}); err != nil {
		t.Fatalf("update time: %v", err)
	}
	if _, _, err := cal.Events.Update(context.Background(), event.ID, application.Patch{Title: strPtr("Late standup")}); err != nil {
		t.Fatalf("update title: %v", err)
	}

	pending := cal.Notifications.Pending()
	expectCount(t, "pending timers", len(pending), 1)
	if !pending[0].FireAt.Equal(at(10, 0)) {
		t.Fatalf("expected re-armed timer at 10:00, got %v", pending[0].FireAt)
	}

	clock.Advance(time.Hour)
	expectCount(t, "payloads", len(notifier.Payloads()), 0)

	clock.Advance(time.Hour)
	payloads := notifier.Payloads()
	expectCount(t, "payloads", len(payloads), 1)
	if payloads[0].Title != "Late standup" || payloads[0].Body != "daily sync" {
		t.Fatalf("expected current event data, got %+v", payloads[0])
	}
}

func TestDeleteUnderReplacePolicyCancelsNotification(t *testing.T) {
	cal, clock, notifier := newCalendar(t, application.PolicyReplace)
	event := createStandup(t, cal)

	if err := cal.Events.Delete(context.Background(), event.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	expectCount(t, "pending timers", len(cal.Notifications.Pending()), 0)

	clock.Advance(2 * time.Hour)
	expectCount(t, "payloads", len(notifier.Payloads()), 0)
	expectCount(t, "fired notifications", len(cal.Notifications.Fired()), 0)
}

func TestDeleteUnderDuplicatePolicyKeepsStaleTimer(t *testing.T) {
	cal, clock, notifier := newCalendar(t, application.PolicyDuplicate)
	event := createStandup(t, cal)

	if err := cal.Events.Delete(context.Background(), event.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	clock.Advance(2 * time.Hour)

	payloads := notifier.Payloads()
	expectCount(t, "payloads", len(payloads), 1)
	if payloads[0].Title != "Standup" {
		t.Fatalf("expected the stale snapshot to fire, got %+v", payloads[0])
	}
}

func TestDeleteRemovesFiredNotifications(t *testing.T) {
	cal, clock, _ := newCalendar(t, application.PolicyReplace)
	event := createStandup(t, cal)
	other, err := cal.Events.Create(context.Background(), application.Draft{Title: "Retro", Date: "2024-01-10", Time: "09:30"})
	if err != nil {
		t.Fatalf("create retro: %v", err)
	}

	clock.Advance(2 * time.Hour)
	expectCount(t, "fired notifications", len(cal.Notifications.Fired()), 2)

	if err := cal.Events.Delete(context.Background(), event.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	fired := cal.Notifications.Fired()
	expectCount(t, "fired notifications", len(fired), 1)
	if fired[0].ID != other.ID {
		t.Fatalf("expected %s to remain, got %s", other.ID, fired[0].ID)
	}
}

func TestRevokedPermissionDropsSilently(t *testing.T) {
	cal, clock, notifier := newCalendar(t, application.PolicyReplace)
	createStandup(t, cal)

	notifier.SetGranted(false)
	clock.Advance(time.Hour)

	expectCount(t, "payloads", len(notifier.Payloads()), 0)
	expectCount(t, "fired notifications", len(cal.Notifications.Fired()), 0)
	expectCount(t, "pending timers after a dropped fire", len(cal.Notifications.Pending()), 0)

	notifier.SetGranted(true)
	clock.Advance(time.Hour)
	expectCount(t, "payloads", len(notifier.Payloads()), 0)
}

func TestNotifyFailureLeavesNoRecord(t *testing.T) {
	cal, clock, notifier := newCalendar(t, application.PolicyReplace)
	createStandup(t, cal)

	notifier.FailWith(errors.New("no display"))
	clock.Advance(time.Hour)
	expectCount(t, "fired notifications", len(cal.Notifications.Fired()), 0)
}

func TestSnooze(t *testing.T) {
	cal, clock, notifier := newCalendar(t, application.PolicyReplace)
	event := createStandup(t, cal)
	clock.Advance(time.Hour)
	expectCount(t, "fired notifications", len(cal.Notifications.Fired()), 1)

	due, err := cal.Notifications.Snooze(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("snooze: %v", err)
	}
	if want := clock.Now().Add(application.DefaultSnoozeDuration); !due.Equal(want) {
		t.Fatalf("expected snooze due at %v, got %v", want, due)
	}

	clock.Advance(4 * time.Minute)
	expectCount(t, "payloads", len(notifier.Payloads()), 1)

	clock.Advance(time.Minute)
	payloads := notifier.Payloads()
	expectCount(t, "payloads", len(payloads), 2)
	want := application.Payload{
		Title: "Reminder: Standup",
		Body:  "This is your snoozed reminder",
		Tag:   "snoozed-" + event.ID,
	}
	if payloads[1] != want {
		t.Fatalf("expected payload %+v, got %+v", want, payloads[1])
	}

	fired := cal.Notifications.Fired()
	expectCount(t, "fired notifications after snooze", len(fired), 1)
	if fired[0].ID != event.ID {
		t.Fatalf("expected the original record to stay, got %+v", fired[0])
	}
}

func TestSnoozeRechecksPermission(t *testing.T) {
	cal, clock, notifier := newCalendar(t, application.PolicyReplace)
	event := createStandup(t, cal)
	clock.Advance(time.Hour)

	if _, err := cal.Notifications.Snooze(context.Background(), event.ID); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	notifier.SetGranted(false)
	clock.Advance(10 * time.Minute)
	expectCount(t, "payloads", len(notifier.Payloads()), 1)
}

func TestSnoozeUnknownNotification(t *testing.T) {
	cal, _, _ := newCalendar(t, application.PolicyReplace)

	if _, err := cal.Notifications.Snooze(context.Background(), "missing"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnoozeDurationIsConfigurable(t *testing.T) {
	factory := testfixtures.NewServiceFactory()
	cal := factory.NewCalendar(testfixtures.CalendarDeps{Snooze: 30 * time.Second})
	t.Cleanup(cal.Scheduler.Close)
	event := createStandup(t, cal)
	factory.Clock.Advance(time.Hour)

	due, err := cal.Notifications.Snooze(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("snooze: %v", err)
	}
	if want := factory.Clock.Now().Add(30 * time.Second); !due.Equal(want) {
		t.Fatalf("expected snooze due at %v, got %v", want, due)
	}
}

func TestDismiss(t *testing.T) {
	cal, clock, _ := newCalendar(t, application.PolicyReplace)
	event := createStandup(t, cal)
	clock.Advance(time.Hour)

	if err := cal.Notifications.Dismiss(context.Background(), event.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	expectCount(t, "fired notifications", len(cal.Notifications.Fired()), 0)
	if err := cal.Notifications.Dismiss(context.Background(), event.ID); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second dismiss, got %v", err)
	}
}

func TestPrune(t *testing.T) {
	cal, clock, _ := newCalendar(t, application.PolicyReplace)
	createStandup(t, cal)
	if _, err := cal.Events.Create(context.Background(), application.Draft{Title: "Lunch", Date: "2024-01-10", Time: "12:00"}); err != nil {
		t.Fatalf("create lunch: %v", err)
	}

	clock.Set(at(13, 0))
	expectCount(t, "fired notifications", len(cal.Notifications.Fired()), 2)

	expectCount(t, "pruned with zero retention", cal.Notifications.Prune(context.Background(), 0), 0)
	expectCount(t, "pruned", cal.Notifications.Prune(context.Background(), 2*time.Hour), 1)

	fired := cal.Notifications.Fired()
	expectCount(t, "fired notifications", len(fired), 1)
	if fired[0].Title != "Lunch" {
		t.Fatalf("expected Lunch to remain, got %q", fired[0].Title)
	}
}

func TestUnknownPolicyFallsBackToDuplicate(t *testing.T) {
	cal, _, _ := newCalendar(t, application.ReschedulePolicy("bogus"))
	if got := cal.Notifications.Policy(); got != application.PolicyDuplicate {
		t.Fatalf("expected duplicate fallback, got %q", got)
	}
}
