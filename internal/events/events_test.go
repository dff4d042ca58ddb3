package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewBus()

	var saved []Event
	bus.Subscribe(TypeScheduleSaved, func(e Event) {
		saved = append(saved, e)
	})
	bus.Subscribe(TypeScheduleSaved, func(e Event) {
		saved = append(saved, e)
	})

	bus.Publish(Event{
		Type:     TypeScheduleSaved,
		Schedule: ScheduleEvent{UserID: "user-1", Month: 6, Year: 2025},
	})

	assert.Len(t, saved, 2)
	assert.Equal(t, "user-1", saved[0].Schedule.UserID)
	assert.False(t, saved[0].CreatedAt.IsZero())
}

func TestPublishIgnoresOtherTypes(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe(TypeScheduleDeleted, func(Event) { called = true })

	bus.Publish(Event{Type: TypeScheduleSaved})
	assert.False(t, called)
}
