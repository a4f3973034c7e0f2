package ecs

import (
	"testing"

	"github.com/phanxgames/aspen"
	"github.com/yohamta/donburi"
)

var _ aspen.EntityStore = (*Store)(nil)

func TestEmitEventDelivers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var got []aspen.InteractionEvent
	Subscribe(world, func(w donburi.World, e aspen.InteractionEvent) {
		got = append(got, e)
	})

	store.EmitEvent(aspen.InteractionEvent{
		Type:     aspen.EventPointerDown,
		EntityID: 7,
		GlobalX:  320,
		GlobalY:  180,
		Button:   aspen.MouseButtonLeft,
	})
	store.EmitEvent(aspen.InteractionEvent{
		Type:     aspen.EventDrag,
		EntityID: 7,
		StartX:   320,
		StartY:   180,
		DeltaX:   15,
		DeltaY:   -4,
	})

	// Publish only queues; nothing lands before the drain.
	if len(got) != 0 {
		t.Fatalf("%d events delivered before Drain", len(got))
	}
	Drain(world)

	if n := len(got); n != 2 {
		t.Fatalf("got %d events after Drain, want 2", n)
	}
	down, drag := got[0], got[1]
	if down.Type != aspen.EventPointerDown || down.EntityID != 7 {
		t.Errorf("first event: %+v", down)
	}
	if down.GlobalX != 320 || down.GlobalY != 180 {
		t.Errorf("first event position: (%v,%v)", down.GlobalX, down.GlobalY)
	}
	if drag.Type != aspen.EventDrag || drag.DeltaX != 15 || drag.DeltaY != -4 {
		t.Errorf("second event: %+v", drag)
	}
	if drag.StartX != 320 || drag.StartY != 180 {
		t.Errorf("second event drag start: (%v,%v)", drag.StartX, drag.StartY)
	}
}

func TestEveryWorldSubscriberRuns(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var first, second int
	Subscribe(world, func(donburi.World, aspen.InteractionEvent) { first++ })
	Subscribe(world, func(donburi.World, aspen.InteractionEvent) { second++ })

	store.EmitEvent(aspen.InteractionEvent{Type: aspen.EventClick})
	Drain(world)

	if first != 1 || second != 1 {
		t.Errorf("subscriber calls = %d and %d, want 1 and 1", first, second)
	}
}

func TestWorldsQueueIndependently(t *testing.T) {
	worldA := donburi.NewWorld()
	worldB := donburi.NewWorld()
	storeA := NewDonburiStore(worldA)
	storeB := NewDonburiStore(worldB)

	var seenA, seenB int
	Subscribe(worldA, func(donburi.World, aspen.InteractionEvent) { seenA++ })
	Subscribe(worldB, func(donburi.World, aspen.InteractionEvent) { seenB++ })

	storeA.EmitEvent(aspen.InteractionEvent{Type: aspen.EventPointerUp})
	storeB.EmitEvent(aspen.InteractionEvent{Type: aspen.EventPointerUp})
	Drain(worldA)

	if seenA != 1 {
		t.Errorf("world A saw %d events, want 1", seenA)
	}
	if seenB != 0 {
		t.Errorf("world B saw %d events before its own drain, want 0", seenB)
	}
	Drain(worldB)
	if seenB != 1 {
		t.Errorf("world B saw %d events after drain, want 1", seenB)
	}
}
