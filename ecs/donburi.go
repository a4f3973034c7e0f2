package ecs

import (
	"github.com/phanxgames/aspen"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType carries aspen interaction events through a Donburi
// world. Systems subscribe to it to react to pointer, click, and drag
// input on entity-bound nodes.
var InteractionEventType = events.NewEventType[aspen.InteractionEvent]()

// Store adapts a Donburi world to aspen's EntityStore interface. Events
// handed to EmitEvent sit in InteractionEventType's queue until the world
// processes them.
type Store struct {
	world donburi.World
}

// NewDonburiStore wraps world for use with [aspen.Scene.SetEntityStore].
func NewDonburiStore(world donburi.World) *Store {
	return &Store{world: world}
}

// EmitEvent queues event on the world. Part of aspen.EntityStore.
func (s *Store) EmitEvent(event aspen.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// Subscribe registers fn for interaction events on world. It is shorthand
// for subscribing to InteractionEventType directly.
func Subscribe(world donburi.World, fn func(donburi.World, aspen.InteractionEvent)) {
	InteractionEventType.Subscribe(world, fn)
}

// Drain delivers every queued interaction event on world to its
// subscribers. Call it once per update tick.
func Drain(world donburi.World) {
	InteractionEventType.ProcessEvents(world)
}
