// Package ecs connects aspen's interaction events to entity component
// systems built on [Donburi].
//
// Attach a store to a scene and pointer, click, and drag events on
// entity-bound nodes flow into the world as typed events:
//
//	world := donburi.NewWorld()
//	scene.SetEntityStore(ecs.NewDonburiStore(world))
//	ecs.Subscribe(world, onInteraction)
//
// Queued events reach subscribers when the world processes them, typically
// once per update tick via [Drain].
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
