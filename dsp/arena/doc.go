// Package arena owns every buffer the engine touches on the audio path.
//
// All regions are allocated once by New with fixed capacities; Init and the
// load notifications only change recorded lengths and flags. Effect engines
// hold slice views into the arena and never copy its contents.
//
// Contract violations (reading an I/O region before Init, an out-of-range
// channel) return nil. Builds with the dspassert tag panic instead.
package arena
