// Package timewindow implements the calendar arithmetic at the core of the
// task view system: converting an absolute instant into the date boundaries
// a specific user observes in their IANA timezone. All functions are pure;
// callers sample the clock once and pass the instant in, so every derived
// field of a snapshot comes from the same reading.
package timewindow
