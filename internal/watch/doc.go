// Package watch keeps figure directories under observation and hands every
// saved file to a handler.
//
// The set of watched directories comes from the roots registry. The
// registry file itself is watched too: when it changes, all watches are
// released and re-established from its current content. Two interchangeable
// backends deliver file events: an event-driven one built on fsnotify and a
// line-oriented one that reads paths printed by an external fswatch process.
package watch
