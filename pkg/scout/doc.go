// Package scout implements peer discovery over mDNS: sessions
// announce themselves as zlink services, and a Scout browses for them
// and hands one Hello per discovered peer to a caller-supplied
// handler, filtered by peer role.
//
// Scouting is standalone: it does not need an open session.
package scout
