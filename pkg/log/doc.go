// Package log defines structured logging for the zlink façade.
//
// Sessions report lifecycle changes, submissions, deliveries,
// discovery results and callback failures as Events through a small
// Logger interface. Applications plug in the adapter matching their
// logging stack (slog or zerolog), combine several with MultiLogger,
// or implement Logger themselves; NoopLogger disables logging.
package log
