// Package rlog is a thin, component-tagged wrapper over the standard
// library's log package. The teacher calls log.Printf/log.Fatalf
// directly, scattered per package (cmd/sentra/main.go, among others);
// this generalizes that into one logger every package routes diagnostics
// through, tagged by the component that emitted them.
package rlog

import "log"

// Infof logs a component-tagged informational message.
func Infof(component, format string, args ...any) {
	log.Printf("["+component+"] "+format, args...)
}

// Errorf logs a component-tagged error message. It does not exit the
// process -- callers that need a fatal log use Fatalf.
func Errorf(component, format string, args ...any) {
	log.Printf("["+component+"] ERROR: "+format, args...)
}

// Fatalf logs a component-tagged message and terminates the process, the
// same role as the teacher's bare log.Fatalf calls in cmd/sentra/main.go.
func Fatalf(component, format string, args ...any) {
	log.Fatalf("["+component+"] "+format, args...)
}
