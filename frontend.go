// frontend.go - the contract a front-end uses to drive a System

package main

import "log"

// FrontendInterface is passed to every registered frontend function so it
// can request a ROM path, log a message, or restart the system with new
// ROM data loaded.
type FrontendInterface struct {
	System *System
	Logger *log.Logger

	openFileDialog func() string
	restart        func(func())
}

// NewFrontendInterface binds a System to the dialog/restart callbacks a
// concrete front-end supplies.
func NewFrontendInterface(sys *System, logger *log.Logger, openFileDialog func() string, restart func(func())) *FrontendInterface {
	return &FrontendInterface{System: sys, Logger: logger, openFileDialog: openFileDialog, restart: restart}
}

// OpenFileDialog returns a ROM path, however the front-end chooses to obtain
// one (a positional CLI argument for the reference terminal front-end).
func (f *FrontendInterface) OpenFileDialog() string {
	if f.openFileDialog == nil {
		return ""
	}
	return f.openFileDialog()
}

// Log writes a message through the front-end's logger.
func (f *FrontendInterface) Log(msg string) {
	if f.Logger != nil {
		f.Logger.Print(msg)
	}
}

// RestartSystem halts the system goroutine, runs fn (which typically loads a
// new ROM and resets components), then resumes.
func (f *FrontendInterface) RestartSystem(fn func()) {
	if f.restart != nil {
		f.restart(fn)
		return
	}
	f.System.PowerOff()
	fn()
	f.System.PowerOn()
}
