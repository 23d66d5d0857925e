// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logx is the small structured-logging facade every other
// package in this module writes diagnostics through: a thin wrapper
// around the standard library's log.Logger that tags every line with a
// component name, matching the terse "component: message" style the
// teacher's own diagnostic printf calls use (alignsl.CheckStruct,
// process.go's build-step progress lines) without inventing a bespoke
// logging format for this repo.
package logx

import (
	"io"
	"log"
	"os"
)

// Level selects how loudly a Logger reports.
type Level int

const (
	LevelWarn Level = iota
	LevelInfo
	LevelDebug
)

// Logger is a component-tagged logger. The zero value is not usable;
// construct one with New.
type Logger struct {
	component string
	level     Level
	l         *log.Logger
}

// New returns a Logger tagging every line with component, writing to w
// with no log flags set (no date/time prefix, since generator output is
// normally piped through another tool rather than read as a live log).
func New(component string, w io.Writer, level Level) *Logger {
	return &Logger{component: component, level: level, l: log.New(w, "", 0)}
}

// Default returns a Logger writing to stderr at LevelWarn, the
// configuration every package in this module falls back to when the
// caller hasn't wired one in explicitly (e.g. from config.Config).
func Default(component string) *Logger {
	return New(component, os.Stderr, LevelWarn)
}

func (lg *Logger) printf(tag, format string, args ...any) {
	lg.l.Printf("%s: %s: "+format, append([]any{lg.component, tag}, args...)...)
}

// Warnf logs at LevelWarn; always emitted regardless of the Logger's
// configured level, since a warning is never optional chatter.
func (lg *Logger) Warnf(format string, args ...any) { lg.printf("warn", format, args...) }

// Infof logs at LevelInfo, suppressed unless the Logger's level is
// LevelInfo or louder.
func (lg *Logger) Infof(format string, args ...any) {
	if lg.level >= LevelInfo {
		lg.printf("info", format, args...)
	}
}

// Debugf logs at LevelDebug, suppressed unless the Logger's level is
// LevelDebug.
func (lg *Logger) Debugf(format string, args ...any) {
	if lg.level >= LevelDebug {
		lg.printf("debug", format, args...)
	}
}

// With returns a copy of lg tagged with a sub-component name, e.g.
// logx.Default("codegen").With("layout") logs as "codegen/layout: ...".
func (lg *Logger) With(sub string) *Logger {
	return &Logger{component: lg.component + "/" + sub, level: lg.level, l: lg.l}
}
