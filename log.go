// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package svsim

import "github.com/sirupsen/logrus"

// logger emits diagnostics for the parse/elaborate/simulate pipeline.
// Verbosity affects diagnostic output only, never core semantics.
var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// SetLogger replaces the package diagnostic logger. Passing nil resets
// it to the default warn-level logger.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		l = newLogger()
	}
	logger = l
}
