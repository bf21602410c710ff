// Copyright (c) nano Authors. All Rights Reserved.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package log wraps the standard library logger behind a small interface so
// callers of this module can plug in their own collector.
package log

import (
	"log"
	"os"
)

// Logger is the minimal surface the rest of the module depends on.
type Logger interface {
	Printf(format string, args ...interface{})
	Print(args ...interface{})
	Fatalf(format string, args ...interface{})
	Fatal(args ...interface{})
}

var logger Logger = log.New(os.Stderr, "[oef] ", log.LstdFlags)

// SetLogger overrides the default logger.
func SetLogger(l Logger) {
	if l != nil {
		logger = l
	}
}

func Printf(format string, args ...interface{}) { logger.Printf(format, args...) }
func Print(args ...interface{})                 { logger.Print(args...) }
func Fatalf(format string, args ...interface{}) { logger.Fatalf(format, args...) }
func Fatal(args ...interface{})                 { logger.Fatal(args...) }

// Debugf logs at debug level, gated by Debug.
func Debugf(format string, args ...interface{}) {
	if Debug {
		logger.Printf("DEBUG "+format, args...)
	}
}

// Infof logs an informational message.
func Infof(format string, args ...interface{}) {
	logger.Printf("INFO "+format, args...)
}

// Warnf logs a recoverable problem.
func Warnf(format string, args ...interface{}) {
	logger.Printf("WARN "+format, args...)
}

// Errorf logs a failure that the caller is about to surface upward.
func Errorf(format string, args ...interface{}) {
	logger.Printf("ERROR "+format, args...)
}

// Debug toggles verbose logging, mirroring the teacher's package-level debug flag.
var Debug bool
