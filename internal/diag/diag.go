/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package diag owns the library logger and the two failure policies of the
// module: programming errors and fatal capacity errors.
package diag

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// EnvLogLevel overrides the initial log level.
const EnvLogLevel = "RTTI_LOG_LEVEL"

var logger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stderr).With().Timestamp().Str("lib", "rtti").Logger().Level(zerolog.WarnLevel)
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		l = l.Level(lvl)
	}
	logger.Store(&l)
}

// Logger returns the current library logger.
func Logger() *zerolog.Logger { return logger.Load() }

// SetLogger replaces the library logger.
func SetLogger(l zerolog.Logger) { logger.Store(&l) }

// SetLevel changes the level of the current logger. Unknown names are
// ignored and reported as false.
func SetLevel(name string) bool {
	lvl, ok := ParseLevel(name)
	if !ok {
		return false
	}
	l := logger.Load().Level(lvl)
	logger.Store(&l)
	return true
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.NoLevel, false
	}
}

// Programming reports a misuse of the API. In strict mode it panics;
// otherwise it logs the error and hands it back to the caller.
func Programming(strict bool, err error) error {
	if strict {
		panic(err)
	}
	Logger().Error().Err(err).Msg("programming error")
	return err
}

// Fatal logs err and panics. It is used when a fixed capacity is exhausted.
func Fatal(err error) {
	Logger().WithLevel(zerolog.FatalLevel).Err(err).Msg("capacity exhausted")
	panic(err)
}
