// Copyright © 2023 gonenradai
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package common

import (
	"fmt"
	"log"
	"os"
	"path"
	"runtime"
	"time"
)

type ILogger interface {
	ShouldLog(level LogLevel) bool
	Log(level LogLevel, msg string)
	Panic(err error)
}

type ILoggerCloser interface {
	ILogger
	CloseLog()
}

type ILoggerResetable interface {
	OpenLog()
	MinimumLogLevel() LogLevel
	ILoggerCloser
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

type runLogger struct {
	// maximum loglevel represents the maximum severity of log messages which can be logged to the run's log file.
	// any message with severity higher than this will be ignored.
	runID             RunID
	minimumLevelToLog LogLevel // The maximum user-desired log level for this run
	file              *os.File // The run's log file
	logFileFolder     string   // The log file's parent folder, needed for opening the file at the right place
	logger            *log.Logger
}

func NewRunLogger(runID RunID, minimumLevelToLog LogLevel, logFileFolder string) ILoggerResetable {
	return &runLogger{
		runID:             runID,
		minimumLevelToLog: minimumLevelToLog,
		logFileFolder:     logFileFolder,
	}
}

func (rl *runLogger) OpenLog() {
	if rl.minimumLevelToLog == ELogLevel.None() {
		return
	}

	file, err := os.OpenFile(path.Join(rl.logFileFolder, rl.runID.String()+".log"),
		os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	PanicIfErr(err)

	rl.file = file
	flags := log.LstdFlags | log.LUTC
	utcMessage := "Log times are in UTC. Local time is " + time.Now().Format("2 Jan 2006 15:04:05")

	rl.logger = log.New(rl.file, "", flags)
	// Log the OS Environment and OS Architecture
	rl.logger.Println("OS-Environment ", runtime.GOOS)
	rl.logger.Println("OS-Architecture ", runtime.GOARCH)
	rl.logger.Println(utcMessage)
}

func (rl *runLogger) MinimumLogLevel() LogLevel {
	return rl.minimumLevelToLog
}

func (rl *runLogger) ShouldLog(level LogLevel) bool {
	if level == ELogLevel.None() {
		return false
	}
	return level <= rl.minimumLevelToLog
}

func (rl *runLogger) CloseLog() {
	if rl.minimumLevelToLog == ELogLevel.None() || rl.file == nil {
		return
	}

	rl.logger.Println("Closing Log")
	err := rl.file.Close()
	PanicIfErr(err)
}

func (rl *runLogger) Log(loglevel LogLevel, msg string) {
	if rl.ShouldLog(loglevel) && rl.logger != nil {
		prefix := ""
		if loglevel <= ELogLevel.Warning() {
			prefix = fmt.Sprintf("%s: ", loglevel) // so readers can find serious ones, but information ones still look uncluttered without INFO:
		}
		rl.logger.Println(prefix + msg)
	}
}

func (rl *runLogger) Panic(err error) {
	rl.logger.Println(err) // We do NOT panic here as the app would terminate; we just log it
	panic(err)
}
