package common

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// only one instance of the formatter should exist
var lcm = func() (lcmgr *lifecycleMgr) {
	lcmgr = &lifecycleMgr{
		msgQueue:     make(chan outputMessage, 1000),
		outputFormat: EOutputFormat.Text(), // output text by default
	}

	// kick off the single routine that processes output
	go lcmgr.processOutputMessage()
	return
}()

// GetLifecycleMgr returns the single instance of the lifecycle manager
func GetLifecycleMgr() LifecycleMgr {
	return lcm
}

// LifecycleMgr is the application's one gateway to console output and process
// exit. Routing everything through a single routine keeps progress lines and
// informational messages from interleaving, and guarantees registered close
// functions (log files, caches) run before the process exits.
type LifecycleMgr interface {
	Init(OutputBuilder)                                  // print out a message to the user before the run starts
	Info(string)                                         // simple print, allowed to float up
	Warn(string)                                         // simple print, allowed to float up
	Progress(OutputBuilder)                              // print on the same line over and over again, not allowed to float up
	Error(string)                                        // print to stderr and exit with failure
	Exit(OutputBuilder, ExitCode)                        // exit after printing, allow caller to specify exit code
	SurrenderControl()                                   // give up control, this should never return
	SetOutputFormat(OutputFormat)                        // change the output format of the entire application
	InitiateProgressReporting(WorkController)            // start writing progress with another routine
	RegisterCloseFunc(func())                            // run the given function before the process exits
	GetEnvironmentVariable(EnvironmentVariable) string   // get the environment variable or its default value
}

// for the lifecycleMgr to babysit a run, it must be given a controller to get information about the run
type WorkController interface {
	ReportProgressOrExit(mgr LifecycleMgr) // print the progress status, optionally exit the application if work is done
}

// captures the common logic of exiting if there's an expected error
func PanicIfErr(err error) {
	if err != nil {
		panic(err)
	}
}

type lifecycleMgr struct {
	msgQueue             chan outputMessage
	progressCache        string // useful for keeping job progress on the last line
	outputFormat         OutputFormat
	closeFuncs           []func()
	closeFuncLock        sync.Mutex
	progressReportingOne sync.Once
}

func (lcm *lifecycleMgr) SetOutputFormat(format OutputFormat) {
	lcm.outputFormat = format
}

func (lcm *lifecycleMgr) Init(o OutputBuilder) {
	lcm.msgQueue <- outputMessage{
		msgContent: o(lcm.outputFormat),
		msgType:    eOutputMessageType.Init(),
	}
}

func (lcm *lifecycleMgr) Info(msg string) {
	lcm.msgQueue <- outputMessage{
		msgContent: msg,
		msgType:    eOutputMessageType.Info(),
	}
}

func (lcm *lifecycleMgr) Warn(msg string) {
	lcm.msgQueue <- outputMessage{
		msgContent: msg,
		msgType:    eOutputMessageType.Warning(),
	}
}

func (lcm *lifecycleMgr) Progress(o OutputBuilder) {
	messageContent := ""
	if o != nil {
		messageContent = o(lcm.outputFormat)
	}

	lcm.msgQueue <- outputMessage{
		msgContent: messageContent,
		msgType:    eOutputMessageType.Progress(),
	}
}

func (lcm *lifecycleMgr) Error(msg string) {
	lcm.msgQueue <- outputMessage{
		msgContent: msg,
		msgType:    eOutputMessageType.Error(),
		exitCode:   EExitCode.Error(),
	}

	// stall forever until the success message is printed and program exits
	lcm.SurrenderControl()
}

func (lcm *lifecycleMgr) Exit(o OutputBuilder, exitCode ExitCode) {
	messageContent := ""
	if o != nil {
		messageContent = o(lcm.outputFormat)
	}

	lcm.msgQueue <- outputMessage{
		msgContent: messageContent,
		msgType:    eOutputMessageType.EndOfRun(),
		exitCode:   exitCode,
	}

	if exitCode != EExitCode.NoExit() {
		// stall forever until the success message is printed and program exits
		lcm.SurrenderControl()
	}
}

// SurrenderControl stalls the calling routine forever; the message pump owns
// the actual process exit.
func (lcm *lifecycleMgr) SurrenderControl() {
	select {}
}

func (lcm *lifecycleMgr) RegisterCloseFunc(closeFunc func()) {
	lcm.closeFuncLock.Lock()
	defer lcm.closeFuncLock.Unlock()
	lcm.closeFuncs = append(lcm.closeFuncs, closeFunc)
}

func (lcm *lifecycleMgr) processOutputMessage() {
	// this function constantly pulls out message to output
	// and pass them onto the right handler based on the output format
	for msgToPrint := range lcm.msgQueue {
		switch lcm.outputFormat {
		case EOutputFormat.Json():
			lcm.processJSONOutput(msgToPrint)
		case EOutputFormat.Text():
			lcm.processTextOutput(msgToPrint)
		default:
			panic("unimplemented output format")
		}
	}
}

func (lcm *lifecycleMgr) processJSONOutput(msgToOutput outputMessage) {
	// simply output the json message, since progress has no special connotation for a json consumer
	fmt.Println(GetJsonStringFromTemplate(newJsonOutputTemplate(msgToOutput.msgType, msgToOutput.msgContent)))

	if msgToOutput.shouldExitProcess() {
		lcm.runCloseFuncsAndExit(msgToOutput.exitCode)
	}
}

func (lcm *lifecycleMgr) processTextOutput(msgToOutput outputMessage) {
	// when a new line needs to overwrite the current line carefully
	// we need to make sure that if the new line is shorter, we properly erase the remains of the old line
	matchLengthWithSpaces := func(curLineLength, newLineLength int) {
		if dirtyLeftover := curLineLength - newLineLength; dirtyLeftover > 0 {
			fmt.Print(strings.Repeat(" ", dirtyLeftover))
		}
	}

	switch msgToOutput.msgType {
	case eOutputMessageType.Error(), eOutputMessageType.EndOfRun():
		// simply print and quit
		// if a progress indicator is in progress, bump it down a line
		if lcm.progressCache != "" {
			fmt.Println()
		}
		if msgToOutput.msgContent != "" {
			fmt.Println(msgToOutput.msgContent)
		}
		if msgToOutput.shouldExitProcess() {
			lcm.runCloseFuncsAndExit(msgToOutput.exitCode)
		}

	case eOutputMessageType.Progress():
		fmt.Print("\r")                  // return carriage back to start
		fmt.Print(msgToOutput.msgContent) // print new progress

		// it is possible that the new progress status is somehow shorter than the previous one
		// in this case we must erase the left over characters from the previous progress
		matchLengthWithSpaces(len(lcm.progressCache), len(msgToOutput.msgContent))

		lcm.progressCache = msgToOutput.msgContent

	default:
		if lcm.progressCache != "" { // a progress status is already on the last line
			// print the info from the beginning on current line
			fmt.Print("\r")
			fmt.Print(msgToOutput.msgContent)

			// it is possible that the info is shorter than the progress status
			// in this case we must erase the left over characters from the progress status
			matchLengthWithSpaces(len(lcm.progressCache), len(msgToOutput.msgContent))

			// print the previous progress status again, so that it's on the last line
			fmt.Print("\n")
			fmt.Print(lcm.progressCache)
		} else {
			fmt.Println(msgToOutput.msgContent)
		}
	}
}

func (lcm *lifecycleMgr) runCloseFuncsAndExit(code ExitCode) {
	lcm.closeFuncLock.Lock()
	for _, closeFunc := range lcm.closeFuncs {
		closeFunc()
	}
	os.Exit(int(code))
}

// InitiateProgressReporting starts a goroutine that reports progress at a
// steady cadence, by asking the given controller to describe the work.
func (lcm *lifecycleMgr) InitiateProgressReporting(wc WorkController) {
	lcm.progressReportingOne.Do(func() {
		go func() {
			for {
				wc.ReportProgressOrExit(lcm)
				time.Sleep(2 * time.Second)
			}
		}()
	})
}

func (lcm *lifecycleMgr) GetEnvironmentVariable(env EnvironmentVariable) string {
	return GetEnvironmentVariable(env)
}
