package common

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/JeffreyRichter/enum/enum"
)

var EOutputFormat = OutputFormat(0)

type OutputFormat uint32

func (OutputFormat) Text() OutputFormat { return OutputFormat(0) }
func (OutputFormat) Json() OutputFormat { return OutputFormat(1) }

func (of *OutputFormat) Parse(s string) error {
	val, err := enum.ParseInt(reflect.TypeOf(of), s, true, true)
	if err == nil {
		*of = val.(OutputFormat)
	}
	return err
}

func (of OutputFormat) String() string {
	return enum.StringInt(of, reflect.TypeOf(of))
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

var eOutputMessageType = outputMessageType(0)

// outputMessageType defines the nature of the output, ex: progress report, run summary, or error
type outputMessageType uint8

func (outputMessageType) Init() outputMessageType     { return outputMessageType(0) } // simple print, allowed to float up
func (outputMessageType) Info() outputMessageType     { return outputMessageType(1) } // simple print, allowed to float up
func (outputMessageType) Warning() outputMessageType  { return outputMessageType(2) } // simple print, allowed to float up
func (outputMessageType) Progress() outputMessageType { return outputMessageType(3) } // printed on the same line over and over again, not allowed to float up
func (outputMessageType) EndOfRun() outputMessageType { return outputMessageType(4) } // (may) exit after printing
func (outputMessageType) Error() outputMessageType    { return outputMessageType(5) } // indicate fatal error, exit right after

func (t outputMessageType) String() string {
	return enum.StringInt(t, reflect.TypeOf(t))
}

// defines the output and how it should be handled
type outputMessage struct {
	msgContent string
	msgType    outputMessageType
	exitCode   ExitCode // only for when the application is meant to exit after printing (i.e. Error or EndOfRun)
}

func (m outputMessage) shouldExitProcess() bool {
	return m.msgType == eOutputMessageType.Error() ||
		(m.msgType == eOutputMessageType.EndOfRun() && m.exitCode != EExitCode.NoExit())
}

// OutputBuilder is used for output messages that require formatting (e.g. a
// progress line is rendered differently as text and as JSON)
type OutputBuilder func(OutputFormat) string

// defines the general output template when the format is set to json
type jsonOutputTemplate struct {
	TimeStamp      time.Time
	MessageType    string
	MessageContent string
}

func newJsonOutputTemplate(messageType outputMessageType, messageContent string) *jsonOutputTemplate {
	return &jsonOutputTemplate{TimeStamp: time.Now(), MessageType: messageType.String(), MessageContent: messageContent}
}

func GetJsonStringFromTemplate(template interface{}) string {
	jsonOutput, err := json.Marshal(template)
	PanicIfErr(err)

	return string(jsonOutput)
}
