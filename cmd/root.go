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

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gonenradai/gdrive2kalturabulk/common"
)

var glcm = common.GetLifecycleMgr()

var outputFormatRaw string
var logLevelRaw string
var outputFormat common.OutputFormat
var logLevel common.LogLevel

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gdrive2kalturabulk",
	Short: rootCmdShortDescription,
	Long:  rootCmdLongDescription,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		err := outputFormat.Parse(outputFormatRaw)
		if err != nil {
			return err
		}
		glcm.SetOutputFormat(outputFormat)

		return logLevel.Parse(logLevelRaw)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		glcm.Error(err.Error())
	} else {
		// our commands all control their own exits, so we only get here on a
		// plain invocation (e.g. --help)
		glcm.Exit(nil, common.EExitCode.Success())
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormatRaw, "output-type", "text",
		"Format of the command's output. The choices include: text, json.")
	rootCmd.PersistentFlags().StringVar(&logLevelRaw, "log-level", "INFO",
		"Define the log verbosity for the log file, available levels: DEBUG, INFO, WARNING, ERROR, FATAL, NONE.")
}
