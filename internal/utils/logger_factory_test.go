package utils_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/glmigrate/internal/utils"
)

const (
	testLoggerFactorySubtestTemplateConstant = "%d_%s"
	testLogMessageConstant                   = "logger_factory_test_message"
	testSuppressedMessageConstant            = "logger_factory_suppressed_message"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogLevel   utils.LogLevel
		requestedLogFormat  utils.LogFormat
		expectError         bool
		expectStructuredLog bool
		expectDebugVisible  bool
	}{
		{name: "debug_structured", requestedLogLevel: utils.LogLevelDebug, requestedLogFormat: utils.LogFormatStructured, expectStructuredLog: true, expectDebugVisible: true},
		{name: "info_structured", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormatStructured, expectStructuredLog: true},
		{name: "info_console", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormatConsole},
		{name: "unsupported_level", requestedLogLevel: utils.LogLevel("verbose"), requestedLogFormat: utils.LogFormatStructured, expectError: true},
		{name: "unsupported_format", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormat("xml"), expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testLoggerFactorySubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			var output bytes.Buffer
			logger, creationError := utils.NewLoggerFactoryWithOutput(&output).CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)

			logger.Debug(testSuppressedMessageConstant)
			logger.Info(testLogMessageConstant)
			require.NoError(testInstance, logger.Sync())

			lines := bytes.Split(bytes.TrimSpace(output.Bytes()), []byte("\n"))
			lastLine := lines[len(lines)-1]
			require.Contains(testInstance, string(lastLine), testLogMessageConstant)
			require.Equal(testInstance, testCase.expectStructuredLog, json.Valid(lastLine))
			require.Equal(testInstance, testCase.expectDebugVisible, bytes.Contains(output.Bytes(), []byte(testSuppressedMessageConstant)))
		})
	}
}

func TestParseLogSettings(testInstance *testing.T) {
	logLevel, levelError := utils.ParseLogLevel(" DEBUG ")
	require.NoError(testInstance, levelError)
	require.Equal(testInstance, utils.LogLevelDebug, logLevel)

	logFormat, formatError := utils.ParseLogFormat("Console")
	require.NoError(testInstance, formatError)
	require.Equal(testInstance, utils.LogFormatConsole, logFormat)

	_, invalidLevelError := utils.ParseLogLevel("trace")
	require.Error(testInstance, invalidLevelError)

	_, invalidFormatError := utils.ParseLogFormat("xml")
	require.Error(testInstance, invalidFormatError)
}
