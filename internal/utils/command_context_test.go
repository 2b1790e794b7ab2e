package utils_test

import (
	"bufio"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/glmigrate/internal/utils"
)

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, missing := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, missing)

	executionContext := accessor.WithConfigurationFilePath(context.Background(), "/etc/glmigrate/config.yaml")

	configurationFilePath, available := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, available)
	require.Equal(testInstance, "/etc/glmigrate/config.yaml", configurationFilePath)
}

func TestFlushingWriterFlushesBufferedOutput(testInstance *testing.T) {
	var destination bytes.Buffer
	bufferedWriter := bufio.NewWriter(&destination)

	writer := utils.NewFlushingWriter(bufferedWriter)
	require.Same(testInstance, writer, utils.NewFlushingWriter(writer))

	_, writeError := writer.Write([]byte("summary line\n"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, "summary line\n", destination.String())
}
