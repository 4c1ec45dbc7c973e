// Package objectstore_test tests the NATS object store implementation.
package objectstore_test

import (
	"context"
	"testing"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/voicekit/vvcore/internal/objectstore"
)

// startTestServer starts an in-memory NATS server for testing purposes.
func startTestServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1 // Use a random port
	opts.JetStream = true
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	return natsServer, natsConnection
}

func TestNatsObjectStore_UploadDownload(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	bucketName := "audio-test-bucket"
	store, err := objectstore.New(jetstreamContext, bucketName)
	require.NoError(t, err)

	ctx := context.Background()
	key := "chunk-0001.wav"
	uploadData := []byte("RIFF....WAVEfmt ")

	err = store.Upload(ctx, key, uploadData)
	require.NoError(t, err)

	downloadData, err := store.Download(ctx, key)
	require.NoError(t, err)

	require.Equal(t, uploadData, downloadData)
}

func TestNatsObjectStore_BindExisting(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	bucketName := "audio-rebind-bucket"

	first, err := objectstore.New(jetstreamContext, bucketName)
	require.NoError(t, err)

	err = first.Upload(context.Background(), "text-key", []byte("sample text"))
	require.NoError(t, err)

	// Creating the store again must bind to the existing bucket.
	second, err := objectstore.New(jetstreamContext, bucketName)
	require.NoError(t, err)

	data, err := second.Download(context.Background(), "text-key")
	require.NoError(t, err)
	require.Equal(t, []byte("sample text"), data)
}

func TestNatsObjectStore_DownloadMissingKey(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "audio-missing-bucket")
	require.NoError(t, err)

	_, err = store.Download(context.Background(), "no-such-object")
	require.Error(t, err)
}
