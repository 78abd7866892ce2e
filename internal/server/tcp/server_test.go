package tcp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServer(t *testing.T) {
	t.Run("stop", func(t *testing.T) {
		listener, err := net.Listen("tcp", "localhost:0")
		require.NoError(t, err)

		server := NewServer(listener, func(net.Conn) {})
		stopCh := make(chan error)
		go func() {
			stopCh <- server.Start()
		}()
		require.NoError(t, server.Stop())
		require.ErrorIs(t, <-stopCh, ErrShutdown)
	})

	t.Run("echo", func(t *testing.T) {
		listener, err := net.Listen("tcp", "localhost:0")
		require.NoError(t, err)

		server := NewServer(listener, func(conn net.Conn) {
			client := NewClient(conn, time.Second, make([]byte, 64))
			data, err := client.Read()
			if err != nil {
				return
			}

			_ = client.Write(data)
		})
		go func() {
			_ = server.Start()
		}()
		defer func() {
			require.NoError(t, server.Stop())
		}()

		conn, err := net.Dial("tcp", server.Addr().String())
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Write([]byte("hello"))
		require.NoError(t, err)
		buff := make([]byte, 5)
		_, err = io.ReadFull(conn, buff)
		require.NoError(t, err)
		require.Equal(t, "hello", string(buff))
	})
}

func TestClient_WriteClosed(t *testing.T) {
	server, peer := net.Pipe()
	client := NewClient(server, 0, make([]byte, 16))
	require.NoError(t, peer.Close())
	require.NoError(t, client.Write([]byte("anybody here?")))

	require.NoError(t, client.Close())
	require.NoError(t, client.Write([]byte("definitely not")))
}

func TestIsClosed(t *testing.T) {
	require.True(t, IsClosed(net.ErrClosed))
	require.True(t, IsClosed(io.ErrClosedPipe))
	require.True(t, IsClosed(fmt.Errorf("write: %w", syscall.EPIPE)))
	require.True(t, IsClosed(&net.OpError{Op: "write", Err: syscall.ECONNRESET}))
	require.False(t, IsClosed(errors.New("disk is on fire")))
	require.False(t, IsClosed(nil))
}
