package tcp

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// IsClosed reports whether the error means that the stream can't be written into anymore
// because either side has closed it.
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}
