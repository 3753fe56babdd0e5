package protocol

import "errors"

var (
	// ErrMalformedFrame marks scanned text that is not a frame. Receivers drop it.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrTotalMismatch marks a frame whose total differs from the one the
	// receive session adopted. It resets the session and is only logged.
	ErrTotalMismatch = errors.New("declared block total changed")
	// ErrCorruptPayload is returned when the reassembled text cannot be turned
	// back into a file. The transfer has to be restarted from the sender.
	ErrCorruptPayload = errors.New("corrupt payload")
	// ErrOversizedInput is returned before encoding when a file is too large to send.
	ErrOversizedInput = errors.New("file exceeds maximum transfer size")
	ErrInvalidFilename = errors.New("filename contains a reserved sequence")
)
