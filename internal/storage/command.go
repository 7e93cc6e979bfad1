package storage

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Operation tags for log records.
const (
	opSet    = "set"
	opRemove = "rm"
)

// Command is a single record in the log. The log is the source of truth;
// commands are immutable once written.
//
// Record format: one JSON object per line, e.g.
//
//	{"op":"set","key":"a","value":"1"}
//	{"op":"rm","key":"a"}
type Command struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// encodeCommand serializes a command as a single newline-terminated line.
func encodeCommand(cmd Command) ([]byte, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidCommand, "encode %s %q: %s", cmd.Op, cmd.Key, err)
	}
	return append(data, '\n'), nil
}

// readCommand reads exactly one record from r and reports the number of
// bytes consumed, delimiter included. The consumed length is what replay
// uses for offset bookkeeping, so it must be exact.
//
// A read of zero bytes at end of file returns io.EOF; a trailing record
// without its delimiter is still decoded.
func readCommand(r *bufio.Reader) (Command, int64, error) {
	line, err := r.ReadBytes('\n')
	if len(line) == 0 {
		if err == io.EOF {
			return Command{}, 0, io.EOF
		}
		return Command{}, 0, errors.Wrapf(ErrIO, "read record: %s", err)
	}
	if err != nil && err != io.EOF {
		return Command{}, 0, errors.Wrapf(ErrIO, "read record: %s", err)
	}

	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return Command{}, 0, errors.Wrapf(ErrInvalidCommand, "decode record: %s", err)
	}
	if cmd.Op != opSet && cmd.Op != opRemove {
		return Command{}, 0, errors.Wrapf(ErrInvalidCommand, "unknown op %q", cmd.Op)
	}

	return cmd, int64(len(line)), nil
}
