package storage

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// logFileName is the fixed name of the command log inside the store
// directory.
const logFileName = "kvlite.log"

// Store is a log-structured key-value store. It owns the log file handle
// exclusively for its lifetime; opening the same directory twice is
// undefined behavior.
type Store struct {
	file   *os.File
	path   string
	index  map[string]uint64
	built  bool
	logger logrus.FieldLogger
	cfg    Config

	// set operations since the last compaction (or since open)
	setsSinceCompact int
}

// Open ensures a log file exists inside dir, opens it for reading and
// writing without truncating, and returns a store with an empty, unbuilt
// index. The index is populated on demand by the first read or remove.
func Open(dir string, cfg Config) (*Store, error) {
	if cfg.CompactAfter <= 0 {
		cfg.CompactAfter = DefaultConfig().CompactAfter
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	path := filepath.Join(dir, logFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrapf(ErrStoreUnavailable, "open log %s: %s", path, err)
	}

	return &Store{
		file:   file,
		path:   path,
		index:  make(map[string]uint64),
		logger: logger,
		cfg:    cfg,
	}, nil
}

// Close releases the log file handle. The store must not be used afterwards.
func (s *Store) Close() error {
	if err := s.file.Close(); err != nil {
		return errors.Wrapf(ErrIO, "close log: %s", err)
	}
	return nil
}

// Size returns the current log file size in bytes.
func (s *Store) Size() (int64, error) {
	info, err := s.file.Stat()
	if err != nil {
		return 0, errors.Wrapf(ErrIO, "stat log: %s", err)
	}
	return info.Size(), nil
}

// Set stores value under key. The record is appended to the log before the
// index is updated, so the log always reflects at least as much as the
// index. Crossing the compaction threshold rewrites the log in place.
func (s *Store) Set(key, value string) error {
	offset, err := s.appendCommand(Command{Op: opSet, Key: key, Value: value})
	if err != nil {
		return err
	}
	s.index[key] = offset

	if m := s.cfg.Metrics; m != nil {
		m.SetsTotal.Inc()
	}

	s.setsSinceCompact++
	if s.setsSinceCompact > s.cfg.CompactAfter {
		if err := s.compact(); err != nil {
			return err
		}
		s.setsSinceCompact = 0
	}
	return nil
}

// Get returns the value stored under key. The second return value reports
// whether the key exists; a missing key is a normal outcome, not an error.
//
// The first Get of a session replays the whole log to build the index.
// Every Get afterwards is a single seek and decode at the indexed offset.
func (s *Store) Get(key string) (string, bool, error) {
	if err := s.buildIndex(); err != nil {
		return "", false, err
	}

	offset, ok := s.index[key]
	if !ok {
		if m := s.cfg.Metrics; m != nil {
			m.GetMisses.Inc()
		}
		return "", false, nil
	}

	value, err := s.fetchValue(offset, key)
	if err != nil {
		return "", false, err
	}
	if m := s.cfg.Metrics; m != nil {
		m.GetsTotal.Inc()
	}
	return value, true, nil
}

// Remove deletes key from the store. Removing a key that does not exist
// fails with a KeyNotFoundError; this is the one expected user-facing
// error of the store.
func (s *Store) Remove(key string) error {
	if err := s.buildIndex(); err != nil {
		return err
	}
	if _, ok := s.index[key]; !ok {
		return &KeyNotFoundError{Key: key}
	}

	if _, err := s.appendCommand(Command{Op: opRemove, Key: key}); err != nil {
		return err
	}
	delete(s.index, key)

	if m := s.cfg.Metrics; m != nil {
		m.RemovesTotal.Inc()
	}
	return nil
}

// appendCommand encodes cmd and appends it to the end of the log, returning
// the offset at which the record begins.
func (s *Store) appendCommand(cmd Command) (uint64, error) {
	line, err := encodeCommand(cmd)
	if err != nil {
		return 0, err
	}

	offset, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, errors.Wrapf(ErrIO, "seek log end: %s", err)
	}
	if _, err := s.file.Write(line); err != nil {
		return 0, errors.Wrapf(ErrIO, "append %s %q: %s", cmd.Op, cmd.Key, err)
	}
	if s.cfg.SyncWrites {
		if err := s.file.Sync(); err != nil {
			return 0, errors.Wrapf(ErrIO, "sync log: %s", err)
		}
	}

	if m := s.cfg.Metrics; m != nil {
		m.LogSizeBytes.Set(float64(offset + int64(len(line))))
	}
	return uint64(offset), nil
}

// fetchValue reads exactly one record at offset and returns its value. The
// record must be a set record for key; anything else means the index pointed
// at an invalid location.
func (s *Store) fetchValue(offset uint64, key string) (string, error) {
	if _, err := s.file.Seek(int64(offset), io.SeekStart); err != nil {
		return "", errors.Wrapf(ErrIO, "seek offset %d: %s", offset, err)
	}

	cmd, _, err := readCommand(bufio.NewReader(s.file))
	if err != nil {
		if err == io.EOF || errors.Is(err, ErrInvalidCommand) {
			return "", errors.Wrapf(ErrCorruptRecord, "offset %d: %s", offset, err)
		}
		return "", err
	}
	if cmd.Op != opSet || cmd.Key != key {
		return "", errors.Wrapf(ErrCorruptRecord, "offset %d holds %s %q, want set %q",
			offset, cmd.Op, cmd.Key, key)
	}
	return cmd.Value, nil
}

// buildIndex replays the log from the start and rebuilds the index. It is a
// no-op when the index is already built this session. Replay order is append
// order: later records shadow earlier ones for the same key.
func (s *Store) buildIndex() error {
	if s.built {
		return nil
	}

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(ErrIO, "seek log start: %s", err)
	}

	index := make(map[string]uint64)
	reader := bufio.NewReader(s.file)
	var offset uint64
	for {
		cmd, n, err := readCommand(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch cmd.Op {
		case opSet:
			index[cmd.Key] = offset
		case opRemove:
			delete(index, cmd.Key)
		}
		offset += uint64(n)
	}

	s.index = index
	s.built = true

	if m := s.cfg.Metrics; m != nil {
		m.LiveKeys.Set(float64(len(index)))
	}
	return nil
}

// compact rewrites the log to contain only the latest set record for every
// live key, reclaiming the space held by shadowed and removed records. The
// key-to-value mapping is identical before and after; only offsets change,
// so the built flag is invalidated and the next read or remove replays the
// rewritten log.
func (s *Store) compact() error {
	start := time.Now()

	if err := s.buildIndex(); err != nil {
		return err
	}

	sizeBefore, err := s.Size()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for key, offset := range s.index {
		value, err := s.fetchValue(offset, key)
		if err != nil {
			return err
		}
		line, err := encodeCommand(Command{Op: opSet, Key: key, Value: value})
		if err != nil {
			return err
		}
		buf.Write(line)
	}

	if err := s.file.Truncate(0); err != nil {
		return errors.Wrapf(ErrIO, "truncate log: %s", err)
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(ErrIO, "seek log start: %s", err)
	}
	if _, err := s.file.Write(buf.Bytes()); err != nil {
		return errors.Wrapf(ErrIO, "write compacted log: %s", err)
	}
	if s.cfg.SyncWrites {
		if err := s.file.Sync(); err != nil {
			return errors.Wrapf(ErrIO, "sync compacted log: %s", err)
		}
	}

	// Old offsets are wrong now; force a replay of the rewritten log
	// before the next read or remove.
	s.built = false

	s.logger.WithFields(logrus.Fields{
		"action":      "kv_compact",
		"live_keys":   len(s.index),
		"size_before": sizeBefore,
		"size_after":  buf.Len(),
		"took":        time.Since(start),
	}).Debug("compacted command log")

	if m := s.cfg.Metrics; m != nil {
		m.CompactionsTotal.Inc()
		m.CompactionDuration.Observe(time.Since(start).Seconds())
		m.LogSizeBytes.Set(float64(buf.Len()))
	}
	return nil
}
