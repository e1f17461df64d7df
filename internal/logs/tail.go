package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const followPollInterval = 250 * time.Millisecond

// Options controls a single Tail call. A negative Offset selects the last
// MaxLines lines of the file; otherwise reading starts at Offset. When
// Follow is set and no new lines exist yet, Tail polls until Wait elapses.
type Options struct {
	Offset   int64
	MaxLines int
	Follow   bool
	Wait     time.Duration
}

// Chunk holds the lines read plus the offset to pass to the next call.
type Chunk struct {
	Lines      []string
	NextOffset int64
}

// Tail reads from the log file at path. A missing file is not an error;
// callers get an empty chunk at offset zero and can retry later.
func Tail(ctx context.Context, path string, opts Options) (Chunk, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{}, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return Chunk{}, fmt.Errorf("log path %s is a directory", path)
	}

	if opts.Offset < 0 {
		return lastLines(path, opts.MaxLines)
	}

	offset := opts.Offset
	if offset > info.Size() {
		offset = info.Size()
	}
	chunk, err := readFrom(path, offset)
	if err != nil {
		return Chunk{}, err
	}
	if opts.Follow && opts.Wait > 0 && len(chunk.Lines) == 0 {
		return followFrom(ctx, path, chunk.NextOffset, opts.Wait)
	}
	return chunk, nil
}

// lastLines scans the whole file keeping a ring of the final limit lines.
func lastLines(path string, limit int) (Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		limit = 1
	}

	scanner := newLineScanner(file)
	ring := make([]string, 0, limit)
	start := 0
	for scanner.Scan() {
		if len(ring) < limit {
			ring = append(ring, scanner.Text())
			continue
		}
		ring[start] = scanner.Text()
		start = (start + 1) % limit
	}
	if err := scanner.Err(); err != nil {
		return Chunk{}, fmt.Errorf("read log file: %w", err)
	}

	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return Chunk{}, fmt.Errorf("seek log file: %w", err)
	}

	if len(ring) == 0 {
		return Chunk{NextOffset: end}, nil
	}
	lines := make([]string, 0, len(ring))
	for i := range ring {
		lines = append(lines, ring[(start+i)%len(ring)])
	}
	return Chunk{Lines: lines, NextOffset: end}, nil
}

func readFrom(path string, offset int64) (Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Chunk{}, fmt.Errorf("seek log file: %w", err)
	}

	chunk := Chunk{NextOffset: offset}
	scanner := newLineScanner(file)
	for scanner.Scan() {
		chunk.Lines = append(chunk.Lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Chunk{}, fmt.Errorf("read log file: %w", err)
	}

	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return Chunk{}, fmt.Errorf("seek log file: %w", err)
	}
	chunk.NextOffset = end
	return chunk, nil
}

func followFrom(ctx context.Context, path string, offset int64, wait time.Duration) (Chunk, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	for {
		chunk, err := readFrom(path, offset)
		if err != nil {
			return Chunk{}, err
		}
		if len(chunk.Lines) > 0 || time.Now().After(deadline) {
			return chunk, nil
		}
		offset = chunk.NextOffset

		select {
		case <-ctx.Done():
			return chunk, ctx.Err()
		case <-ticker.C:
		}
	}
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
