package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const DefaultJsonlPath = "storage/datasets/default.jsonl"

// Jsonl appends one JSON document per line to a file.
type Jsonl struct {
	path string
	mu   sync.Mutex
	file *os.File
}

func OpenJsonl(path string) (*Jsonl, error) {
	err := os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &Jsonl{path: path, file: file}, nil
}

// OpenJsonlReader opens an existing file for List only.
func OpenJsonlReader(path string) (*Jsonl, error) {
	_, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &Jsonl{path: path}, nil
}

func (s *Jsonl) Push(ctx context.Context, record Record) error {
	if s.file == nil {
		return fmt.Errorf("%s was opened read-only", s.path)
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.file.Write(line)
	if err != nil {
		return err
	}
	return s.file.Sync()
}

func (s *Jsonl) List(ctx context.Context, limit int) ([]Record, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var record Record
		err := json.Unmarshal(scanner.Bytes(), &record)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", s.path, line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tail(records, limit), nil
}

func (s *Jsonl) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
