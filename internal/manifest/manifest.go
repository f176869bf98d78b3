// Package manifest writes and removes the concat demuxer list files a mix
// job hands to ffmpeg.
//
// Each job owns a Set. File names embed the job ID so concurrent jobs never
// collide.
package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Role names the purpose of a manifest within a job.
type Role string

const (
	RoleVideo Role = "video"
	RoleAudio Role = "audio"
)

// NewJobID returns a fresh identifier suitable for manifest names.
func NewJobID() string {
	return uuid.NewString()
}

type entry struct {
	path  string
	paths []string
}

// Set tracks the manifests allocated for one job.
type Set struct {
	dir   string
	jobID string

	mu      sync.Mutex
	entries map[Role]*entry
	order   []Role
}

// NewSet allocates a manifest set under dir. An empty jobID gets a new one.
func NewSet(dir, jobID string) *Set {
	if dir == "" {
		dir = os.TempDir()
	}
	if jobID == "" {
		jobID = NewJobID()
	}
	return &Set{dir: dir, jobID: jobID, entries: make(map[Role]*entry)}
}

// JobID returns the identifier embedded in every manifest name.
func (s *Set) JobID() string {
	return s.jobID
}

// Path returns the file name a role's manifest is written to.
func (s *Set) Path(role Role) string {
	return filepath.Join(s.dir, fmt.Sprintf("mixit_%s_%s.txt", s.jobID, role))
}

// Add registers paths under role and returns the manifest path to pass to
// ffmpeg. Nothing touches disk until Write. Adding a role twice replaces
// its contents.
func (s *Set) Add(role Role, paths []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[role]; !ok {
		s.order = append(s.order, role)
	}
	p := s.Path(role)
	s.entries[role] = &entry{path: p, paths: append([]string(nil), paths...)}
	return p
}

// Files returns the registered manifest paths in registration order.
func (s *Set) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]string, 0, len(s.order))
	for _, role := range s.order {
		files = append(files, s.entries[role].path)
	}
	return files
}

// Write creates every registered manifest. On failure the files written so
// far are removed.
func (s *Set) Write() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory %s: %w", s.dir, err)
	}

	for i, role := range s.order {
		e := s.entries[role]
		if err := writeFile(e.path, e.paths); err != nil {
			for _, written := range s.order[:i] {
				_ = os.Remove(s.entries[written].path)
			}
			return fmt.Errorf("write %s manifest: %w", role, err)
		}
	}
	return nil
}

// Cleanup removes every registered manifest. Missing files and removal
// errors are ignored. It is safe to call more than once.
func (s *Set) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, role := range s.order {
		_ = os.Remove(s.entries[role].path)
	}
}

// Encode writes one concat directive per path. Backslashes become forward
// slashes and single quotes are escaped as '\''.
func Encode(w io.Writer, paths []string) error {
	bw := bufio.NewWriter(w)
	for _, p := range paths {
		if _, err := fmt.Fprintf(bw, "file '%s'\n", quote(p)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode parses a manifest written by Encode. Blank lines and '#' comments
// are skipped.
func Decode(r io.Reader) ([]string, error) {
	var paths []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rest, ok := strings.CutPrefix(text, "file ")
		if !ok {
			return nil, fmt.Errorf("line %d: expected file directive, got %q", line, text)
		}
		p, err := unquote(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		paths = append(paths, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

// Marshal returns the encoded manifest for paths.
func Marshal(paths []string) []byte {
	var buf bytes.Buffer
	_ = Encode(&buf, paths)
	return buf.Bytes()
}

func quote(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.ReplaceAll(p, "'", `'\''`)
}

func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", fmt.Errorf("unquoted path %q", s)
	}
	body := s[1 : len(s)-1]
	return strings.ReplaceAll(body, `'\''`, "'"), nil
}
