package report

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/nao1215/markdown"
	"github.com/nao1215/researcher/internal/model"
)

const (
	dirPerm  = 0750
	filePerm = 0600

	summaryPrefix = "research-"
	summarySuffix = ".txt"
	lessonPrefix  = "lesson-"

	maxFileNameRunes = 100
	queryKeyLen      = 8
)

// Store lays out research outputs under a root directory:
//
//	<root>/<research id>/<report type>.md|.txt|.json
//	<root>/<research id>/research-<query>-<query key>.txt
//	<root>/<research id>/lesson-<concept>.md
type Store struct {
	root    string
	version string
}

// NewStore creates a Store rooted at root. version is embedded in JSON reports.
func NewStore(root, version string) *Store {
	return &Store{root: root, version: version}
}

// Root returns the output root directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory of a research.
func (s *Store) Dir(researchID string) string {
	return filepath.Join(s.root, researchID)
}

func (s *Store) ensureDir(researchID string) (string, error) {
	dir := s.Dir(researchID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

// WriteQuerySummary writes the summary of one query to
// research-<query>-<query key>.txt. The key keeps queries that sanitize to
// the same name in separate files.
func (s *Store) WriteQuerySummary(researchID, query, summary string) (string, error) {
	dir, err := s.ensureDir(researchID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, summaryFileName(query))
	if err := os.WriteFile(path, []byte(summary), filePerm); err != nil {
		return "", fmt.Errorf("failed to write query summary: %w", err)
	}
	return path, nil
}

// ReadQuerySummaries reads the research-*.txt files of a research, oldest
// first. The query is recovered from the file name. A missing directory
// yields no summaries.
func (s *Store) ReadQuerySummaries(researchID string) ([]model.QuerySummary, error) {
	entries, err := os.ReadDir(s.Dir(researchID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	type summaryFile struct {
		name  string
		query string
		mod   int64
	}
	var files []summaryFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, summaryPrefix) || !strings.HasSuffix(name, summarySuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, summaryFile{name: name, query: queryFromFileName(name), mod: info.ModTime().UnixNano()})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].mod != files[j].mod {
			return files[i].mod < files[j].mod
		}
		return files[i].name < files[j].name
	})

	result := make([]model.QuerySummary, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(s.Dir(researchID), f.name))
		if err != nil {
			return nil, fmt.Errorf("failed to read query summary: %w", err)
		}
		result = append(result, model.QuerySummary{Query: f.query, Summary: string(data)})
	}
	return result, nil
}

// RemoveQuerySummaries deletes the research-*.txt files of a research.
func (s *Store) RemoveQuerySummaries(researchID string) error {
	matches, err := filepath.Glob(filepath.Join(s.Dir(researchID), summaryPrefix+"*"+summarySuffix))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove query summary: %w", err)
		}
	}
	return nil
}

// WriteReport writes r once per format as <report type>.<format> and
// returns the written paths.
func (s *Store) WriteReport(r *model.Research, formats []string) ([]string, error) {
	dir, err := s.ensureDir(r.ID)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := filepath.Join(dir, SafeFileName(r.ReportType)+"."+format)
		if err := s.writeFile(path, format, r); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *Store) writeFile(path, format string, r *model.Research) (err error) {
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	w, err := NewWriter(format, f, s.version)
	if err != nil {
		return err
	}
	if _, err := w.Write(r); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteLessons writes one lesson-<concept>.md per lesson, in concept order.
func (s *Store) WriteLessons(r *model.Research) ([]string, error) {
	if len(r.Lessons) == 0 {
		return nil, nil
	}
	dir, err := s.ensureDir(r.ID)
	if err != nil {
		return nil, err
	}

	concepts := r.Concepts
	if len(concepts) == 0 {
		for c := range r.Lessons {
			concepts = append(concepts, c)
		}
		sort.Strings(concepts)
	}

	var paths []string
	for _, concept := range concepts {
		lesson, ok := r.Lessons[concept]
		if !ok || lesson == "" {
			continue
		}

		var sb strings.Builder
		md := markdown.NewMarkdown(&sb)
		md.H1(concept)
		md.PlainText("")
		md.PlainText(strings.TrimSpace(lesson))
		if err := md.Build(); err != nil {
			return paths, fmt.Errorf("failed to render lesson: %w", err)
		}

		path := filepath.Join(dir, lessonPrefix+SafeFileName(concept)+".md")
		if err := os.WriteFile(path, []byte(sb.String()), filePerm); err != nil {
			return paths, fmt.Errorf("failed to write lesson: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func summaryFileName(query string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(query)))
	key := hex.EncodeToString(sum[:])[:queryKeyLen]
	return summaryPrefix + SafeFileName(query) + "-" + key + summarySuffix
}

// queryFromFileName recovers the sanitized query from a summary file name.
func queryFromFileName(name string) string {
	query := strings.TrimSuffix(strings.TrimPrefix(name, summaryPrefix), summarySuffix)
	i := len(query) - queryKeyLen - 1
	if i > 0 && query[i] == '-' {
		if _, err := hex.DecodeString(query[i+1:]); err == nil {
			return query[:i]
		}
	}
	return query
}

// SafeFileName replaces characters that are unsafe in file names with
// underscores and caps the length.
func SafeFileName(s string) string {
	s = strings.TrimSpace(s)
	var sb strings.Builder
	n := 0
	for _, r := range s {
		if n >= maxFileNameRunes {
			break
		}
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
		n++
	}
	name := strings.Trim(sb.String(), ".")
	if name == "" {
		return "_"
	}
	return name
}
