// Package academy serves the security academy: module texts, the quiz
// question bank and the per-user module completion tracker.
package academy

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

//go:embed content
var embedded embed.FS

const quizFile = "quiz.yaml"

// Loader manages loading and caching of academy content
type Loader struct {
	mu        sync.RWMutex
	modules   map[int]*models.Module
	questions []models.QuizQuestion
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{
		modules: make(map[int]*models.Module),
	}
}

// NewDefaultLoader returns a loader holding the built-in content
func NewDefaultLoader() *Loader {
	l := NewLoader()
	if err := l.LoadEmbedded(); err != nil {
		// the embedded content is compiled in, so this only fires on a broken build
		panic(fmt.Sprintf("academy: embedded content: %v", err))
	}
	return l
}

// LoadEmbedded loads the content compiled into the binary
func (l *Loader) LoadEmbedded() error {
	sub, err := fs.Sub(embedded, "content")
	if err != nil {
		return fmt.Errorf("failed to open embedded content: %w", err)
	}
	return l.loadFS(sub, "embedded")
}

// LoadFromDir loads modules/*.yaml and quiz.yaml from dir. A missing dir, or
// one without any modules or questions, falls back to the embedded content.
func (l *Loader) LoadFromDir(dir string) error {
	if dir == "" {
		return l.LoadEmbedded()
	}

	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		slog.Warn("academy content dir not found, using built-in content", "dir", dir)
		return l.LoadEmbedded()
	}

	slog.Info("loading academy content from directory", "dir", dir)
	if err := l.loadFS(os.DirFS(dir), dir); err != nil {
		slog.Warn("failed to load academy content, using built-in content", "dir", dir, "error", err)
		return l.LoadEmbedded()
	}
	return nil
}

func (l *Loader) loadFS(fsys fs.FS, source string) error {
	files, err := fs.Glob(fsys, "modules/*.yaml")
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}
	yml, _ := fs.Glob(fsys, "modules/*.yml")
	files = append(files, yml...)

	modules := make(map[int]*models.Module, len(files))
	for _, file := range files {
		m, err := loadModule(fsys, file)
		if err != nil {
			slog.Warn("failed to load module", "file", file, "error", err)
			continue
		}
		if _, dup := modules[m.ID]; dup {
			slog.Warn("duplicate module id, keeping the first", "file", file, "id", m.ID)
			continue
		}
		modules[m.ID] = m
	}
	if len(modules) == 0 {
		return fmt.Errorf("no modules found in %s", source)
	}

	questions, err := loadQuestions(fsys, quizFile)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.modules = modules
	l.questions = questions
	l.mu.Unlock()

	slog.Info("academy content loaded", "source", source, "modules", len(modules), "questions", len(questions))
	return nil
}

func loadModule(fsys fs.FS, file string) (*models.Module, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var m models.Module
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if m.ID <= 0 {
		return nil, fmt.Errorf("module id must be positive in %s", path.Base(file))
	}
	if strings.TrimSpace(m.Title) == "" {
		return nil, fmt.Errorf("module title is required")
	}
	return &m, nil
}

func loadQuestions(fsys fs.FS, file string) ([]models.QuizQuestion, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	var qf quizFileYAML
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}

	for i, q := range qf.Questions {
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("question %d has no options", i+1)
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return nil, fmt.Errorf("question %d: correct index %d out of range", i+1, q.Correct)
		}
	}
	if len(qf.Questions) == 0 {
		return nil, fmt.Errorf("no questions in %s", file)
	}
	return qf.Questions, nil
}

// ListModules returns all modules ordered by id
func (l *Loader) ListModules() []models.Module {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]models.Module, 0, len(l.modules))
	for _, m := range l.modules {
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetModule returns a module by id
func (l *Loader) GetModule(id int) (models.Module, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	m, ok := l.modules[id]
	if !ok {
		return models.Module{}, false
	}
	return *m, true
}

// Questions returns a copy of the quiz question bank in order
func (l *Loader) Questions() []models.QuizQuestion {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.QuizQuestion, len(l.questions))
	copy(out, l.questions)
	return out
}

// quizFileYAML represents the YAML structure of quiz.yaml
type quizFileYAML struct {
	Questions []models.QuizQuestion `yaml:"questions"`
}
