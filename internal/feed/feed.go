// Package feed loads ticker items from YAML and Markdown files.
package feed

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrNoMatches is returned when a pattern matches no files.
var ErrNoMatches = errors.New("feed: pattern matched no files")

// Format is the body markup of an item.
type Format string

const (
	Plain    Format = "plain"
	Markdown Format = "markdown"
)

// Item is one entry of a feed.
type Item struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	Body   string `yaml:"body"`
	Format Format `yaml:"format"`
	// Source is the file the item came from.
	Source string `yaml:"-"`
}

type document struct {
	Items []Item `yaml:"items"`
}

// Load reads every file matching pattern, in path order. Files that are
// neither YAML nor Markdown are skipped.
func Load(pattern string) ([]Item, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var items []Item
	read := 0
	for _, path := range matches {
		var got []Item
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			got, err = loadYAML(path)
		case ".md", ".markdown":
			var it Item
			it, err = loadMarkdown(path)
			got = []Item{it}
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		read++
		items = append(items, got...)
	}
	if read == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, pattern)
	}
	return items, nil
}

func loadYAML(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		// A bare list is accepted too.
		var list []Item
		if lerr := yaml.Unmarshal(data, &list); lerr != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		doc.Items = list
	}

	for i := range doc.Items {
		it := &doc.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if it.Format == "" {
			it.Format = Plain
		}
		it.Source = path
	}
	return doc.Items, nil
}

// loadMarkdown turns a file into one item: the first heading is the title,
// the remainder the body. Without a heading the file name is the title.
func loadMarkdown(path string) (Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return Item{}, fmt.Errorf("failed to read feed file: %w", err)
	}
	defer f.Close()

	it := Item{ID: uuid.NewString(), Format: Markdown, Source: path}
	var body []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if it.Title == "" && strings.HasPrefix(line, "#") {
			it.Title = strings.TrimSpace(strings.TrimLeft(line, "#"))
			continue
		}
		body = append(body, line)
	}
	if err := sc.Err(); err != nil {
		return Item{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if it.Title == "" {
		it.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	it.Body = strings.TrimSpace(strings.Join(body, "\n"))
	return it, nil
}
