// Package docs embeds the documentation topics shown by the hero topic command.
//
// The readme lists the topics in reading order, one "* name: description"
// line each. That list is the table of contents: a topic file missing from it
// is not served.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

//go:embed *.md
var docs embed.FS

// readme is the topic shown when none is requested. It is not listed.
const readme = "readme"

// ErrUnknownTopic is returned for a topic that is not in the table of contents.
var ErrUnknownTopic = errors.New("unknown topic")

// Topic is an entry of the table of contents.
type Topic struct {
	Name        string
	Description string
}

var entry = regexp.MustCompile(`^\*\s+([a-z0-9_-]+):\s*(.*)$`)

// Topics returns the table of contents in reading order.
func Topics() []Topic {
	return append([]Topic(nil), toc()...)
}

// Names returns the topic names in reading order.
func Names() []string {
	var names []string
	for _, t := range toc() {
		names = append(names, t.Name)
	}
	return names
}

var toc = sync.OnceValue(func() []Topic {
	content, err := docs.ReadFile(readme + ".md")
	if err != nil {
		return nil
	}
	var topics []Topic
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		m := entry.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		topics = append(topics, Topic{Name: m[1], Description: strings.TrimSpace(m[2])})
	}
	return topics
})

func known(name string) bool {
	if name == readme {
		return true
	}
	for _, t := range toc() {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Content returns the named topics concatenated, "*" standing for every
// topic in reading order.
func Content(names ...string) (string, error) {
	var b bytes.Buffer
	for _, name := range names {
		expanded := []string{name}
		if name == "*" {
			expanded = Names()
		}
		for _, n := range expanded {
			if !known(n) {
				return "", fmt.Errorf("%w %q, run hero topic for the list", ErrUnknownTopic, n)
			}
			content, err := docs.ReadFile(n + ".md")
			if err != nil {
				return "", fmt.Errorf("topic %q: %w", n, err)
			}
			b.Write(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
