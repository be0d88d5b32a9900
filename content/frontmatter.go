package content

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/eringen/tutorials"
)

var (
	yamlFence = []byte("---")
	tomlFence = []byte("+++")
)

// FrontMatter is the metadata block at the top of a tutorial source file.
type FrontMatter struct {
	Title      string   `yaml:"title" toml:"title"`
	Slug       string   `yaml:"slug" toml:"slug"`
	Tags       []string `yaml:"tags" toml:"tags"`
	Lead       string   `yaml:"lead" toml:"lead"`
	TutorialID int      `yaml:"tutorialID" toml:"tutorialID"`
	Icon       string   `yaml:"icon" toml:"icon"`
	Rotate     bool     `yaml:"rotate" toml:"rotate"`
	Draft      bool     `yaml:"draft" toml:"draft"`

	// RawDate is whatever the decoder produced for "date": a string, or a
	// time.Time for unquoted TOML dates. normalize turns it into Date.
	RawDate any    `yaml:"date" toml:"date"`
	Date    string `yaml:"-" toml:"-"`
}

// splitFrontMatter separates the front matter from the body. YAML front
// matter is fenced by "---" lines, TOML by "+++" lines. A file without a
// leading fence has no front matter.
func splitFrontMatter(src []byte) (fm FrontMatter, body []byte, err error) {
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	var fence []byte
	switch {
	case bytes.HasPrefix(src, yamlFence):
		fence = yamlFence
	case bytes.HasPrefix(src, tomlFence):
		fence = tomlFence
	default:
		return fm, src, nil
	}

	rest := src[len(fence):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		// "---" followed by text on the same line is a thematic break or
		// similar, not a fence.
		return fm, src, nil
	}
	rest = rest[nl+1:]

	end := findClosingFence(rest, fence)
	if end < 0 {
		return fm, nil, fmt.Errorf("missing closing front matter fence %q", fence)
	}
	block := rest[:end]
	body = rest[end+len(fence):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}

	if bytes.Equal(fence, yamlFence) {
		err = yaml.Unmarshal(block, &fm)
	} else {
		err = toml.Unmarshal(block, &fm)
	}
	if err != nil {
		return fm, nil, fmt.Errorf("parse front matter: %w", err)
	}
	fm.normalize()
	return fm, body, nil
}

// findClosingFence returns the offset of a line consisting only of fence.
func findClosingFence(b, fence []byte) int {
	off := 0
	for off <= len(b) {
		line := b[off:]
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), fence) {
			return off
		}
		next := bytes.IndexByte(b[off:], '\n')
		if next < 0 {
			return -1
		}
		off += next + 1
	}
	return -1
}

func (fm *FrontMatter) normalize() {
	fm.Title = strings.TrimSpace(fm.Title)
	fm.Slug = strings.Trim(strings.TrimSpace(fm.Slug), "/")
	fm.Lead = strings.TrimSpace(fm.Lead)
	fm.Icon = strings.TrimSpace(fm.Icon)
	fm.Date = dateString(fm.RawDate)
	fm.Tags = tutorials.FilterEmpty(fm.Tags)
}

func dateString(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(d)
	case time.Time:
		return d.Format("2006-01-02")
	default:
		return fmt.Sprint(d)
	}
}

// validDate accepts an empty date or YYYY-MM-DD, optionally with a time part.
func validDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
}

// stripMDX drops top-level ESM import/export lines that MDX allows but
// Markdown would render as text. Lines inside fenced code are kept.
func stripMDX(body []byte) []byte {
	var out bytes.Buffer
	inCode := false
	for _, line := range bytes.SplitAfter(body, []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if bytes.HasPrefix(trimmed, []byte("```")) || bytes.HasPrefix(trimmed, []byte("~~~")) {
			inCode = !inCode
		}
		if !inCode && (bytes.HasPrefix(line, []byte("import ")) || bytes.HasPrefix(line, []byte("export "))) {
			continue
		}
		out.Write(line)
	}
	return out.Bytes()
}
