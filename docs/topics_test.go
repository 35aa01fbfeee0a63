package docs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// TestTopics ensures that the documentation is in sync with itself:
// every topic listed in readme.md loads, and every .md file is listed.
func TestTopics(t *testing.T) {
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var topicsInReadme []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			topicsInReadme = append(topicsInReadme, strings.TrimSpace(matches[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}
	if len(topicsInReadme) == 0 {
		t.Fatal("no topics listed in readme.md")
	}

	for _, topic := range topicsInReadme {
		t.Run("load_"+topic, func(t *testing.T) {
			if _, err := GetTopic(topic); err != nil {
				t.Errorf("failed to get topic %q: %v", topic, err)
			}
		})
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("failed to list topics: %v", err)
	}
	for _, topic := range all {
		found := false
		for _, listed := range topicsInReadme {
			if listed == topic {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
}

// TestCommandExamples checks that every sh code block in the topics invokes
// the rbl binary, so the examples cannot drift to a stale command name.
func TestCommandExamples(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			t.Fatalf("failed to read %s: %v", file, err)
		}
		root := goldmark.DefaultParser().Parse(text.NewReader(content))

		ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			fcb, ok := n.(*ast.FencedCodeBlock)
			if !ok || fcb.Info == nil {
				return ast.WalkContinue, nil
			}
			if lang := string(fcb.Info.Segment.Value(content)); lang != "sh" {
				return ast.WalkContinue, nil
			}
			for i := 0; i < fcb.Lines().Len(); i++ {
				seg := fcb.Lines().At(i)
				line := strings.TrimSpace(string(seg.Value(content)))
				if line == "" {
					continue
				}
				if !strings.HasPrefix(line, "rbl ") {
					t.Errorf("%s: example does not invoke rbl: %q", file, line)
				}
			}
			return ast.WalkContinue, nil
		})
	}
}
