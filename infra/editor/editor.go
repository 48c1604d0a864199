package editor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/CrestNiraj12/mastosql/domain"
)

// EnvEditor composes status text in $EDITOR (fallback: "vi").
type EnvEditor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewEnvEditor creates an EnvEditor attached to the process terminal.
func NewEnvEditor() *EnvEditor {
	return &EnvEditor{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

const instructionComment = `<!--
mastosql: write your status below.

- SAVE and EXIT to publish (e.g., :wq in vi).
- Emptying the file or making NO CHANGES will cancel.
-->

`

// Cmd prepares an *exec.Cmd for the editor and a temp file path.
// It writes the provided content (and an instruction comment) to the temp file.
// A non-empty cw is shown in the comment so the author sees the warning label.
func (e *EnvEditor) Cmd(ctx context.Context, content, cw string) (*exec.Cmd, string, error) {
	editorCmd := strings.Fields(os.Getenv("EDITOR"))
	if len(editorCmd) == 0 {
		editorCmd = []string{"vi"}
	}

	tmpFile, err := os.CreateTemp("", "mastosql-*.md")
	if err != nil {
		return nil, "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer tmpFile.Close()

	header := instructionComment
	if cw != "" {
		header = strings.Replace(header, "-->", "Content warning: "+cw+"\n-->", 1)
	}
	if _, err := tmpFile.WriteString(header + content); err != nil {
		os.Remove(tmpPath)
		return nil, "", fmt.Errorf("writing to temp file: %w", err)
	}

	args := append(editorCmd[1:], tmpPath)
	cmd := exec.CommandContext(ctx, editorCmd[0], args...)
	return cmd, tmpPath, nil
}

// Compose runs the editor on initial and returns the edited text. An emptied
// or unchanged buffer yields domain.ErrCanceled.
func (e *EnvEditor) Compose(ctx context.Context, initial, cw string) (string, error) {
	cmd, path, err := e.Cmd(ctx, initial, cw)
	if err != nil {
		return "", err
	}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = e.Stdin, e.Stdout, e.Stderr
	if err := cmd.Run(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("running editor: %w", err)
	}

	content, err := e.ReadContent(path)
	if err != nil {
		return "", err
	}
	if content == "" || content == strings.TrimSpace(initial) {
		return "", domain.ErrCanceled
	}
	return content, nil
}

// ReadContent reads the temp file, trims whitespace, and removes the file.
// It strips the instruction comment before returning.
func (e *EnvEditor) ReadContent(path string) (string, error) {
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading temp file: %w", err)
	}

	content := string(data)
	if idx := strings.Index(content, "-->"); idx != -1 {
		content = content[idx+3:]
	}
	return strings.TrimSpace(content), nil
}
