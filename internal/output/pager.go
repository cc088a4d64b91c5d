package output

import (
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
)

// ShouldPage reports whether content is taller than the terminal and stdout
// is interactive.
func ShouldPage(content string, termHeight int) bool {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return false
	}
	return strings.Count(content, "\n") > termHeight
}

// Page pipes content through $PAGER, or less.
func Page(content string) error {
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = "less"
	}

	cmd := exec.Command(pager)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
