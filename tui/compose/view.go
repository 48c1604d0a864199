package compose

import (
	"fmt"
	"strings"

	"github.com/CrestNiraj12/mastosql/tui/common"
)

// View renders the draft with its content warning and a character counter.
func (m Model) View() string {
	if m.done || m.canceled {
		return ""
	}

	var b strings.Builder
	b.WriteString(common.AppTitleStyle.Render("mastosql"))
	b.WriteString("  New status\n\n")
	if m.cw != "" {
		b.WriteString(common.WarningStyle.Render("CW: " + m.cw))
		b.WriteString("\n")
	}
	b.WriteString(m.textarea.View())
	b.WriteString("\n")

	left := common.Remaining(m.textarea.Value(), common.StatusCharLimit)
	hint := fmt.Sprintf("  ctrl+d: post • esc: cancel • %d left", left)
	if left < 0 {
		b.WriteString(common.ErrorStyle.Render(hint))
	} else {
		b.WriteString(common.StatusBarStyle.Render(hint))
	}
	b.WriteString("\n")
	return b.String()
}
