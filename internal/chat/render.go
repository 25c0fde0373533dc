// Console rendering for the chat overlay.
package chat

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// kindBadges give each entry kind a short marker in the overlay.
var kindBadges = map[Kind]string{
	KindJoin:     "JOIN",
	KindChat:     "CHAT",
	KindMovement: "MOVE",
	KindTrade:    "TRADE",
	KindLoot:     "LOOT",
	KindSystem:   "SYS",
	KindEvent:    "EVENT",
	KindBattle:   "BATTLE",
	KindLevelUp:  "LEVEL",
	KindMet:      "MET",
}

var kindStyles = map[Kind]lipgloss.Style{
	KindJoin:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	KindChat:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	KindMovement: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	KindTrade:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	KindLoot:     lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	KindSystem:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	KindEvent:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	KindBattle:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	KindLevelUp:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	KindMet:      lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
}

var (
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	agentStyle = lipgloss.NewStyle().Bold(true)
)

// Renderer writes styled overlay lines to an io.Writer.
type Renderer struct {
	w io.Writer
}

// NewRenderer creates a console renderer.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render writes one styled line for the entry.
func (r *Renderer) Render(e Entry) {
	badge, ok := kindBadges[e.Kind]
	if !ok {
		badge = "LOG"
	}
	style, ok := kindStyles[e.Kind]
	if !ok {
		style = kindStyles[KindSystem]
	}

	fmt.Fprintf(r.w, "%s %s %s: %s\n",
		timeStyle.Render("["+e.Time.Format("15:04:05")+"]"),
		style.Render(fmt.Sprintf("%-6s", badge)),
		agentStyle.Render(e.Agent),
		e.Text,
	)
}

// RenderRecent writes the last n entries, oldest first.
func (r *Renderer) RenderRecent(l *Log, n int) {
	for _, e := range l.Recent(n) {
		r.Render(e)
	}
}
