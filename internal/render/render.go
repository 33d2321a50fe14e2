// Package render prints board summaries for terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
)

var playerColors = [core.MaxPlayers]*color.Color{
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgRed, color.Bold),
	color.New(color.FgBlue, color.Bold),
	color.New(color.FgYellow, color.Bold),
}

var (
	faint  = color.New(color.Faint)
	header = color.New(color.FgCyan, color.Bold)
	gold   = color.New(color.FgYellow)
)

// Player colours s in the colour of seat p.
func Player(p int, s string) string {
	if p < 0 || p >= len(playerColors) {
		return s
	}
	return playerColors[p].Sprint(s)
}

// PlayerName is the colour name of seat p, coloured.
func PlayerName(p int) string {
	return Player(p, core.Color(p).String())
}

// Move formats one move log line.
func Move(n, p int, text string) string {
	return fmt.Sprintf("%s %s %s", faint.Sprintf("%4d", n), Player(p, fmt.Sprintf("%-6s", core.Color(p))), text)
}

// Summary renders the day, the dice tower, the caravan and one line per
// player.
func Summary(b *game.Board) string {
	var sb strings.Builder
	day := b.GameDay()
	sb.WriteString(header.Sprintf("Week %d day %d", day/core.Days+1, day%core.Days+1))
	fmt.Fprintf(&sb, "  %s  to move: %s\n", b.State(), PlayerName(b.WhoseTurn()))
	writeTower(&sb, b)
	writeCaravan(&sb, b)
	for p := 0; p < b.Players(); p++ {
		writePlayer(&sb, b, p)
	}
	if b.GameOver() {
		sb.WriteString(Result(b))
	}
	return sb.String()
}

func writeTower(sb *strings.Builder, b *game.Board) {
	sup := b.Supervisor()
	if sup != core.NoCell {
		fmt.Fprintf(sb, "  supervisor at %d\n", core.TrackPos(sup))
	}
	for r := 0; r < core.NumRows; r++ {
		n := b.Height(core.TowerDiceCell(r))
		if n == 0 {
			continue
		}
		face := 0
		if top, ok := b.Top(core.TowerDiceCell(r)); ok {
			face = top.Face()
		}
		fmt.Fprintf(sb, "  %-7s %d x %d", core.RowNames[r], n, face)
		if g := b.Height(core.TowerGoldCell(r)); g > 0 {
			sb.WriteString(gold.Sprintf("  +%d gold", g))
		}
		if b.Height(core.TowerCardCell(r)) > 0 {
			sb.WriteString("  +card")
		}
		sb.WriteString("\n")
	}
}

func writeCaravan(sb *strings.Builder, b *game.Board) {
	sb.WriteString("  caravan ")
	for i := 0; i < b.CaravanLen(); i++ {
		top, ok := b.Top(core.CaravanCell(i))
		if !ok {
			sb.WriteString(faint.Sprint("."))
			continue
		}
		sb.WriteString(Player(int(top.Color()), "#"))
	}
	sb.WriteString("\n")
}

func writePlayer(sb *strings.Builder, b *game.Board, p int) {
	marker := " "
	if p == b.WhoseTurn() && !b.GameOver() {
		marker = ">"
	}
	fmt.Fprintf(sb, "%s %s %3d vp  %2d gold  %2d camels  %2d cubes  %d cards  %d buildings\n",
		marker, Player(p, fmt.Sprintf("%-6s", core.Color(p))),
		b.VP(p), b.Gold(p), b.Camels(p), b.Cubes(p), len(b.Cards(p)), b.BuildingsOwned(p))
}

// Result lists final scores with the winners marked.
func Result(b *game.Board) string {
	var sb strings.Builder
	scores := b.Scores()
	won := make(map[int]bool)
	for _, w := range b.Winners() {
		won[w] = true
	}
	sb.WriteString(header.Sprint("Final scores"))
	sb.WriteString("\n")
	for p, s := range scores {
		line := fmt.Sprintf("  %-6s %3d", core.Color(p), s)
		if won[p] {
			line += "  winner"
		}
		sb.WriteString(Player(p, line))
		sb.WriteString("\n")
	}
	return sb.String()
}
