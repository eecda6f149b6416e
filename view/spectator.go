package view

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/arena-core/entity"
	"github.com/lixenwraith/arena-core/terrain"
	"github.com/lixenwraith/arena-core/vmath"
)

var (
	styleGround  = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHost    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleGuest   = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleEnemy   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleElite   = tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)
	styleBoss    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Reverse(true)
	styleShot    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHostile = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleZone    = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	styleHUD     = tcell.StyleDefault.Reverse(true)
)

var kindGlyphs = map[entity.Kind]rune{
	entity.KindJelly:     'j',
	entity.KindTriDart:   'v',
	entity.KindCharger:   'c',
	entity.KindWisp:      'w',
	entity.KindCrab:      'x',
	entity.KindSplitter:  's',
	entity.KindSentinel:  'T',
	entity.KindGolem:     'G',
	entity.KindLootBunny: '$',
	entity.KindPhantom:   'p',
	entity.KindBoss:      'B',
}

// Spectator draws frames onto a tcell screen; the top row is the HUD
type Spectator struct {
	screen tcell.Screen
}

// New wraps an initialized screen
func New(screen tcell.Screen) *Spectator {
	return &Spectator{screen: screen}
}

// projector maps world coordinates to screen cells below the HUD row
type projector struct {
	cols, rows int
	sx, sy     float64
}

func newProjector(world vmath.Vec2, cols, rows int) projector {
	p := projector{cols: cols, rows: rows - 1}
	if p.rows < 1 {
		p.rows = 1
	}
	if world.X > 0 {
		p.sx = float64(cols) / world.X
	}
	if world.Y > 0 {
		p.sy = float64(p.rows) / world.Y
	}
	return p
}

func (p projector) cell(pos vmath.Vec2) (int, int, bool) {
	x := int(pos.X * p.sx)
	y := int(pos.Y * p.sy)
	if x < 0 || y < 0 || x >= p.cols || y >= p.rows {
		return 0, 0, false
	}
	return x, y + 1, true
}

// Draw renders f and shows the screen
func (s *Spectator) Draw(f *Frame) {
	s.screen.Clear()
	cols, rows := s.screen.Size()
	if f.World == nil || cols <= 0 || rows <= 1 {
		s.screen.Show()
		return
	}
	proj := newProjector(f.World.WorldSize(), cols, rows)

	s.drawTerrain(f.World, proj)
	for _, z := range f.Zones {
		s.put(proj, z, 'E', styleZone)
	}
	for _, e := range f.Enemies {
		glyph, style := enemyGlyph(e)
		s.put(proj, e.Pos, glyph, style)
	}
	for _, p := range f.Shots {
		s.put(proj, p, '*', styleShot)
	}
	for _, p := range f.Hostile {
		s.put(proj, p, 'o', styleHostile)
	}
	if f.HasGuest {
		s.put(proj, f.Guest, '&', styleGuest)
	}
	s.put(proj, f.Host, '@', styleHost)

	s.drawText(0, 0, padRight(HUD(f), cols), styleHUD)
	s.screen.Show()
}

func (s *Spectator) drawTerrain(m *terrain.Map, proj projector) {
	for _, t := range m.Tiles() {
		var glyph rune
		style := styleGround
		switch t.Type {
		case terrain.Ground:
			glyph = '.'
		case terrain.Bridge:
			glyph = '='
		case terrain.Wall:
			glyph, style = '#', styleWall
		default:
			continue
		}
		s.put(proj, m.TileCenter(t.X, t.Y), glyph, style)
	}
}

func (s *Spectator) put(proj projector, pos vmath.Vec2, r rune, style tcell.Style) {
	if x, y, ok := proj.cell(pos); ok {
		s.screen.SetContent(x, y, r, nil, style)
	}
}

func (s *Spectator) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.screen.SetContent(x+i, y, r, nil, style)
	}
}

func enemyGlyph(e Mark) (rune, tcell.Style) {
	glyph, ok := kindGlyphs[e.Kind]
	if !ok {
		glyph = '?'
	}
	switch {
	case e.Boss:
		return 'B', styleBoss
	case e.Elite:
		return glyph, styleElite
	}
	return glyph, styleEnemy
}

// HUD formats the status line
func HUD(f *Frame) string {
	st := f.Stats
	line := fmt.Sprintf(" HP %.0f/%.0f  LV %d  XP %d/%d  SCORE %d  WAVE %d  ENEMIES %d",
		st.HP, st.MaxHP, st.Level, st.XP, st.XPToNext, st.Score, st.Wave, st.EnemiesAlive)
	if f.Extract > 0 {
		line += fmt.Sprintf("  EXTRACT %d%%", int(f.Extract*100))
	}
	switch {
	case f.Over:
		line += "  [MATCH OVER]"
	case f.Paused:
		line += "  [PAUSED]"
	}
	return line
}

func padRight(s string, n int) string {
	r := []rune(s)
	if len(r) >= n {
		return string(r[:n])
	}
	out := make([]rune, n)
	copy(out, r)
	for i := len(r); i < n; i++ {
		out[i] = ' '
	}
	return string(out)
}
