package view

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/arena-core/combat"
	"github.com/lixenwraith/arena-core/vmath"
)

// CommandKind classifies a key press
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdMove
	CmdDash
	CmdUpgrade
	CmdPause
	CmdQuit
)

// Command is a decoded key press
type Command struct {
	Kind    CommandKind
	Move    vmath.Vec2 // CmdMove; zero stops
	Upgrade string     // CmdUpgrade
}

// upgradeKeys binds digits to upgrades in menu order
var upgradeKeys = map[rune]string{
	'1': combat.UpgradeDamage,
	'2': combat.UpgradeCrit,
	'3': combat.UpgradeSpeed,
	'4': combat.UpgradeMaxHP,
	'5': combat.UpgradeCooldown,
	'6': combat.UpgradeFireRate,
	'7': combat.UpgradeTether,
}

// Terminals report presses without releases, so a direction holds until changed
var moveKeys = map[rune]vmath.Vec2{
	'w': vmath.V(0, -1),
	'a': vmath.V(-1, 0),
	's': vmath.V(0, 1),
	'd': vmath.V(1, 0),
	'q': vmath.V(-1, -1).Normalize(),
	'e': vmath.V(1, -1).Normalize(),
	'z': vmath.V(-1, 1).Normalize(),
	'c': vmath.V(1, 1).Normalize(),
	'x': {},
}

// HandleKey decodes one key event
func HandleKey(ev *tcell.EventKey) Command {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Command{Kind: CmdQuit}
	case tcell.KeyUp:
		return Command{Kind: CmdMove, Move: vmath.V(0, -1)}
	case tcell.KeyDown:
		return Command{Kind: CmdMove, Move: vmath.V(0, 1)}
	case tcell.KeyLeft:
		return Command{Kind: CmdMove, Move: vmath.V(-1, 0)}
	case tcell.KeyRight:
		return Command{Kind: CmdMove, Move: vmath.V(1, 0)}
	case tcell.KeyRune:
	default:
		return Command{}
	}

	r := ev.Rune()
	if dir, ok := moveKeys[r]; ok {
		return Command{Kind: CmdMove, Move: dir}
	}
	if name, ok := upgradeKeys[r]; ok {
		return Command{Kind: CmdUpgrade, Upgrade: name}
	}
	switch r {
	case ' ':
		return Command{Kind: CmdDash}
	case 'p':
		return Command{Kind: CmdPause}
	}
	return Command{}
}
