package render

import (
	"strconv"
	"strings"
)

// PathCommand is one command of the path mini-language with its numeric
// arguments.
type PathCommand struct {
	Op     byte
	Args   []float64
	Offset int
}

// ParsePath splits an SVG-style path string into commands. Numbers may be
// separated by whitespace, commas or a sign. Text before the first command
// letter is ignored.
func ParsePath(d string) []PathCommand {
	var cmds []PathCommand
	var cur *PathCommand

	for i := 0; i < len(d); {
		ch := d[i]
		switch {
		case isCommandLetter(ch):
			cmds = append(cmds, PathCommand{Op: ch, Offset: i})
			cur = &cmds[len(cmds)-1]
			i++
		case ch == ' ' || ch == ',' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		default:
			n, width := scanNumber(d[i:])
			if width == 0 {
				i++
				continue
			}
			if cur != nil {
				cur.Args = append(cur.Args, n)
			}
			i += width
		}
	}
	return cmds
}

func isCommandLetter(ch byte) bool {
	if ch == 'e' || ch == 'E' {
		return false
	}
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// scanNumber reads a float at the start of s and returns it with the number
// of bytes consumed, or width 0 when s does not start with a number.
func scanNumber(s string) (float64, int) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, 0
	}
	return v, i
}

// TracePath replays a path string onto s. Move, line and close commands
// (plus the horizontal and vertical line forms) are drawn; anything else is
// skipped and reported.
func TracePath(s Surface, d string) []error {
	var errs []error
	var curX, curY, startX, startY float64

	for _, cmd := range ParsePath(d) {
		op := cmd.Op
		rel := op >= 'a' && op <= 'z'
		args := cmd.Args

		switch strings.ToUpper(string(op)) {
		case "M", "L":
			if len(args) < 2 {
				errs = append(errs, missingArgs(cmd))
				continue
			}
			for i := 0; i+1 < len(args); i += 2 {
				x, y := args[i], args[i+1]
				if rel {
					x, y = curX+x, curY+y
				}
				curX, curY = x, y
				// Pairs after the first in a move are implicit line-tos.
				if i == 0 && (op == 'M' || op == 'm') {
					s.MoveTo(x, y)
					startX, startY = x, y
				} else {
					s.LineTo(x, y)
				}
			}

		case "H":
			if len(args) < 1 {
				errs = append(errs, missingArgs(cmd))
				continue
			}
			for _, x := range args {
				if rel {
					x += curX
				}
				curX = x
				s.LineTo(curX, curY)
			}

		case "V":
			if len(args) < 1 {
				errs = append(errs, missingArgs(cmd))
				continue
			}
			for _, y := range args {
				if rel {
					y += curY
				}
				curY = y
				s.LineTo(curX, curY)
			}

		case "Z":
			s.ClosePath()
			curX, curY = startX, startY

		default:
			errs = append(errs, &UnsupportedPathCommandError{Command: string(op), Offset: cmd.Offset})
		}
	}
	return errs
}

func missingArgs(cmd PathCommand) error {
	return &UnsupportedPathCommandError{
		Command: string(cmd.Op),
		Offset:  cmd.Offset,
		Reason:  "missing coordinates",
	}
}
