package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// askYesNo prints question with a [y/N] or [Y/n] suffix and reads the answer
// from in. A blank answer takes the default; read errors count as no.
func askYesNo(in *bufio.Reader, out io.Writer, question string, defaultYes bool) bool {
	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}
	if out != nil {
		fmt.Fprint(out, question+suffix)
	}

	answer, err := readLine(in)
	if err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return defaultYes
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readLine reads one line from in. LF or CR ends it so Enter works in cooked
// and raw terminal modes; a buffered CRLF pair is consumed as one break.
// A final line without a break is returned with a nil error.
func readLine(in *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		c, err := in.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				return b.String(), nil
			}
			return b.String(), err
		}

		switch c {
		case '\n':
			return b.String(), nil
		case '\r':
			if in.Buffered() > 0 {
				if next, _ := in.Peek(1); len(next) == 1 && next[0] == '\n' {
					in.ReadByte() //nolint:errcheck
				}
			}
			return b.String(), nil
		}
		b.WriteByte(c)
	}
}
