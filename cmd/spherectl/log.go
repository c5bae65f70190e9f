package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inamate/easel/internal/engine"
)

// readLog reads one opcode per line. Blank lines and lines starting with #
// are skipped. A path of "-" reads stdin.
func readLog(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return parseLog(r)
}

func parseLog(r io.Reader) ([]string, error) {
	var ops []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ops = append(ops, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return ops, nil
}

func replay(ops []string) (*engine.Engine, error) {
	e := engine.NewEngine(0)
	if err := e.Replay(ops); err != nil {
		return nil, err
	}
	return e, nil
}

// action returns the action token of an opcode.
func action(op string) string {
	first, _, _ := strings.Cut(op, "&")
	key, value, ok := strings.Cut(first, "=")
	if !ok || key != "action" {
		return "?"
	}
	return value
}
