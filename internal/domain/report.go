package domain

import (
	"bufio"
	"bytes"
	"strings"
)

// SplitLines splits a report body into lines, dropping any trailing carriage
// returns.
func SplitLines(body []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines
}

// CountDataLines returns the number of non-empty, non-comment lines.
func CountDataLines(lines []string) int {
	n := 0
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		n++
	}
	return n
}
