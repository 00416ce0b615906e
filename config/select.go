package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// SelectDir asks for a folder on w and reads one line from r. An empty
// answer or end of input is a cancellation. When mustExist is set the folder
// has to be an existing directory. Pass the same *bufio.Reader to successive
// calls so buffered answers are not lost.
func SelectDir(r io.Reader, w io.Writer, title string, mustExist bool) (string, error) {
	fmt.Fprintf(w, "%s: ", title)
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read folder: %w", err)
	}
	dir := strings.TrimSpace(line)
	if dir == "" {
		return "", ErrCancelled
	}
	if mustExist {
		info, err := os.Stat(dir)
		if err != nil {
			return "", fmt.Errorf("open folder: %w", err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%s is not a folder", dir)
		}
	}
	return dir, nil
}
