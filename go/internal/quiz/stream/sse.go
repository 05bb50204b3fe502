package stream

import (
	"bufio"
	"bytes"
	"strings"
)

// frame is one decoded server-sent event.
type frame struct {
	name string
	data []byte
}

// readFrame reads the next event from an SSE stream. Field lines accumulate
// until a blank line dispatches the frame. Comment lines (leading colon,
// typically keepalives) and retry hints are ignored; the reconnection policy
// here is the channel's own.
func readFrame(r *bufio.Reader) (*frame, error) {
	var (
		name  string
		data  [][]byte
		dirty bool
	)

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if !dirty {
				continue
			}
			f := &frame{name: name, data: bytes.Join(data, []byte("\n"))}
			if f.name == "" {
				f.name = "message"
			}
			return f, nil
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			name = value
			dirty = true
		case "data":
			data = append(data, []byte(value))
			dirty = true
		case "id", "retry":
			// not used
		}
	}
}
