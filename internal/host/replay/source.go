package replay

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"osrsloottracker.dev/plugin-core/internal/host"
)

// line is one recorded signal. Exactly one of Loot and Chat is set,
// discriminated by Type.
type line struct {
	Type string           `json:"type"`
	Loot *host.LootSignal `json:"loot,omitempty"`
	Chat *host.ChatSignal `json:"chat,omitempty"`

	// DelayMs optionally spaces signals out to reproduce timing-sensitive
	// behavior such as dedup windows.
	DelayMs int `json:"delay_ms,omitempty"`
}

// Feed reads JSONL-recorded signals from r and publishes them to the bus in
// order. Malformed lines are skipped with a warning so one bad record does
// not abort a long replay. Returns the number of published signals.
func Feed(r io.Reader, bus *host.Bus) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	published := 0
	for n := 1; scanner.Scan(); n++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var l line
		if err := json.Unmarshal([]byte(text), &l); err != nil {
			log.Warn().Err(err).Int("line", n).Msg("skipping malformed replay line")
			continue
		}

		if l.DelayMs > 0 {
			time.Sleep(time.Duration(l.DelayMs) * time.Millisecond)
		}

		sig, err := l.signal()
		if err != nil {
			log.Warn().Err(err).Int("line", n).Msg("skipping replay line")
			continue
		}

		if !bus.Publish(sig) {
			log.Warn().Int("line", n).Msg("bus rejected replay signal")
			continue
		}
		published++
	}

	return published, errors.Wrap(scanner.Err(), "read replay file")
}

func (l *line) signal() (host.Signal, error) {
	switch l.Type {
	case "loot":
		if l.Loot == nil {
			return nil, errors.New("loot line without loot payload")
		}
		return l.Loot, nil
	case "chat":
		if l.Chat == nil {
			return nil, errors.New("chat line without chat payload")
		}
		return l.Chat, nil
	default:
		return nil, errors.Errorf("unknown replay line type %q", l.Type)
	}
}
