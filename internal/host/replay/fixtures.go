// Package replay implements the host boundary for development runs: signals
// come from a recorded JSONL file instead of the game client, and the
// capability interfaces are backed by fixtures.
package replay

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"osrsloottracker.dev/plugin-core/internal/host"
)

// Item is one fixture entry of the replay item table.
type Item struct {
	Name  string
	Price int
}

// ItemTable resolves item names and prices from a static fixture map.
// Unknown ids resolve to a zero price and a synthetic name so a replay file
// never fails on resolution.
type ItemTable map[int]Item

var _ host.ItemResolver = ItemTable{}

func (t ItemTable) PriceOf(itemID int) int {
	return t[itemID].Price
}

func (t ItemTable) NameOf(itemID int) string {
	if it, ok := t[itemID]; ok {
		return it.Name
	}
	return "Item " + strconv.Itoa(itemID)
}

// NoFollower is a companion resolver for replays without follower state.
type NoFollower struct{}

var _ host.CompanionResolver = NoFollower{}

func (NoFollower) FollowerName() (string, bool) {
	return "", false
}

// StaticCapturer completes every frame capture immediately with a fixed
// frame, or a fixed error to exercise the capture-failure path.
type StaticCapturer struct {
	PNG []byte
	Err error
}

var _ host.FrameCapturer = StaticCapturer{}

func (c StaticCapturer) CaptureFrame(ctx context.Context) <-chan host.FrameResult {
	out := make(chan host.FrameResult, 1)
	if c.Err != nil {
		out <- host.FrameResult{Err: c.Err}
	} else {
		out <- host.FrameResult{Frame: &host.Frame{PNG: c.PNG}}
	}
	close(out)
	return out
}

// FileStore is a directory-backed config store, one file per key. It stands
// in for the game client's profile storage during replays.
type FileStore struct {
	dir string
}

var _ host.ConfigStore = (*FileStore)(nil)

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create config store directory")
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Read(key string) (string, error) {
	b, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "read config key %s", key)
	}
	return string(b), nil
}

func (s *FileStore) Write(key, value string) error {
	return errors.Wrapf(os.WriteFile(s.path(key), []byte(value), 0o644), "write config key %s", key)
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
