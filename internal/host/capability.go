package host

import "context"

// ItemResolver resolves item prices and display names. The host requires
// these to be called from its designated processing context; callers treat
// the results as authoritative at capture time.
type ItemResolver interface {
	PriceOf(itemID int) int
	NameOf(itemID int) string
}

// CompanionResolver reports the local player's current follower, when one
// is present. Used as the primary pet-name source.
type CompanionResolver interface {
	FollowerName() (string, bool)
}

// Frame is one captured client frame, already encoded.
type Frame struct {
	PNG []byte
}

// FrameResult is the completion value of an asynchronous frame capture.
type FrameResult struct {
	Frame *Frame
	Err   error
}

// FrameCapturer captures the next rendered client frame. The returned
// channel receives exactly one result; completion timing is owned by the
// host runtime, not the caller.
type FrameCapturer interface {
	CaptureFrame(ctx context.Context) <-chan FrameResult
}

// ConfigStore is the host's persisted key-value configuration store. The
// core serializes its own documents into it and assumes nothing about the
// underlying storage.
type ConfigStore interface {
	Read(key string) (string, error)
	Write(key, value string) error
}
