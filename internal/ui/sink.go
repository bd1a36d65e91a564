package ui

import "neve/internal/builder"

// ChannelSink adapts builder.ProgressSink onto a channel, the shape
// NewProgressModel's Bubble Tea model reads from. Events are forwarded
// at OnEvent and the channel is left open; the caller closes it once the
// build that owns this sink is done, which unblocks the model's listen
// loop and lets it quit.
type ChannelSink struct {
	ch chan builder.Event
}

// NewChannelSink returns a ChannelSink along with the receive-only
// channel NewProgressModel should be given.
func NewChannelSink(buffer int) (*ChannelSink, <-chan builder.Event) {
	ch := make(chan builder.Event, buffer)
	return &ChannelSink{ch: ch}, ch
}

func (s *ChannelSink) OnEvent(e builder.Event) { s.ch <- e }

// Close signals the progress model that no more events are coming.
func (s *ChannelSink) Close() { close(s.ch) }
