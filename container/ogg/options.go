package ogg

import "github.com/sirupsen/logrus"

// Option configures a PacketReader or Demuxer.
type Option func(*config)

type config struct {
	log           *logrus.Entry
	maxPacketSize int
}

// WithLogger sets the logger for diagnostics.
func WithLogger(log *logrus.Entry) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMaxPacketSize caps the size of an assembled packet. Larger packets are
// drained and reported as ErrPacketTooLarge; the demuxer reports an oversized
// comment header as ErrDenialOfService. The default is MaxCommentPacketSize.
func WithMaxPacketSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxPacketSize = n
		}
	}
}

func newConfig(opts []Option) config {
	c := config{
		log:           logrus.WithField("package", "ogg"),
		maxPacketSize: MaxCommentPacketSize,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
