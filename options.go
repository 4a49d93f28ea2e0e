package opusframe

import (
	"github.com/sirupsen/logrus"

	"github.com/thesyncim/opusframe/container/ogg"
)

// Option configures readers and decoders created by this package.
type Option func(*options)

type options struct {
	log   *logrus.Entry
	demux []ogg.Option
}

// WithLogger sets the logger used for diagnostics. The default is the logrus
// standard logger.
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithDemuxerOptions passes options through to the Ogg demuxer used by Open.
func WithDemuxerOptions(opts ...ogg.Option) Option {
	return func(o *options) {
		o.demux = append(o.demux, opts...)
	}
}

func newOptions(opts []Option) options {
	o := options{log: logrus.WithField("package", "opusframe")}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
