package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thesyncim/opusframe"
	"github.com/thesyncim/opusframe/container/ogg"
)

type headersReport struct {
	Version         string         `json:"version" yaml:"version"`
	Channels        int            `json:"channels" yaml:"channels"`
	PreSkip         uint16         `json:"pre_skip" yaml:"pre_skip"`
	InputSampleRate uint32         `json:"input_sample_rate,omitempty" yaml:"input_sample_rate,omitempty"`
	OutputGainQ8    int16          `json:"output_gain_q8" yaml:"output_gain_q8"`
	MappingFamily   uint8          `json:"mapping_family" yaml:"mapping_family"`
	StreamCount     uint8          `json:"stream_count" yaml:"stream_count"`
	CoupledCount    uint8          `json:"coupled_count" yaml:"coupled_count"`
	ChannelMapping  []int          `json:"channel_mapping,omitempty" yaml:"channel_mapping,omitempty"`
	Vendor          string         `json:"vendor" yaml:"vendor"`
	Comments        []commentEntry `json:"comments,omitempty" yaml:"comments,omitempty"`
	Malformed       int            `json:"malformed_comments,omitempty" yaml:"malformed_comments,omitempty"`
	Truncated       bool           `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

type commentEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

var headersCmd = &cobra.Command{
	Use:   "headers <file>",
	Short: "Print the identification and comment headers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(cmd, args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		s, err := opusframe.Open(in, nil)
		if err != nil {
			return err
		}
		return outputResult(cmd.OutOrStdout(), buildHeadersReport(s))
	},
}

func buildHeadersReport(s *opusframe.StreamReader) headersReport {
	head := s.Head()
	major, minor := s.Version()
	r := headersReport{
		Version:       versionString(major, minor),
		Channels:      s.Channels(),
		PreSkip:       s.PreSkip(),
		OutputGainQ8:  s.OutputGain(),
		MappingFamily: head.MappingFamily,
		StreamCount:   head.StreamCount,
		CoupledCount:  head.CoupledCount,
		Vendor:        s.Vendor(),
		Truncated:     s.Tags().Truncated(),
	}
	if rate, ok := s.SampleRate(); ok {
		r.InputSampleRate = rate
	}
	for _, m := range head.ChannelMapping {
		r.ChannelMapping = append(r.ChannelMapping, int(m))
	}

	comments := s.Comments()
	for comments.Remaining() > 0 {
		key, value, err := comments.Next()
		if err != nil {
			if errors.Is(err, ogg.ErrMalformedComment) {
				r.Malformed++
				continue
			}
			break
		}
		r.Comments = append(r.Comments, commentEntry{Key: key, Value: value})
	}
	return r
}

func versionString(major, minor uint8) string {
	return fmt.Sprintf("%d.%d", major, minor)
}
