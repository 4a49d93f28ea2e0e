package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thesyncim/opusframe"
	"github.com/thesyncim/opusframe/container/ogg"
)

var packetLimit int

type packetsReport struct {
	Packets    []packetEntry `json:"packets" yaml:"packets"`
	Total      int           `json:"total" yaml:"total"`
	Malformed  int           `json:"malformed" yaml:"malformed"`
	DurationMS float64       `json:"duration_ms" yaml:"duration_ms"`
}

type packetEntry struct {
	Index   int           `json:"index" yaml:"index"`
	Size    int           `json:"size" yaml:"size"`
	Granule int64         `json:"granule" yaml:"granule"`
	Pages   int           `json:"pages" yaml:"pages"`
	Streams []streamEntry `json:"streams,omitempty" yaml:"streams,omitempty"`
	Error   string        `json:"error,omitempty" yaml:"error,omitempty"`
}

type streamEntry struct {
	Config     uint8   `json:"config" yaml:"config"`
	Mode       string  `json:"mode" yaml:"mode"`
	Bandwidth  string  `json:"bandwidth" yaml:"bandwidth"`
	FrameSize  string  `json:"frame_size" yaml:"frame_size"`
	Stereo     bool    `json:"stereo" yaml:"stereo"`
	Layout     string  `json:"layout" yaml:"layout"`
	VBR        bool    `json:"vbr,omitempty" yaml:"vbr,omitempty"`
	Padding    int     `json:"padding,omitempty" yaml:"padding,omitempty"`
	Frames     []int   `json:"frames" yaml:"frames"`
	DurationMS float64 `json:"duration_ms" yaml:"duration_ms"`
}

var packetsCmd = &cobra.Command{
	Use:   "packets <file>",
	Short: "Print the framing of every audio packet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(cmd, args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		d, err := ogg.NewDemuxer(in)
		if err != nil {
			return err
		}
		report, err := buildPacketsReport(d, packetLimit)
		if err != nil {
			return err
		}
		return outputResult(cmd.OutOrStdout(), report)
	},
}

func init() {
	packetsCmd.Flags().IntVar(&packetLimit, "limit", 0, "stop after this many packets (0 for all)")
}

func buildPacketsReport(d *ogg.Demuxer, limit int) (*packetsReport, error) {
	streams := int(d.Head().StreamCount)
	report := &packetsReport{Packets: []packetEntry{}}
	var parsed []opusframe.Packet

	for limit <= 0 || report.Total < limit {
		pkt, err := d.ReadPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		entry := packetEntry{
			Index:   report.Total,
			Size:    len(pkt.Data),
			Granule: pkt.GranulePos,
			Pages:   pkt.Pages,
		}
		report.Total++

		if err != nil {
			if !errors.Is(err, ogg.ErrPacketTooLarge) {
				return nil, fmt.Errorf("packet %d: %w", entry.Index, err)
			}
			entry.Error = err.Error()
			report.Malformed++
			report.Packets = append(report.Packets, entry)
			continue
		}

		parsed, err = opusframe.ParseMultistream(pkt.Data, streams, parsed)
		if err != nil {
			entry.Error = err.Error()
			report.Malformed++
			report.Packets = append(report.Packets, entry)
			continue
		}
		for i := range parsed {
			entry.Streams = append(entry.Streams, newStreamEntry(&parsed[i]))
		}
		report.DurationMS += entry.Streams[0].DurationMS
		report.Packets = append(report.Packets, entry)
	}
	return report, nil
}

func newStreamEntry(p *opusframe.Packet) streamEntry {
	e := streamEntry{
		Config:     p.Config.Number,
		Mode:       p.Config.Mode.String(),
		Bandwidth:  p.Config.Bandwidth.String(),
		FrameSize:  p.Config.FrameSize.String(),
		Stereo:     p.Stereo,
		Layout:     p.Layout.String(),
		VBR:        p.VBR,
		Padding:    p.Padding,
		Frames:     make([]int, len(p.Frames)),
		DurationMS: float64(p.Duration().Microseconds()) / 1000,
	}
	for i, f := range p.Frames {
		e.Frames[i] = len(f)
	}
	return e
}
