package commands

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thesyncim/opusframe"
	"github.com/thesyncim/opusframe/payload/pionopus"
)

var (
	decodeOutput      string
	decodeKeepPreSkip bool
)

// maxPacketSamples is 120ms at 48kHz.
const maxPacketSamples = 5760

type decodeReport struct {
	Channels int   `json:"channels" yaml:"channels"`
	Packets  int   `json:"packets" yaml:"packets"`
	Skipped  int   `json:"skipped" yaml:"skipped"`
	Samples  int64 `json:"samples" yaml:"samples"`
	PreSkip  int   `json:"pre_skip_trimmed" yaml:"pre_skip_trimmed"`
}

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decode wideband SILK streams to raw S16LE PCM",
	Long: `Decode a mono or stereo Ogg Opus stream of wideband 20ms SILK frames to
raw 48kHz little-endian 16-bit PCM. Packets that cannot be decoded are
skipped and counted. The report goes to stdout, or to stderr when PCM is written to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(cmd, args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		out, reportTo := cmd.OutOrStdout(), cmd.ErrOrStderr()
		if decodeOutput != "" {
			f, err := os.Create(decodeOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out, reportTo = f, cmd.OutOrStdout()
		}

		s, err := opusframe.Open(in, pionopus.New())
		if err != nil {
			return err
		}
		w := bufio.NewWriter(out)
		report, err := decodeStream(s, w, !decodeKeepPreSkip)
		if err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return outputResult(reportTo, report)
	},
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeOutput, "output", "o", "", "output file (default: stdout)")
	decodeCmd.Flags().BoolVar(&decodeKeepPreSkip, "keep-pre-skip", false, "keep the pre-skip samples at the start")
}

func decodeStream(s *opusframe.StreamReader, w io.Writer, trim bool) (*decodeReport, error) {
	channels := s.Channels()
	report := &decodeReport{Channels: channels}
	skip := 0
	if trim {
		skip = int(s.PreSkip())
	}
	pcm := make([]int16, maxPacketSamples*channels)
	buf := make([]byte, 0, 2*len(pcm))

	for {
		n, err := s.ReadSamples(pcm)
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *opusframe.PacketError
		if errors.As(err, &pe) {
			logrus.WithFields(logrus.Fields{
				"function": "decodeStream",
				"granule":  pe.GranulePos,
				"error":    pe.Err.Error(),
			}).Warn("Skipping undecodable packet")
			report.Packets++
			report.Skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		report.Packets++

		samples := pcm[:n*channels]
		if skip > 0 {
			drop := min(skip, n)
			skip -= drop
			report.PreSkip += drop
			samples = samples[drop*channels:]
		}

		buf = buf[:0]
		for _, v := range samples {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
		}
		if _, err := w.Write(buf); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		report.Samples += int64(len(samples) / channels)
	}
	return report, nil
}
