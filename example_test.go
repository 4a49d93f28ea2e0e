package opusframe_test

import (
	"fmt"

	"github.com/thesyncim/opusframe"
)

func ExampleParse() {
	// Code 3, VBR, three frames of config 30 (CELT FB 10ms).
	data := []byte{0xF3, 0x83, 1, 2, 0xA, 0xB, 0xB, 0xC, 0xC, 0xC}

	p, err := opusframe.Parse(data)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(p.Config, p.Layout, p.Duration())
	for _, f := range p.Frames {
		fmt.Printf("% x\n", f)
	}
	// Output:
	// 30 (CELT FB 10ms) arbitrary 30ms
	// 0a
	// 0b 0b
	// 0c 0c 0c
}

func ExampleParseSelfDelimited() {
	data := []byte{0xF8, 0x02, 0xAA, 0xBB, 0xF8, 0xCC}

	p, rest, err := opusframe.ParseSelfDelimited(data)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("frame % x, %d bytes follow\n", p.Frames[0], len(rest))
	// Output: frame aa bb, 2 bytes follow
}

func ExampleAppendPacket() {
	frames := [][]byte{{1, 2, 3}, {4}}
	data, err := opusframe.AppendPacket(nil, 31, true, frames, opusframe.BuildOptions{})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("% x\n", data)
	// Output: fe 03 01 02 03 04
}
