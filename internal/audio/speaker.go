package audio

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// speakerDevice plays through beep's speaker package (oto backend)
type speakerDevice struct{}

func (speakerDevice) Open(sr beep.SampleRate, bufferSize int, s beep.Streamer) error {
	if err := speaker.Init(sr, bufferSize); err != nil {
		return err
	}
	speaker.Play(s)
	return nil
}

func (speakerDevice) Suspend() error {
	return speaker.Suspend()
}

func (speakerDevice) Resume() error {
	return speaker.Resume()
}

func (speakerDevice) Close() {
	speaker.Close()
}
