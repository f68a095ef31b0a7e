// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Device is a snapshot of one PortAudio device.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	LowInputLatency   time.Duration
	HighInputLatency  time.Duration
	LowOutputLatency  time.Duration
	HighOutputLatency time.Duration
}

// Duplex reports whether the device can run the mono duplex stream.
func (d Device) Duplex() bool {
	return d.MaxInputChannels >= 1 && d.MaxOutputChannels >= 1
}

// Type describes the device direction.
func (d Device) Type() string {
	switch {
	case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
		return "Input/Output"
	case d.MaxInputChannels > 0:
		return "Input"
	case d.MaxOutputChannels > 0:
		return "Output"
	default:
		return "None"
	}
}

// HostDevices returns all available audio devices. PortAudio must be
// initialized.
func HostDevices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	return toDevices(infos), nil
}

func toDevices(infos []*portaudio.DeviceInfo) []Device {
	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			LowInputLatency:   info.DefaultLowInputLatency,
			HighInputLatency:  info.DefaultHighInputLatency,
			LowOutputLatency:  info.DefaultLowOutputLatency,
			HighOutputLatency: info.DefaultHighOutputLatency,
		}
	}
	return devices
}
