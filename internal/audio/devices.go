// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"io"
	"strings"

	"vocoder/internal/config"

	"github.com/gordonklaus/portaudio"
)

// PreferredDeviceName is chosen over every other duplex device when present.
const PreferredDeviceName = "pulse"

// Indirections over PortAudio so device selection can be tested without
// audio hardware.
var (
	paDevicesFunc            = portaudio.Devices
	paDefaultInputDeviceFunc = portaudio.DefaultInputDevice
)

// Initialize sets up the PortAudio subsystem.
// This must be called before any audio operations and paired with a Terminate() call.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem.
// This should be deferred immediately after Initialize().
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// isDuplex reports whether d can capture and play one channel each.
func isDuplex(d *portaudio.DeviceInfo) bool {
	return d != nil && d.MaxInputChannels >= 1 && d.MaxOutputChannels >= 1
}

// SelectDevice picks the device for the duplex stream: a device named
// PreferredDeviceName if one exists, else the configured device ID, else
// the system default input device.
func SelectDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	devices, err := paDevicesFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	return selectDevice(devices, deviceID, paDefaultInputDeviceFunc)
}

func selectDevice(
	devices []*portaudio.DeviceInfo,
	deviceID int,
	defaultDevice func() (*portaudio.DeviceInfo, error),
) (*portaudio.DeviceInfo, error) {
	for _, d := range devices {
		if d.Name == PreferredDeviceName && isDuplex(d) {
			return d, nil
		}
	}

	var device *portaudio.DeviceInfo
	if deviceID == config.MinDeviceID {
		d, err := defaultDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default device: %w", err)
		}
		device = d
	} else {
		if deviceID < 0 || deviceID >= len(devices) {
			return nil, fmt.Errorf("invalid device ID: %d", deviceID)
		}
		device = devices[deviceID]
	}

	if !isDuplex(device) {
		return nil, fmt.Errorf("device %q does not support duplex mono audio", device.Name)
	}
	return device, nil
}

// ListDevices writes information about all available audio devices to w.
// For each device, it shows:
// - Device ID and name
// - Device type (Input/Output/Input+Output)
// - Channel count
// - Default sample rate
// - Latency ranges
func ListDevices(w io.Writer) error {
	devices, err := HostDevices()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nAvailable Audio Devices\n\n")

	for _, d := range devices {
		var marks []string
		if d.Duplex() {
			marks = append(marks, "duplex")
		}
		if d.Name == PreferredDeviceName {
			marks = append(marks, "preferred")
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = " [" + strings.Join(marks, ", ") + "]"
		}

		fmt.Fprintf(w, "[%d] %s (%s)%s\n", d.ID, d.Name, d.Type(), suffix)
		fmt.Fprintf(w, "    Input channels: %d, Output channels: %d\n", d.MaxInputChannels, d.MaxOutputChannels)
		fmt.Fprintf(w, "    Default sample rate: %.0f Hz\n", d.DefaultSampleRate)
		fmt.Fprintf(w, "    Input latency: Low=%.2fms, High=%.2fms\n",
			d.LowInputLatency.Seconds()*1000, d.HighInputLatency.Seconds()*1000)
		fmt.Fprintf(w, "    Output latency: Low=%.2fms, High=%.2fms\n",
			d.LowOutputLatency.Seconds()*1000, d.HighOutputLatency.Seconds()*1000)
		fmt.Fprintln(w)
	}

	return nil
}
