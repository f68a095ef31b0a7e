// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"
)

func fakeDevices() []*portaudio.DeviceInfo {
	return []*portaudio.DeviceInfo{
		{Name: "mic", MaxInputChannels: 2, DefaultSampleRate: 48000},
		{Name: "speakers", MaxOutputChannels: 2, DefaultSampleRate: 48000},
		{
			Name:                   "interface",
			MaxInputChannels:       2,
			MaxOutputChannels:      2,
			DefaultSampleRate:      44100,
			DefaultLowInputLatency: 5 * time.Millisecond,
		},
	}
}

func withFakeDevices(t *testing.T, devices []*portaudio.DeviceInfo, def *portaudio.DeviceInfo) {
	t.Helper()
	origDevices, origDefault := paDevicesFunc, paDefaultInputDeviceFunc
	t.Cleanup(func() {
		paDevicesFunc, paDefaultInputDeviceFunc = origDevices, origDefault
	})
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) { return devices, nil }
	paDefaultInputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		if def == nil {
			return nil, fmt.Errorf("mock default input error")
		}
		return def, nil
	}
}

func TestSelectDevice(t *testing.T) {
	devices := fakeDevices()
	withFakeDevices(t, devices, devices[2])

	tests := []struct {
		name     string
		id       int
		want     string
		errorSub string
	}{
		{"Default device", -1, "interface", ""},
		{"Explicit duplex device", 2, "interface", ""},
		{"Input only device", 0, "", "does not support duplex"},
		{"Output only device", 1, "", "does not support duplex"},
		{"Negative ID", -2, "", "invalid device ID"},
		{"Too high ID", 10, "", "invalid device ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := SelectDevice(tt.id)
			if tt.errorSub != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errorSub) {
					t.Fatalf("SelectDevice(%d) error = %v, want substring %q", tt.id, err, tt.errorSub)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectDevice(%d) error: %v", tt.id, err)
			}
			if dev.Name != tt.want {
				t.Errorf("SelectDevice(%d) = %q, want %q", tt.id, dev.Name, tt.want)
			}
		})
	}
}

func TestSelectDevicePrefersPulse(t *testing.T) {
	devices := append(fakeDevices(), &portaudio.DeviceInfo{
		Name:              PreferredDeviceName,
		MaxInputChannels:  32,
		MaxOutputChannels: 32,
	})
	withFakeDevices(t, devices, devices[2])

	dev, err := SelectDevice(2)
	if err != nil {
		t.Fatalf("SelectDevice error: %v", err)
	}
	if dev.Name != PreferredDeviceName {
		t.Errorf("SelectDevice = %q, want %q", dev.Name, PreferredDeviceName)
	}
}

func TestSelectDeviceDefaultError(t *testing.T) {
	withFakeDevices(t, fakeDevices(), nil)

	_, err := SelectDevice(-1)
	if err == nil || !strings.Contains(err.Error(), "mock default input error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestSelectDevice_paDevicesError(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock error")
	}

	_, err := SelectDevice(-1)
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
	if _, err := HostDevices(); err == nil {
		t.Error("HostDevices: expected error")
	}
}

func TestHostDevices(t *testing.T) {
	withFakeDevices(t, fakeDevices(), nil)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) != 3 {
		t.Fatalf("len(devices) = %d, want 3", len(devices))
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
	}

	wantTypes := []string{"Input", "Output", "Input/Output"}
	for i, want := range wantTypes {
		if got := devices[i].Type(); got != want {
			t.Errorf("device %d Type() = %q, want %q", i, got, want)
		}
	}
	if devices[0].Duplex() || !devices[2].Duplex() {
		t.Error("Duplex() misreports channel capabilities")
	}
	if devices[2].LowInputLatency != 5*time.Millisecond {
		t.Errorf("LowInputLatency = %v, want 5ms", devices[2].LowInputLatency)
	}
}

func TestListDevices(t *testing.T) {
	devices := append(fakeDevices(), &portaudio.DeviceInfo{
		Name:              PreferredDeviceName,
		MaxInputChannels:  1,
		MaxOutputChannels: 1,
	})
	withFakeDevices(t, devices, nil)

	var buf bytes.Buffer
	if err := ListDevices(&buf); err != nil {
		t.Fatalf("ListDevices error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"[0] mic (Input)", "[2] interface (Input/Output) [duplex]", "[3] pulse (Input/Output) [duplex, preferred]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
