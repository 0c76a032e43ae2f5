package audio

import (
	"os/exec"
	"regexp"
	"runtime"
	"strings"
)

// Device identifies an audio input device.
type Device struct {
	ID   string // Identifier to pass to NewCapture
	Name string // Human-readable name
}

// deviceListConfig defines how to enumerate input devices on a platform.
type deviceListConfig struct {
	command     []string
	startMarker string // start of the audio section in output, "" for none
	stopMarker  string // end of the audio section, "" for none
	pattern     *regexp.Regexp
	parse       func(matches []string) Device
}

// ListInputDevices returns the audio input devices available on this
// machine. Detection failures yield an empty list rather than an error;
// capture can still be attempted with the platform default device.
func ListInputDevices() []Device {
	return parseDeviceList(platformDeviceConfig())
}

func platformDeviceConfig() deviceListConfig {
	switch runtime.GOOS {
	case "darwin":
		return deviceListConfig{
			command:     []string{"ffmpeg", "-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", ""},
			startMarker: "AVFoundation audio devices",
			pattern:     regexp.MustCompile(`\[(\d+)\]\s+(.+)$`),
			parse: func(m []string) Device {
				return Device{ID: m[1], Name: strings.TrimSpace(m[2])}
			},
		}
	case "windows":
		return deviceListConfig{
			command:     []string{"ffmpeg", "-hide_banner", "-list_devices", "true", "-f", "dshow", "-i", "dummy"},
			startMarker: "DirectShow audio devices",
			pattern:     regexp.MustCompile(`"([^"]+)"`),
			parse: func(m []string) Device {
				return Device{ID: m[1], Name: m[1]}
			},
		}
	default:
		return deviceListConfig{
			command: []string{"arecord", "-l"},
			pattern: regexp.MustCompile(`card (\d+): ([^\[]+) \[([^\]]+)\], device (\d+):`),
			parse: func(m []string) Device {
				return Device{
					ID:   "hw:" + m[1] + "," + m[4],
					Name: strings.TrimSpace(m[3]),
				}
			},
		}
	}
}

// parseDeviceList runs the platform list command and extracts devices from
// its output. ffmpeg prints device lists to stderr with a nonzero exit, so
// combined output is parsed even when the command "fails".
func parseDeviceList(cfg deviceListConfig) []Device {
	if len(cfg.command) == 0 {
		return nil
	}

	cmd := exec.Command(cfg.command[0], cfg.command[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil && len(output) == 0 {
		return nil
	}

	var devices []Device
	inSection := cfg.startMarker == ""

	for _, line := range strings.Split(string(output), "\n") {
		if cfg.startMarker != "" && strings.Contains(line, cfg.startMarker) {
			inSection = true
			continue
		}
		if cfg.stopMarker != "" && strings.Contains(line, cfg.stopMarker) {
			inSection = false
			continue
		}
		if !inSection {
			continue
		}

		if matches := cfg.pattern.FindStringSubmatch(line); len(matches) > 0 {
			devices = append(devices, cfg.parse(matches))
		}
	}

	return devices
}
