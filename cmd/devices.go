package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/needledrop/internal/audio"
)

// devicesCmd represents the devices command
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available audio input devices",
	Long: `List the audio input devices available on this machine.

Use the ID column as the value for audio.device in the config file to
select which input the daemon listens to.`,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	devices := audio.ListInputDevices()
	if len(devices) == 0 {
		fmt.Println("No input devices found.")
		fmt.Println("The daemon will fall back to the platform default input.")
		return nil
	}

	fmt.Printf("%-12s %s\n", "ID", "NAME")
	for _, device := range devices {
		fmt.Printf("%-12s %s\n", device.ID, device.Name)
	}

	return nil
}
