package cmd

import (
	"fmt"
	"log"
	"os"

	"qrcast/internal/app"
	"qrcast/internal/transport"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type SendFlags struct {
	FilePath  string
	ExportDir string
	PNGPath   string
}

var sendFlags SendFlags

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a file as a cycling stream of QR codes",
	Long: `Send a file by showing its blocks as QR codes, one after another, until interrupted.

By default the codes are drawn in the terminal. Use --png to keep rewriting a
single image instead (for an image viewer that reloads on change), or --export
to write one image per block and exit.

Use --file to specify the path to the file you want to send.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateSendFlags(&sendFlags)
	},
	Run: func(cmd *cobra.Command, args []string) {
		log.Printf("Starting sender for file: %s", sendFlags.FilePath)
		if err := runSenderApp(&sendFlags); err != nil {
			log.Fatalf("Sender failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	// Define flags with struct binding
	sendCmd.Flags().StringVarP(&sendFlags.FilePath, "file", "f", "", "Path to file to send (required)")
	sendCmd.Flags().StringVar(&sendFlags.ExportDir, "export", "", "Write one PNG per block to this directory and exit")
	sendCmd.Flags().StringVar(&sendFlags.PNGPath, "png", "", "Show frames by rewriting this PNG file instead of the terminal")
	sendCmd.Flags().Int("fps", 0, "Frames shown per second")

	// Mark required flags
	sendCmd.MarkFlagRequired("file")

	// Bind flags to viper for environment variable support
	viper.BindPFlag("sender.fps", sendCmd.Flags().Lookup("fps"))
}

// validateSendFlags validates the send command flags
func validateSendFlags(flags *SendFlags) error {
	if flags.FilePath == "" {
		return fmt.Errorf("file path is required")
	}
	if flags.ExportDir != "" && flags.PNGPath != "" {
		return fmt.Errorf("--export and --png cannot be used together")
	}
	return nil
}

// runSenderApp creates and runs the sender application
func runSenderApp(flags *SendFlags) error {
	ctx := createContext()

	display, err := createDisplay(flags)
	if err != nil {
		return err
	}

	// Create sender options from flags
	opts := &app.SenderOptions{
		FilePath:  flags.FilePath,
		ExportDir: flags.ExportDir,
	}

	senderApp := app.NewSenderApp(cfg, createFileService(), display)
	return senderApp.Run(ctx, opts)
}

// createDisplay picks where frames are shown
func createDisplay(flags *SendFlags) (transport.Display, error) {
	level, err := transport.ParseLevel(cfg.Level())
	if err != nil {
		return nil, err
	}
	if flags.PNGPath != "" {
		return transport.NewPNGDisplay(flags.PNGPath, level, cfg.QR.ImageSize), nil
	}
	return transport.NewTerminalDisplay(os.Stdout, level), nil
}
