package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"qrcast/internal/config"
	"qrcast/internal/processor"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfg     *config.Config
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qrcast",
	Short: "qrcast - file transfer over a stream of QR codes",
	Long: `qrcast moves a file across an air gap using nothing but a screen and a camera.

The sender splits the file into blocks and cycles them on screen as QR codes.
The receiver collects scans in any order, ignores anything that is not one of
its frames, and writes the file once every block has been seen.

Usage:
  Send a file:    qrcast send --file /path/to/file
  Receive a file: zbarcam --raw | qrcast receive --dst /path/to/dir`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize viper configuration
		initConfig()

		// Initialize configuration
		cfg = config.NewDefaultConfig()
		if err := viper.Unmarshal(cfg); err != nil {
			log.Fatalf("Failed to read configuration: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.qrcast.yaml)")
	rootCmd.PersistentFlags().String("level", "", "QR error correction level: L, M, Q or H")
	rootCmd.PersistentFlags().Int("camera-max", 0, "largest block size in characters the camera reads reliably")

	viper.BindPFlag("qr.error_correction", rootCmd.PersistentFlags().Lookup("level"))
	viper.BindPFlag("qr.camera_max", rootCmd.PersistentFlags().Lookup("camera-max"))

	// Set up viper environment variable support, e.g. QRCAST_SENDER_FPS
	viper.SetEnvPrefix("QRCAST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(config.NewDefaultConfig())
}

// setDefaults registers every key so that environment variables are seen by Unmarshal
func setDefaults(defaults *config.Config) {
	viper.SetDefault("qr.error_correction", defaults.QR.ErrorCorrection)
	viper.SetDefault("qr.camera_max", defaults.QR.CameraMax)
	viper.SetDefault("qr.image_size", defaults.QR.ImageSize)
	viper.SetDefault("sender.fps", defaults.Sender.FPS)
	viper.SetDefault("sender.max_file_size", defaults.Sender.MaxFileSize)
	viper.SetDefault("sender.warn_file_size", defaults.Sender.WarnFileSize)
	viper.SetDefault("receiver.session_key", defaults.Receiver.SessionKey)
	viper.SetDefault("receiver.ledger_path", defaults.Receiver.LedgerPath)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			log.Printf("Warning: Could not find home directory: %v", err)
			return
		}

		// Search config in home directory with name ".qrcast" (without extension)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".qrcast")
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		log.Printf("Using config file: %s", viper.ConfigFileUsed())
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// createContext creates a context that cancels on interrupt signals
func createContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	return ctx
}

// createFileService creates the file service shared by both commands
func createFileService() *processor.FileService {
	return processor.NewFileService(cfg.Sender.MaxFileSize, cfg.Sender.WarnFileSize)
}
