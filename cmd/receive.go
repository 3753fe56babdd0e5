package cmd

import (
	"fmt"
	"log"
	"os"

	"qrcast/internal/app"
	"qrcast/internal/reporter"
	"qrcast/internal/store"
	"qrcast/internal/transport"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ReceiveFlags struct {
	DstPath   string
	ImagesDir string
	Resume    bool
}

var receiveFlags ReceiveFlags

// receiveCmd represents the receive command
var receiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "Receive a file from a stream of scanned QR codes",
	Long: `Receive a file from scanned QR codes. Decoded texts are read one per line from
standard input, so any scanner with a raw output mode can feed it:

  zbarcam --raw | qrcast receive --dst ./downloads

Use --images to decode a directory of photos or exported frames instead.
With --ledger, received blocks are kept on disk and an interrupted session can
be continued with --resume.

Use --dst to specify the directory to save the received file in.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateReceiveFlags(&receiveFlags)
	},
	Run: func(cmd *cobra.Command, args []string) {
		log.Printf("Starting receiver, will save to: %s", receiveFlags.DstPath)
		if err := runReceiverApp(&receiveFlags); err != nil {
			log.Fatalf("Receiver failed: %v", err)
		}
	},
}

// validateReceiveFlags validates the receive command flags
func validateReceiveFlags(flags *ReceiveFlags) error {
	if flags.DstPath == "" {
		return fmt.Errorf("destination path is required")
	}
	if flags.ImagesDir != "" {
		if info, err := os.Stat(flags.ImagesDir); err != nil || !info.IsDir() {
			return fmt.Errorf("images path '%s' is not a directory", flags.ImagesDir)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(receiveCmd)

	// Define flags with struct binding
	receiveCmd.Flags().StringVarP(&receiveFlags.DstPath, "dst", "d", "", "Directory to save the received file in (required)")
	receiveCmd.Flags().StringVar(&receiveFlags.ImagesDir, "images", "", "Decode QR codes from the images in this directory instead of stdin")
	receiveCmd.Flags().BoolVar(&receiveFlags.Resume, "resume", false, "Continue the session stored in the ledger")
	receiveCmd.Flags().String("ledger", "", "LevelDB directory keeping received blocks across runs")
	receiveCmd.Flags().String("session", "", "Session key the blocks are stored under")

	// Mark required flags
	receiveCmd.MarkFlagRequired("dst")

	// Bind flags to viper for environment variable support
	viper.BindPFlag("receiver.ledger_path", receiveCmd.Flags().Lookup("ledger"))
	viper.BindPFlag("receiver.session_key", receiveCmd.Flags().Lookup("session"))
}

// runReceiverApp creates and runs the receiver application
func runReceiverApp(flags *ReceiveFlags) error {
	ctx := createContext()

	ledger, err := createLedger(flags.Resume)
	if err != nil {
		return err
	}
	defer ledger.Close()

	var scanner transport.Scanner = transport.NewLineScanner(os.Stdin)
	if flags.ImagesDir != "" {
		scanner = transport.NewImageScanner(flags.ImagesDir)
	}

	// Create receiver options from flags
	opts := &app.ReceiverOptions{
		DestPath: flags.DstPath,
		Resume:   flags.Resume,
	}

	receiverApp := app.NewReceiverApp(cfg, createFileService(), ledger, scanner, reporter.NewProgressReporter(os.Stderr))
	_, err = receiverApp.Run(ctx, opts)
	return err
}

// createLedger opens the persistent ledger when one is configured. Without
// one, blocks live in memory under a key unique to this run.
func createLedger(resume bool) (store.Ledger, error) {
	if cfg.Receiver.LedgerPath != "" {
		ledger, err := store.OpenLevelLedger(cfg.Receiver.LedgerPath, cfg.Receiver.SessionKey)
		if err != nil {
			return nil, err
		}
		log.Printf("Keeping received blocks in %s", ledger.Path())
		return ledger, nil
	}
	if resume {
		return nil, fmt.Errorf("--resume needs a ledger, set --ledger")
	}

	sessionKey := cfg.Receiver.SessionKey
	if sessionKey == "" {
		sessionKey = store.DefaultSessionKey + "-" + uuid.NewString()[:8]
	}
	return store.NewMemoryLedger(sessionKey), nil
}
