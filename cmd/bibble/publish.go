package main

import (
	"fmt"
	"os"
	"path"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/bibble/internal/config"
	"github.com/matsen/bibble/internal/publish"
)

var (
	publishHost string
	publishPath string
)

func init() {
	publishCmd.Flags().StringVar(&publishHost, "host", "", "SSH host to upload to (default: config publish.host)")
	publishCmd.Flags().StringVar(&publishPath, "path", "", "Remote destination path (default: config publish.path)")
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish HTMLFILE",
	Short: "Upload a rendered page to your web host over SSH",
	Long: `Upload a rendered HTML file to a web host over SSH, using the
keys in your SSH agent.

The destination host and path come from the publish section of
~/.config/bibble/config.yml, overridable with flags or the
BIBBLE_PUBLISH_HOST and BIBBLE_PUBLISH_PATH environment variables.

Examples:
  bibble publish pubs.html
  bibble publish pubs.html --host web.example.org --path /var/www/pubs.html`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	host := firstNonEmpty(publishHost, os.Getenv("BIBBLE_PUBLISH_HOST"), cfg.Publish.Host)
	if host == "" {
		exitWithError(ExitConfigError, "no publish host configured (set publish.host in %s or use --host)", config.Path())
	}
	dest := firstNonEmpty(publishPath, os.Getenv("BIBBLE_PUBLISH_PATH"), cfg.Publish.Path)
	if dest == "" {
		exitWithError(ExitConfigError, "no publish path configured (set publish.path in %s or use --path)", config.Path())
	}
	// A directory destination keeps the local file name.
	if dest[len(dest)-1] == '/' {
		dest = path.Join(dest, path.Base(args[0]))
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", args[0], err)
	}

	uploader, err := publish.NewSSHUploader(host, cfg.Publish.ProxyJump)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer uploader.Close()

	if err := uploader.Upload(dest, content); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Published %s to %s:%s\n", args[0], host, dest)
	} else {
		outputJSON(StatusResponse{Status: "published", Path: host + ":" + dest})
	}
	return nil
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
