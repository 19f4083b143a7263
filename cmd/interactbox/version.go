package main

import (
	"fmt"
	"runtime"
	"strings"

	"interactbox/internal/httpwire"

	"github.com/spf13/cobra"
)

var (
	// Set during build with -ldflags
	gitCommit = "unknown"
	buildDate = "unknown"

	versionShort bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version, build information and engine details for interactbox.`,
	Run:   runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}

func runVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	if versionShort {
		fmt.Fprintln(out, version)
		return
	}

	verbs := make([]string, 0, len(httpwire.Verbs()))
	for _, verb := range httpwire.Verbs() {
		verbs = append(verbs, verb.String())
	}

	fmt.Fprintf(out, "interactbox version %s\n", version)
	fmt.Fprintf(out, "  Git commit:    %s\n", gitCommit)
	fmt.Fprintf(out, "  Build date:    %s\n", buildDate)
	fmt.Fprintf(out, "  Go version:    %s\n", runtime.Version())
	fmt.Fprintf(out, "  OS/Arch:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "  Verbs:         %s\n", strings.Join(verbs, " "))
	fmt.Fprintf(out, "  Read timeout:  %s\n", httpwire.DefaultReadTimeout)
}
