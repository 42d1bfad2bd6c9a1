package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustgate/internal/model"
)

var voiceTarget string

// voiceCmd represents the voice command
var voiceCmd = &cobra.Command{
	Use:   "voice <content>",
	Short: "Check content against a target voice",
	Long: `Voice flags sentences that drift into a persona the target voice
forbids, such as hedging in a partner voice or sales urgency in a
professor voice, and scores the share of clean sentences.

Voices: partner, peer, professor.

Example:
  trustgate voice post.md --voice partner
  trustgate voice post.md --voice professor -v`,
	Args: cobra.ExactArgs(1),
	RunE: runVoice,
}

func init() {
	RootCmd.AddCommand(voiceCmd)

	voiceCmd.Flags().StringVar(&voiceTarget, "voice", "", "target voice: partner, peer or professor")
}

func runVoice(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	item, err := readItem(cmd, args[0])
	if err != nil {
		return err
	}
	if voiceTarget != "" {
		item.TargetVoice = model.Voice(voiceTarget)
	}
	if item.TargetVoice == "" {
		return fmt.Errorf("--voice is required")
	}

	engines, err := a.ruleset.Build()
	if err != nil {
		return err
	}

	report, err := engines.Voice.Check(item.Content, item.TargetVoice)
	if err != nil {
		return err
	}
	a.metrics.ObserveVoice(report)

	if err := a.renderer.Render(report); err != nil {
		return err
	}
	return verdict(report.Passed)
}
