package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/johnmai-dev/CuteMLX/pkg/types"
)

func init() {
	addGenerateFlags(askCmd)
	rootCmd.AddCommand(askCmd)
}

var askCmd = &cobra.Command{
	Use:   "ask PROMPT",
	Short: "Ask a single question and exit",
	Long: `Ask streams one answer to stdout and exits. The exit code reflects
the run: 0 on success or cancel, 1 when generation failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := applyGenerateFlags(cmd); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			if p.sess.Running() {
				p.sess.Cancel()
			} else {
				cancel()
			}
		}
	}()

	if err := p.sess.Start(types.GenerateRequest{
		Prompt:   args[0],
		Thinking: cfg.Thinking,
		Seed:     cfg.Seed,
	}); err != nil {
		return err
	}
	<-p.sess.Done()

	if st := p.sess.Status(); st.State == types.StateFailed {
		return errors.New(st.LastError)
	}
	return nil
}
