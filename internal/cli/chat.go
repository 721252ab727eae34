package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/johnmai-dev/CuteMLX/pkg/types"
)

func init() {
	addGenerateFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the configured model",
	Long: `Chat drives the model in a read-eval loop. While an answer streams,
Ctrl-C cancels just that answer; at the prompt it exits.

Commands inside the session:
  /think on|off   toggle the model's thinking mode
  /exit           leave the chat (also /quit, /bye)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
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

	// Warm the cache up front so the first question answers immediately.
	bar := newLoadBar(os.Stderr, "model ready")
	p.cache.OnProgress(bar.observe)
	if _, err := p.cache.Load(ctx); err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	bar.finish()

	// Ctrl-C during an answer cancels that answer; at the prompt it exits.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			if p.sess.Running() {
				p.sess.Cancel()
				continue
			}
			fmt.Fprintln(os.Stderr)
			os.Exit(130)
		}
	}()

	thinking := cfg.Thinking
	fmt.Printf("%s %s\n", styles.Prompt.Render("chatting with"), p.model.ID)
	fmt.Println(styles.Notice.Render("Ctrl-C cancels an answer, /exit leaves, /think on|off toggles thinking"))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(styles.Prompt.Render(">>> "))
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit", "/quit", "/bye":
			fmt.Println(styles.Notice.Render("bye"))
			return nil
		case "/think on":
			thinking = true
			fmt.Println(styles.Notice.Render("thinking on"))
			continue
		case "/think off":
			thinking = false
			fmt.Println(styles.Notice.Render("thinking off"))
			continue
		}

		if err := p.sess.Start(types.GenerateRequest{
			Prompt:   input,
			Thinking: thinking,
			Seed:     cfg.Seed,
		}); err != nil {
			fmt.Fprintln(os.Stderr, styles.Error.Render(err.Error()))
			continue
		}
		<-p.sess.Done()
	}
	return scanner.Err()
}
