package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johnmai-dev/CuteMLX/internal/common/fsutil"
)

var pullName string

func init() {
	pullCmd.Flags().StringVar(&pullName, "name", "", "store the file under this name instead of the URL basename")
	rootCmd.AddCommand(pullCmd)
}

var pullCmd = &cobra.Command{
	Use:   "pull URL",
	Short: "Download a .gguf model into the models directory",
	Long:  `Pull downloads model weights over HTTP. The file lands in the models directory under its original name (or --name) and shows up in 'cutemlx models'.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPull,
}

func runPull(cmd *cobra.Command, args []string) error {
	fmt.Fprintf(os.Stderr, "pulling %s...\n", args[0])
	return pullModel(cmd.Context(), args[0], cfg.ModelsDir, pullName, os.Stderr)
}

// pullModel downloads rawURL into dir, as name when set. It writes to a .part
// file renamed into place on success, so an interrupted download never leaves
// a file the registry would pick up.
func pullModel(ctx context.Context, rawURL, dir, name string, progressW io.Writer) error {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureDir(base); err != nil {
		return err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if name == "" {
		name = path.Base(u.Path)
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			return fmt.Errorf("refusing to pull %q: only .gguf files are supported", name)
		}
	} else if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
		// The registry only picks up .gguf files.
		name += ".gguf"
	}
	dest := filepath.Join(base, name)
	if fsutil.PathExists(dest) {
		return fmt.Errorf("%s already exists", dest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	bar := newLoadBar(progressW, "downloaded "+name)
	pw := &progressWriter{total: resp.ContentLength, observe: bar.observe}
	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("download %s: %w", name, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return err
	}
	bar.finish()
	return nil
}

// progressWriter counts bytes and feeds the completed fraction to the bar.
// With an unknown Content-Length the bar stays quiet until finish.
type progressWriter struct {
	total   int64
	written int64
	observe func(float64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 {
		p.observe(float64(p.written) / float64(p.total))
	}
	return len(b), nil
}
