package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnmai-dev/CuteMLX/internal/registry"
)

func init() {
	rootCmd.AddCommand(modelsCmd)
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models in the models directory",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func runModels(_ *cobra.Command, _ []string) error {
	models, err := registry.LoadDir(cfg.ModelsDir)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Println(styles.Notice.Render("no models found; try `cutemlx pull <url>`"))
		return nil
	}
	for _, m := range models {
		marker := "  "
		if m.ID == cfg.Model {
			marker = styles.Prompt.Render("* ")
		}
		fmt.Printf("%s%s %s\n", marker, m.ID, styles.Stats.Render(fmt.Sprintf("%d MB", m.SizeMB)))
	}
	return nil
}
