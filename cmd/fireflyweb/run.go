package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/basel-ax/fireflyweb/internal/domain"
	"github.com/basel-ax/fireflyweb/internal/render"
	"github.com/basel-ax/fireflyweb/internal/service"
)

var (
	flagPrompt  string
	flagImageID string
	flagMaskID  string
	flagFile    string
	flagOut     string
)

var runCmd = &cobra.Command{
	Use:   "run <text-to-image|match|expand|fill|upload>",
	Short: "Run one image operation and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runOperation,
}

func init() {
	runCmd.Flags().StringVar(&flagPrompt, "prompt", "", "prompt text")
	runCmd.Flags().StringVar(&flagImageID, "image-id", "", "asset id of the base or reference image")
	runCmd.Flags().StringVar(&flagMaskID, "mask-id", "", "asset id of the mask image")
	runCmd.Flags().StringVar(&flagFile, "file", "", "image file to upload")
	runCmd.Flags().StringVar(&flagOut, "out", "", "directory to save inline images to")
}

type actionFunc func(ctx context.Context, in service.Input) *render.Page

func operations(s *service.ImageGenerationService) map[string]actionFunc {
	return map[string]actionFunc{
		"text-to-image": s.TextToImage,
		"match":         s.GenerativeMatch,
		"expand":        s.GenerativeExpand,
		"fill":          s.GenerativeFill,
		"upload":        s.UploadImage,
	}
}

func operationNames(ops map[string]actionFunc) string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func runOperation(cmd *cobra.Command, args []string) error {
	a, err := newApp(flagConf)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ops := operations(a.actions)
	act, ok := ops[args[0]]
	if !ok {
		return fmt.Errorf("unknown operation %q, want one of: %s", args[0], operationNames(ops))
	}

	in := service.Input{Prompt: flagPrompt, ImageID: flagImageID, MaskID: flagMaskID}
	if flagFile != "" {
		file, err := readLocalFile(flagFile)
		if err != nil {
			return err
		}
		in.File = file
	}

	page := act(cmd.Context(), in)
	if err := render.WriteText(cmd.OutOrStdout(), page); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}

	if flagOut != "" {
		paths, err := render.SaveImages(flagOut, args[0], page)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", p)
		}
	}

	if page.HasDanger() {
		return errors.New("operation failed")
	}
	return nil
}

// readLocalFile loads an image and derives its media type from the extension,
// falling back to content sniffing
func readLocalFile(path string) (*domain.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &domain.File{Name: filepath.Base(path), ContentType: contentType, Data: data}, nil
}
