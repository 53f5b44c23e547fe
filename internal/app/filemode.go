package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"openwhisper/internal/asr"
	"openwhisper/internal/config"
	"openwhisper/internal/transcript"
)

// RunFileMode transcribes an existing audio file and writes the accepted
// text to a .txt file. Filtered results are written as an empty file.
func RunFileMode(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger, inputPath, outputPath string) error {
	cleanupOldTempFiles(config.TempDir(&cfg), logger)

	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("file '%s' stat failed: %w", inputPath, err)
	}

	st, err := openSettings(cfg)
	if err != nil {
		return &SetupError{Component: "settings", Err: err}
	}
	engine, err := newEngine(cfg, newHTTPClient(cfg), logger.Named("asr"))
	if err != nil {
		return &SetupError{Component: "engine", Err: err}
	}
	invoker := asr.NewInvoker(engine, st.Get().Model, cfg.Language, cfg.Prompt, logger.Named("asr"))

	text, err := invoker.Transcribe(ctx, inputPath)
	if err != nil {
		return err
	}
	verdict := transcript.Classify(text)
	if verdict != transcript.VerdictAccepted {
		logger.Infow("transcription filtered", "verdict", verdict.String(), "text", text)
		text = ""
	}

	outPath := outputPath
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		outPath = filepath.Join(".", base+".txt")
	}
	if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
		return err
	}
	logger.Infow("transcript written", "path", outPath, "chars", len(text))
	return nil
}
