// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ManuGH/pendel/internal/config"
	"github.com/ManuGH/pendel/internal/log"
	platformnet "github.com/ManuGH/pendel/internal/platform/net"
)

// PerformStartupChecks validates the environment before the server starts.
// Everything here fails fast: a daemon that cannot write its data dir or
// reach a syntactically valid upstream should not pretend to boot.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("Running pre-flight startup checks...")

	if err := checkDataDir(logger, cfg.DataDir); err != nil {
		return fmt.Errorf("data directory check failed: %w", err)
	}

	if _, err := platformnet.ValidateBaseURL(cfg.Catalog.BaseURL); err != nil {
		return fmt.Errorf("catalog base URL check failed: %w", err)
	}
	logger.Info().Str("url", cfg.Catalog.BaseURL).Msg("✓ Catalog base URL is valid")

	if strings.EqualFold(cfg.Storage.Backend, "memory") {
		logger.Warn().
			Str("storage_backend", cfg.Storage.Backend).
			Msg("watch history uses in-memory store; mastery resets on restart")
	}

	tempDir := filepath.Clean(os.TempDir())
	dataDir := filepath.Clean(cfg.DataDir)
	if tempDir != "." && (dataDir == tempDir || strings.HasPrefix(dataDir, tempDir+string(filepath.Separator))) {
		logger.Warn().
			Str("data_dir", cfg.DataDir).
			Msg("data directory is under temp; history and pack snapshots may be lost on reboot")
	}

	logger.Info().Msg("✅ All startup checks passed")
	return nil
}

func checkDataDir(logger zerolog.Logger, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0600); err != nil {
		return fmt.Errorf("directory is not writable: %s (error: %v)", path, err)
	}
	_ = os.Remove(testFile)

	logger.Info().Str("path", path).Msg("✓ Data directory is writable")
	return nil
}
