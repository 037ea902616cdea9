// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cfg

import "fmt"

func isValidLogRotateConfig(config *LogRotateLoggingConfig) error {
	if config.MaxFileSizeMb <= 0 {
		return fmt.Errorf("max-file-size-mb should be at least 1")
	}
	if config.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (to retain all backup files) or a positive value")
	}
	return nil
}

func isValidFileSystemConfig(config *FileSystemConfig) error {
	if config.FatBlocks < 1 || config.FatBlocks > 32 {
		return fmt.Errorf("fat-blocks must be in [1,32], got %d", config.FatBlocks)
	}
	if config.BlockSizeExponent < 0 || config.BlockSizeExponent > 4 {
		return fmt.Errorf("block-size-exponent must be in [0,4], got %d", config.BlockSizeExponent)
	}
	return nil
}

func isValidLogFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("log-format must be \"text\" or \"json\", got %q", format)
	}
	return nil
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(config *Config) error {
	var err error

	if err = isValidFileSystemConfig(&config.FileSystem); err != nil {
		return fmt.Errorf("error parsing file-system config: %w", err)
	}

	if err = isValidLogRotateConfig(&config.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}

	if err = isValidLogFormat(config.Logging.Format); err != nil {
		return fmt.Errorf("error parsing logging config: %w", err)
	}

	if config.Scheduler.TickPeriod <= 0 {
		return fmt.Errorf("scheduler.tick-period must be positive, got %v", config.Scheduler.TickPeriod)
	}

	return nil
}
