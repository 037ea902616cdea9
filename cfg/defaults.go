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

import "time"

// GetDefaultLoggingConfig returns the logging defaults used before a
// config file or flags have been parsed.
func GetDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Severity: InfoLogSeverity,
		Format:   "text",
		LogRotate: LogRotateLoggingConfig{
			BackupFileCount: 10,
			Compress:        true,
			MaxFileSizeMb:   64,
		},
	}
}

// GetDefaultSchedulerConfig returns the scheduler defaults fixed by
// spec.md §4.6.
func GetDefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TickPeriod: 10 * time.Millisecond,
	}
}

// GetDefaultFileSystemConfig returns the mkfs defaults for a minimal
// single-FAT-block image (spec.md §8 scenario 1).
func GetDefaultFileSystemConfig() FileSystemConfig {
	return FileSystemConfig{
		FatBlocks:         1,
		BlockSizeExponent: 0,
	}
}
