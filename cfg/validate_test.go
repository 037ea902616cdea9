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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		FileSystem: GetDefaultFileSystemConfig(),
		Scheduler:  GetDefaultSchedulerConfig(),
		Logging:    GetDefaultLoggingConfig(),
	}
}

func TestValidateConfigDefaultsAreValid(t *testing.T) {
	c := validConfig()
	assert.NoError(t, ValidateConfig(&c))
}

func TestValidateConfigRejectsBadFatBlocks(t *testing.T) {
	c := validConfig()
	c.FileSystem.FatBlocks = 0
	assert.Error(t, ValidateConfig(&c))

	c.FileSystem.FatBlocks = 33
	assert.Error(t, ValidateConfig(&c))
}

func TestValidateConfigRejectsBadBlockSizeExponent(t *testing.T) {
	c := validConfig()
	c.FileSystem.BlockSizeExponent = 5
	assert.Error(t, ValidateConfig(&c))
}

func TestValidateConfigRejectsBadLogRotate(t *testing.T) {
	c := validConfig()
	c.Logging.LogRotate.MaxFileSizeMb = 0
	assert.Error(t, ValidateConfig(&c))

	c = validConfig()
	c.Logging.LogRotate.BackupFileCount = -1
	assert.Error(t, ValidateConfig(&c))
}

func TestValidateConfigRejectsBadLogFormat(t *testing.T) {
	c := validConfig()
	c.Logging.Format = "xml"
	assert.Error(t, ValidateConfig(&c))
}

func TestValidateConfigRejectsNonPositiveTickPeriod(t *testing.T) {
	c := validConfig()
	c.Scheduler.TickPeriod = 0
	assert.Error(t, ValidateConfig(&c))
}
