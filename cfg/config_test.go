// Copyright 2025 Google LLC
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

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlagsPopulatesConfigThroughViper(t *testing.T) {
	viper.Reset()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse([]string{
		"--image=/tmp/disk.img",
		"--fat-blocks=4",
		"--block-size-exponent=2",
		"--log-severity=DEBUG",
	}))

	var c Config
	require.NoError(t, viper.Unmarshal(&c, DecodeHook()))

	assert.Equal(t, "/tmp/disk.img", c.FileSystem.ImagePath)
	assert.Equal(t, 4, c.FileSystem.FatBlocks)
	assert.Equal(t, BlockSizeExponent(2), c.FileSystem.BlockSizeExponent)
	assert.Equal(t, LogSeverity("DEBUG"), c.Logging.Severity)
}

func TestBindFlagsDefaults(t *testing.T) {
	viper.Reset()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse(nil))

	var c Config
	require.NoError(t, viper.Unmarshal(&c, DecodeHook()))

	assert.Equal(t, 1, c.FileSystem.FatBlocks)
	assert.Equal(t, "text", c.Logging.Format)
	assert.False(t, c.Debug.ExitOnInvariantViolation)
}
