package cfg

import (
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DecodeHook returns the mapstructure decode hook applied when
// unmarshaling viper's settings map into a Config. It layers
// TextUnmarshallerHookFunc on top of viper's usual duration/slice
// hooks so LogSeverity and BlockSizeExponent's encoding.TextUnmarshaler
// implementations run during decode, instead of needing a bespoke
// mapstructure hook written per field. It also matches settings keys
// against Config's yaml struct tags, since Config declares no
// mapstructure tags of its own.
func DecodeHook() viper.DecoderConfigOption {
	return func(c *mapstructure.DecoderConfig) {
		c.TagName = "yaml"
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		)
	}
}
