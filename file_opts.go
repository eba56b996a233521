package skyb

// blocksConfig holds the tri-state iteration settings: a nil field
// keeps the default that depends on the stream and instance state.
type blocksConfig struct {
	rewind   *bool
	validate *bool
}

// BlocksOption configures a call to [File.Blocks] or
// [File.ReadAllBlocks].
type BlocksOption func(*blocksConfig)

// WithRewind overrides whether the stream is rewound to the first block
// before iterating. The default is to rewind if and only if the stream
// is seekable.
func WithRewind(rewind bool) BlocksOption {
	return func(c *blocksConfig) {
		c.rewind = &rewind
	}
}

// WithValidation overrides whether the checksum of the file is
// validated before iterating. The default is to validate if and only if
// the checksum has not been validated before during the lifetime of the
// instance.
func WithValidation(validate bool) BlocksOption {
	return func(c *blocksConfig) {
		c.validate = &validate
	}
}
