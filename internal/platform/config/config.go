package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"valu/internal/claim"
	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

// EnvPrefix is prepended to every environment override, e.g. VALU_CLAIM_FORMAT.
const EnvPrefix = "VALU"

// Setting keys.
const (
	KeyClaimFormat      = "claim.format"
	KeyClaimMapping     = "claim.mapping"
	KeyClaimFieldOrder  = "claim.field_order"
	KeyBatchConcurrency = "batch.concurrency"
	KeyLogLevel         = "log.level"
	KeyKeysFile         = "keys.file"
	KeySignerSystemID   = "signer.system_id"
	KeySignerKey        = "signer.key"
)

// DefaultBatchConcurrency bounds how many claims a batch encodes at once.
const DefaultBatchConcurrency = 4

// Claim holds the encoding choices applied to newly built claims.
type Claim struct {
	Format     claim.Format
	Mapping    claim.Mapping
	FieldOrder claim.FieldOrder
}

// Signer holds the endorsement signing settings. Key is a hex private key and
// may be empty when nothing is signed.
type Signer struct {
	SystemID vdxf.Identifier
	Key      string
}

// Config is the validated runtime configuration.
type Config struct {
	Claim            Claim
	BatchConcurrency int
	LogLevel         slog.Level
	KeysFile         string
	Signer           Signer
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyClaimFormat, string(claim.FormatDescriptorSequence))
	v.SetDefault(KeyClaimMapping, string(claim.MappingCurrent))
	v.SetDefault(KeyClaimFieldOrder, string(claim.ReferenceLast))
	v.SetDefault(KeyBatchConcurrency, DefaultBatchConcurrency)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyKeysFile, "")
	v.SetDefault(KeySignerSystemID, vdxf.Namespace.String())
	v.SetDefault(KeySignerKey, "")
}

// New returns a viper instance with defaults and VALU_ environment overrides.
// When path is not empty the file is read as well; its type follows the
// extension (yaml, toml, json).
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "config: read "+path)
		}
	}
	return v, nil
}

// Load reads and validates configuration from defaults, the environment and
// the optional file at path.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	format, err := claim.ParseFormat(v.GetString(KeyClaimFormat))
	if err != nil {
		return nil, err
	}
	mapping, err := claim.ParseMapping(v.GetString(KeyClaimMapping))
	if err != nil {
		return nil, err
	}
	order, err := claim.ParseFieldOrder(v.GetString(KeyClaimFieldOrder))
	if err != nil {
		return nil, err
	}

	concurrency := v.GetInt(KeyBatchConcurrency)
	if concurrency < 1 {
		return nil, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("config: %s must be at least 1, got %d", KeyBatchConcurrency, concurrency))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "config: "+KeyLogLevel)
	}

	systemID, err := vdxf.ParseIdentifier(v.GetString(KeySignerSystemID))
	if err != nil {
		return nil, err
	}

	return &Config{
		Claim: Claim{
			Format:     format,
			Mapping:    mapping,
			FieldOrder: order,
		},
		BatchConcurrency: concurrency,
		LogLevel:         level,
		KeysFile:         v.GetString(KeyKeysFile),
		Signer: Signer{
			SystemID: systemID,
			Key:      v.GetString(KeySignerKey),
		},
	}, nil
}

// Registry returns the default key registry extended with KeysFile, if set.
func (c *Config) Registry() (*vdxf.Registry, error) {
	if c.KeysFile == "" {
		return vdxf.DefaultRegistry, nil
	}
	f, err := os.Open(c.KeysFile)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "config: open keys file")
	}
	defer f.Close()
	return vdxf.LoadKeys(vdxf.DefaultRegistry, f)
}
