package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/dmitrijs2005/flashdeck/internal/flagx"
	"github.com/dmitrijs2005/flashdeck/internal/timex"
)

// FileConfig is the on-disk shape of the configuration, shared by the JSON
// and YAML formats. Pointer fields distinguish "absent" from zero values so
// a partial file only overrides what it names.
type FileConfig struct {
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	StorageDriver         *string         `json:"storage_driver" yaml:"storage_driver"`
	DatabaseDSN           *string         `json:"database_dsn" yaml:"database_dsn"`
	BadgerPath            *string         `json:"badger_path" yaml:"badger_path"`
	SecretKey             *string         `json:"secret_key" yaml:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	BcryptCost            *int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	LogBackend            *string         `json:"log_backend" yaml:"log_backend"`
	SeedOnStart           *bool           `json:"seed_on_start" yaml:"seed_on_start"`
	S3RootUser            *string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword        *string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket              *string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region              *string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

// parseFile loads the file named by -c/-config, if any, and overlays it.
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
// An unreadable or malformed file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.StorageDriver, fc.StorageDriver)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.BadgerPath, fc.BadgerPath)
	setString(&c.SecretKey, fc.SecretKey)
	if fc.TokenValidityDuration != nil {
		c.TokenValidityDuration = fc.TokenValidityDuration.Duration
	}
	if fc.BcryptCost != nil {
		c.BcryptCost = *fc.BcryptCost
	}
	setString(&c.LogBackend, fc.LogBackend)
	if fc.SeedOnStart != nil {
		c.SeedOnStart = *fc.SeedOnStart
	}
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
