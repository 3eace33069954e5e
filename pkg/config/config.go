// Copyright 2025 patchrc authors
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

package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// No-match policies. Skip preserves the historical behavior of one-off patch
// scripts: a rule whose search text is absent is silently ignored. Error
// makes apply fail before anything is written.
const (
	PolicySkip  = "skip"
	PolicyError = "error"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Rule represents one literal replacement in a target file
type Rule struct {
	Search  string `json:"search" yaml:"search" hcl:"search"`
	Replace string `json:"replace" yaml:"replace" hcl:"replace"`
}

// Validate validates the rule.
func (r Rule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Search, validation.Required),
	)
}

// 📦 Patch represents an ordered rule set applied to one target
type Patch struct {
	// Target is an exact path or a doublestar glob, relative to the config
	// file's directory unless absolute
	Target string `json:"target" yaml:"target" hcl:"target,label"`

	// Rules are applied in order, each to the output of the previous one
	Rules []Rule `json:"rules" yaml:"rules" hcl:"rule,block"`
}

// Validate validates the patch.
func (p Patch) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Target, validation.Required),
		validation.Field(&p.Rules, validation.Required),
	)
	if err != nil {
		return err
	}
	for i, rule := range p.Rules {
		if err := rule.Validate(); err != nil {
			return errors.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// 📚 Config represents the complete configuration
type Config struct {
	Patches   []Patch `json:"patches" yaml:"patches" hcl:"patch,block"`
	OnNoMatch string  `json:"on_no_match,omitempty" yaml:"on_no_match,omitempty" hcl:"on_no_match,optional"`
	Backup    bool    `json:"backup,omitempty" yaml:"backup,omitempty" hcl:"backup,optional"`
	Async     bool    `json:"async,omitempty" yaml:"async,omitempty" hcl:"async,optional"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and applies defaults
func (cfg *Config) Validate() error {
	if cfg.OnNoMatch == "" {
		cfg.OnNoMatch = PolicySkip
	}

	err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.Patches, validation.Required.Error("at least one patch is required")),
		validation.Field(&cfg.OnNoMatch, validation.In(PolicySkip, PolicyError)),
	)
	if err != nil {
		return err
	}

	for i, patch := range cfg.Patches {
		if err := patch.Validate(); err != nil {
			return errors.Errorf("patch %d (%s): %w", i, patch.Target, err)
		}
		cfg.Patches[i].Target = filepath.Clean(patch.Target)
	}

	return nil
}

// Strict reports whether zero-match rules should fail the run.
func (cfg *Config) Strict() bool {
	return cfg.OnNoMatch == PolicyError
}

// 🔑 Hash returns a stable hash of the configuration, used to detect whether
// the lock file was produced by the same config
func (cfg *Config) Hash() string {
	data, err := json.Marshal(cfg)
	if err != nil {
		// Config is plain data; marshalling cannot realistically fail.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	rules := 0
	for _, p := range cfg.Patches {
		rules += len(p.Rules)
	}
	return fmt.Sprintf("%d patch(es), %d rule(s), on_no_match=%s", len(cfg.Patches), rules, cfg.OnNoMatch)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	return &cfg, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &cfg, nil
}
