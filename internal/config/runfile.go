// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter/v2"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

var (
	// ErrGetRunFile is returned when the run file cannot be fetched or read.
	ErrGetRunFile = errors.New("failed to get run file")
	// ErrInvalidYaml is returned when the run file is not valid YAML.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrNoScripts is returned when the run file defines no scripts.
	ErrNoScripts = errors.New("no scripts specified")
)

// RunFile is the YAML document the run command consumes: a named list of
// script definitions plus optional environment and path overrides.
type RunFile struct {
	Name    string             `yaml:"name,omitempty"`
	LogsDir string             `yaml:"logs_dir,omitempty"`
	Env     map[string]string  `yaml:"env,omitempty"`
	Scripts []ScriptDefinition `yaml:"scripts"`
}

// ParseRunFile builds a RunFile from YAML bytes and validates every script.
func ParseRunFile(data []byte) (*RunFile, error) {
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	if len(rf.Scripts) == 0 {
		return nil, ErrNoScripts
	}

	for i := range rf.Scripts {
		if err := rf.Scripts[i].Validate(); err != nil {
			return nil, err
		}
	}

	return &rf, nil
}

// LoadRunFile reads a run file from a local path on fs, or fetches it with
// go-getter when the source does not exist locally (URLs, git, etc.).
func LoadRunFile(ctx context.Context, fs afero.Fs, source string) (*RunFile, error) {
	if source == "" {
		return nil, ErrGetRunFile
	}

	data, err := afero.ReadFile(fs, source)
	if err != nil {
		data, err = getURL(ctx, source)
		if err != nil {
			return nil, err
		}
	}

	return ParseRunFile(data)
}

// ApplyTo folds the run file's env and path overrides into an AppConfig.
func (rf *RunFile) ApplyTo(cfg AppConfig) AppConfig {
	if rf.LogsDir != "" {
		cfg.Paths.LogsDir = rf.LogsDir
	}

	if len(rf.Env) > 0 {
		if cfg.EnvVars == nil {
			cfg.EnvVars = make(map[string]string, len(rf.Env))
		}

		for k, v := range rf.Env {
			cfg.EnvVars[k] = v
		}
	}

	return cfg
}

// getURL retrieves the content from the specified URL using Hashicorp's
// go-getter. The temporary download directory is removed after reading.
func getURL(ctx context.Context, url string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "scripter-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetRunFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetRunFile, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string

	// Non-file URLs are downloaded as a directory and the file is read from
	// there: https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, errors.Join(ErrGetRunFile, err)
		}

		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(url)
		if newURL == "" || fileName == "" {
			return nil, fmt.Errorf("%w: invalid URL format: %s", ErrGetRunFile, url)
		}

		req.Src = newURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(url)
		fileName = filepath.Base(url)
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrGetRunFile, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, errors.Join(ErrGetRunFile, err)
	}

	return data, nil
}

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
)

// splitFileNameFromGetterURL splits a go-getter URL into the directory part
// and the file name, preserving any ref query string.
func splitFileNameFromGetterURL(url string) (string, string) {
	ref := ""
	if i := strings.Index(url, goGetterRefSeparator); i >= 0 {
		ref = url[i:]
		url = url[:i]
	}

	i := strings.LastIndex(url, goGetterPathSeparator)
	if i < 0 {
		return "", ""
	}

	dir, file := filepath.Split(url[i+len(goGetterPathSeparator):])
	if file == "" {
		return "", ""
	}

	prefix := url[:i]
	if dir != "" {
		return prefix + goGetterPathSeparator + strings.TrimSuffix(dir, "/") + ref, file
	}

	return prefix + ref, file
}
