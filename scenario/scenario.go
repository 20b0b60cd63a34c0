// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsupportedFile is returned for scenario or map files of an
// unknown type.
var ErrUnsupportedFile = errors.New("unsupported file type")

// LocalizedPrefix is prepended to the scenario file name of the
// localized copy.
const LocalizedPrefix = "localized_"

// DefaultFetchTimeout bounds one download.
const DefaultFetchTimeout = 5 * time.Minute

// Options configures Prepare.
type Options struct {
	// Scenario and Map are local paths or http(s) URLs.
	Scenario string
	Map      string

	// WorkDir receives downloads and the localized scenario. If empty,
	// os.TempDir() is used.
	WorkDir string

	// Client performs downloads. If nil, a client with
	// DefaultFetchTimeout is used.
	Client *http.Client
}

// Prepared is the result of Prepare.
type Prepared struct {
	ScenarioPath  string
	MapPath       string
	LocalizedPath string
}

// ValidateScenarioName checks that name is a .yaml or .xosc file.
func ValidateScenarioName(name string) error {
	base := baseName(name)
	if strings.HasSuffix(base, ".yaml") || strings.HasSuffix(base, ".xosc") {
		return nil
	}
	return fmt.Errorf("scenario %q: %w (expected *.yaml or *.xosc)", base, ErrUnsupportedFile)
}

// ValidateMapName checks that name is a .osm file.
func ValidateMapName(name string) error {
	base := baseName(name)
	if strings.HasSuffix(base, ".osm") {
		return nil
	}
	return fmt.Errorf("map %q: %w (expected *.osm)", base, ErrUnsupportedFile)
}

// Prepare validates, fetches and localizes the scenario and map named
// in options.
func Prepare(ctx context.Context, options Options) (Prepared, error) {
	if err := ValidateScenarioName(options.Scenario); err != nil {
		return Prepared{}, err
	}
	if err := ValidateMapName(options.Map); err != nil {
		return Prepared{}, err
	}
	workDir := options.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return Prepared{}, fmt.Errorf("creating work directory: %w", err)
	}
	client := options.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	scenarioPath, err := Fetch(ctx, client, options.Scenario, workDir)
	if err != nil {
		return Prepared{}, err
	}
	mapPath, err := Fetch(ctx, client, options.Map, workDir)
	if err != nil {
		return Prepared{}, err
	}
	localizedPath := filepath.Join(workDir, LocalizedPrefix+filepath.Base(scenarioPath))
	if err := LocalizeFile(scenarioPath, mapPath, localizedPath); err != nil {
		return Prepared{}, err
	}
	return Prepared{
		ScenarioPath:  scenarioPath,
		MapPath:       mapPath,
		LocalizedPath: localizedPath,
	}, nil
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func baseName(source string) string {
	if IsRemote(source) {
		if parsed, err := url.Parse(source); err == nil {
			return path.Base(parsed.Path)
		}
	}
	return filepath.Base(source)
}

// Fetch makes source available as a local file and returns its
// absolute path. Local paths are checked and returned as they are. URLs
// are downloaded into dir under their base name; an existing file of
// that name is reused without downloading again.
func Fetch(ctx context.Context, client *http.Client, source, dir string) (string, error) {
	if !IsRemote(source) {
		absolute, err := filepath.Abs(source)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", source, err)
		}
		if _, err := os.Stat(absolute); err != nil {
			return "", fmt.Errorf("reading %s: %w", source, err)
		}
		return absolute, nil
	}

	name := baseName(source)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("fetching %s: URL has no file name", source)
	}
	destination, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("resolving download path: %w", err)
	}
	if _, err := os.Stat(destination); err == nil {
		return destination, nil
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", source, err)
	}
	response, err := client.Do(request)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", source, err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: %s", source, response.Status)
	}

	// Download beside the destination and rename, so an interrupted
	// download is never mistaken for a complete one.
	partial, err := os.CreateTemp(dir, "."+name+".part-*")
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", source, err)
	}
	defer os.Remove(partial.Name())
	if _, err := io.Copy(partial, response.Body); err != nil {
		partial.Close()
		return "", fmt.Errorf("fetching %s: %w", source, err)
	}
	if err := partial.Close(); err != nil {
		return "", fmt.Errorf("fetching %s: %w", source, err)
	}
	if err := os.Rename(partial.Name(), destination); err != nil {
		return "", fmt.Errorf("fetching %s: %w", source, err)
	}
	return destination, nil
}

// LocalizeFile writes the localized form of the scenario at
// scenarioPath to outputPath.
func LocalizeFile(scenarioPath, mapPath, outputPath string) error {
	input, err := os.Open(scenarioPath)
	if err != nil {
		return fmt.Errorf("opening scenario: %w", err)
	}
	defer input.Close()

	output, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating localized scenario: %w", err)
	}
	if err := Localize(input, output, mapPath); err != nil {
		output.Close()
		return err
	}
	if err := output.Close(); err != nil {
		return fmt.Errorf("writing localized scenario: %w", err)
	}
	return nil
}

// Localize copies a scenario from r to w line by line. The line naming
// the .osm map becomes a filepath entry for mapPath, and every
// "value: 'true'" becomes "value: 'false'": the only true parameter in
// these scenarios is isEgo.
func Localize(r io.Reader, w io.Writer, mapPath string) error {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)
	for {
		line, readErr := reader.ReadString('\n')
		if len(line) > 0 {
			if strings.Contains(line, ".osm") {
				line = "      filepath: " + mapPath + "\n"
			} else {
				line = strings.ReplaceAll(line, "value: 'true'", "value: 'false'")
			}
			if _, err := writer.WriteString(line); err != nil {
				return fmt.Errorf("writing localized scenario: %w", err)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("reading scenario: %w", readErr)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("writing localized scenario: %w", err)
	}
	return nil
}
