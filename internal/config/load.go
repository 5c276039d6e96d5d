package config

import (
	"os"
	"strings"

	"github.com/hashicorp/hcl"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// LoadFromDir merges all .hcl files found below configDir into c. Files are
// read in lexical order; probe and boot blocks of later files are appended.
func (c *Config) LoadFromDir(configDir string) error {
	configDir = strings.TrimRight(configDir, "/")

	matches, err := findFilesInPath(configDir)
	if err != nil {
		return err
	}

	for _, m := range matches {
		log.Infof("found config file: %s", m)

		contents, err := os.ReadFile(m)
		if err != nil {
			return errors.Wrapf(err, "could not read configuration file %s", m)
		}

		if err := c.Parse(contents); err != nil {
			return errors.Wrapf(err, "could not parse configuration file %s", m)
		}
	}

	return nil
}

func (c *Config) Parse(contents []byte) error {
	partial := Config{}
	if err := hcl.Unmarshal(contents, &partial); err != nil {
		return err
	}

	c.Probes = append(c.Probes, partial.Probes...)
	c.BootJobs = append(c.BootJobs, partial.BootJobs...)

	return nil
}
