// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config holds the test bench run configuration.
//
package config

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FIFO configures the single clock FIFO suite.
//
type FIFO struct {
	DepthBits int    `yaml:"depth_bits"`
	Count     int    `yaml:"count"`
	Period    uint64 `yaml:"period"`
}

// AsyncFIFO configures the dual clock FIFO suite.
//
type AsyncFIFO struct {
	DepthBits int    `yaml:"depth_bits"`
	Count     int    `yaml:"count"`
	EnqPeriod uint64 `yaml:"enq_period"`
	DeqPeriod uint64 `yaml:"deq_period"`
}

// SDRAM configures the SDRAM controller suite.
//
type SDRAM struct {
	CPUPeriod uint64 `yaml:"cpu_period"`
	RAMPeriod uint64 `yaml:"ram_period"`
	Ticks     uint64 `yaml:"ticks"`
	Address   uint64 `yaml:"address"`
}

// Config is a run configuration.
//
type Config struct {
	Seed      int64     `yaml:"seed"`
	Workers   int       `yaml:"workers"`
	TimeScale uint64    `yaml:"timescale"`
	Trace     string    `yaml:"trace"` // VCD file path, empty for no trace
	FIFO      FIFO      `yaml:"fifo"`
	AsyncFIFO AsyncFIFO `yaml:"asyncfifo"`
	SDRAM     SDRAM     `yaml:"sdram"`
}

// Default returns the default configuration.
//
func Default() *Config {
	return &Config{
		Seed:      1,
		Workers:   1,
		TimeScale: 10,
		FIFO:      FIFO{DepthBits: 8, Count: 256, Period: 1},
		AsyncFIFO: AsyncFIFO{DepthBits: 8, Count: 256, EnqPeriod: 2, DeqPeriod: 3},
		SDRAM:     SDRAM{CPUPeriod: 3, RAMPeriod: 2, Ticks: 16535, Address: 0x012345},
	}
}

// Load reads a YAML configuration file. Values missing from the file keep
// their default. Unknown fields are rejected.
//
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse parses a YAML configuration. See Load.
//
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return c, nil
}

// Validate checks the configuration values.
//
func (c *Config) Validate() error {
	switch {
	case c.Workers < 1:
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	case c.TimeScale == 0:
		return errors.New("timescale must be positive")
	case c.FIFO.DepthBits < 2 || c.FIFO.DepthBits > 16:
		return errors.Errorf("fifo.depth_bits must be in [2, 16], got %d", c.FIFO.DepthBits)
	case c.FIFO.Count < 1:
		return errors.Errorf("fifo.count must be positive, got %d", c.FIFO.Count)
	case c.FIFO.Period == 0:
		return errors.New("fifo.period must be positive")
	case c.AsyncFIFO.DepthBits < 2 || c.AsyncFIFO.DepthBits > 16:
		return errors.Errorf("asyncfifo.depth_bits must be in [2, 16], got %d", c.AsyncFIFO.DepthBits)
	case c.AsyncFIFO.Count < 1:
		return errors.Errorf("asyncfifo.count must be positive, got %d", c.AsyncFIFO.Count)
	case c.AsyncFIFO.EnqPeriod == 0 || c.AsyncFIFO.DeqPeriod == 0:
		return errors.New("asyncfifo periods must be positive")
	case c.SDRAM.CPUPeriod == 0 || c.SDRAM.RAMPeriod == 0:
		return errors.New("sdram periods must be positive")
	case c.SDRAM.Ticks == 0:
		return errors.New("sdram.ticks must be positive")
	case c.SDRAM.Address >= 1<<24:
		return errors.Errorf("sdram.address %#x out of range", c.SDRAM.Address)
	}
	return nil
}
