package qn

import (
	"encoding/binary"
	"math/rand/v2"
)

/*
Config carries the collaborators a Register is built with. The zero value of
every field selects the default.
*/
type Config struct {
	Seed    uint64
	Source  rand.Source // overrides the ChaCha8 stream derived from Seed
	Metrics *Metrics    // nil disables metric recording
}

// Option configures a Register at construction.
type Option func(*Config)

func NewConfig(seed uint64) *Config {
	return &Config{
		Seed: seed,
	}
}

// WithSource replaces the seeded generator, e.g. with a scripted source in tests.
func WithSource(src rand.Source) Option {
	return func(c *Config) {
		c.Source = src
	}
}

// WithMetrics records every measurement on the register into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

func (c *Config) source() rand.Source {
	if c.Source != nil {
		return c.Source
	}
	return rand.NewChaCha8(seedBytes(c.Seed))
}

/*
seedBytes stretches a 64-bit seed into a ChaCha8 key. Each word is a
SplitMix64 step, so nearby seeds do not share key material.
*/
func seedBytes(seed uint64) [32]byte {
	var key [32]byte
	x := seed
	for i := 0; i < len(key); i += 8 {
		x += 0x9e3779b97f4a7c15
		z := x
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
		binary.LittleEndian.PutUint64(key[i:], z)
	}
	return key
}
