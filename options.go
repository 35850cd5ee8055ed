package fsmx

import "github.com/sirupsen/logrus"

// Option configures a Machine at construction.
type Option func(*config)

type config struct {
	logger    logrus.FieldLogger
	maxChain  int
	observers []Observer
	catalog   *Catalog
}

// WithLogger sets the machine's logger. Defaults to logrus.StandardLogger();
// a nil logger is ignored.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxChain caps the number of exit/enter steps one Start or Receive may
// perform. Zero or less selects the default, the size of the state table.
func WithMaxChain(n int) Option {
	return func(c *config) {
		c.maxChain = n
	}
}

// WithObserver adds an observer. May be repeated.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithCatalog names events in logs and records.
func WithCatalog(cat *Catalog) Option {
	return func(c *config) {
		c.catalog = cat
	}
}

// StartOption configures a single call to Start.
type StartOption func(*startConfig)

type startConfig struct {
	initial StateID
	enter   bool
}

// AtState starts the machine in id instead of state 0.
func AtState(id StateID) StartOption {
	return func(c *startConfig) {
		c.initial = id
	}
}

// SkipEnter starts the machine without running the initial state's enter hook.
func SkipEnter() StartOption {
	return func(c *startConfig) {
		c.enter = false
	}
}
