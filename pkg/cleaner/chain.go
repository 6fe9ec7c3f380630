package cleaner

import (
	"fmt"
	"strings"
)

// ChainCleaner applies multiple cleaners in sequence.
type ChainCleaner struct {
	cleaners []Cleaner
}

// NewChain creates a new cleaner that applies multiple cleaners in sequence.
// Cleaners are applied in the order provided.
//
// Example:
//
//	chain := cleaner.NewChain(
//	    processor.Cleaner(paste.ModeText),
//	    cleaner.NewMarkdown(),
//	)
func NewChain(cleaners ...Cleaner) *ChainCleaner {
	return &ChainCleaner{
		cleaners: cleaners,
	}
}

// Clean applies all cleaners in sequence. The first failing stage stops the
// chain and its name is attached to the error.
func (c *ChainCleaner) Clean(content string) (string, error) {
	var err error
	for _, stage := range c.cleaners {
		content, err = stage.Clean(content)
		if err != nil {
			return "", fmt.Errorf("%s: %w", stage.Name(), err)
		}
	}
	return content, nil
}

// Name returns the names of all chained cleaners.
func (c *ChainCleaner) Name() string {
	names := make([]string, len(c.cleaners))
	for i, stage := range c.cleaners {
		names[i] = stage.Name()
	}
	return "chain(" + strings.Join(names, "->") + ")"
}
