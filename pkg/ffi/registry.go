package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jmylchreest/pasteclean/pkg/paste"
)

// processors holds the processors created through the C API.
var processors = newRegistry()

// registry manages processor handles with thread safety.
type registry struct {
	mu     sync.RWMutex
	items  map[int32]*paste.Processor
	nextID int32
}

func newRegistry() *registry {
	return &registry{items: make(map[int32]*paste.Processor)}
}

// open decodes a JSON config over the defaults and registers a processor.
func (r *registry) open(configJSON string) (int32, error) {
	cfg := paste.DefaultConfig()
	if configJSON != "" {
		if err := json.Unmarshal([]byte(configJSON), cfg); err != nil {
			return 0, fmt.Errorf("decoding config: %w", err)
		}
	}
	p, err := paste.New(cfg)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.items[r.nextID] = p
	return r.nextID, nil
}

func (r *registry) get(id int32) (*paste.Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	return p, ok
}

func (r *registry) remove(id int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

// process runs the processor behind id and serializes the result.
func (r *registry) process(id int32, html, modeName string) (string, error) {
	p, ok := r.get(id)
	if !ok {
		return "", fmt.Errorf("invalid processor handle: %d", id)
	}
	mode, err := paste.ParseMode(modeName)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p.Process(html, mode)); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// main is required for c-shared build mode but should not be called.
func main() {}
